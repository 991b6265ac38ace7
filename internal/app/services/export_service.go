package services

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
	"github.com/yigit/spmb/internal/app/models"
	"github.com/yigit/spmb/internal/pkg/apperrors"
	"github.com/yigit/spmb/internal/pkg/filestorage"
)

// Table header of a class list
var classListHeader = []string{"No.", "NIS", "Nama Lengkap", "Kelas", "L/P"}

// Row on which the class list table header sits; rows above hold the header block
const classListHeaderRow = 5

// ClassList is the committed placement of one class, ordered by NIS then name
type ClassList struct {
	ClassName string
	Students  []models.Candidate
}

// ExportFile is a generated document, optionally archived in file storage
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
	ArchivePath string
}

// ExportService renders committed placements as documents
type ExportService interface {
	PlacementWorkbook(ctx context.Context, academicYear string, archive bool) (*ExportFile, error)
	PlacementPDF(ctx context.Context, academicYear string, archive bool) (*ExportFile, error)
}

type exportServiceImpl struct {
	candidates CandidateStore
	storage    filestorage.FileStorage
	settings   AdmissionSettings
	logger     zerolog.Logger
}

// NewExportService creates a new ExportService. storage may be nil when archiving is not needed.
func NewExportService(candidates CandidateStore, storage filestorage.FileStorage, settings AdmissionSettings, logger zerolog.Logger) ExportService {
	return &exportServiceImpl{
		candidates: candidates,
		storage:    storage,
		settings:   settings,
		logger:     logger.With().Str("service", "export").Logger(),
	}
}

// GroupByClass splits placed candidates into class lists in ascending class order.
// Within a class, students are ordered by NIS then full name.
func GroupByClass(candidates []models.Candidate) []ClassList {
	byClass := make(map[string][]models.Candidate)
	for _, c := range candidates {
		if !c.IsPlaced() {
			continue
		}
		byClass[*c.ClassName] = append(byClass[*c.ClassName], c)
	}

	names := make([]string, 0, len(byClass))
	for name := range byClass {
		names = append(names, name)
	}
	sort.Strings(names)

	lists := make([]ClassList, 0, len(names))
	for _, name := range names {
		students := byClass[name]
		sort.SliceStable(students, func(i, j int) bool {
			ni, nj := nisOf(&students[i]), nisOf(&students[j])
			if ni != nj {
				return ni < nj
			}
			return students[i].FullName < students[j].FullName
		})
		lists = append(lists, ClassList{ClassName: name, Students: students})
	}
	return lists
}

func nisOf(c *models.Candidate) string {
	if c.NIS == nil {
		return ""
	}
	return *c.NIS
}

func (s *exportServiceImpl) loadClassLists(ctx context.Context, academicYear string) (string, []ClassList, error) {
	year := s.settings.yearOrDefault(academicYear)
	placed, err := s.candidates.ListPlaced(ctx, year)
	if err != nil {
		return "", nil, fmt.Errorf("error loading placed candidates: %w", err)
	}
	lists := GroupByClass(placed)
	if len(lists) == 0 {
		return "", nil, apperrors.NewResourceNotFoundError(fmt.Sprintf("no committed placements for %s", year))
	}
	return year, lists, nil
}

func headerBlock(institution, className, academicYear string) []string {
	return []string{
		institution,
		"Kelas " + className,
		"Tahun Ajaran " + academicYear,
	}
}

func studentRow(no int, c *models.Candidate) []string {
	class := ""
	if c.ClassName != nil {
		class = *c.ClassName
	}
	return []string{fmt.Sprintf("%d", no), nisOf(c), c.FullName, class, string(c.Gender)}
}

func exportFilename(academicYear, ext string) string {
	return "penempatan-kelas-" + strings.ReplaceAll(academicYear, "/", "-") + "." + ext
}

func (s *exportServiceImpl) finish(file *ExportFile, archive bool) (*ExportFile, error) {
	if !archive {
		return file, nil
	}
	if s.storage == nil {
		return nil, fmt.Errorf("export archive requested but no file storage is configured")
	}
	path, err := s.storage.SaveBytes("placements", file.Filename, file.Data)
	if err != nil {
		return nil, fmt.Errorf("error archiving export: %w", err)
	}
	file.ArchivePath = path
	return file, nil
}

// PlacementWorkbook renders one worksheet per class
func (s *exportServiceImpl) PlacementWorkbook(ctx context.Context, academicYear string, archive bool) (*ExportFile, error) {
	year, lists, err := s.loadClassLists(ctx, academicYear)
	if err != nil {
		return nil, err
	}

	data, err := BuildWorkbook(s.settings.Institution, year, lists)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("academicYear", year).Int("classes", len(lists)).Msg("Placement workbook generated")

	return s.finish(&ExportFile{
		Filename:    exportFilename(year, "xlsx"),
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		Data:        data,
	}, archive)
}

// PlacementPDF renders one page per class
func (s *exportServiceImpl) PlacementPDF(ctx context.Context, academicYear string, archive bool) (*ExportFile, error) {
	year, lists, err := s.loadClassLists(ctx, academicYear)
	if err != nil {
		return nil, err
	}

	data, err := BuildPDF(s.settings.Institution, year, lists)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("academicYear", year).Int("classes", len(lists)).Msg("Placement PDF generated")

	return s.finish(&ExportFile{
		Filename:    exportFilename(year, "pdf"),
		ContentType: "application/pdf",
		Data:        data,
	}, archive)
}

// BuildWorkbook writes lists into an XLSX workbook, one sheet per class named after it
func BuildWorkbook(institution, academicYear string, lists []ClassList) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	titleStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})
	if err != nil {
		return nil, fmt.Errorf("failed to create title style: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"D9E1F2"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	defaultSheet := f.GetSheetName(0)
	for i, list := range lists {
		sheet := list.ClassName
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, sheet); err != nil {
				return nil, fmt.Errorf("failed to rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			return nil, fmt.Errorf("failed to create sheet %s: %w", sheet, err)
		}

		if err := writeClassSheet(f, sheet, institution, academicYear, list, titleStyle, headerStyle); err != nil {
			return nil, err
		}
	}
	f.SetActiveSheet(0)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeClassSheet(f *excelize.File, sheet, institution, academicYear string, list ClassList, titleStyle, headerStyle int) error {
	for i, line := range headerBlock(institution, list.ClassName, academicYear) {
		cell := fmt.Sprintf("A%d", i+1)
		if err := f.SetCellValue(sheet, cell, line); err != nil {
			return fmt.Errorf("failed to write header block: %w", err)
		}
		if err := f.MergeCell(sheet, cell, fmt.Sprintf("E%d", i+1)); err != nil {
			return fmt.Errorf("failed to merge header block: %w", err)
		}
	}
	if err := f.SetCellStyle(sheet, "A1", "A1", titleStyle); err != nil {
		return fmt.Errorf("failed to style title: %w", err)
	}

	header := make([]interface{}, len(classListHeader))
	for i, h := range classListHeader {
		header[i] = h
	}
	headerCell := fmt.Sprintf("A%d", classListHeaderRow)
	if err := f.SetSheetRow(sheet, headerCell, &header); err != nil {
		return fmt.Errorf("failed to write table header: %w", err)
	}
	if err := f.SetCellStyle(sheet, headerCell, fmt.Sprintf("E%d", classListHeaderRow), headerStyle); err != nil {
		return fmt.Errorf("failed to style table header: %w", err)
	}

	for i := range list.Students {
		values := studentRow(i+1, &list.Students[i])
		row := []interface{}{i + 1, values[1], values[2], values[3], values[4]}
		cell, err := excelize.CoordinatesToCellName(1, classListHeaderRow+1+i)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write student row: %w", err)
		}
	}

	widths := map[string]float64{"A": 6, "B": 16, "C": 36, "D": 8, "E": 6}
	for col, width := range widths {
		if err := f.SetColWidth(sheet, col, col, width); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}
	return nil
}

// newClassListPDF lays out one A4 page per class
func newClassListPDF(institution, academicYear string, lists []ClassList) *fpdf.Fpdf {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	widths := []float64{12, 35, 95, 18, 15}
	aligns := []string{"C", "C", "L", "C", "C"}

	for _, list := range lists {
		pdf.AddPage()

		for i, line := range headerBlock(institution, list.ClassName, academicYear) {
			if i == 0 {
				pdf.SetFont("Helvetica", "B", 14)
			} else {
				pdf.SetFont("Helvetica", "", 11)
			}
			pdf.CellFormat(0, 7, tr(line), "", 1, "C", false, 0, "")
		}
		pdf.Ln(4)

		pdf.SetFont("Helvetica", "B", 10)
		pdf.SetFillColor(217, 225, 242)
		for i, h := range classListHeader {
			pdf.CellFormat(widths[i], 7, h, "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)

		pdf.SetFont("Helvetica", "", 10)
		for i := range list.Students {
			for j, v := range studentRow(i+1, &list.Students[i]) {
				pdf.CellFormat(widths[j], 6, tr(v), "1", 0, aligns[j], false, 0, "")
			}
			pdf.Ln(-1)
		}
	}
	return pdf
}

// BuildPDF renders lists as a PDF document
func BuildPDF(institution, academicYear string, lists []ClassList) ([]byte, error) {
	pdf := newClassListPDF(institution, academicYear, lists)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to write PDF: %w", err)
	}
	return buf.Bytes(), nil
}
