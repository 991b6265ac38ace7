package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yigit/spmb/internal/app/services"
	"github.com/yigit/spmb/internal/middleware"
)

// ArchivePathHeader carries the stored copy of an archived export
const ArchivePathHeader = "X-Archive-Path"

// ExportController serves class lists as documents
type ExportController struct {
	exportService services.ExportService
}

// NewExportController creates a new ExportController
func NewExportController(exportService services.ExportService) *ExportController {
	return &ExportController{
		exportService: exportService,
	}
}

func archiveRequested(ctx *gin.Context) bool {
	archive, _ := strconv.ParseBool(ctx.DefaultQuery("archive", "false"))
	return archive
}

func (c *ExportController) send(ctx *gin.Context, file *services.ExportFile, err error) {
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	if file.ArchivePath != "" {
		ctx.Header(ArchivePathHeader, file.ArchivePath)
	}
	ctx.Header("Content-Disposition", `attachment; filename="`+file.Filename+`"`)
	ctx.Data(http.StatusOK, file.ContentType, file.Data)
}

// PlacementWorkbook downloads the committed class lists as an XLSX workbook
// @Summary Export class lists as XLSX
// @Description One worksheet per class, students ordered by NIS
// @Tags exports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param academicYear query string false "Academic year, defaults to the configured one" example(2025/2026)
// @Param archive query bool false "Also store a copy under /exports"
// @Success 200 {file} file
// @Failure 404 {object} dto.ErrorResponse "No committed placements"
// @Router /exports/placements.xlsx [get]
func (c *ExportController) PlacementWorkbook(ctx *gin.Context) {
	file, err := c.exportService.PlacementWorkbook(ctx, ctx.Query("academicYear"), archiveRequested(ctx))
	c.send(ctx, file, err)
}

// PlacementPDF downloads the committed class lists as a PDF
// @Summary Export class lists as PDF
// @Description One page per class, students ordered by NIS
// @Tags exports
// @Produce application/pdf
// @Security BearerAuth
// @Param academicYear query string false "Academic year, defaults to the configured one" example(2025/2026)
// @Param archive query bool false "Also store a copy under /exports"
// @Success 200 {file} file
// @Failure 404 {object} dto.ErrorResponse "No committed placements"
// @Router /exports/placements.pdf [get]
func (c *ExportController) PlacementPDF(ctx *gin.Context) {
	file, err := c.exportService.PlacementPDF(ctx, ctx.Query("academicYear"), archiveRequested(ctx))
	c.send(ctx, file, err)
}
