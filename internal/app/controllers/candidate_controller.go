package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yigit/spmb/internal/app/models/dto"
	"github.com/yigit/spmb/internal/app/services"
	"github.com/yigit/spmb/internal/middleware"
	"github.com/yigit/spmb/internal/pkg/filestorage"
	"github.com/yigit/spmb/internal/pkg/helpers"
	"github.com/yigit/spmb/internal/pkg/logger"
)

// maxImportSize bounds an uploaded candidate CSV
const maxImportSize = 10 << 20

// CandidateController handles admission candidates
type CandidateController struct {
	candidateService services.CandidateService
	fileStorage      filestorage.FileStorage
}

// NewCandidateController creates a new CandidateController. fileStorage may be nil,
// in which case uploaded CSV files are not archived.
func NewCandidateController(candidateService services.CandidateService, fileStorage filestorage.FileStorage) *CandidateController {
	return &CandidateController{
		candidateService: candidateService,
		fileStorage:      fileStorage,
	}
}

func parseCandidateID(ctx *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid candidate ID").
			WithDetails("Candidate ID must be a positive number")
		ctx.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return 0, false
	}
	return id, true
}

// CreateCandidate registers an admission form submission
// @Summary Register a candidate
// @Description Stores a new admission candidate for the configured academic year
// @Tags candidates
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateCandidateRequest true "Candidate information"
// @Success 201 {object} dto.APIResponse{data=dto.CandidateResponse} "Candidate created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /candidates [post]
func (c *CandidateController) CreateCandidate(ctx *gin.Context) {
	var req dto.CreateCandidateRequest
	if !middleware.BindAndValidate(ctx, &req) {
		return
	}

	candidate, err := c.candidateService.CreateCandidate(ctx, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(candidate, "Candidate created"))
}

// GetCandidate returns one candidate
// @Summary Get a candidate
// @Tags candidates
// @Produce json
// @Security BearerAuth
// @Param id path int true "Candidate ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=dto.CandidateResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid candidate ID"
// @Failure 404 {object} dto.ErrorResponse "Candidate not found"
// @Router /candidates/{id} [get]
func (c *CandidateController) GetCandidate(ctx *gin.Context) {
	id, ok := parseCandidateID(ctx)
	if !ok {
		return
	}

	candidate, err := c.candidateService.GetCandidate(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(candidate, ""))
}

// ListCandidates returns a filtered page of candidates
// @Summary List candidates
// @Description Lists candidates of an academic year with optional filters
// @Tags candidates
// @Produce json
// @Security BearerAuth
// @Param academicYear query string false "Academic year, defaults to the configured one" example(2025/2026)
// @Param status query string false "Admission status" Enums(pending, accepted, rejected)
// @Param gender query string false "Gender code" Enums(L, P)
// @Param placed query bool false "Only candidates with (true) or without (false) a class"
// @Param transferred query bool false "Only candidates already (true) or not yet (false) in the roster"
// @Param search query string false "Matches name, origin school or NIS"
// @Param page query int false "Page number (1-based)" default(1) minimum(1)
// @Param size query int false "Page size" default(20) minimum(1) maximum(200)
// @Success 200 {object} dto.APIResponse{data=dto.CandidateListResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid filter"
// @Router /candidates [get]
func (c *CandidateController) ListCandidates(ctx *gin.Context) {
	page, size := helpers.ParsePaginationParams(ctx)
	filter := &dto.CandidateFilterRequest{
		AcademicYear: ctx.Query("academicYear"),
		Status:       ctx.Query("status"),
		Gender:       ctx.Query("gender"),
		Placed:       helpers.ParseOptionalBool(ctx, "placed"),
		Transferred:  helpers.ParseOptionalBool(ctx, "transferred"),
		Search:       ctx.Query("search"),
		Page:         page,
		PageSize:     size,
	}

	list, err := c.candidateService.ListCandidates(ctx, filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(list, ""))
}

// UpdateStatus records an admission decision
// @Summary Update admission status
// @Description Placed candidates cannot change status
// @Tags candidates
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Candidate ID" Format(int64) minimum(1)
// @Param request body dto.UpdateCandidateStatusRequest true "New status"
// @Success 200 {object} dto.APIResponse{data=dto.CandidateResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 404 {object} dto.ErrorResponse "Candidate not found"
// @Failure 422 {object} dto.ErrorResponse "Candidate already placed"
// @Router /candidates/{id}/status [patch]
func (c *CandidateController) UpdateStatus(ctx *gin.Context) {
	id, ok := parseCandidateID(ctx)
	if !ok {
		return
	}
	var req dto.UpdateCandidateStatusRequest
	if !middleware.BindAndValidate(ctx, &req) {
		return
	}

	candidate, err := c.candidateService.UpdateStatus(ctx, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(candidate, "Status updated"))
}

// ImportCandidates bulk-registers candidates from a CSV upload
// @Summary Import candidates from CSV
// @Description Header row names the columns full_name, gender, origin_school, status. Bad rows are reported and skipped.
// @Tags candidates
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "CSV file"
// @Success 200 {object} dto.APIResponse{data=dto.ImportCandidatesResponse}
// @Failure 400 {object} dto.ErrorResponse "Missing file or invalid header"
// @Router /candidates/import [post]
func (c *CandidateController) ImportCandidates(ctx *gin.Context) {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeBadRequest, "CSV file is required").
			WithField("file").WithDetails(err.Error())
		ctx.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}
	if fileHeader.Size > maxImportSize {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeBadRequest, "CSV file is too large").
			WithField("file").WithDetails("Maximum size is 10 MB")
		ctx.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	defer file.Close()

	var archivePath string
	if c.fileStorage != nil {
		archivePath, err = c.fileStorage.SaveFileWithPath(fileHeader, "imports")
		if err != nil {
			logger.Warn().Err(err).Str("filename", fileHeader.Filename).Msg("Failed to archive imported CSV")
			archivePath = ""
		}
	}

	result, err := c.candidateService.ImportCSV(ctx, file)
	if err != nil {
		// a rejected file is not kept
		if archivePath != "" {
			if delErr := c.fileStorage.DeleteFile(archivePath); delErr != nil {
				logger.Warn().Err(delErr).Str("path", archivePath).Msg("Failed to remove archived CSV")
			}
		}
		middleware.HandleAPIError(ctx, err)
		return
	}

	resp := dto.ImportCandidatesResponse{Result: result, ArchivePath: archivePath}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp, "Import finished"))
}
