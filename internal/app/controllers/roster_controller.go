package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/spmb/internal/app/models/dto"
	"github.com/yigit/spmb/internal/app/services"
	"github.com/yigit/spmb/internal/middleware"
	"github.com/yigit/spmb/internal/pkg/validation"
)

// RosterController moves placed candidates into the student roster and lists it
type RosterController struct {
	placementService services.PlacementService
}

// NewRosterController creates a new RosterController
func NewRosterController(placementService services.PlacementService) *RosterController {
	return &RosterController{
		placementService: placementService,
	}
}

// TransferRoster copies placed candidates into the permanent student roster
// @Summary Transfer placed candidates to the roster
// @Description Each candidate is copied in its own transaction; already transferred candidates are skipped. An empty body uses the configured academic year.
// @Tags roster
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.TransferRosterRequest false "Academic year"
// @Success 200 {object} dto.APIResponse{data=models.BatchResult}
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 422 {object} dto.ErrorResponse "Invalid academic year"
// @Router /roster/transfer [post]
func (c *RosterController) TransferRoster(ctx *gin.Context) {
	var req dto.TransferRosterRequest
	if ctx.Request.ContentLength != 0 && !middleware.BindAndValidate(ctx, &req) {
		return
	}

	result, err := c.placementService.TransferToRoster(ctx, req.AcademicYear)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(result, "Roster transfer finished"))
}

// ListRoster returns the permanent student roster
// @Summary List the student roster
// @Tags roster
// @Produce json
// @Security BearerAuth
// @Param academicYear query string false "Academic year, defaults to the configured one" example(2025/2026)
// @Param className query string false "Limit to one class" example(7A)
// @Success 200 {object} dto.APIResponse{data=dto.RosterResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid class name"
// @Failure 422 {object} dto.ErrorResponse "Invalid academic year"
// @Router /roster [get]
func (c *RosterController) ListRoster(ctx *gin.Context) {
	className := ctx.Query("className")
	if className != "" && !validation.IsClassName(className) {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid class name").
			WithField("className")
		ctx.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	roster, err := c.placementService.ListRoster(ctx, ctx.Query("academicYear"), className)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(roster, "Roster retrieved"))
}
