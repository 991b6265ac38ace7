package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/spmb/internal/app/models/dto"
	"github.com/yigit/spmb/internal/app/services"
	"github.com/yigit/spmb/internal/middleware"
)

// DistributionController exposes the draft workflow
type DistributionController struct {
	distributionService services.DistributionService
}

// NewDistributionController creates a new DistributionController
func NewDistributionController(distributionService services.DistributionService) *DistributionController {
	return &DistributionController{
		distributionService: distributionService,
	}
}

func (c *DistributionController) respond(ctx *gin.Context, draft *dto.DraftResponse, err error, message string) {
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(draft, message))
}

// GenerateDraft distributes the unassigned accepted candidates into a new draft
// @Summary Generate a distribution draft
// @Description Deals accepted candidates without a class round-robin by gender into classCount classes. An empty body uses the configured class count.
// @Tags distributions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.GenerateDistributionRequest false "Number of classes"
// @Success 201 {object} dto.APIResponse{data=dto.DraftResponse} "Draft created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 422 {object} dto.ErrorResponse "No candidates to distribute"
// @Router /distributions [post]
func (c *DistributionController) GenerateDraft(ctx *gin.Context) {
	var req dto.GenerateDistributionRequest
	if ctx.Request.ContentLength != 0 && !middleware.BindAndValidate(ctx, &req) {
		return
	}

	draft, err := c.distributionService.GenerateDraft(ctx, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(draft, "Draft created"))
}

// GetDraft returns the current snapshot of a draft
// @Summary Get a distribution draft
// @Tags distributions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Draft ID" format(uuid)
// @Success 200 {object} dto.APIResponse{data=dto.DraftResponse}
// @Failure 404 {object} dto.ErrorResponse "Draft not found"
// @Router /distributions/{id} [get]
func (c *DistributionController) GetDraft(ctx *gin.Context) {
	draft, err := c.distributionService.GetDraft(ctx, ctx.Param("id"))
	c.respond(ctx, draft, err, "")
}

// DiscardDraft drops a draft without writing anything
// @Summary Discard a distribution draft
// @Tags distributions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Draft ID" format(uuid)
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse}
// @Failure 404 {object} dto.ErrorResponse "Draft not found"
// @Failure 409 {object} dto.ErrorResponse "Draft is being finalized"
// @Router /distributions/{id} [delete]
func (c *DistributionController) DiscardDraft(ctx *gin.Context) {
	if err := c.distributionService.DiscardDraft(ctx, ctx.Param("id")); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.SuccessResponse{Message: "Draft discarded"}, ""))
}

// MoveCandidate moves a candidate to the end of another class
// @Summary Move a candidate
// @Tags distributions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Draft ID" format(uuid)
// @Param request body dto.MoveCandidateRequest true "Move"
// @Success 200 {object} dto.APIResponse{data=dto.DraftResponse}
// @Failure 404 {object} dto.ErrorResponse "Draft not found"
// @Failure 409 {object} dto.ErrorResponse "Stale class reference or finalized draft"
// @Failure 422 {object} dto.ErrorResponse "Unknown class"
// @Router /distributions/{id}/move [post]
func (c *DistributionController) MoveCandidate(ctx *gin.Context) {
	var req dto.MoveCandidateRequest
	if !middleware.BindAndValidate(ctx, &req) {
		return
	}
	draft, err := c.distributionService.MoveCandidate(ctx, ctx.Param("id"), &req)
	c.respond(ctx, draft, err, "Candidate moved")
}

// RemoveCandidate takes a candidate out of the draft
// @Summary Remove a candidate
// @Tags distributions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Draft ID" format(uuid)
// @Param request body dto.RemoveCandidateRequest true "Candidate"
// @Success 200 {object} dto.APIResponse{data=dto.DraftResponse}
// @Failure 404 {object} dto.ErrorResponse "Draft not found"
// @Failure 409 {object} dto.ErrorResponse "Candidate not in draft or finalized draft"
// @Router /distributions/{id}/remove [post]
func (c *DistributionController) RemoveCandidate(ctx *gin.Context) {
	var req dto.RemoveCandidateRequest
	if !middleware.BindAndValidate(ctx, &req) {
		return
	}
	draft, err := c.distributionService.RemoveCandidate(ctx, ctx.Param("id"), &req)
	c.respond(ctx, draft, err, "Candidate removed")
}

// AddCandidate appends an eligible candidate to a class
// @Summary Add a candidate
// @Description The candidate must be accepted, unplaced and of the draft's year. A candidate already in the draft is moved.
// @Tags distributions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Draft ID" format(uuid)
// @Param request body dto.AddCandidateRequest true "Candidate and class"
// @Success 200 {object} dto.APIResponse{data=dto.DraftResponse}
// @Failure 404 {object} dto.ErrorResponse "Draft or candidate not found"
// @Failure 422 {object} dto.ErrorResponse "Candidate not eligible or unknown class"
// @Router /distributions/{id}/add [post]
func (c *DistributionController) AddCandidate(ctx *gin.Context) {
	var req dto.AddCandidateRequest
	if !middleware.BindAndValidate(ctx, &req) {
		return
	}
	draft, err := c.distributionService.AddCandidate(ctx, ctx.Param("id"), &req)
	c.respond(ctx, draft, err, "Candidate added")
}

// SwapCandidates exchanges two candidates of different classes
// @Summary Swap two candidates
// @Tags distributions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Draft ID" format(uuid)
// @Param request body dto.SwapCandidatesRequest true "Swap"
// @Success 200 {object} dto.APIResponse{data=dto.DraftResponse}
// @Failure 400 {object} dto.ErrorResponse "Both classes are the same"
// @Failure 404 {object} dto.ErrorResponse "Draft not found"
// @Failure 409 {object} dto.ErrorResponse "Stale class reference or finalized draft"
// @Router /distributions/{id}/swap [post]
func (c *DistributionController) SwapCandidates(ctx *gin.Context) {
	var req dto.SwapCandidatesRequest
	if !middleware.BindAndValidate(ctx, &req) {
		return
	}
	draft, err := c.distributionService.SwapCandidates(ctx, ctx.Param("id"), &req)
	c.respond(ctx, draft, err, "Candidates swapped")
}

// Undo reverts the last edit
// @Summary Undo the last edit
// @Description With nothing to undo the draft is returned unchanged
// @Tags distributions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Draft ID" format(uuid)
// @Success 200 {object} dto.APIResponse{data=dto.DraftResponse}
// @Failure 404 {object} dto.ErrorResponse "Draft not found"
// @Failure 409 {object} dto.ErrorResponse "Draft is finalized"
// @Router /distributions/{id}/undo [post]
func (c *DistributionController) Undo(ctx *gin.Context) {
	draft, err := c.distributionService.Undo(ctx, ctx.Param("id"))
	c.respond(ctx, draft, err, "")
}

// Redo re-applies the last undone edit
// @Summary Redo the last undone edit
// @Description With nothing to redo the draft is returned unchanged
// @Tags distributions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Draft ID" format(uuid)
// @Success 200 {object} dto.APIResponse{data=dto.DraftResponse}
// @Failure 404 {object} dto.ErrorResponse "Draft not found"
// @Failure 409 {object} dto.ErrorResponse "Draft is finalized"
// @Router /distributions/{id}/redo [post]
func (c *DistributionController) Redo(ctx *gin.Context) {
	draft, err := c.distributionService.Redo(ctx, ctx.Param("id"))
	c.respond(ctx, draft, err, "")
}

// FinalizeDraft numbers the draft and commits class and NIS per candidate
// @Summary Finalize a distribution draft
// @Description Generates NIS identifiers in class order and commits each placement on its own. Per-record failures are listed in result.failed.
// @Tags distributions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Draft ID" format(uuid)
// @Success 200 {object} dto.APIResponse{data=dto.DraftResponse}
// @Failure 404 {object} dto.ErrorResponse "Draft not found"
// @Failure 409 {object} dto.ErrorResponse "Draft already finalized or out of date"
// @Failure 422 {object} dto.ErrorResponse "Empty draft or identifier space exhausted"
// @Router /distributions/{id}/finalize [post]
func (c *DistributionController) FinalizeDraft(ctx *gin.Context) {
	draft, err := c.distributionService.FinalizeDraft(ctx, ctx.Param("id"))
	c.respond(ctx, draft, err, "Draft finalized")
}

// RetryFailed re-commits the placements that failed during finalization
// @Summary Retry failed placements
// @Tags distributions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Draft ID" format(uuid)
// @Success 200 {object} dto.APIResponse{data=dto.DraftResponse}
// @Failure 404 {object} dto.ErrorResponse "Draft not found"
// @Failure 422 {object} dto.ErrorResponse "Draft not finalized or nothing to retry"
// @Router /distributions/{id}/retry [post]
func (c *DistributionController) RetryFailed(ctx *gin.Context) {
	draft, err := c.distributionService.RetryFailed(ctx, ctx.Param("id"))
	c.respond(ctx, draft, err, "Retry finished")
}
