package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/spmb/internal/app/controllers"
	"github.com/yigit/spmb/internal/app/models/dto"
	"github.com/yigit/spmb/internal/middleware"
)

// Controllers groups the handlers mounted under /api/v1
type Controllers struct {
	Candidate    *controllers.CandidateController
	Distribution *controllers.DistributionController
	Roster       *controllers.RosterController
	Export       *controllers.ExportController
}

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	ctrl Controllers,
	authMiddleware *middleware.AuthMiddleware,
	requiredRole string,
) {
	// API version group
	v1 := router.Group("/api/v1")

	// Health check endpoint (public)
	v1.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, dto.NewSuccessResponse(gin.H{"status": "ok"}, ""))
	})

	// --- Admin routes ---
	admin := v1.Group("")
	admin.Use(authMiddleware.JWTAuth(), authMiddleware.RoleRequired(requiredRole))

	candidates := admin.Group("/candidates")
	{
		candidates.POST("", ctrl.Candidate.CreateCandidate)
		candidates.GET("", ctrl.Candidate.ListCandidates)
		candidates.POST("/import", ctrl.Candidate.ImportCandidates)
		candidates.GET("/:id", ctrl.Candidate.GetCandidate)
		candidates.PATCH("/:id/status", ctrl.Candidate.UpdateStatus)
	}

	distributions := admin.Group("/distributions")
	{
		distributions.POST("", ctrl.Distribution.GenerateDraft)
		distributions.GET("/:id", ctrl.Distribution.GetDraft)
		distributions.DELETE("/:id", ctrl.Distribution.DiscardDraft)

		// Draft edits
		distributions.POST("/:id/move", ctrl.Distribution.MoveCandidate)
		distributions.POST("/:id/remove", ctrl.Distribution.RemoveCandidate)
		distributions.POST("/:id/add", ctrl.Distribution.AddCandidate)
		distributions.POST("/:id/swap", ctrl.Distribution.SwapCandidates)
		distributions.POST("/:id/undo", ctrl.Distribution.Undo)
		distributions.POST("/:id/redo", ctrl.Distribution.Redo)

		// Commit
		distributions.POST("/:id/finalize", ctrl.Distribution.FinalizeDraft)
		distributions.POST("/:id/retry", ctrl.Distribution.RetryFailed)
	}

	admin.GET("/roster", ctrl.Roster.ListRoster)
	admin.POST("/roster/transfer", ctrl.Roster.TransferRoster)

	exports := admin.Group("/exports")
	{
		exports.GET("/placements.xlsx", ctrl.Export.PlacementWorkbook)
		exports.GET("/placements.pdf", ctrl.Export.PlacementPDF)
	}
}

// SetupArchive serves archived exports and imports from root under /<prefix>.
// The files hold candidate names and NIS, so the same admin guard applies.
func SetupArchive(
	router *gin.Engine,
	prefix, root string,
	authMiddleware *middleware.AuthMiddleware,
	requiredRole string,
) {
	archive := router.Group("/" + prefix)
	archive.Use(authMiddleware.JWTAuth(), authMiddleware.RoleRequired(requiredRole))
	archive.Static("/", root)
}
