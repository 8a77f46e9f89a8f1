package api

import (
	"alcyxob/fitness-tracker/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

// CompletionHandler covers completion recording, history, stats and the
// user-data endpoints built on them.
type CompletionHandler struct {
	completionService service.CompletionService
	statsService      service.StatsService
	exportService     service.ExportService
}

func NewCompletionHandler(completionService service.CompletionService, statsService service.StatsService, exportService service.ExportService) *CompletionHandler {
	return &CompletionHandler{
		completionService: completionService,
		statsService:      statsService,
		exportService:     exportService,
	}
}

// RecordCompletion godoc
// @Summary Record a completion of a plan
// @Tags Completions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param planId path string true "Plan ID"
// @Param completion body service.CompletionInput true "What was done"
// @Success 201 {object} domain.CompletionRecord
// @Failure 503 {object} gin.H "Storage failure, nothing was written"
// @Router /plans/{planId}/completions [post]
func (h *CompletionHandler) RecordCompletion(c *gin.Context) {
	ownerID, ok := requireUser(c)
	if !ok {
		return
	}
	planID, ok := pathObjectID(c, "planId")
	if !ok {
		return
	}
	var in service.CompletionInput
	if err := c.ShouldBindJSON(&in); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	record, err := h.completionService.RecordCompletion(c.Request.Context(), ownerID, planID, in)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, record)
}

// GetHistory godoc
// @Summary List my completions, newest first
// @Tags Completions
// @Produce json
// @Security BearerAuth
// @Param kind query string false "Kind filter, e.g. ai_generated"
// @Param limit query int false "Maximum records"
// @Success 200 {array} domain.CompletionRecord
// @Router /completions [get]
func (h *CompletionHandler) GetHistory(c *gin.Context) {
	ownerID, ok := requireUser(c)
	if !ok {
		return
	}
	records, err := h.completionService.GetCompletionHistory(c.Request.Context(), ownerID, c.Query("kind"), queryInt(c, "limit", 0))
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

// GetStats godoc
// @Summary Completion counts, week-over-week change and calorie sums
// @Tags Completions
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.Stats
// @Router /stats [get]
func (h *CompletionHandler) GetStats(c *gin.Context) {
	ownerID, ok := requireUser(c)
	if !ok {
		return
	}
	stats, err := h.statsService.GetStats(c.Request.Context(), ownerID)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ExportHistory godoc
// @Summary Export my completion history to object storage
// @Tags Completions
// @Produce json
// @Security BearerAuth
// @Success 201 {object} service.ExportResult
// @Failure 501 {object} gin.H "Object storage not configured"
// @Router /completions/export [post]
func (h *CompletionHandler) ExportHistory(c *gin.Context) {
	ownerID, ok := requireUser(c)
	if !ok {
		return
	}
	result, err := h.exportService.ExportHistory(c.Request.Context(), ownerID)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// EraseMyData godoc
// @Summary Delete all my plans, workouts, completions and exports
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.ErasureReport
// @Router /me/data [delete]
func (h *CompletionHandler) EraseMyData(c *gin.Context) {
	ownerID, ok := requireUser(c)
	if !ok {
		return
	}
	report, err := h.exportService.EraseUserData(c.Request.Context(), ownerID)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
