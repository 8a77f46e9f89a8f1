package api

import (
	"alcyxob/fitness-tracker/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

// PlanHandler covers plan intake, materialization and workout lookup.
type PlanHandler struct {
	planService         service.PlanService
	materializerService service.MaterializerService
}

func NewPlanHandler(planService service.PlanService, materializerService service.MaterializerService) *PlanHandler {
	return &PlanHandler{planService: planService, materializerService: materializerService}
}

// ImportPlan godoc
// @Summary Store a generated plan
// @Description Accepts the plan document produced by the model. Missing fields get defaults; a document without title or exercises is replaced by a default plan.
// @Tags Plans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param plan body service.PlanDocument true "Generated plan"
// @Success 201 {object} domain.GeneratedPlan
// @Failure 400 {object} gin.H "Body is not a plan document"
// @Router /plans [post]
func (h *PlanHandler) ImportPlan(c *gin.Context) {
	ownerID, ok := requireUser(c)
	if !ok {
		return
	}
	var doc service.PlanDocument
	if err := c.ShouldBindJSON(&doc); err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid plan document: "+err.Error())
		return
	}

	plan, err := h.planService.ImportPlan(c.Request.Context(), ownerID, &doc)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, plan)
}

// ListPlans godoc
// @Summary List my generated plans, newest first
// @Tags Plans
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Maximum plans"
// @Success 200 {array} domain.GeneratedPlan
// @Router /plans [get]
func (h *PlanHandler) ListPlans(c *gin.Context) {
	ownerID, ok := requireUser(c)
	if !ok {
		return
	}
	plans, err := h.planService.ListPlans(c.Request.Context(), ownerID, queryInt(c, "limit", 0))
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, plans)
}

// GetPlan godoc
// @Summary Get one generated plan
// @Tags Plans
// @Produce json
// @Security BearerAuth
// @Param planId path string true "Plan ID"
// @Success 200 {object} domain.GeneratedPlan
// @Failure 403 {object} gin.H "Plan belongs to another user"
// @Failure 404 {object} gin.H "Not found"
// @Router /plans/{planId} [get]
func (h *PlanHandler) GetPlan(c *gin.Context) {
	ownerID, ok := requireUser(c)
	if !ok {
		return
	}
	planID, ok := pathObjectID(c, "planId")
	if !ok {
		return
	}
	plan, err := h.planService.GetPlan(c.Request.Context(), ownerID, planID)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

// Materialize godoc
// @Summary Turn a plan into a workout
// @Description Idempotent. Returns 201 when the workout was created by this call and 200 when it already existed.
// @Tags Plans
// @Produce json
// @Security BearerAuth
// @Param planId path string true "Plan ID"
// @Success 200 {object} service.MaterializedWorkout
// @Success 201 {object} service.MaterializedWorkout
// @Failure 503 {object} gin.H "Catalog unavailable or storage failure"
// @Router /plans/{planId}/materialize [post]
func (h *PlanHandler) Materialize(c *gin.Context) {
	ownerID, ok := requireUser(c)
	if !ok {
		return
	}
	planID, ok := pathObjectID(c, "planId")
	if !ok {
		return
	}
	result, err := h.materializerService.Materialize(c.Request.Context(), ownerID, planID)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	status := http.StatusCreated
	if result.AlreadyMaterialized {
		status = http.StatusOK
	}
	c.JSON(status, result)
}

// GetWorkout godoc
// @Summary Get the workout materialized from a plan
// @Tags Plans
// @Produce json
// @Security BearerAuth
// @Param planId path string true "Plan ID"
// @Success 200 {object} service.MaterializedWorkout
// @Failure 404 {object} gin.H "Plan not materialized yet"
// @Router /plans/{planId}/workout [get]
func (h *PlanHandler) GetWorkout(c *gin.Context) {
	ownerID, ok := requireUser(c)
	if !ok {
		return
	}
	planID, ok := pathObjectID(c, "planId")
	if !ok {
		return
	}
	result, err := h.materializerService.GetPlanWorkout(c.Request.Context(), ownerID, planID)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
