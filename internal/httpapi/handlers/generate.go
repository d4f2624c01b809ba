package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jonafit/coach-platform/internal/common"
	"github.com/jonafit/coach-platform/internal/diet"
	"github.com/jonafit/coach-platform/internal/workout"
)

// GenerateWorkout runs a synchronous workout generation and returns the
// persisted plan together with the caller's updated quota.
func (h *Handler) GenerateWorkout(c *gin.Context) {
	u, ok := caller(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	var req workout.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 40001, "invalid request body")
		return
	}

	plan, usage, err := h.WorkoutSvc.Generate(c.Request.Context(), u, req)
	if err != nil {
		failFromErr(c, err)
		return
	}
	common.OK(c, gin.H{"plan": plan, "usage": usage})
}

func (h *Handler) GenerateDiet(c *gin.Context) {
	u, ok := caller(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	var req diet.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 40001, "invalid request body")
		return
	}

	res, usage, err := h.DietSvc.Generate(c.Request.Context(), u, req)
	if err != nil {
		failFromErr(c, err)
		return
	}
	common.OK(c, gin.H{"plan": res.Plan, "meals": res.Meals, "usage": usage})
}

// GetUsage reports the caller's request counter against their plan limit.
func (h *Handler) GetUsage(c *gin.Context) {
	u, ok := caller(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	usage, err := h.Billing.Usage(c.Request.Context(), u.ID)
	if err != nil {
		failFromErr(c, err)
		return
	}
	common.OK(c, usage)
}
