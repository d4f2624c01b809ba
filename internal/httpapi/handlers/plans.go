package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jonafit/coach-platform/internal/common"
)

func (h *Handler) ListWorkouts(c *gin.Context) {
	u, ok := caller(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	limit, _ := strconv.Atoi(c.Query("limit"))
	plans, err := h.WorkoutSvc.ListOwn(c.Request.Context(), u.ID, limit)
	if err != nil {
		failFromErr(c, err)
		return
	}
	common.OK(c, plans)
}

func (h *Handler) GetWorkout(c *gin.Context) {
	u, ok := caller(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	plan, err := h.WorkoutSvc.Get(c.Request.Context(), u, c.Param("plan_id"))
	if err != nil {
		failFromErr(c, err)
		return
	}
	common.OK(c, plan)
}

// GetDiet returns a diet plan with its meal rows.
func (h *Handler) GetDiet(c *gin.Context) {
	u, ok := caller(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	res, err := h.DietSvc.Get(c.Request.Context(), u, c.Param("plan_id"))
	if err != nil {
		failFromErr(c, err)
		return
	}
	common.OK(c, res)
}
