package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jonafit/coach-platform/internal/common"
	"github.com/jonafit/coach-platform/internal/logger"
	"github.com/jonafit/coach-platform/internal/models"
)

type createAssessmentReq struct {
	UserID            string   `json:"user_id"`
	WeightKg          *float64 `json:"weight"`
	HeightCm          *float64 `json:"height"`
	BodyFatPercentage *float64 `json:"body_fat_percentage"`
	MuscleMassKg      *float64 `json:"muscle_mass"`
	Notes             string   `json:"notes"`
	AssessmentDate    string   `json:"assessment_date"`
}

// CreateAssessment records a measurement snapshot. Instructors and admins
// may record on behalf of a student; students only for themselves.
func (h *Handler) CreateAssessment(c *gin.Context) {
	u, ok := caller(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	var req createAssessmentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 40001, "invalid request body")
		return
	}

	row := models.PhysicalAssessment{
		UserID:            u.ID,
		WeightKg:          req.WeightKg,
		HeightCm:          req.HeightCm,
		BodyFatPercentage: req.BodyFatPercentage,
		MuscleMassKg:      req.MuscleMassKg,
		Notes:             req.Notes,
	}
	if req.UserID != "" && req.UserID != u.ID {
		if u.Role == models.RoleStudent {
			common.Fail(c, http.StatusForbidden, 40301, "forbidden")
			return
		}
		row.UserID = req.UserID
		row.InstructorID = &u.ID
	}
	if req.AssessmentDate != "" {
		t, err := time.Parse("2006-01-02", req.AssessmentDate)
		if err != nil {
			common.Fail(c, http.StatusBadRequest, 40003, "assessment_date must be YYYY-MM-DD")
			return
		}
		row.AssessmentDate = t
	}

	if err := h.DB.Create(&row).Error; err != nil {
		logger.Errorf("create assessment: %v", err)
		common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
		return
	}
	common.OK(c, row)
}

// LatestAssessment returns the caller's most recent snapshot.
func (h *Handler) LatestAssessment(c *gin.Context) {
	u, ok := caller(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	var row models.PhysicalAssessment
	err := h.DB.Where("user_id = ?", u.ID).
		Order("assessment_date DESC").
		First(&row).Error
	if err != nil {
		failFromErr(c, err)
		return
	}
	common.OK(c, row)
}
