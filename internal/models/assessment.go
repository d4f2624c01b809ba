package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PhysicalAssessment is one measurement snapshot for a user. Only the
// most recent row is used when building chat context; older rows are
// kept as history.
type PhysicalAssessment struct {
	ID                string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID            string    `gorm:"type:varchar(36);index;not null" json:"user_id"`
	InstructorID      *string   `gorm:"type:varchar(36)" json:"instructor_id,omitempty"`
	WeightKg          *float64  `json:"weight,omitempty"`
	HeightCm          *float64  `json:"height,omitempty"`
	BodyFatPercentage *float64  `json:"body_fat_percentage,omitempty"`
	MuscleMassKg      *float64  `json:"muscle_mass,omitempty"`
	Notes             string    `gorm:"type:text" json:"notes,omitempty"`
	AssessmentDate    time.Time `json:"assessment_date"`
	CreatedAt         time.Time `json:"created_at"`
}

func (PhysicalAssessment) TableName() string { return "physical_assessments" }

func (a *PhysicalAssessment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.AssessmentDate.IsZero() {
		a.AssessmentDate = time.Now()
	}
	return nil
}
