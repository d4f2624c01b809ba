package workout

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Exercise struct {
	Name         string     `json:"name"`
	Type         string     `json:"type"`
	MuscleGroups []string   `json:"muscle_groups"`
	Sets         int        `json:"sets"`
	Reps         FlexString `json:"reps"`
	Rest         FlexString `json:"rest"`
	Instructions string     `json:"instructions"`
	Equipment    []string   `json:"equipment"`
}

// Plan is a workout plan. Exercises are embedded as a JSON column: a
// plan is always read whole, never by individual exercise.
type Plan struct {
	ID                string     `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID            string     `gorm:"type:varchar(36);index;not null" json:"user_id"`
	InstructorID      *string    `gorm:"type:varchar(36)" json:"instructor_id,omitempty"`
	Name              string     `gorm:"type:varchar(255);not null" json:"name"`
	Description       string     `gorm:"type:text" json:"description"`
	Exercises         []Exercise `gorm:"serializer:json" json:"exercises"`
	EstimatedDuration int        `json:"estimated_duration"`
	DifficultyLevel   int        `json:"difficulty_level"`
	GeneratedByAI     bool       `gorm:"not null;default:false" json:"generated_by_ai"`
	AIPrompt          string     `gorm:"type:text" json:"-"`
	StartDate         time.Time  `json:"start_date"`
	IsActive          bool       `gorm:"not null;default:true" json:"is_active"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

func (Plan) TableName() string { return "workout_plans" }

func (p *Plan) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
