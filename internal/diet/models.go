package diet

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Plan struct {
	ID            string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID        string    `gorm:"type:varchar(36);index;not null" json:"user_id"`
	InstructorID  *string   `gorm:"type:varchar(36)" json:"instructor_id,omitempty"`
	Name          string    `gorm:"type:varchar(255);not null" json:"name"`
	Description   string    `gorm:"type:text" json:"description"`
	DailyCalories int       `json:"daily_calories"`
	DailyProtein  float64   `json:"daily_protein"`
	DailyCarbs    float64   `json:"daily_carbs"`
	DailyFat      float64   `json:"daily_fat"`
	GeneratedByAI bool      `gorm:"not null;default:false" json:"generated_by_ai"`
	AIPrompt      string    `gorm:"type:text" json:"-"`
	StartDate     time.Time `json:"start_date"`
	IsActive      bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (Plan) TableName() string { return "diet_plans" }

func (p *Plan) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

type Ingredient struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity"`
	Unit     string `json:"unit"`
}

// Meal is one meal row under a diet plan. Meals are normalized rows
// (unlike workout exercises) because they are listed and filtered by
// category independently of the parent plan.
type Meal struct {
	ID              string       `gorm:"type:varchar(36);primaryKey" json:"id"`
	DietPlanID      string       `gorm:"type:varchar(36);index;not null" json:"diet_plan_id"`
	Category        string       `gorm:"type:varchar(32);not null" json:"category"`
	Name            string       `gorm:"type:varchar(255);not null" json:"name"`
	SuggestedTime   string       `gorm:"type:varchar(8)" json:"suggested_time"`
	Ingredients     []Ingredient `gorm:"serializer:json" json:"ingredients"`
	Calories        float64      `json:"calories"`
	Protein         float64      `json:"protein"`
	Carbs           float64      `json:"carbs"`
	Fat             float64      `json:"fat"`
	PreparationTime int          `json:"preparation_time"`
	Instructions    string       `gorm:"type:text" json:"instructions"`
	CreatedAt       time.Time    `json:"created_at"`
}

func (Meal) TableName() string { return "meals" }

func (m *Meal) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}
