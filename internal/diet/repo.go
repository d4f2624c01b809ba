package diet

import (
	"context"

	"gorm.io/gorm"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) DB() *gorm.DB { return r.db }

func (r *Repo) GetByID(ctx context.Context, id string) (*Plan, error) {
	var p Plan
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// MealsByPlan returns the plan's meals in stored order.
func (r *Repo) MealsByPlan(ctx context.Context, planID string) ([]Meal, error) {
	var meals []Meal
	if err := r.db.WithContext(ctx).
		Where("diet_plan_id = ?", planID).
		Order("created_at ASC").
		Find(&meals).Error; err != nil {
		return nil, err
	}
	return meals, nil
}

func (r *Repo) ListByUser(ctx context.Context, userID string, limit int) ([]Plan, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var plans []Plan
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&plans).Error; err != nil {
		return nil, err
	}
	return plans, nil
}
