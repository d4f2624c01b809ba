package jobs

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/gorm"

	"github.com/jonafit/coach-platform/internal/diet"
	"github.com/jonafit/coach-platform/internal/models"
	"github.com/jonafit/coach-platform/internal/workout"
)

// Runner executes queued generation jobs against the same services the
// synchronous endpoints use.
type Runner struct {
	db         *gorm.DB
	repo       *Repo
	workoutSvc *workout.Service
	dietSvc    *diet.Service
}

func NewRunner(db *gorm.DB, repo *Repo, workoutSvc *workout.Service, dietSvc *diet.Service) *Runner {
	return &Runner{db: db, repo: repo, workoutSvc: workoutSvc, dietSvc: dietSvc}
}

// Run executes one job to completion, recording the outcome on the job
// row. The returned error reflects the generation outcome so the queue
// consumer can decide whether to ack or dead-letter.
func (r *Runner) Run(ctx context.Context, jobID string) error {
	_ = r.repo.MarkRunning(ctx, jobID)

	j, err := r.repo.GetByID(ctx, jobID)
	if err != nil {
		return err
	}
	if j.Status == StatusSucceeded {
		// redelivered after success; nothing to do
		return nil
	}

	var caller models.User
	if err := r.db.WithContext(ctx).First(&caller, "id = ?", j.UserID).Error; err != nil {
		_ = r.repo.MarkFailed(ctx, jobID, "user not found")
		return err
	}

	planID, err := r.execute(ctx, &caller, j)
	if err != nil {
		_ = r.repo.MarkFailed(ctx, jobID, err.Error())
		return err
	}
	return r.repo.MarkSucceeded(ctx, jobID, planID)
}

func (r *Runner) execute(ctx context.Context, caller *models.User, j *Job) (string, error) {
	switch j.Kind {
	case KindWorkout:
		var req workout.Request
		if err := json.Unmarshal([]byte(j.Request), &req); err != nil {
			return "", fmt.Errorf("decode workout request: %w", err)
		}
		plan, _, err := r.workoutSvc.Generate(ctx, caller, req)
		if err != nil {
			return "", err
		}
		return plan.ID, nil
	case KindDiet:
		var req diet.Request
		if err := json.Unmarshal([]byte(j.Request), &req); err != nil {
			return "", fmt.Errorf("decode diet request: %w", err)
		}
		res, _, err := r.dietSvc.Generate(ctx, caller, req)
		if err != nil {
			return "", err
		}
		return res.Plan.ID, nil
	default:
		return "", fmt.Errorf("unknown job kind %q", j.Kind)
	}
}
