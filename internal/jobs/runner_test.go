package jobs

import (
	"context"
	"testing"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/jonafit/coach-platform/internal/ai"
	"github.com/jonafit/coach-platform/internal/billing"
	"github.com/jonafit/coach-platform/internal/common"
	"github.com/jonafit/coach-platform/internal/diet"
	"github.com/jonafit/coach-platform/internal/models"
	"github.com/jonafit/coach-platform/internal/workout"
)

const validWorkoutJSON = `{
  "name": "Treino A",
  "estimated_duration": 45,
  "difficulty_level": 2,
  "exercises": [
    {"name": "Agachamento", "type": "strength", "muscle_groups": ["pernas"], "sets": 4, "reps": "10", "rest": "90", "equipment": []}
  ]
}`

type fakeProvider struct {
	reply string
	err   error
}

func (p *fakeProvider) Chat(ctx context.Context, messages []ai.Message, opts ai.Options) (string, error) {
	_ = ctx
	_ = messages
	_ = opts
	if p.err != nil {
		return "", p.err
	}
	return p.reply, nil
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(gormsqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{}, &Job{},
		&workout.Plan{}, &diet.Plan{}, &diet.Meal{},
		&billing.Plan{}, &billing.Subscription{},
	); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func newRunner(db *gorm.DB, prov ai.Provider) *Runner {
	billingRepo := billing.NewRepo(db)
	return NewRunner(
		db,
		NewRepo(db),
		workout.NewService(workout.NewRepo(db), billingRepo, prov),
		diet.NewService(diet.NewRepo(db), billingRepo, prov),
	)
}

func seedUserWithQuota(t *testing.T, db *gorm.DB, userID string, limit int64) {
	t.Helper()
	if err := db.Create(&models.User{
		ID:           userID,
		Email:        userID + "@test.local",
		Username:     userID,
		PasswordHash: "x",
		Role:         models.RoleStudent,
	}).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	repo := billing.NewRepo(db)
	plan := &billing.Plan{Name: "basic", Type: "monthly", AIRequestsLimit: limit}
	if err := repo.CreatePlan(context.Background(), plan); err != nil {
		t.Fatalf("create plan: %v", err)
	}
	if err := repo.CreateSubscription(context.Background(), &billing.Subscription{
		UserID: userID, PlanID: plan.ID, Status: billing.StatusActive,
	}); err != nil {
		t.Fatalf("create subscription: %v", err)
	}
}

func TestRun_WorkoutJobSucceeds(t *testing.T) {
	db := openTestDB(t)
	seedUserWithQuota(t, db, "user-1", 10)
	repo := NewRepo(db)

	job := &Job{
		ID:      common.NewULID(),
		UserID:  "user-1",
		Kind:    KindWorkout,
		Request: `{"goals": "hipertrofia", "timeAvailable": 45}`,
		Status:  StatusQueued,
	}
	if err := repo.Create(context.Background(), job); err != nil {
		t.Fatalf("create job: %v", err)
	}

	runner := newRunner(db, &fakeProvider{reply: validWorkoutJSON})
	if err := runner.Run(context.Background(), job.ID); err != nil {
		t.Fatalf("run: %v", err)
	}

	got, err := repo.GetByID(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("get job: %v", err)
	}
	if got.Status != StatusSucceeded {
		t.Fatalf("status = %q, want succeeded", got.Status)
	}
	if got.ResultPlanID == nil || *got.ResultPlanID == "" {
		t.Fatalf("expected result plan id")
	}

	var plan workout.Plan
	if err := db.First(&plan, "id = ?", *got.ResultPlanID).Error; err != nil {
		t.Fatalf("load result plan: %v", err)
	}
	if plan.UserID != "user-1" {
		t.Fatalf("plan owner = %q, want user-1", plan.UserID)
	}
}

func TestRun_FailedGenerationMarksJobFailed(t *testing.T) {
	db := openTestDB(t)
	seedUserWithQuota(t, db, "user-1", 10)
	repo := NewRepo(db)

	job := &Job{
		ID:      common.NewULID(),
		UserID:  "user-1",
		Kind:    KindDiet,
		Request: `{"goal": "maintenance"}`,
		Status:  StatusQueued,
	}
	if err := repo.Create(context.Background(), job); err != nil {
		t.Fatalf("create job: %v", err)
	}

	runner := newRunner(db, &fakeProvider{reply: "not json"})
	if err := runner.Run(context.Background(), job.ID); err == nil {
		t.Fatalf("expected run to report failure")
	}

	got, err := repo.GetByID(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("get job: %v", err)
	}
	if got.Status != StatusFailed {
		t.Fatalf("status = %q, want failed", got.Status)
	}
	if got.Error == nil || *got.Error == "" {
		t.Fatalf("expected error message on job")
	}
}

func TestRun_RedeliveryAfterSuccessIsNoop(t *testing.T) {
	db := openTestDB(t)
	seedUserWithQuota(t, db, "user-1", 10)
	repo := NewRepo(db)

	job := &Job{
		ID:      common.NewULID(),
		UserID:  "user-1",
		Kind:    KindWorkout,
		Request: `{"goals": "hipertrofia"}`,
		Status:  StatusQueued,
	}
	if err := repo.Create(context.Background(), job); err != nil {
		t.Fatalf("create job: %v", err)
	}

	runner := newRunner(db, &fakeProvider{reply: validWorkoutJSON})
	if err := runner.Run(context.Background(), job.ID); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if err := runner.Run(context.Background(), job.ID); err != nil {
		t.Fatalf("redelivered run: %v", err)
	}

	var count int64
	db.Model(&workout.Plan{}).Count(&count)
	if count != 1 {
		t.Fatalf("expected a single plan after redelivery, got %d", count)
	}
}

func TestCreateOrGetExisting_Idempotency(t *testing.T) {
	db := openTestDB(t)
	repo := NewRepo(db)

	key := "client-key-1"
	first := &Job{
		ID:             common.NewULID(),
		UserID:         "user-1",
		Kind:           KindWorkout,
		Request:        `{}`,
		IdempotencyKey: &key,
		Status:         StatusQueued,
	}
	created, isNew, err := repo.CreateOrGetExisting(context.Background(), first)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !isNew || created.ID != first.ID {
		t.Fatalf("expected fresh job, got isNew=%v id=%s", isNew, created.ID)
	}

	dup := &Job{
		ID:             common.NewULID(),
		UserID:         "user-1",
		Kind:           KindWorkout,
		Request:        `{}`,
		IdempotencyKey: &key,
		Status:         StatusQueued,
	}
	got, isNew, err := repo.CreateOrGetExisting(context.Background(), dup)
	if err != nil {
		t.Fatalf("duplicate create: %v", err)
	}
	if isNew || got.ID != first.ID {
		t.Fatalf("expected existing job back, got isNew=%v id=%s", isNew, got.ID)
	}

	// same key, different user: no clash
	other := &Job{
		ID:             common.NewULID(),
		UserID:         "user-2",
		Kind:           KindWorkout,
		Request:        `{}`,
		IdempotencyKey: &key,
		Status:         StatusQueued,
	}
	_, isNew, err = repo.CreateOrGetExisting(context.Background(), other)
	if err != nil {
		t.Fatalf("other user create: %v", err)
	}
	if !isNew {
		t.Fatalf("key should be scoped per user")
	}
}
