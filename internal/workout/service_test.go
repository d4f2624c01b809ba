package workout

import (
	"context"
	"errors"
	"strings"
	"testing"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/jonafit/coach-platform/internal/ai"
	"github.com/jonafit/coach-platform/internal/billing"
	"github.com/jonafit/coach-platform/internal/common"
	"github.com/jonafit/coach-platform/internal/models"
)

const validWorkoutJSON = `{
  "name": "Treino A - Hipertrofia",
  "description": "treino de peito e tríceps",
  "estimated_duration": 60,
  "difficulty_level": 3,
  "exercises": [
    {
      "name": "Supino reto",
      "type": "strength",
      "muscle_groups": ["peito", "tríceps"],
      "sets": 4,
      "reps": "8-12",
      "rest": 90,
      "instructions": "Desça a barra até o peito",
      "equipment": ["barra", "banco"]
    },
    {
      "name": "Crucifixo",
      "type": "strength",
      "muscle_groups": ["peito"],
      "sets": 3,
      "reps": 12,
      "rest": "60",
      "instructions": "Controle a descida",
      "equipment": ["halteres"]
    }
  ]
}`

type fakeProvider struct {
	reply  string
	err    error
	last   []ai.Message
	called int
}

func (p *fakeProvider) Chat(ctx context.Context, messages []ai.Message, opts ai.Options) (string, error) {
	_ = ctx
	_ = opts
	p.called++
	p.last = append([]ai.Message(nil), messages...)
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
	if err := db.AutoMigrate(&Plan{}, &billing.Plan{}, &billing.Subscription{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func seedSubscription(t *testing.T, db *gorm.DB, userID string, limit, used int64) {
	t.Helper()
	repo := billing.NewRepo(db)
	plan := &billing.Plan{Name: "basic", Type: "monthly", AIRequestsLimit: limit}
	if err := repo.CreatePlan(context.Background(), plan); err != nil {
		t.Fatalf("create plan: %v", err)
	}
	sub := &billing.Subscription{UserID: userID, PlanID: plan.ID, Status: billing.StatusActive, AIRequestsUsed: used}
	if err := repo.CreateSubscription(context.Background(), sub); err != nil {
		t.Fatalf("create subscription: %v", err)
	}
}

func student(id string) *models.User {
	return &models.User{ID: id, Role: models.RoleStudent}
}

func TestGenerate_PersistsPlan(t *testing.T) {
	db := openTestDB(t)
	seedSubscription(t, db, "user-1", 10, 0)

	prov := &fakeProvider{reply: validWorkoutJSON}
	svc := NewService(NewRepo(db), billing.NewRepo(db), prov)

	plan, usage, err := svc.Generate(context.Background(), student("user-1"), Request{
		Goals:         "hipertrofia",
		Experience:    "intermediário",
		Equipment:     []string{"barra", "halteres"},
		TimeAvailable: 60,
		TargetMuscles: []string{"peito"},
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if plan.ID == "" || !plan.GeneratedByAI {
		t.Fatalf("expected persisted AI plan, got %+v", plan)
	}
	if len(plan.Exercises) != 2 {
		t.Fatalf("expected 2 exercises, got %d", len(plan.Exercises))
	}
	if usage.Used != 1 || usage.Limit != 10 {
		t.Fatalf("usage = %d/%d, want 1/10", usage.Used, usage.Limit)
	}

	// mixed string/number reps and rest both land as strings
	got, err := svc.Get(context.Background(), student("user-1"), plan.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got.Exercises[0].Reps) != "8-12" || string(got.Exercises[1].Reps) != "12" {
		t.Fatalf("unexpected reps: %q %q", got.Exercises[0].Reps, got.Exercises[1].Reps)
	}
	if string(got.Exercises[0].Rest) != "90" || string(got.Exercises[1].Rest) != "60" {
		t.Fatalf("unexpected rest: %q %q", got.Exercises[0].Rest, got.Exercises[1].Rest)
	}
}

func TestGenerate_PromptCarriesConstraints(t *testing.T) {
	db := openTestDB(t)
	seedSubscription(t, db, "user-1", 10, 0)

	prov := &fakeProvider{reply: validWorkoutJSON}
	svc := NewService(NewRepo(db), billing.NewRepo(db), prov)

	_, _, err := svc.Generate(context.Background(), student("user-1"), Request{
		Goals:         "hipertrofia",
		Experience:    "iniciante",
		Equipment:     []string{"halteres"},
		TimeAvailable: 45,
		TargetMuscles: []string{"costas"},
		Restrictions:  "lesão no ombro",
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if len(prov.last) != 2 || prov.last[0].Role != "system" {
		t.Fatalf("expected system+user messages, got %+v", prov.last)
	}
	user := prov.last[1].Content
	for _, want := range []string{"hipertrofia", "iniciante", "halteres", "45 minutos", "costas", "lesão no ombro"} {
		if !strings.Contains(user, want) {
			t.Fatalf("prompt missing %q:\n%s", want, user)
		}
	}
}

func TestGenerate_QuotaExhausted(t *testing.T) {
	db := openTestDB(t)
	seedSubscription(t, db, "user-1", 1, 1)

	prov := &fakeProvider{reply: validWorkoutJSON}
	svc := NewService(NewRepo(db), billing.NewRepo(db), prov)

	_, _, err := svc.Generate(context.Background(), student("user-1"), Request{Goals: "hipertrofia"})
	if !errors.Is(err, billing.ErrQuotaExceeded) {
		t.Fatalf("expected ErrQuotaExceeded, got %v", err)
	}
	if prov.called != 0 {
		t.Fatalf("provider should not be called when quota is exhausted")
	}
}

func TestGenerate_UpstreamErrorConsumesNoQuota(t *testing.T) {
	db := openTestDB(t)
	seedSubscription(t, db, "user-1", 10, 0)

	prov := &fakeProvider{err: ai.ErrUpstream}
	svc := NewService(NewRepo(db), billing.NewRepo(db), prov)

	_, _, err := svc.Generate(context.Background(), student("user-1"), Request{Goals: "hipertrofia"})
	if !errors.Is(err, ai.ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}

	u, err := billing.NewRepo(db).Usage(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("usage: %v", err)
	}
	if u.Used != 0 {
		t.Fatalf("usage.Used = %d, want 0", u.Used)
	}
}

func TestGenerate_MalformedOutputLeavesNoRows(t *testing.T) {
	db := openTestDB(t)
	seedSubscription(t, db, "user-1", 10, 0)

	prov := &fakeProvider{reply: `{"name": "Treino", "exercises": []}`}
	svc := NewService(NewRepo(db), billing.NewRepo(db), prov)

	_, _, err := svc.Generate(context.Background(), student("user-1"), Request{Goals: "hipertrofia"})
	if !errors.Is(err, ErrGenerationFailed) {
		t.Fatalf("expected ErrGenerationFailed, got %v", err)
	}

	var count int64
	db.Model(&Plan{}).Count(&count)
	if count != 0 {
		t.Fatalf("expected no plan rows, got %d", count)
	}
}

func TestGenerate_StudentCannotTargetOthers(t *testing.T) {
	db := openTestDB(t)
	seedSubscription(t, db, "victim", 10, 0)

	prov := &fakeProvider{reply: validWorkoutJSON}
	svc := NewService(NewRepo(db), billing.NewRepo(db), prov)

	_, _, err := svc.Generate(context.Background(), student("user-1"), Request{UserID: "victim", Goals: "hipertrofia"})
	if !errors.Is(err, common.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestListOwn_NewestFirst(t *testing.T) {
	db := openTestDB(t)
	seedSubscription(t, db, "user-1", 10, 0)

	prov := &fakeProvider{reply: validWorkoutJSON}
	svc := NewService(NewRepo(db), billing.NewRepo(db), prov)

	for i := 0; i < 3; i++ {
		if _, _, err := svc.Generate(context.Background(), student("user-1"), Request{Goals: "hipertrofia"}); err != nil {
			t.Fatalf("generate %d: %v", i, err)
		}
	}

	plans, err := svc.ListOwn(context.Background(), "user-1", 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(plans) != 2 {
		t.Fatalf("expected limit to apply, got %d plans", len(plans))
	}
}
