package diet

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

const validDietJSON = `{
  "name": "Plano Alimentar - Emagrecimento",
  "description": "plano de 1 dia",
  "daily_calories": 1896,
  "daily_protein": 140,
  "daily_carbs": 180,
  "daily_fat": 60,
  "meals": [
    {
      "category": "breakfast",
      "name": "Omelete com aveia",
      "suggested_time": "07:30",
      "ingredients": [{"name": "ovo", "quantity": "3", "unit": "unidades"}],
      "calories": 450,
      "protein": 30,
      "carbs": 35,
      "fat": 18,
      "preparation_time": 15,
      "instructions": "Bata os ovos e frite"
    },
    {
      "category": "lunch",
      "name": "Frango com arroz integral",
      "suggested_time": "12:30",
      "ingredients": [{"name": "frango", "quantity": "150", "unit": "g"}],
      "calories": 650,
      "protein": 45,
      "carbs": 60,
      "fat": 20,
      "preparation_time": 30,
      "instructions": "Grelhe o frango"
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
	if err := db.AutoMigrate(&Plan{}, &Meal{}, &billing.Plan{}, &billing.Subscription{}); err != nil {
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

func TestGenerate_PersistsPlanAndMeals(t *testing.T) {
	db := openTestDB(t)
	seedSubscription(t, db, "user-1", 10, 0)

	prov := &fakeProvider{reply: validDietJSON}
	svc := NewService(NewRepo(db), billing.NewRepo(db), prov)

	res, usage, err := svc.Generate(context.Background(), student("user-1"), Request{
		Goal:          "emagrecimento",
		ActivityLevel: "sedentario",
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if res.Plan.ID == "" || !res.Plan.GeneratedByAI {
		t.Fatalf("expected persisted AI plan, got %+v", res.Plan)
	}
	if res.Plan.DailyCalories != 1896 {
		t.Fatalf("daily calories = %d, want 1896", res.Plan.DailyCalories)
	}
	if len(res.Meals) != 2 {
		t.Fatalf("expected 2 meals, got %d", len(res.Meals))
	}
	if usage.Used != 1 {
		t.Fatalf("usage.Used = %d, want 1", usage.Used)
	}

	var count int64
	if err := db.Model(&Meal{}).Where("diet_plan_id = ?", res.Plan.ID).Count(&count).Error; err != nil {
		t.Fatalf("count meals: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 meal rows, got %d", count)
	}
}

func TestGenerate_PromptCarriesTargetCalories(t *testing.T) {
	db := openTestDB(t)
	seedSubscription(t, db, "user-1", 10, 0)

	prov := &fakeProvider{reply: validDietJSON}
	svc := NewService(NewRepo(db), billing.NewRepo(db), prov)

	w, h, age := 80.0, 175.0, 25
	_, _, err := svc.Generate(context.Background(), student("user-1"), Request{
		Goal:          "weight_loss",
		WeightKg:      &w,
		HeightCm:      &h,
		Age:           &age,
		Gender:        "male",
		ActivityLevel: "sedentary",
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(prov.last) != 2 || prov.last[0].Role != "system" {
		t.Fatalf("expected system+user messages, got %+v", prov.last)
	}
	if !strings.Contains(prov.last[1].Content, "Calorias alvo: 1896 kcal/dia") {
		t.Fatalf("prompt missing computed calorie target:\n%s", prov.last[1].Content)
	}
}

func TestGenerate_QuotaExhausted(t *testing.T) {
	db := openTestDB(t)
	seedSubscription(t, db, "user-1", 2, 2)

	prov := &fakeProvider{reply: validDietJSON}
	svc := NewService(NewRepo(db), billing.NewRepo(db), prov)

	_, _, err := svc.Generate(context.Background(), student("user-1"), Request{Goal: "maintenance"})
	if !errors.Is(err, billing.ErrQuotaExceeded) {
		t.Fatalf("expected ErrQuotaExceeded, got %v", err)
	}
	if prov.called != 0 {
		t.Fatalf("provider should not be called when quota is exhausted")
	}
}

func TestGenerate_NoSubscription(t *testing.T) {
	db := openTestDB(t)

	prov := &fakeProvider{reply: validDietJSON}
	svc := NewService(NewRepo(db), billing.NewRepo(db), prov)

	_, _, err := svc.Generate(context.Background(), student("user-1"), Request{Goal: "maintenance"})
	if !errors.Is(err, billing.ErrQuotaExceeded) {
		t.Fatalf("expected ErrQuotaExceeded without subscription, got %v", err)
	}
}

func TestGenerate_MalformedOutputLeavesNoRows(t *testing.T) {
	db := openTestDB(t)
	seedSubscription(t, db, "user-1", 10, 0)

	prov := &fakeProvider{reply: "sorry, I cannot do that"}
	svc := NewService(NewRepo(db), billing.NewRepo(db), prov)

	_, _, err := svc.Generate(context.Background(), student("user-1"), Request{Goal: "maintenance"})
	if !errors.Is(err, ErrGenerationFailed) {
		t.Fatalf("expected ErrGenerationFailed, got %v", err)
	}

	var plans, meals int64
	db.Model(&Plan{}).Count(&plans)
	db.Model(&Meal{}).Count(&meals)
	if plans != 0 || meals != 0 {
		t.Fatalf("expected no rows, got plans=%d meals=%d", plans, meals)
	}

	// failed generation must not consume quota
	u, err := billing.NewRepo(db).Usage(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("usage: %v", err)
	}
	if u.Used != 0 {
		t.Fatalf("usage.Used = %d, want 0", u.Used)
	}
}

func TestGenerate_FencedJSONIsAccepted(t *testing.T) {
	db := openTestDB(t)
	seedSubscription(t, db, "user-1", 10, 0)

	prov := &fakeProvider{reply: "```json\n" + validDietJSON + "\n```"}
	svc := NewService(NewRepo(db), billing.NewRepo(db), prov)

	res, _, err := svc.Generate(context.Background(), student("user-1"), Request{Goal: "maintenance"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if res.Plan.Name != "Plano Alimentar - Emagrecimento" {
		t.Fatalf("unexpected plan name %q", res.Plan.Name)
	}
}

func TestGenerate_StudentCannotTargetOthers(t *testing.T) {
	db := openTestDB(t)
	seedSubscription(t, db, "victim", 10, 0)

	prov := &fakeProvider{reply: validDietJSON}
	svc := NewService(NewRepo(db), billing.NewRepo(db), prov)

	_, _, err := svc.Generate(context.Background(), student("user-1"), Request{UserID: "victim", Goal: "maintenance"})
	if !errors.Is(err, common.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if prov.called != 0 {
		t.Fatalf("provider should not be called")
	}
}

func TestGenerate_InstructorTargetsStudent(t *testing.T) {
	db := openTestDB(t)
	seedSubscription(t, db, "student-1", 10, 0)

	prov := &fakeProvider{reply: validDietJSON}
	svc := NewService(NewRepo(db), billing.NewRepo(db), prov)

	instructor := &models.User{ID: "coach-1", Role: models.RoleInstructor}
	res, usage, err := svc.Generate(context.Background(), instructor, Request{UserID: "student-1", Goal: "maintenance"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if res.Plan.UserID != "student-1" {
		t.Fatalf("plan owner = %q, want student-1", res.Plan.UserID)
	}
	if res.Plan.InstructorID == nil || *res.Plan.InstructorID != "coach-1" {
		t.Fatalf("expected instructor provenance, got %+v", res.Plan.InstructorID)
	}
	// the student's quota is consumed, not the instructor's
	if usage.Used != 1 {
		t.Fatalf("usage.Used = %d, want 1", usage.Used)
	}
}

func TestGet_OwnershipChecks(t *testing.T) {
	db := openTestDB(t)
	seedSubscription(t, db, "user-1", 10, 0)

	prov := &fakeProvider{reply: validDietJSON}
	svc := NewService(NewRepo(db), billing.NewRepo(db), prov)

	res, _, err := svc.Generate(context.Background(), student("user-1"), Request{Goal: "maintenance"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	got, err := svc.Get(context.Background(), student("user-1"), res.Plan.ID)
	if err != nil {
		t.Fatalf("get own plan: %v", err)
	}
	if len(got.Meals) != 2 {
		t.Fatalf("expected meals in result, got %d", len(got.Meals))
	}

	if _, err := svc.Get(context.Background(), student("intruder"), res.Plan.ID); !errors.Is(err, common.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for foreign plan, got %v", err)
	}

	admin := &models.User{ID: "root", Role: models.RoleAdmin}
	if _, err := svc.Get(context.Background(), admin, res.Plan.ID); err != nil {
		t.Fatalf("admin read: %v", err)
	}
}
