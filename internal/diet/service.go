package diet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/jonafit/coach-platform/internal/ai"
	"github.com/jonafit/coach-platform/internal/billing"
	"github.com/jonafit/coach-platform/internal/common"
	"github.com/jonafit/coach-platform/internal/models"
)

// ErrGenerationFailed is returned when the model responded but its
// content did not parse or validate as a diet plan.
var ErrGenerationFailed = errors.New("diet generation failed")

const (
	genTemperature = 0.7
	genMaxTokens   = 3000
)

type Service struct {
	repo     *Repo
	billing  *billing.Repo
	provider ai.Provider
}

func NewService(repo *Repo, billingRepo *billing.Repo, provider ai.Provider) *Service {
	return &Service{repo: repo, billing: billingRepo, provider: provider}
}

type generatedMeal struct {
	Category        string       `json:"category"`
	Name            string       `json:"name"`
	SuggestedTime   string       `json:"suggested_time"`
	Ingredients     []Ingredient `json:"ingredients"`
	Calories        float64      `json:"calories"`
	Protein         float64      `json:"protein"`
	Carbs           float64      `json:"carbs"`
	Fat             float64      `json:"fat"`
	PreparationTime int          `json:"preparation_time"`
	Instructions    string       `json:"instructions"`
}

type generatedPlan struct {
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	DailyCalories int             `json:"daily_calories"`
	DailyProtein  float64         `json:"daily_protein"`
	DailyCarbs    float64         `json:"daily_carbs"`
	DailyFat      float64         `json:"daily_fat"`
	Meals         []generatedMeal `json:"meals"`
}

func parsePlan(content string) (*generatedPlan, error) {
	var gp generatedPlan
	if err := json.Unmarshal([]byte(ai.CleanJSON(content)), &gp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	if gp.Name == "" || len(gp.Meals) == 0 || gp.DailyCalories <= 0 {
		return nil, fmt.Errorf("%w: missing name, meals or calories", ErrGenerationFailed)
	}
	for _, m := range gp.Meals {
		if m.Name == "" || m.Category == "" {
			return nil, fmt.Errorf("%w: invalid meal %q", ErrGenerationFailed, m.Name)
		}
	}
	return &gp, nil
}

// Result bundles the persisted plan with its meal rows; diet responses
// always carry both.
type Result struct {
	Plan  *Plan  `json:"plan"`
	Meals []Meal `json:"meals"`
}

// Generate runs the gateway flow for diets: authorization, quota
// precheck, calorie math, prompt, model call, parse, then one
// transaction reserving a quota unit and inserting the plan plus its
// meal rows. Nothing persists on any failure.
func (s *Service) Generate(ctx context.Context, caller *models.User, req Request) (*Result, billing.Usage, error) {
	targetUserID := req.UserID
	if targetUserID == "" {
		targetUserID = caller.ID
	}
	if targetUserID != caller.ID && caller.Role == models.RoleStudent {
		return nil, billing.Usage{}, common.ErrForbidden
	}

	if err := s.billing.CheckAvailable(ctx, targetUserID); err != nil {
		return nil, billing.Usage{}, err
	}

	in := resolveInputs(req)
	prompt := buildPrompt(req, in)
	content, err := s.provider.Chat(ctx, []ai.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: prompt},
	}, ai.Options{Temperature: genTemperature, MaxTokens: genMaxTokens})
	if err != nil {
		return nil, billing.Usage{}, err
	}

	gp, err := parsePlan(content)
	if err != nil {
		return nil, billing.Usage{}, err
	}

	plan := &Plan{
		UserID:        targetUserID,
		Name:          gp.Name,
		Description:   gp.Description,
		DailyCalories: gp.DailyCalories,
		DailyProtein:  gp.DailyProtein,
		DailyCarbs:    gp.DailyCarbs,
		DailyFat:      gp.DailyFat,
		GeneratedByAI: true,
		AIPrompt:      prompt,
		StartDate:     time.Now().Truncate(24 * time.Hour),
	}
	if targetUserID != caller.ID {
		instructorID := caller.ID
		plan.InstructorID = &instructorID
	}

	meals := make([]Meal, 0, len(gp.Meals))
	err = s.repo.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := billing.ReserveRequest(tx, targetUserID); err != nil {
			return err
		}
		if err := tx.Create(plan).Error; err != nil {
			return err
		}
		for _, gm := range gp.Meals {
			meal := Meal{
				DietPlanID:      plan.ID,
				Category:        gm.Category,
				Name:            gm.Name,
				SuggestedTime:   gm.SuggestedTime,
				Ingredients:     gm.Ingredients,
				Calories:        gm.Calories,
				Protein:         gm.Protein,
				Carbs:           gm.Carbs,
				Fat:             gm.Fat,
				PreparationTime: gm.PreparationTime,
				Instructions:    gm.Instructions,
			}
			if err := tx.Create(&meal).Error; err != nil {
				return err
			}
			meals = append(meals, meal)
		}
		return nil
	})
	if err != nil {
		return nil, billing.Usage{}, err
	}

	usage, err := s.billing.Usage(ctx, targetUserID)
	if err != nil {
		return nil, billing.Usage{}, err
	}
	return &Result{Plan: plan, Meals: meals}, usage, nil
}

// Get returns a plan with its meals for the owner, its instructor, or
// an admin.
func (s *Service) Get(ctx context.Context, caller *models.User, id string) (*Result, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if caller.Role != models.RoleAdmin && caller.ID != p.UserID &&
		(p.InstructorID == nil || *p.InstructorID != caller.ID) {
		return nil, common.ErrForbidden
	}
	meals, err := s.repo.MealsByPlan(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	return &Result{Plan: p, Meals: meals}, nil
}
