package workout

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
// content did not parse or validate as a workout plan.
var ErrGenerationFailed = errors.New("workout generation failed")

const (
	genTemperature = 0.7
	genMaxTokens   = 2000
)

type Service struct {
	repo     *Repo
	billing  *billing.Repo
	provider ai.Provider
}

func NewService(repo *Repo, billingRepo *billing.Repo, provider ai.Provider) *Service {
	return &Service{repo: repo, billing: billingRepo, provider: provider}
}

// generatedPlan is the shape the model is contracted to return.
type generatedPlan struct {
	Name              string     `json:"name"`
	Description       string     `json:"description"`
	EstimatedDuration int        `json:"estimated_duration"`
	DifficultyLevel   int        `json:"difficulty_level"`
	Exercises         []Exercise `json:"exercises"`
}

func parsePlan(content string) (*generatedPlan, error) {
	var gp generatedPlan
	if err := json.Unmarshal([]byte(ai.CleanJSON(content)), &gp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	if gp.Name == "" || len(gp.Exercises) == 0 {
		return nil, fmt.Errorf("%w: missing name or exercises", ErrGenerationFailed)
	}
	for _, ex := range gp.Exercises {
		if ex.Name == "" || ex.Sets <= 0 {
			return nil, fmt.Errorf("%w: invalid exercise %q", ErrGenerationFailed, ex.Name)
		}
	}
	return &gp, nil
}

// Generate runs the full gateway flow: authorization, quota precheck,
// prompt, model call, parse, then one transaction that reserves a quota
// unit and inserts the plan. Nothing persists on any failure.
func (s *Service) Generate(ctx context.Context, caller *models.User, req Request) (*Plan, billing.Usage, error) {
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

	prompt := buildPrompt(req)
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
		UserID:            targetUserID,
		Name:              gp.Name,
		Description:       gp.Description,
		Exercises:         gp.Exercises,
		EstimatedDuration: gp.EstimatedDuration,
		DifficultyLevel:   gp.DifficultyLevel,
		GeneratedByAI:     true,
		AIPrompt:          prompt,
		StartDate:         time.Now().Truncate(24 * time.Hour),
	}
	if targetUserID != caller.ID {
		instructorID := caller.ID
		plan.InstructorID = &instructorID
	}

	err = s.repo.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := billing.ReserveRequest(tx, targetUserID); err != nil {
			return err
		}
		return tx.Create(plan).Error
	})
	if err != nil {
		return nil, billing.Usage{}, err
	}

	usage, err := s.billing.Usage(ctx, targetUserID)
	if err != nil {
		return nil, billing.Usage{}, err
	}
	return plan, usage, nil
}

// Get returns a plan the caller is allowed to read: the owner, the
// instructor who created it, or an admin.
func (s *Service) Get(ctx context.Context, caller *models.User, id string) (*Plan, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canRead(caller, p.UserID, p.InstructorID) {
		return nil, common.ErrForbidden
	}
	return p, nil
}

func (s *Service) ListOwn(ctx context.Context, userID string, limit int) ([]Plan, error) {
	return s.repo.ListByUser(ctx, userID, limit)
}

func canRead(caller *models.User, ownerID string, instructorID *string) bool {
	if caller.Role == models.RoleAdmin || caller.ID == ownerID {
		return true
	}
	return instructorID != nil && *instructorID == caller.ID
}
