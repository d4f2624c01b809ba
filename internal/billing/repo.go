package billing

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// ErrQuotaExceeded is returned when a user has no active subscription or
// the subscription's request counter has reached its plan limit. Users
// without a subscription row get zero quota.
var ErrQuotaExceeded = errors.New("ai request quota exceeded")

type Usage struct {
	Used  int64 `json:"used"`
	Limit int64 `json:"limit"`
}

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) CreatePlan(ctx context.Context, p *Plan) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *Repo) CreateSubscription(ctx context.Context, s *Subscription) error {
	return r.db.WithContext(ctx).Create(s).Error
}

// ActiveSubscription returns the active subscription row for the user,
// or gorm.ErrRecordNotFound.
func (r *Repo) ActiveSubscription(ctx context.Context, userID string) (*Subscription, error) {
	var s Subscription
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, StatusActive).
		First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// Usage reports the current counter and plan limit for the user.
func (r *Repo) Usage(ctx context.Context, userID string) (Usage, error) {
	sub, err := r.ActiveSubscription(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Usage{}, ErrQuotaExceeded
		}
		return Usage{}, err
	}
	var plan Plan
	if err := r.db.WithContext(ctx).First(&plan, "id = ?", sub.PlanID).Error; err != nil {
		return Usage{}, err
	}
	return Usage{Used: sub.AIRequestsUsed, Limit: plan.AIRequestsLimit}, nil
}

// CheckAvailable is the advisory precheck run before calling the model,
// so an exhausted user never pays for an upstream call. The enforcement
// point is ReserveRequest.
func (r *Repo) CheckAvailable(ctx context.Context, userID string) error {
	u, err := r.Usage(ctx, userID)
	if err != nil {
		return err
	}
	if u.Used >= u.Limit {
		return ErrQuotaExceeded
	}
	return nil
}

// ReserveRequest consumes one AI request with a single conditional
// UPDATE: the increment only applies while the counter is below the plan
// limit, so concurrent requests cannot overshoot. It must run on the
// same transaction handle as the generated rows; rolling the transaction
// back releases the reservation.
func ReserveRequest(tx *gorm.DB, userID string) error {
	res := tx.Exec(`
		UPDATE user_subscriptions
		SET ai_requests_used = ai_requests_used + 1
		WHERE user_id = ? AND status = ?
		  AND ai_requests_used < (
			SELECT ai_requests_limit FROM subscription_plans
			WHERE subscription_plans.id = user_subscriptions.plan_id
		  )`, userID, StatusActive)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrQuotaExceeded
	}
	return nil
}
