package billing

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Plan struct {
	ID              string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name            string    `gorm:"type:varchar(64);not null" json:"name"`
	Type            string    `gorm:"type:varchar(32);not null" json:"type"`
	Price           float64   `json:"price"`
	AIRequestsLimit int64     `gorm:"not null;default:0" json:"ai_requests_limit"`
	IsActive        bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (Plan) TableName() string { return "subscription_plans" }

func (p *Plan) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

const (
	StatusActive   = "active"
	StatusCanceled = "canceled"
	StatusExpired  = "expired"
)

type Subscription struct {
	ID             string     `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID         string     `gorm:"type:varchar(36);index;not null" json:"user_id"`
	PlanID         string     `gorm:"type:varchar(36);not null" json:"plan_id"`
	Status         string     `gorm:"type:varchar(16);index;not null;default:active" json:"status"`
	AIRequestsUsed int64      `gorm:"not null;default:0" json:"ai_requests_used"`
	StartedAt      time.Time  `json:"started_at"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (Subscription) TableName() string { return "user_subscriptions" }

func (s *Subscription) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.StartedAt.IsZero() {
		s.StartedAt = time.Now()
	}
	return nil
}
