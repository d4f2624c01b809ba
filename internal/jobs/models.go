package jobs

import "time"

type Status string

const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

type Kind string

const (
	KindWorkout Kind = "workout"
	KindDiet    Kind = "diet"
)

func ValidKind(k Kind) bool { return k == KindWorkout || k == KindDiet }

// Job is one queued generation request. Request holds the JSON-encoded
// workout or diet request; ResultPlanID is filled on success.
type Job struct {
	ID string `gorm:"primaryKey;size:26" json:"id"` // ULID length

	UserID string `gorm:"type:varchar(36);not null;index:uniq_user_idempo,unique" json:"-"`
	Kind   Kind   `gorm:"type:varchar(16);not null" json:"kind"`

	Request string `gorm:"type:text;not null" json:"-"`

	// NULL keys never collide, so jobs without a key are always created.
	IdempotencyKey *string `gorm:"type:varchar(128);index:uniq_user_idempo,unique" json:"-"`

	Status Status `gorm:"type:varchar(16);index;not null" json:"status"`

	ResultPlanID *string `gorm:"type:varchar(36)" json:"result_plan_id,omitempty"`
	Error        *string `gorm:"type:text" json:"error,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Job) TableName() string { return "generation_jobs" }
