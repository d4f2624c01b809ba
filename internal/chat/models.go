package chat

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	TypeGeneral   = "general"
	TypeWorkout   = "workout"
	TypeNutrition = "nutrition"
	TypeProgress  = "progress"
)

func ValidType(t string) bool {
	switch t {
	case TypeGeneral, TypeWorkout, TypeNutrition, TypeProgress:
		return true
	}
	return false
}

type Conversation struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID    string    `gorm:"type:varchar(36);index;not null" json:"-"`
	Title     string    `gorm:"type:varchar(64);not null" json:"title"`
	Type      string    `gorm:"type:varchar(16);not null;default:general" json:"conversation_type"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Conversation) TableName() string { return "ai_conversations" }

func (c *Conversation) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// Message rows are append-only; the autoincrement id is the append
// order within a conversation.
type Message struct {
	ID             uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	ConversationID string    `gorm:"type:varchar(36);index;not null" json:"conversation_id"`
	Role           string    `gorm:"type:varchar(16);not null" json:"role"`
	Content        string    `gorm:"type:text;not null" json:"content"`
	CreatedAt      time.Time `json:"created_at"`
}

func (Message) TableName() string { return "ai_messages" }
