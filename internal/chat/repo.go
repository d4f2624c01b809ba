package chat

import (
	"context"

	"gorm.io/gorm"

	"github.com/jonafit/coach-platform/internal/models"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) DB() *gorm.DB { return r.db }

func (r *Repo) GetConversation(ctx context.Context, id string) (*Conversation, error) {
	var c Conversation
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *Repo) ListConversations(ctx context.Context, userID string, limit int) ([]Conversation, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var convs []Conversation
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Limit(limit).
		Find(&convs).Error; err != nil {
		return nil, err
	}
	return convs, nil
}

// RecentMessages returns the most recent messages of a conversation in
// chronological (append) order.
func (r *Repo) RecentMessages(ctx context.Context, conversationID string, limit int) ([]Message, error) {
	if limit <= 0 {
		limit = 20
	}
	var desc []Message
	if err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("id DESC").
		Limit(limit).
		Find(&desc).Error; err != nil {
		return nil, err
	}
	// reverse to ASC (oldest -> newest)
	asc := make([]Message, 0, len(desc))
	for i := len(desc) - 1; i >= 0; i-- {
		asc = append(asc, desc[i])
	}
	return asc, nil
}

// ListMessages pages backwards through history; the returned slice is in
// chronological order, nextBeforeID addresses the page before it.
func (r *Repo) ListMessages(ctx context.Context, conversationID string, limit int, beforeID uint64) ([]Message, uint64, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	q := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("id DESC").
		Limit(limit)
	if beforeID > 0 {
		q = q.Where("id < ?", beforeID)
	}
	var desc []Message
	if err := q.Find(&desc).Error; err != nil {
		return nil, 0, err
	}
	var nextBeforeID uint64
	if len(desc) > 0 {
		nextBeforeID = desc[len(desc)-1].ID
	}
	asc := make([]Message, 0, len(desc))
	for i := len(desc) - 1; i >= 0; i-- {
		asc = append(asc, desc[i])
	}
	return asc, nextBeforeID, nil
}

// LatestAssessment returns the user's most recent physical assessment,
// or gorm.ErrRecordNotFound.
func (r *Repo) LatestAssessment(ctx context.Context, userID string) (*models.PhysicalAssessment, error) {
	var a models.PhysicalAssessment
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("assessment_date DESC, created_at DESC").
		First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}
