package chat

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/jonafit/coach-platform/internal/ai"
	"github.com/jonafit/coach-platform/internal/billing"
)

// ErrConversationNotFound covers both a missing conversation id and a
// conversation owned by another user: existence is hidden.
var ErrConversationNotFound = errors.New("conversation not found")

const (
	genTemperature = 0.7
	genMaxTokens   = 1000

	titleMaxRunes = 50
)

type Service struct {
	repo              *Repo
	billing           *billing.Repo
	provider          ai.Provider
	contextWindowSize int
}

func NewService(repo *Repo, billingRepo *billing.Repo, provider ai.Provider, contextWindowSize int) *Service {
	if contextWindowSize <= 0 || contextWindowSize > 100 {
		contextWindowSize = 20
	}
	return &Service{repo: repo, billing: billingRepo, provider: provider, contextWindowSize: contextWindowSize}
}

type SendResult struct {
	ConversationID string
	Reply          string
	Usage          billing.Usage
}

func titleFrom(message string) string {
	runes := []rune(message)
	if len(runes) <= titleMaxRunes {
		return message
	}
	return string(runes[:titleMaxRunes]) + "..."
}

// Send appends one exchange to a conversation. A new conversation (no id
// supplied) is only persisted together with its first message pair, so a
// failed generation leaves no rows behind.
func (s *Service) Send(ctx context.Context, userID, conversationID, message, convType string) (*SendResult, error) {
	if !ValidType(convType) {
		convType = TypeGeneral
	}

	if err := s.billing.CheckAvailable(ctx, userID); err != nil {
		return nil, err
	}

	var conv *Conversation
	isNew := conversationID == ""
	if isNew {
		conv = &Conversation{
			UserID: userID,
			Title:  titleFrom(message),
			Type:   convType,
		}
	} else {
		existing, err := s.repo.GetConversation(ctx, conversationID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrConversationNotFound
			}
			return nil, err
		}
		if existing.UserID != userID {
			return nil, ErrConversationNotFound
		}
		conv = existing
	}

	// context window: recent history in append order
	var history []Message
	if !isNew {
		var err error
		history, err = s.repo.RecentMessages(ctx, conv.ID, s.contextWindowSize)
		if err != nil {
			return nil, err
		}
	}

	// assessment data personalizes the system prompt when available
	assessment, err := s.repo.LatestAssessment(ctx, userID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		assessment = nil
	}

	providerMsgs := make([]ai.Message, 0, len(history)+2)
	providerMsgs = append(providerMsgs, ai.Message{Role: "system", Content: systemPrompt(conv.Type, assessment)})
	for _, m := range history {
		providerMsgs = append(providerMsgs, ai.Message{Role: m.Role, Content: m.Content})
	}
	providerMsgs = append(providerMsgs, ai.Message{Role: "user", Content: message})

	reply, err := s.provider.Chat(ctx, providerMsgs, ai.Options{Temperature: genTemperature, MaxTokens: genMaxTokens})
	if err != nil {
		return nil, err
	}

	err = s.repo.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if isNew {
			if err := tx.Create(conv).Error; err != nil {
				return err
			}
		}
		if err := billing.ReserveRequest(tx, userID); err != nil {
			return err
		}
		if err := tx.Create(&Message{ConversationID: conv.ID, Role: "user", Content: message}).Error; err != nil {
			return err
		}
		if err := tx.Create(&Message{ConversationID: conv.ID, Role: "assistant", Content: reply}).Error; err != nil {
			return err
		}
		if isNew {
			return nil
		}
		// keep updated_at tracking the last exchange so conversation
		// listings order by recent activity
		return tx.Model(&Conversation{}).
			Where("id = ?", conv.ID).
			Update("updated_at", time.Now()).Error
	})
	if err != nil {
		return nil, err
	}

	usage, err := s.billing.Usage(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &SendResult{ConversationID: conv.ID, Reply: reply, Usage: usage}, nil
}

func (s *Service) ListConversations(ctx context.Context, userID string, limit int) ([]Conversation, error) {
	return s.repo.ListConversations(ctx, userID, limit)
}

// History returns a page of messages for a conversation the user owns.
func (s *Service) History(ctx context.Context, userID, conversationID string, limit int, beforeID uint64) ([]Message, uint64, error) {
	conv, err := s.repo.GetConversation(ctx, conversationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, ErrConversationNotFound
		}
		return nil, 0, err
	}
	if conv.UserID != userID {
		return nil, 0, ErrConversationNotFound
	}
	return s.repo.ListMessages(ctx, conversationID, limit, beforeID)
}
