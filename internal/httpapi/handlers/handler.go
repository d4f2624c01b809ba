package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/jonafit/coach-platform/internal/ai"
	"github.com/jonafit/coach-platform/internal/billing"
	"github.com/jonafit/coach-platform/internal/chat"
	"github.com/jonafit/coach-platform/internal/common"
	"github.com/jonafit/coach-platform/internal/config"
	"github.com/jonafit/coach-platform/internal/diet"
	"github.com/jonafit/coach-platform/internal/email"
	"github.com/jonafit/coach-platform/internal/httpapi/middleware"
	"github.com/jonafit/coach-platform/internal/jobs"
	"github.com/jonafit/coach-platform/internal/models"
	"github.com/jonafit/coach-platform/internal/store/redisstore"
	"github.com/jonafit/coach-platform/internal/workout"
)

// JobPublisher is what the async endpoints need from the queue; the
// RabbitMQ publisher satisfies it, tests use fakes.
type JobPublisher interface {
	PublishJob(ctx context.Context, jobID string) error
}

type Handler struct {
	DB          *gorm.DB
	Cfg         config.Config
	Redis       *redisstore.Store
	Rabbit      JobPublisher
	SMTPSetting email.SMTPConfig

	Billing    *billing.Repo
	WorkoutSvc *workout.Service
	DietSvc    *diet.Service
	ChatSvc    *chat.Service
	JobsRepo   *jobs.Repo
}

func NewHandler(db *gorm.DB, cfg config.Config, r *redisstore.Store, rabbit JobPublisher, provider ai.Provider) *Handler {
	billingRepo := billing.NewRepo(db)
	return &Handler{
		DB:     db,
		Cfg:    cfg,
		Redis:  r,
		Rabbit: rabbit,
		SMTPSetting: email.SMTPConfig{
			Host: cfg.SMTPHost,
			Port: cfg.SMTPPort,
			User: cfg.SMTPUser,
			Pass: cfg.SMTPPass,
			From: cfg.SMTPFrom,
		},
		Billing:    billingRepo,
		WorkoutSvc: workout.NewService(workout.NewRepo(db), billingRepo, provider),
		DietSvc:    diet.NewService(diet.NewRepo(db), billingRepo, provider),
		ChatSvc:    chat.NewService(chat.NewRepo(db), billingRepo, provider, cfg.ChatContextWindowSize),
		JobsRepo:   jobs.NewRepo(db),
	}
}

func (h *Handler) Ping(c *gin.Context) {
	common.OK(c, gin.H{"pong": true})
}

// caller builds the authenticated identity from the verified JWT claims.
func caller(c *gin.Context) (*models.User, bool) {
	uid := c.GetString(middleware.UserIDKey)
	if uid == "" {
		return nil, false
	}
	role := c.GetString(middleware.RoleKey)
	if role == "" {
		role = models.RoleStudent
	}
	return &models.User{ID: uid, Role: role}, true
}

// failFromErr maps domain errors onto the status taxonomy. Messages stay
// short and human; internals are logged, never returned.
func failFromErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, billing.ErrQuotaExceeded):
		common.Fail(c, http.StatusTooManyRequests, 42901, "Limite de IA atingido. Faça upgrade do seu plano.")
	case errors.Is(err, common.ErrForbidden):
		common.Fail(c, http.StatusForbidden, 40301, "forbidden")
	case errors.Is(err, chat.ErrConversationNotFound):
		common.Fail(c, http.StatusNotFound, 40404, "conversation not found")
	case errors.Is(err, gorm.ErrRecordNotFound):
		common.Fail(c, http.StatusNotFound, 40401, "not found")
	case errors.Is(err, workout.ErrGenerationFailed), errors.Is(err, diet.ErrGenerationFailed):
		common.Fail(c, http.StatusBadGateway, 50201, "failed to process model response")
	case errors.Is(err, ai.ErrUpstream):
		common.Fail(c, http.StatusBadGateway, 50202, "upstream model error")
	default:
		common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
	}
}
