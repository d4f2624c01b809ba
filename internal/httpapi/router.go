package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/jonafit/coach-platform/internal/common"
	"github.com/jonafit/coach-platform/internal/config"
	"github.com/jonafit/coach-platform/internal/httpapi/handlers"
	"github.com/jonafit/coach-platform/internal/httpapi/middleware"
)

func NewRouter(h *handlers.Handler, cfg config.Config) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true

	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.Recovery())
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Authorization", "Idempotency-Key", "X-Request-ID"},
		MaxAge:          12 * time.Hour,
	}))

	r.NoRoute(func(c *gin.Context) {
		common.Fail(c, http.StatusNotFound, 40400, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		common.Fail(c, http.StatusMethodNotAllowed, 40500, "method not allowed")
	})

	r.GET("/ping", h.Ping)
	r.POST("/captcha", h.SendCaptcha)
	r.POST("/users", h.CreateUser)
	r.POST("/login", h.Login)

	authed := r.Group("/", middleware.AuthRequired(cfg.JWTSecret))
	{
		authed.GET("/me", h.Me)

		authed.POST("/assessments", h.CreateAssessment)
		authed.GET("/assessments/latest", h.LatestAssessment)

		authed.GET("/usage", h.GetUsage)

		authed.POST("/ai/generate-workout", h.GenerateWorkout)
		authed.POST("/ai/generate-diet", h.GenerateDiet)
		authed.POST("/ai/chat", h.SendChatMessage)

		authed.POST("/ai/jobs", h.CreateGenerationJob)
		authed.GET("/ai/jobs/:job_id", h.GetGenerationJob)

		authed.GET("/workouts", h.ListWorkouts)
		authed.GET("/workouts/:plan_id", h.GetWorkout)
		authed.GET("/diets/:plan_id", h.GetDiet)

		authed.GET("/chat/conversations", h.ListConversations)
		authed.GET("/chat/conversations/:conversation_id/messages", h.ListConversationMessages)
	}

	return r
}
