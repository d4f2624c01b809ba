package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jonafit/coach-platform/internal/ai"
	"github.com/jonafit/coach-platform/internal/config"
	"github.com/jonafit/coach-platform/internal/db"
	"github.com/jonafit/coach-platform/internal/httpapi"
	"github.com/jonafit/coach-platform/internal/httpapi/handlers"
	"github.com/jonafit/coach-platform/internal/logger"
	"github.com/jonafit/coach-platform/internal/store/rabbitmq"
	"github.com/jonafit/coach-platform/internal/store/redisstore"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel)
	defer logger.Sync()

	gin.SetMode(cfg.GinMode)

	gdb := db.Connect(cfg.DBDSN)

	rs := redisstore.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	if err := rs.Ping(pingCtx); err != nil {
		logger.Warnf("redis not reachable at %s: %v", cfg.RedisAddr, err)
	}
	cancel()

	pub, err := rabbitmq.NewPublisher(cfg.RabbitURL, cfg.RabbitQueue)
	if err != nil {
		logger.Fatalf("connect rabbitmq: %v", err)
	}
	defer pub.Close()

	provider := ai.NewGroqProvider(cfg.GroqBaseURL, cfg.GroqAPIKey, cfg.GroqModel, cfg.GroqTimeout)

	h := handlers.NewHandler(gdb, cfg, rs, pub, provider)
	router := httpapi.NewRouter(h, cfg)

	srv := &http.Server{
		Addr:    cfg.ServerAddr,
		Handler: router,
	}

	go func() {
		logger.Infof("listening on %s", cfg.ServerAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("shutdown: %v", err)
	}
}
