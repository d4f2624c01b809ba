package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/jonafit/coach-platform/internal/ai"
	"github.com/jonafit/coach-platform/internal/billing"
	"github.com/jonafit/coach-platform/internal/config"
	"github.com/jonafit/coach-platform/internal/db"
	"github.com/jonafit/coach-platform/internal/diet"
	"github.com/jonafit/coach-platform/internal/jobs"
	"github.com/jonafit/coach-platform/internal/logger"
	"github.com/jonafit/coach-platform/internal/store/rabbitmq"
	"github.com/jonafit/coach-platform/internal/workout"
)

func workerConcurrency() int {
	if v := os.Getenv("WORKER_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return 4
}

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel)
	defer logger.Sync()

	gdb := db.Connect(cfg.DBDSN)

	// Declares the main/retry/dlq trio with the same arguments the API
	// side uses, so whichever process starts first wins cleanly.
	pub, err := rabbitmq.NewPublisher(cfg.RabbitURL, cfg.RabbitQueue)
	if err != nil {
		logger.Fatalf("connect rabbitmq: %v", err)
	}
	defer pub.Close()

	conn, err := amqp.Dial(cfg.RabbitURL)
	if err != nil {
		logger.Fatalf("connect rabbitmq consumer: %v", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		logger.Fatalf("open channel: %v", err)
	}
	defer ch.Close()

	concurrency := workerConcurrency()
	if err := ch.Qos(concurrency, 0, false); err != nil {
		logger.Fatalf("set qos: %v", err)
	}

	deliveries, err := ch.Consume(
		cfg.RabbitQueue,
		"",    // consumer tag
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		logger.Fatalf("consume %s: %v", cfg.RabbitQueue, err)
	}

	provider := ai.NewGroqProvider(cfg.GroqBaseURL, cfg.GroqAPIKey, cfg.GroqModel, cfg.GroqTimeout)
	billingRepo := billing.NewRepo(gdb)
	runner := jobs.NewRunner(
		gdb,
		jobs.NewRepo(gdb),
		workout.NewService(workout.NewRepo(gdb), billingRepo, provider),
		diet.NewService(diet.NewRepo(gdb), billingRepo, provider),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Infof("worker consuming %s with concurrency %d", cfg.RabbitQueue, concurrency)

	sem := make(chan struct{}, concurrency)
	for {
		select {
		case <-ctx.Done():
			logger.Info("worker shutting down")
			return
		case d, ok := <-deliveries:
			if !ok {
				logger.Warnf("delivery channel closed")
				return
			}
			sem <- struct{}{}
			go func(d amqp.Delivery) {
				defer func() { <-sem }()
				handle(ctx, runner, d)
			}(d)
		}
	}
}

func handle(ctx context.Context, runner *jobs.Runner, d amqp.Delivery) {
	var msg rabbitmq.JobMessage
	if err := json.Unmarshal(d.Body, &msg); err != nil || msg.JobID == "" {
		logger.Warnw("discard malformed job message", "err", err)
		_ = d.Nack(false, false) // dead-letter
		return
	}

	if err := runner.Run(ctx, msg.JobID); err != nil {
		logger.Errorw("job failed", "job_id", msg.JobID, "err", err)
		if d.Redelivered {
			_ = d.Nack(false, false) // second strike goes to the DLQ
		} else {
			_ = d.Nack(false, true)
		}
		return
	}

	logger.Infow("job done", "job_id", msg.JobID)
	_ = d.Ack(false)
}
