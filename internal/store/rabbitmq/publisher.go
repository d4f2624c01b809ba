package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const publishTimeout = 5 * time.Second

// JobMessage is the queue payload: the generation_jobs row carries the
// request itself, so only the id travels over the wire.
type JobMessage struct {
	JobID string `json:"job_id"`
}

// Publisher owns the generation-job topology: a durable main queue that
// dead-letters to the DLQ, a retry queue that dead-letters back to main,
// and the DLQ itself. Server and worker both construct one so whichever
// process starts first declares the queues.
type Publisher struct {
	conn *amqp.Connection
	ch   *amqp.Channel

	main  string
	retry string
	dlq   string
}

func NewPublisher(url, queue string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	p := &Publisher{
		conn:  conn,
		ch:    ch,
		main:  queue,
		retry: queue + ".retry",
		dlq:   queue + ".dlq",
	}
	if err := p.declareTopology(); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	return p, nil
}

func (p *Publisher) declareTopology() error {
	declare := func(name string, args amqp.Table) error {
		_, err := p.ch.QueueDeclare(
			name,
			true,  // durable
			false, // auto-delete
			false, // exclusive
			false, // no-wait
			args,
		)
		if err != nil {
			return fmt.Errorf("declare %s: %w", name, err)
		}
		return nil
	}

	if err := declare(p.dlq, nil); err != nil {
		return err
	}
	// retry expires back onto the main queue
	if err := declare(p.retry, amqp.Table{
		"x-dead-letter-exchange":    "",
		"x-dead-letter-routing-key": p.main,
	}); err != nil {
		return err
	}
	// main dead-letters to the DLQ on reject/nack(requeue=false)
	return declare(p.main, amqp.Table{
		"x-dead-letter-exchange":    "",
		"x-dead-letter-routing-key": p.dlq,
	})
}

func (p *Publisher) Close() error {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// PublishJob enqueues one generation job id for the worker.
func (p *Publisher) PublishJob(ctx context.Context, jobID string) error {
	body, err := json.Marshal(JobMessage{JobID: jobID})
	if err != nil {
		return err
	}

	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	return p.ch.PublishWithContext(pubCtx,
		"",     // default exchange
		p.main, // routing key
		false,  // mandatory
		false,  // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
}
