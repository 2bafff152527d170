package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/overtake-labs/staking-monitor/internal/config"
	"github.com/overtake-labs/staking-monitor/internal/observability/metrics"
	"github.com/overtake-labs/staking-monitor/internal/types"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"
)

// QueueManager publishes alert outcomes to a durable queue for downstream
// consumers such as dashboards or audit jobs.
type QueueManager struct {
	cfg *config.QueueConfig

	mu      sync.Mutex
	conn    *amqp.Connection
	channel *amqp.Channel
}

func NewQueueManager(cfg *config.QueueConfig) (*QueueManager, error) {
	qm := &QueueManager{cfg: cfg}
	if err := qm.connect(); err != nil {
		return nil, err
	}
	return qm, nil
}

func (qm *QueueManager) connect() error {
	conn, err := amqp.Dial(qm.cfg.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to queue: %w", err)
	}
	channel, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("failed to open queue channel: %w", err)
	}
	if _, err := channel.QueueDeclare(qm.cfg.QueueName, true, false, false, false, nil); err != nil {
		_ = conn.Close()
		return fmt.Errorf("failed to declare queue %s: %w", qm.cfg.QueueName, err)
	}

	// a broker-side channel close leaves the connection itself open
	if qm.conn != nil && !qm.conn.IsClosed() {
		if err := qm.conn.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close previous queue connection")
		}
	}
	qm.conn = conn
	qm.channel = channel
	return nil
}

// PublishAlertEvent reconnects once when the channel was closed by the broker.
func (qm *QueueManager) PublishAlertEvent(ctx context.Context, event *types.AlertEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal alert event: %w", err)
	}

	qm.mu.Lock()
	defer qm.mu.Unlock()

	if qm.channel == nil || qm.channel.IsClosed() {
		if err := qm.connect(); err != nil {
			metrics.RecordQueuePublishError()
			return err
		}
	}

	ctx, cancel := context.WithTimeout(ctx, qm.cfg.PublishTimeout)
	defer cancel()

	err = qm.channel.PublishWithContext(ctx, "", qm.cfg.QueueName, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.Digest,
		Timestamp:    time.Now().UTC(),
		Type:         string(event.Status),
		Body:         body,
	})
	if err != nil {
		metrics.RecordQueuePublishError()
		return fmt.Errorf("failed to publish alert event for %s: %w", event.Digest, err)
	}
	return nil
}

// Shutdown gracefully stops the interaction with the queue, ensuring all resources are properly released.
func (qm *QueueManager) Shutdown() {
	log.Info().Msg("Shutting down queue manager")

	qm.mu.Lock()
	defer qm.mu.Unlock()

	if qm.channel != nil {
		if err := qm.channel.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close queue channel")
		}
	}
	if qm.conn != nil && !qm.conn.IsClosed() {
		if err := qm.conn.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close queue connection")
		}
	}
}
