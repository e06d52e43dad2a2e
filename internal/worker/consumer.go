package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/commexhq/comms-api/internal/config"
	"github.com/commexhq/comms-api/internal/model"
	"github.com/commexhq/comms-api/pkg/messaging"
	"github.com/commexhq/comms-api/pkg/metrics"
)

// EventHandler processes one raw payload and reports its disposition.
type EventHandler interface {
	Handle(ctx context.Context, raw []byte) model.Disposition
}

// Republisher re-emits a raw payload for redelivery.
type Republisher interface {
	PublishRaw(ctx context.Context, routingKey string, payload []byte) error
}

// Consumer owns the broker subscription for communication events. It
// resubscribes with exponential backoff when the subscription drops, and
// implements the retry disposition by re-publishing the raw payload after a
// delay, since the underlying pub/sub transport has no native redelivery.
type Consumer struct {
	broker      messaging.Broker
	handler     EventHandler
	republisher Republisher
	cfg         config.ConsumerConfig
	metrics     *metrics.Metrics
	logger      zerolog.Logger
}

func NewConsumer(
	broker messaging.Broker,
	handler EventHandler,
	republisher Republisher,
	cfg config.ConsumerConfig,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *Consumer {
	return &Consumer{
		broker:      broker,
		handler:     handler,
		republisher: republisher,
		cfg:         cfg,
		metrics:     m,
		logger:      logger.With().Str("component", "event_consumer").Logger(),
	}
}

// Run consumes until the context is cancelled. A dropped subscription is
// re-established with exponential backoff; backoff resets after a healthy
// subscription.
func (c *Consumer) Run(ctx context.Context) {
	backoff := c.cfg.MinBackoff

	for {
		if ctx.Err() != nil {
			c.logger.Info().Msg("consumer stopped")
			return
		}

		msgs, err := c.broker.Subscribe(ctx, c.cfg.Binding)
		if err != nil {
			c.logger.Error().Err(err).
				Str("binding", c.cfg.Binding).
				Dur("backoff", backoff).
				Msg("subscribe failed, retrying")
			if !c.sleep(ctx, backoff) {
				return
			}
			backoff = c.nextBackoff(backoff)
			continue
		}

		c.logger.Info().Str("binding", c.cfg.Binding).Msg("consumer subscribed")
		backoff = c.cfg.MinBackoff

		c.consume(ctx, msgs)

		if ctx.Err() != nil {
			c.logger.Info().Msg("consumer stopped")
			return
		}

		// Channel closed by the transport; resubscribe.
		c.metrics.ConsumerRestarts.Inc()
		c.logger.Warn().Dur("backoff", backoff).Msg("subscription lost, resubscribing")
		if !c.sleep(ctx, backoff) {
			return
		}
		backoff = c.nextBackoff(backoff)
	}
}

func (c *Consumer) consume(ctx context.Context, msgs <-chan []byte) {
	for {
		select {
		case <-ctx.Done():
			return
		case raw, ok := <-msgs:
			if !ok {
				return
			}
			if c.handler.Handle(ctx, raw) == model.DispositionRetry {
				c.scheduleRedelivery(raw)
			}
		}
	}
}

// scheduleRedelivery re-publishes the raw payload after the configured
// delay. Only status-change handling ever yields a retry, so the payload
// always goes back on the status-changed key.
func (c *Consumer) scheduleRedelivery(raw []byte) {
	c.metrics.EventsRequeued.Inc()
	payload := make([]byte, len(raw))
	copy(payload, raw)

	time.AfterFunc(c.cfg.RequeueDelay, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := c.republisher.PublishRaw(ctx, model.RoutingKeyStatusChanged, payload); err != nil {
			c.logger.Error().Err(err).Msg("failed to re-publish event for redelivery")
		}
	})
}

func (c *Consumer) sleep(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}

func (c *Consumer) nextBackoff(current time.Duration) time.Duration {
	next := current * 2
	if next > c.cfg.MaxBackoff {
		next = c.cfg.MaxBackoff
	}
	return next
}
