package event

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/commexhq/comms-api/internal/model"
	apperrors "github.com/commexhq/comms-api/pkg/errors"
	"github.com/commexhq/comms-api/pkg/messaging"
	"github.com/commexhq/comms-api/pkg/metrics"
)

// Publisher emits lifecycle events to the broker. Publishes are serialized
// so callers observe broker-order matching call-order.
type Publisher struct {
	broker  messaging.Broker
	metrics *metrics.Metrics
	logger  zerolog.Logger
	mu      sync.Mutex
}

func NewPublisher(broker messaging.Broker, m *metrics.Metrics, logger zerolog.Logger) *Publisher {
	return &Publisher{
		broker:  broker,
		metrics: m,
		logger:  logger.With().Str("component", "event_publisher").Logger(),
	}
}

// PublishStatusChanged emits a status-change event. The status travels as
// its code, never a numeric id.
func (p *Publisher) PublishStatusChanged(ctx context.Context, communicationID int64, statusCode, source string, notes *string) error {
	evt := &model.StatusChangedEvent{
		EventType:       model.EventTypeStatusChanged,
		CommunicationID: strconv.FormatInt(communicationID, 10),
		NewStatus:       statusCode,
		TimestampUTC:    time.Now().UTC(),
		Source:          source,
		Notes:           notes,
	}
	return p.publish(ctx, model.RoutingKeyStatusChanged, evt)
}

// PublishCreated announces a newly created communication.
func (p *Publisher) PublishCreated(ctx context.Context, comm *model.Communication, typeCode, source string) error {
	evt := &model.CreatedEvent{
		EventType:       model.EventTypeCreated,
		CommunicationID: strconv.FormatInt(comm.ID, 10),
		TypeCode:        typeCode,
		Title:           comm.Title,
		TimestampUTC:    time.Now().UTC(),
		Source:          source,
	}
	return p.publish(ctx, model.RoutingKeyCreated, evt)
}

// PublishRaw re-emits an already-encoded payload, used for redelivery.
func (p *Publisher) PublishRaw(ctx context.Context, routingKey string, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.broker.Publish(ctx, routingKey, payload); err != nil {
		p.metrics.PublishFailures.Inc()
		return apperrors.Transport("failed to publish event", err)
	}
	p.metrics.EventsPublished.WithLabelValues(routingKey).Inc()
	return nil
}

func (p *Publisher) publish(ctx context.Context, routingKey string, evt model.InboundEvent) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return apperrors.Internal(fmt.Errorf("failed to encode event: %w", err))
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.broker.Publish(ctx, routingKey, payload); err != nil {
		p.metrics.PublishFailures.Inc()
		p.logger.Error().Err(err).Str("routing_key", routingKey).Msg("event publish failed")
		return apperrors.Transport("failed to publish event", err)
	}

	p.metrics.EventsPublished.WithLabelValues(routingKey).Inc()
	p.logger.Debug().
		Str("routing_key", routingKey).
		Str("event_type", string(evt.Kind())).
		Msg("event published")
	return nil
}
