package event

import (
	"context"
	"strconv"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/commexhq/comms-api/internal/model"
	apperrors "github.com/commexhq/comms-api/pkg/errors"
	"github.com/commexhq/comms-api/pkg/metrics"
)

// TransitionEngine is the slice of the communication service the ingestor
// drives.
type TransitionEngine interface {
	Transition(ctx context.Context, id int64, statusCode, source string, notes *string, userID *uuid.UUID) (*model.Communication, error)
}

// Ingestor turns raw broker payloads into transition-engine calls and maps
// every outcome to an Ack or Retry disposition. Permanent failures
// (malformed payloads, unknown ids, policy violations) are acknowledged so
// they never poison the stream; only failures that a later redelivery could
// cure are retried.
type Ingestor struct {
	engine  TransitionEngine
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

func NewIngestor(engine TransitionEngine, m *metrics.Metrics, logger zerolog.Logger) *Ingestor {
	return &Ingestor{
		engine:  engine,
		metrics: m,
		logger:  logger.With().Str("component", "event_ingestor").Logger(),
	}
}

// Handle processes one raw payload and returns its disposition. It never
// panics: a handler panic is treated as a transient fault and retried.
func (i *Ingestor) Handle(ctx context.Context, raw []byte) (disposition model.Disposition) {
	eventType := "unparseable"
	defer func() {
		if r := recover(); r != nil {
			i.logger.Error().Interface("panic", r).Msg("panic while handling event")
			disposition = model.DispositionRetry
		}
		i.metrics.EventsConsumed.WithLabelValues(eventType, disposition.String()).Inc()
	}()

	evt, err := model.DecodeEvent(raw)
	if err != nil {
		i.logger.Error().Err(err).Msg("discarding malformed event payload")
		return model.DispositionAck
	}
	eventType = string(evt.Kind())

	switch e := evt.(type) {
	case *model.StatusChangedEvent:
		return i.handleStatusChanged(ctx, e)
	case *model.CreatedEvent:
		i.logger.Info().
			Str("communication_id", e.CommunicationID).
			Str("type_code", e.TypeCode).
			Msg("communication created event observed")
		return model.DispositionAck
	default:
		i.logger.Warn().Str("event_type", eventType).Msg("discarding event of unknown type")
		return model.DispositionAck
	}
}

func (i *Ingestor) handleStatusChanged(ctx context.Context, evt *model.StatusChangedEvent) model.Disposition {
	id, err := strconv.ParseInt(evt.CommunicationID, 10, 64)
	if err != nil {
		i.logger.Error().
			Str("communication_id", evt.CommunicationID).
			Msg("discarding event with malformed communication id")
		return model.DispositionAck
	}

	source := evt.Source
	if source == "" {
		source = model.SourceBroker
	}

	if _, err := i.engine.Transition(ctx, id, evt.NewStatus, source, evt.Notes, nil); err != nil {
		if apperrors.IsRetryable(err) {
			i.logger.Warn().Err(err).
				Int64("communication_id", id).
				Str("status", evt.NewStatus).
				Msg("transient transition failure, scheduling redelivery")
			return model.DispositionRetry
		}
		i.logger.Error().Err(err).
			Int64("communication_id", id).
			Str("status", evt.NewStatus).
			Msg("discarding event after permanent transition failure")
		return model.DispositionAck
	}

	i.logger.Info().
		Int64("communication_id", id).
		Str("status", evt.NewStatus).
		Str("source", source).
		Msg("status change event applied")
	return model.DispositionAck
}
