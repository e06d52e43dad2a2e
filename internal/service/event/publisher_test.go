package event

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/commexhq/comms-api/internal/model"
	apperrors "github.com/commexhq/comms-api/pkg/errors"
	"github.com/commexhq/comms-api/pkg/metrics"
)

type fakeBroker struct {
	channels []string
	payloads [][]byte
	err      error
}

func (f *fakeBroker) Publish(ctx context.Context, channel string, payload []byte) error {
	if f.err != nil {
		return f.err
	}
	f.channels = append(f.channels, channel)
	f.payloads = append(f.payloads, payload)
	return nil
}

func (f *fakeBroker) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	return nil, nil
}

func (f *fakeBroker) Close() error { return nil }

func TestPublishStatusChanged(t *testing.T) {
	broker := &fakeBroker{}
	pub := NewPublisher(broker, metrics.NewForTesting(), zerolog.Nop())
	notes := "ops request"

	err := pub.PublishStatusChanged(context.Background(), 42, "Cancelled", model.SourceManual, &notes)
	require.NoError(t, err)

	require.Len(t, broker.channels, 1)
	assert.Equal(t, model.RoutingKeyStatusChanged, broker.channels[0])

	var evt model.StatusChangedEvent
	require.NoError(t, json.Unmarshal(broker.payloads[0], &evt))
	assert.Equal(t, model.EventTypeStatusChanged, evt.EventType)
	assert.Equal(t, "42", evt.CommunicationID)
	assert.Equal(t, "Cancelled", evt.NewStatus)
	assert.Equal(t, model.SourceManual, evt.Source)
	require.NotNil(t, evt.Notes)
	assert.Equal(t, notes, *evt.Notes)
	assert.False(t, evt.TimestampUTC.IsZero())
}

func TestPublishCreated(t *testing.T) {
	broker := &fakeBroker{}
	pub := NewPublisher(broker, metrics.NewForTesting(), zerolog.Nop())

	comm := &model.Communication{ID: 7, Title: "EOB March"}
	err := pub.PublishCreated(context.Background(), comm, "EOB", model.SourceManual)
	require.NoError(t, err)

	require.Len(t, broker.channels, 1)
	assert.Equal(t, model.RoutingKeyCreated, broker.channels[0])

	var evt model.CreatedEvent
	require.NoError(t, json.Unmarshal(broker.payloads[0], &evt))
	assert.Equal(t, "7", evt.CommunicationID)
	assert.Equal(t, "EOB", evt.TypeCode)
	assert.Equal(t, "EOB March", evt.Title)
}

func TestPublishFailureIsTransport(t *testing.T) {
	broker := &fakeBroker{err: fmt.Errorf("broker gone")}
	pub := NewPublisher(broker, metrics.NewForTesting(), zerolog.Nop())

	err := pub.PublishStatusChanged(context.Background(), 1, "Printed", model.SourceSimulator, nil)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrTransport))
	assert.True(t, apperrors.IsRetryable(err))
}

func TestPublishRaw(t *testing.T) {
	broker := &fakeBroker{}
	pub := NewPublisher(broker, metrics.NewForTesting(), zerolog.Nop())

	payload := []byte(`{"eventType":"CommunicationStatusChanged"}`)
	err := pub.PublishRaw(context.Background(), model.RoutingKeyStatusChanged, payload)
	require.NoError(t, err)

	require.Len(t, broker.payloads, 1)
	assert.Equal(t, payload, broker.payloads[0])
}
