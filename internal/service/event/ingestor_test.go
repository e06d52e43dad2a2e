package event

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/commexhq/comms-api/internal/model"
	apperrors "github.com/commexhq/comms-api/pkg/errors"
	"github.com/commexhq/comms-api/pkg/metrics"
)

type fakeEngine struct {
	called     bool
	id         int64
	statusCode string
	source     string
	err        error
	panics     bool
}

func (f *fakeEngine) Transition(ctx context.Context, id int64, statusCode, source string, notes *string, userID *uuid.UUID) (*model.Communication, error) {
	if f.panics {
		panic("boom")
	}
	f.called = true
	f.id = id
	f.statusCode = statusCode
	f.source = source
	if f.err != nil {
		return nil, f.err
	}
	return &model.Communication{ID: id}, nil
}

func newIngestor(engine *fakeEngine) *Ingestor {
	return NewIngestor(engine, metrics.NewForTesting(), zerolog.Nop())
}

func statusChangedPayload(id, status string) []byte {
	return []byte(`{
		"eventType": "CommunicationStatusChanged",
		"communicationId": "` + id + `",
		"newStatus": "` + status + `",
		"timestampUtc": "2025-06-01T12:00:00Z",
		"source": "Simulator"
	}`)
}

func TestHandleStatusChangedAck(t *testing.T) {
	engine := &fakeEngine{}
	ing := newIngestor(engine)

	disp := ing.Handle(context.Background(), statusChangedPayload("42", "Printed"))

	assert.Equal(t, model.DispositionAck, disp)
	require.True(t, engine.called)
	assert.Equal(t, int64(42), engine.id)
	assert.Equal(t, "Printed", engine.statusCode)
	assert.Equal(t, model.SourceSimulator, engine.source)
}

func TestHandleDefaultsSourceToBroker(t *testing.T) {
	engine := &fakeEngine{}
	ing := newIngestor(engine)

	raw := []byte(`{"eventType":"CommunicationStatusChanged","communicationId":"1","newStatus":"Printed"}`)
	disp := ing.Handle(context.Background(), raw)

	assert.Equal(t, model.DispositionAck, disp)
	assert.Equal(t, model.SourceBroker, engine.source)
}

func TestHandleMalformedJSONAcked(t *testing.T) {
	engine := &fakeEngine{}
	ing := newIngestor(engine)

	disp := ing.Handle(context.Background(), []byte(`{broken`))

	assert.Equal(t, model.DispositionAck, disp)
	assert.False(t, engine.called)
}

func TestHandleMalformedCommunicationIDAcked(t *testing.T) {
	engine := &fakeEngine{}
	ing := newIngestor(engine)

	disp := ing.Handle(context.Background(), statusChangedPayload("not-a-number", "Printed"))

	assert.Equal(t, model.DispositionAck, disp)
	assert.False(t, engine.called, "malformed ids must never reach the engine")
}

func TestHandleUnknownEventTypeAcked(t *testing.T) {
	engine := &fakeEngine{}
	ing := newIngestor(engine)

	disp := ing.Handle(context.Background(), []byte(`{"eventType":"SomethingNew","payload":1}`))

	assert.Equal(t, model.DispositionAck, disp)
	assert.False(t, engine.called)
}

func TestHandleCreatedEventAckedWithoutEngineCall(t *testing.T) {
	engine := &fakeEngine{}
	ing := newIngestor(engine)

	raw := []byte(`{"eventType":"CommunicationCreated","communicationId":"7","typeCode":"EOB","title":"x"}`)
	disp := ing.Handle(context.Background(), raw)

	assert.Equal(t, model.DispositionAck, disp)
	assert.False(t, engine.called)
}

func TestHandleTransientFailureRetried(t *testing.T) {
	engine := &fakeEngine{err: apperrors.Transient("db down", nil)}
	ing := newIngestor(engine)

	disp := ing.Handle(context.Background(), statusChangedPayload("42", "Printed"))

	assert.Equal(t, model.DispositionRetry, disp)
}

func TestHandlePermanentFailureAcked(t *testing.T) {
	engine := &fakeEngine{err: apperrors.InvalidTransition("not mapped", nil)}
	ing := newIngestor(engine)

	disp := ing.Handle(context.Background(), statusChangedPayload("42", "Delivered"))

	assert.Equal(t, model.DispositionAck, disp)
}

func TestHandleNotFoundAcked(t *testing.T) {
	engine := &fakeEngine{err: apperrors.NotFound("communication", nil)}
	ing := newIngestor(engine)

	disp := ing.Handle(context.Background(), statusChangedPayload("999", "Printed"))

	assert.Equal(t, model.DispositionAck, disp)
}

func TestHandlePanicRetried(t *testing.T) {
	engine := &fakeEngine{panics: true}
	ing := newIngestor(engine)

	disp := ing.Handle(context.Background(), statusChangedPayload("42", "Printed"))

	assert.Equal(t, model.DispositionRetry, disp)
}
