package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeEventStatusChanged(t *testing.T) {
	raw := []byte(`{
		"eventType": "CommunicationStatusChanged",
		"communicationId": "42",
		"newStatus": "Printed",
		"timestampUtc": "2025-06-01T12:00:00Z",
		"source": "Simulator",
		"notes": "print run 7"
	}`)

	evt, err := DecodeEvent(raw)
	require.NoError(t, err)

	sc, ok := evt.(*StatusChangedEvent)
	require.True(t, ok)
	assert.Equal(t, EventTypeStatusChanged, sc.Kind())
	assert.Equal(t, "42", sc.CommunicationID)
	assert.Equal(t, "Printed", sc.NewStatus)
	assert.Equal(t, "Simulator", sc.Source)
	require.NotNil(t, sc.Notes)
	assert.Equal(t, "print run 7", *sc.Notes)
}

func TestDecodeEventCreated(t *testing.T) {
	raw := []byte(`{
		"eventType": "CommunicationCreated",
		"communicationId": "7",
		"typeCode": "EOB",
		"title": "EOB March",
		"timestampUtc": "2025-06-01T12:00:00Z",
		"source": "Manual"
	}`)

	evt, err := DecodeEvent(raw)
	require.NoError(t, err)

	ce, ok := evt.(*CreatedEvent)
	require.True(t, ok)
	assert.Equal(t, "EOB", ce.TypeCode)
	assert.Equal(t, "7", ce.CommunicationID)
}

func TestDecodeEventUnknownType(t *testing.T) {
	raw := []byte(`{"eventType": "SomethingElse", "payload": 1}`)

	evt, err := DecodeEvent(raw)
	require.NoError(t, err)

	ue, ok := evt.(*UnknownEvent)
	require.True(t, ok)
	assert.Equal(t, "SomethingElse", ue.Type)
	assert.JSONEq(t, string(raw), string(ue.Raw))
}

func TestDecodeEventMalformedPayload(t *testing.T) {
	_, err := DecodeEvent([]byte(`{not json`))
	assert.Error(t, err)
}

func TestDecodeEventMissingDiscriminator(t *testing.T) {
	evt, err := DecodeEvent([]byte(`{"communicationId": "1"}`))
	require.NoError(t, err)

	ue, ok := evt.(*UnknownEvent)
	require.True(t, ok)
	assert.Empty(t, ue.Type)
}
