package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// Routing keys for broker traffic. The consumer binds the wildcard.
const (
	RoutingKeyStatusChanged = "communication.status.changed"
	RoutingKeyCreated       = "communication.created"
	RoutingKeyAll           = "communication.*"
)

type EventType string

const (
	EventTypeStatusChanged EventType = "CommunicationStatusChanged"
	EventTypeCreated       EventType = "CommunicationCreated"
)

// Disposition instructs the transport whether to acknowledge a consumed
// message or schedule it for redelivery.
type Disposition int

const (
	DispositionAck Disposition = iota
	DispositionRetry
)

func (d Disposition) String() string {
	if d == DispositionRetry {
		return "retry"
	}
	return "ack"
}

// StatusChangedEvent is the wire form of a status-change notification.
// CommunicationID travels as a numeric string and NewStatus is always a
// status code, never a numeric id.
type StatusChangedEvent struct {
	EventType       EventType         `json:"eventType"`
	CommunicationID string            `json:"communicationId"`
	NewStatus       string            `json:"newStatus"`
	TimestampUTC    time.Time         `json:"timestampUtc"`
	Source          string            `json:"source"`
	Notes           *string           `json:"notes,omitempty"`
	Metadata        map[string]string `json:"metadata,omitempty"`
}

func (e *StatusChangedEvent) Kind() EventType { return EventTypeStatusChanged }

// CreatedEvent announces a new communication. Informational only on the
// consuming side.
type CreatedEvent struct {
	EventType       EventType         `json:"eventType"`
	CommunicationID string            `json:"communicationId"`
	TypeCode        string            `json:"typeCode"`
	Title           string            `json:"title"`
	TimestampUTC    time.Time         `json:"timestampUtc"`
	Source          string            `json:"source"`
	Metadata        map[string]string `json:"metadata,omitempty"`
}

func (e *CreatedEvent) Kind() EventType { return EventTypeCreated }

// UnknownEvent carries a payload whose discriminator matched no known kind.
// Kept explicit so new event kinds are a visible decision, not a default
// branch.
type UnknownEvent struct {
	Type string
	Raw  json.RawMessage
}

func (e *UnknownEvent) Kind() EventType { return EventType(e.Type) }

// InboundEvent is the closed set of event variants the ingestion adapter
// dispatches over.
type InboundEvent interface {
	Kind() EventType
}

type envelope struct {
	EventType string `json:"eventType"`
}

// DecodeEvent parses a raw broker payload into its variant by the
// "eventType" discriminator. A missing or unparseable envelope is an error;
// an unrecognized discriminator decodes to UnknownEvent.
func DecodeEvent(raw []byte) (InboundEvent, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("failed to parse event envelope: %w", err)
	}

	switch EventType(env.EventType) {
	case EventTypeStatusChanged:
		var evt StatusChangedEvent
		if err := json.Unmarshal(raw, &evt); err != nil {
			return nil, fmt.Errorf("failed to parse status changed event: %w", err)
		}
		return &evt, nil
	case EventTypeCreated:
		var evt CreatedEvent
		if err := json.Unmarshal(raw, &evt); err != nil {
			return nil, fmt.Errorf("failed to parse created event: %w", err)
		}
		return &evt, nil
	default:
		return &UnknownEvent{Type: env.EventType, Raw: raw}, nil
	}
}
