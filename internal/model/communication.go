package model

import (
	"time"

	"github.com/google/uuid"
)

// Event source tags recorded on history rows.
const (
	SourceManual    = "Manual"
	SourceSimulator = "Simulator"
	SourceBroker    = "Broker"
)

// DefaultInitialStatus is assigned when a communication is created without
// an explicit initial status.
const DefaultInitialStatus = "ReadyForRelease"

// Communication is the mutable subject of the workflow. Status fields are
// mutated exclusively through the transition engine.
type Communication struct {
	ID              int64      `db:"id" json:"id"`
	Title           string     `db:"title" json:"title"`
	TypeID          int64      `db:"type_id" json:"type_id"`
	MemberID        int64      `db:"member_id" json:"member_id"`
	CurrentStatusID int64      `db:"current_status_id" json:"current_status_id"`
	SourceFileURL   *string    `db:"source_file_url" json:"source_file_url,omitempty"`
	IsActive        bool       `db:"is_active" json:"is_active"`
	CreatedUTC      time.Time  `db:"created_utc" json:"created_utc"`
	LastUpdatedUTC  time.Time  `db:"last_updated_utc" json:"last_updated_utc"`
	CreatedBy       *uuid.UUID `db:"created_by" json:"created_by,omitempty"`
	LastUpdatedBy   *uuid.UUID `db:"last_updated_by" json:"last_updated_by,omitempty"`
}

// CommunicationStatusHistory is an append-only log row. Rows are never
// updated or deleted; exactly one row is written per successful transition,
// in the same transaction as the current-status update.
type CommunicationStatusHistory struct {
	ID              int64      `db:"id" json:"id"`
	CommunicationID int64      `db:"communication_id" json:"communication_id"`
	StatusID        int64      `db:"status_id" json:"status_id"`
	OccurredUTC     time.Time  `db:"occurred_utc" json:"occurred_utc"`
	Notes           string     `db:"notes" json:"notes"`
	EventSource     string     `db:"event_source" json:"event_source"`
	UpdatedBy       *uuid.UUID `db:"updated_by" json:"updated_by,omitempty"`
}

// StatusHistoryView is a history row joined with its status code for
// presentation.
type StatusHistoryView struct {
	StatusCode  string     `db:"status_code" json:"status_code"`
	DisplayName string     `db:"display_name" json:"display_name"`
	OccurredUTC time.Time  `db:"occurred_utc" json:"occurred_utc"`
	Notes       string     `db:"notes" json:"notes"`
	EventSource string     `db:"event_source" json:"event_source"`
	UpdatedBy   *uuid.UUID `db:"updated_by" json:"updated_by,omitempty"`
}
