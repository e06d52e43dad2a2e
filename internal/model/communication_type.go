package model

// CommunicationType identifies a kind of outbound document ("EOB",
// "ID_CARD", "EOP").
type CommunicationType struct {
	ID          int64  `db:"id" json:"id"`
	Code        string `db:"code" json:"code"`
	DisplayName string `db:"display_name" json:"display_name"`
	Description string `db:"description" json:"description"`
	IsActive    bool   `db:"is_active" json:"is_active"`
}

// TypeStatusMapping joins a communication type to a catalog status. The
// (type, status) pair is unique; mappings are deactivated and reactivated in
// place rather than deleted, so row identity survives policy changes.
type TypeStatusMapping struct {
	ID          int64   `db:"id" json:"id"`
	TypeID      int64   `db:"type_id" json:"type_id"`
	StatusID    int64   `db:"status_id" json:"status_id"`
	Description *string `db:"description" json:"description,omitempty"`
	IsActive    bool    `db:"is_active" json:"is_active"`
}

// TypeStatusView is the joined representation served to callers asking which
// statuses are valid for a type.
type TypeStatusView struct {
	StatusID    int64       `db:"status_id" json:"status_id"`
	Code        string      `db:"code" json:"code"`
	DisplayName string      `db:"display_name" json:"display_name"`
	Description string      `db:"description" json:"description"`
	Phase       StatusPhase `db:"phase" json:"phase"`
	TypeNote    *string     `db:"type_note" json:"type_note,omitempty"`
}
