package model

import "time"

// Member is the recipient of outbound communications.
type Member struct {
	ID             int64     `db:"id" json:"id"`
	MemberNumber   string    `db:"member_number" json:"member_number"`
	FirstName      string    `db:"first_name" json:"first_name"`
	LastName       string    `db:"last_name" json:"last_name"`
	Email          string    `db:"email" json:"email"`
	PhoneNumber    *string   `db:"phone_number" json:"phone_number,omitempty"`
	Address        *string   `db:"address" json:"address,omitempty"`
	City           *string   `db:"city" json:"city,omitempty"`
	State          *string   `db:"state" json:"state,omitempty"`
	ZipCode        *string   `db:"zip_code" json:"zip_code,omitempty"`
	EnrollmentDate time.Time `db:"enrollment_date" json:"enrollment_date"`
	IsActive       bool      `db:"is_active" json:"is_active"`
	CreatedUTC     time.Time `db:"created_utc" json:"created_utc"`
	LastUpdatedUTC time.Time `db:"last_updated_utc" json:"last_updated_utc"`
}

// FullName is the display form used in titles and notifications.
func (m *Member) FullName() string {
	return m.FirstName + " " + m.LastName
}
