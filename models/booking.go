package models

import "time"

// Booking marks a candidate as reserved by a buyer. A booking row exists iff
// the candidate status is BOOKED; the unique index on CandidateID guarantees
// at most one reservation per candidate.
type Booking struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	CandidateID    uint      `gorm:"not null;uniqueIndex:uk_bookings_candidate_id" json:"candidate_id"`
	IdentityNumber string    `gorm:"size:64;not null" json:"identity_number"`
	Notes          *string   `gorm:"type:text" json:"notes,omitempty"`
	BookedBy       uint      `gorm:"not null" json:"booked_by"`
	BookedAt       time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_bookings_booked_at" json:"booked_at"`
}

// TableName returns the table name for Booking
func (Booking) TableName() string { return "bookings" }

// BookingFilter provides filter fields for repository queries
type BookingFilter struct {
	ID           *uint
	CandidateID  *uint
	BookedBy     *uint
	BookedAfter  *time.Time
	BookedBefore *time.Time
}
