package models

import "time"

// Assignment pairs a candidate with a channel. At most one active row may
// exist per candidate at any time; the partial unique index backs the
// invariant and the assignment flow enforces it transactionally.
type Assignment struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	CandidateID uint       `gorm:"not null;index:idx_assignments_candidate_id;uniqueIndex:uk_assignments_active_candidate,where:is_active" json:"candidate_id"`
	ChannelID   uint       `gorm:"not null;index:idx_assignments_channel_id" json:"channel_id"`
	AssignedBy  uint       `gorm:"not null" json:"assigned_by"`
	AssignedAt  time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_assignments_assigned_at" json:"assigned_at"`
	IsActive    bool       `gorm:"not null;default:true;index:idx_assignments_is_active" json:"is_active"`
	RemovedAt   *time.Time `json:"removed_at,omitempty"`
	RemovedBy   *uint      `json:"removed_by,omitempty"`
	Notes       *string    `gorm:"type:text" json:"notes,omitempty"`
}

// TableName returns the table name for Assignment
func (Assignment) TableName() string { return "assignments" }

// AssignmentFilter provides filter fields for repository queries
type AssignmentFilter struct {
	ID             *uint
	CandidateID    *uint
	ChannelID      *uint
	IsActive       *bool
	AssignedAfter  *time.Time
	AssignedBefore *time.Time
}
