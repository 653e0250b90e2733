package models

import "time"

// Contract marks the finalized placement of a candidate. A contract row
// exists iff the candidate status is HIRED.
type Contract struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	CandidateID       uint       `gorm:"not null;uniqueIndex:uk_contracts_candidate_id" json:"candidate_id"`
	IdentityNumber    string     `gorm:"size:64;not null" json:"identity_number"`
	ContractStartDate time.Time  `gorm:"not null" json:"contract_start_date"`
	ContractEndDate   *time.Time `json:"contract_end_date,omitempty"`
	CreatedBy         uint       `gorm:"not null" json:"created_by"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_contracts_created_at" json:"created_at"`
}

// TableName returns the table name for Contract
func (Contract) TableName() string { return "contracts" }

// ContractFilter provides filter fields for repository queries
type ContractFilter struct {
	ID            *uint
	CandidateID   *uint
	CreatedBy     *uint
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
