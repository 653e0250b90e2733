package models

import (
	"encoding/json"
	"time"
)

// ActivityLog is the append-only audit trail for engine operations. Both
// successful and failed operations are recorded with the actor and the
// specific violated invariant when one applies.
type ActivityLog struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	ActorID      *uint           `gorm:"index:idx_activity_actor_id" json:"actor_id,omitempty"`
	Action       string          `gorm:"size:64;not null;index:idx_activity_action" json:"action"`
	Description  *string         `gorm:"type:text" json:"description,omitempty"`
	Metadata     json.RawMessage `gorm:"type:jsonb" json:"metadata,omitempty"`
	Success      *bool           `gorm:"default:true;index:idx_activity_success" json:"success"`
	ErrorMessage *string         `gorm:"type:text" json:"error_message,omitempty"`
	IPAddress    *string         `gorm:"type:inet" json:"ip_address,omitempty"`
	RequestID    *string         `gorm:"size:255;index:idx_activity_request_id" json:"request_id,omitempty"`
	CreatedAt    time.Time       `gorm:"default:CURRENT_TIMESTAMP;index:idx_activity_created_at" json:"created_at"`
}

// TableName returns the table name for ActivityLog
func (ActivityLog) TableName() string { return "activity_log" }

// Activity action constants
const (
	ActivityActionVisitorRouted           = "visitor_routed"
	ActivityActionBatchAssigned           = "batch_assigned"
	ActivityActionBatchAssignFailed       = "batch_assign_failed"
	ActivityActionAutoDistributed         = "auto_distributed"
	ActivityActionAutoDistributeFailed    = "auto_distribute_failed"
	ActivityActionAssignmentRemoved       = "assignment_removed"
	ActivityActionAssignmentsSwept        = "assignments_swept"
	ActivityActionCandidateBooked         = "candidate_booked"
	ActivityActionCandidateBookFailed     = "candidate_book_failed"
	ActivityActionCandidateHired          = "candidate_hired"
	ActivityActionCandidateHireFailed     = "candidate_hire_failed"
	ActivityActionContractCancelled       = "contract_cancelled"
	ActivityActionContractCancelFailed    = "contract_cancel_failed"
	ActivityActionChannelRuleUpdated      = "channel_rule_updated"
	ActivityActionChannelRuleUpdateFailed = "channel_rule_update_failed"
)

// ActivityLogFilter provides filter fields for repository queries
type ActivityLogFilter struct {
	ID            *uint
	ActorID       *uint
	Action        *string
	Success       *bool
	RequestID     *string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}

func (a *ActivityLog) IsFailed() bool {
	return a.Success != nil && !*a.Success
}
