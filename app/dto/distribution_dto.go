package dto

import "time"

// RouteVisitorResponse is the routing decision returned to the landing page.
// The bucket token must be persisted client-side (cookie) and echoed on the
// next visit.
type RouteVisitorResponse struct {
	ChannelSlug  string `json:"channel_slug"`
	BucketToken  string `json:"bucket_token"`
	IsPaidSearch bool   `json:"is_paid_search"`
}

// AssignBatchRequest assigns a batch of candidates to one channel
type AssignBatchRequest struct {
	CandidateIDs []uint  `json:"candidate_ids" validate:"required,min=1,max=500,dive,gt=0"`
	ChannelID    uint    `json:"channel_id" validate:"required,gt=0"`
	Notes        *string `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

// AssignBatchResponse reports how many candidates were assigned
type AssignBatchResponse struct {
	AssignedCount int  `json:"assigned_count"`
	ChannelID     uint `json:"channel_id"`
}

// AutoDistributeRequest spreads unassigned candidates across channels
type AutoDistributeRequest struct {
	Total int `json:"total" validate:"required,gt=0,lte=10000"`
}

// AutoDistributeResponse reports assigned counts per channel slug
type AutoDistributeResponse struct {
	Distributed   map[string]int `json:"distributed"`
	AssignedTotal int            `json:"assigned_total"`
}

// RemoveAssignmentRequest releases a candidate's active assignment
type RemoveAssignmentRequest struct {
	CandidateID uint `json:"candidate_id" validate:"required,gt=0"`
}

// SweepResponse reports how many stale assignments were released
type SweepResponse struct {
	SweptCount int64 `json:"swept_count"`
}

// ChannelRuleDTO is the admin view of one channel's distribution rule
type ChannelRuleDTO struct {
	ID             uint    `json:"id"`
	Slug           string  `json:"slug"`
	Name           string  `json:"name"`
	GoogleWeight   float64 `json:"google_weight"`
	OtherWeight    float64 `json:"other_weight"`
	IsActive       bool    `json:"is_active"`
	AutoDistribute bool    `json:"auto_distribute"`
	DailyLimit     *int    `json:"daily_limit,omitempty"`
	TotalLimit     *int    `json:"total_limit,omitempty"`
	Priority       int     `json:"priority"`
	Nationality    *string `json:"nationality,omitempty"`
	Position       *string `json:"position,omitempty"`
}

// UpdateChannelRuleRequest updates a channel's distribution rule. Omitted
// fields stay unchanged; the clear flags reset limits to unlimited.
type UpdateChannelRuleRequest struct {
	Name            *string  `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	GoogleWeight    *float64 `json:"google_weight,omitempty" validate:"omitempty,gte=0"`
	OtherWeight     *float64 `json:"other_weight,omitempty" validate:"omitempty,gte=0"`
	IsActive        *bool    `json:"is_active,omitempty"`
	AutoDistribute  *bool    `json:"auto_distribute,omitempty"`
	DailyLimit      *int     `json:"daily_limit,omitempty" validate:"omitempty,gte=0"`
	ClearDailyLimit bool     `json:"clear_daily_limit,omitempty"`
	TotalLimit      *int     `json:"total_limit,omitempty" validate:"omitempty,gte=0"`
	ClearTotalLimit bool     `json:"clear_total_limit,omitempty"`
	Priority        *int     `json:"priority,omitempty"`
}

// BookCandidateRequest reserves a candidate
type BookCandidateRequest struct {
	IdentityNumber string  `json:"identity_number" validate:"required,min=3,max=64"`
	Notes          *string `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

// BookCandidateResponse confirms the reservation
type BookCandidateResponse struct {
	BookingID   uint      `json:"booking_id"`
	CandidateID uint      `json:"candidate_id"`
	BookedAt    time.Time `json:"booked_at"`
}

// HireCandidateRequest finalizes a candidate into a contract. The identity
// number may be omitted when a booking already carries it.
type HireCandidateRequest struct {
	IdentityNumber    string     `json:"identity_number,omitempty" validate:"omitempty,min=3,max=64"`
	ContractStartDate *time.Time `json:"contract_start_date,omitempty"`
}

// HireCandidateResponse confirms the contract
type HireCandidateResponse struct {
	ContractID        uint      `json:"contract_id"`
	CandidateID       uint      `json:"candidate_id"`
	ContractStartDate time.Time `json:"contract_start_date"`
}
