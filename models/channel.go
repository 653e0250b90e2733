// Package models contains domain entities and business models for the distribution engine
package models

import "time"

// Channel represents a sales destination that can receive routed visitors and
// assigned candidates. GoogleWeight and OtherWeight are relative shares per
// traffic source; they are normalized by their actual sum and are not required
// to add up to 100 across channels.
type Channel struct {
	ID             uint    `gorm:"primaryKey" json:"id"`
	Slug           string  `gorm:"size:64;not null;uniqueIndex:uk_channels_slug" json:"slug"`
	Name           string  `gorm:"size:255;not null" json:"name"`
	GoogleWeight   float64 `gorm:"not null;default:0" json:"google_weight"`
	OtherWeight    float64 `gorm:"not null;default:0" json:"other_weight"`
	IsActive       bool    `gorm:"not null;default:true;index:idx_channels_is_active" json:"is_active"`
	AutoDistribute bool    `gorm:"not null;default:true" json:"auto_distribute"`
	DailyLimit     *int    `json:"daily_limit,omitempty"`
	TotalLimit     *int    `json:"total_limit,omitempty"`
	Priority       int     `gorm:"not null;default:0;index:idx_channels_priority" json:"priority"`
	Nationality    *string `gorm:"size:64" json:"nationality,omitempty"`
	Position       *string `gorm:"size:128" json:"position,omitempty"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

// TableName returns the table name for Channel
func (Channel) TableName() string { return "channels" }

// InventoryWeight is the channel's relative share of batch-assigned inventory.
// The combined traffic share is used so that a channel receiving more visitors
// also receives proportionally more candidates.
func (c *Channel) InventoryWeight() float64 {
	return c.GoogleWeight + c.OtherWeight
}

// ChannelFilter provides filter fields for repository queries
type ChannelFilter struct {
	ID             *uint
	Slug           *string
	IsActive       *bool
	AutoDistribute *bool
}
