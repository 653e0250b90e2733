package models

import "time"

// ChannelStat is the per-channel, per-day assignment counter. The daily and
// total limit checks read and increment these rows inside the same
// transaction as the assignment insert, so concurrent batches racing on the
// same channel cannot over-commit its quota.
type ChannelStat struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	ChannelID     uint      `gorm:"not null;uniqueIndex:uk_channel_stats_channel_date" json:"channel_id"`
	Date          time.Time `gorm:"type:date;not null;uniqueIndex:uk_channel_stats_channel_date" json:"date"`
	TotalAssigned int       `gorm:"not null;default:0" json:"total_assigned"`
	ActiveCount   int       `gorm:"not null;default:0" json:"active_count"`

	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

// TableName returns the table name for ChannelStat
func (ChannelStat) TableName() string { return "channel_stats" }

// ChannelStatFilter provides filter fields for repository queries
type ChannelStatFilter struct {
	ID         *uint
	ChannelID  *uint
	Date       *time.Time
	DateAfter  *time.Time
	DateBefore *time.Time
}
