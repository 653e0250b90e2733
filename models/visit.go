package models

import (
	"time"

	"github.com/google/uuid"
)

// Visit records a single routed visitor: which channel the distribution
// picked, what traffic source the referrer classified as, and the ad/UTM
// identifiers the landing URL carried. Written best-effort; routing never
// fails on a tracking error.
type Visit struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UUID         uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_visits_uuid" json:"uuid"`
	ChannelID    uint      `gorm:"not null;index:idx_visits_channel_id" json:"channel_id"`
	IsPaidSearch bool      `gorm:"not null;default:false;index:idx_visits_is_paid_search" json:"is_paid_search"`
	Referrer     *string   `gorm:"type:text" json:"referrer,omitempty"`
	UTMSource    *string   `gorm:"size:255" json:"utm_source,omitempty"`
	UTMMedium    *string   `gorm:"size:255" json:"utm_medium,omitempty"`
	UTMCampaign  *string   `gorm:"size:255" json:"utm_campaign,omitempty"`
	GClID        *string   `gorm:"size:255" json:"gclid,omitempty"`
	FBClID       *string   `gorm:"size:255" json:"fbclid,omitempty"`
	MSClkID      *string   `gorm:"size:255" json:"msclkid,omitempty"`
	TTClID       *string   `gorm:"size:255" json:"ttclid,omitempty"`
	UserAgent    *string   `gorm:"type:text" json:"user_agent,omitempty"`
	IPAddress    *string   `gorm:"type:inet" json:"ip_address,omitempty"`
	Language     *string   `gorm:"size:32" json:"language,omitempty"`
	ScreenWidth  *int      `json:"screen_width,omitempty"`
	ScreenHeight *int      `json:"screen_height,omitempty"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_visits_created_at" json:"created_at"`
}

// TableName returns the table name for Visit
func (Visit) TableName() string { return "visits" }

// VisitFilter provides filter fields for repository queries
type VisitFilter struct {
	ID            *uint
	ChannelID     *uint
	IsPaidSearch  *bool
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
