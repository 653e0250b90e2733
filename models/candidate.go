package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Candidate statuses managed by this engine. Rejected/archived candidates are
// owned by the import pipeline and never transitioned here.
const (
	CandidateStatusNew    = "NEW"
	CandidateStatusBooked = "BOOKED"
	CandidateStatusHired  = "HIRED"
)

// Candidate represents an inventory record (a candidate profile) that can be
// NEW, BOOKED, or HIRED. Rows are created by the external import pipeline in
// state NEW.
type Candidate struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UUID          uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_candidates_uuid" json:"uuid"`
	ReferenceCode string    `gorm:"size:64;not null;uniqueIndex:uk_candidates_reference_code" json:"reference_code"`
	FullName      string    `gorm:"size:255;not null" json:"full_name"`
	Nationality   *string   `gorm:"size:64;index:idx_candidates_nationality" json:"nationality,omitempty"`
	Position      *string   `gorm:"size:128;index:idx_candidates_position" json:"position,omitempty"`
	Status        string    `gorm:"size:16;not null;default:'NEW';index:idx_candidates_status" json:"status"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_candidates_created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

// TableName returns the table name for Candidate
func (Candidate) TableName() string { return "candidates" }

// CandidateFilter provides filter fields for repository queries
type CandidateFilter struct {
	ID            *uint
	UUID          *string
	ReferenceCode *string
	Status        *string
	Nationality   *string
	Position      *string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}

// SkillLevel is the canonical three-valued skill/language scale used across
// candidate profiles. NONE marks an explicit "not applicable" answer.
type SkillLevel string

const (
	SkillLevelYes     SkillLevel = "YES"
	SkillLevelWilling SkillLevel = "WILLING"
	SkillLevelNo      SkillLevel = "NO"
	SkillLevelNone    SkillLevel = "NONE"
)

// skillLevelAliases is the single normalization table for the inconsistent
// encodings found in upstream import files. Historical imports used at least
// three mappings of the same scale; importers must go through
// NormalizeSkillLevel instead of mapping ad hoc.
var skillLevelAliases = map[string]SkillLevel{
	// canonical values pass through
	"yes":     SkillLevelYes,
	"willing": SkillLevelWilling,
	"no":      SkillLevelNo,
	"none":    SkillLevelNone,

	// english quality scale
	"excellent": SkillLevelYes,
	"good":      SkillLevelWilling,
	"weak":      SkillLevelNo,
	"poor":      SkillLevelNo,

	// arabic source values
	"ممتاز":        SkillLevelYes,
	"نعم":          SkillLevelYes,
	"جيد":          SkillLevelWilling,
	"مستعد":        SkillLevelWilling,
	"مستعدة":       SkillLevelWilling,
	"مستعدة للتعلم": SkillLevelWilling,
	"ضعيف":         SkillLevelNo,
	"لا":           SkillLevelNone,
}

// NormalizeSkillLevel maps a raw imported value onto the canonical scale.
// Unknown values normalize to NONE so imports never fail on free text.
func NormalizeSkillLevel(raw string) SkillLevel {
	if level, ok := skillLevelAliases[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return level
	}
	return SkillLevelNone
}
