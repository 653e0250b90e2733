// Package testing provides test utilities and database setup for testing the distribution engine
package testing

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/qsr-platform/talent-distribution/models"
	"github.com/qsr-platform/talent-distribution/utils"
)

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

// ChannelOption mutates a channel fixture before it is persisted
type ChannelOption func(*models.Channel)

func WithWeights(google, other float64) ChannelOption {
	return func(ch *models.Channel) {
		ch.GoogleWeight = google
		ch.OtherWeight = other
	}
}

func WithDailyLimit(limit int) ChannelOption {
	return func(ch *models.Channel) { ch.DailyLimit = &limit }
}

func WithTotalLimit(limit int) ChannelOption {
	return func(ch *models.Channel) { ch.TotalLimit = &limit }
}

func WithInactive() ChannelOption {
	return func(ch *models.Channel) { ch.IsActive = false }
}

func WithoutAutoDistribute() ChannelOption {
	return func(ch *models.Channel) { ch.AutoDistribute = false }
}

func WithRules(nationality, position string) ChannelOption {
	return func(ch *models.Channel) {
		if nationality != "" {
			ch.Nationality = &nationality
		}
		if position != "" {
			ch.Position = &position
		}
	}
}

func WithPriority(priority int) ChannelOption {
	return func(ch *models.Channel) { ch.Priority = priority }
}

// CreateTestChannel creates an active channel with equal weights by default
func (tf *TestFixtures) CreateTestChannel(slug string, opts ...ChannelOption) (*models.Channel, error) {
	channel := &models.Channel{
		Slug:           slug,
		Name:           fmt.Sprintf("Channel %s", slug),
		GoogleWeight:   50,
		OtherWeight:    50,
		IsActive:       true,
		AutoDistribute: true,
	}
	for _, opt := range opts {
		opt(channel)
	}

	if err := tf.DB.DB.Create(channel).Error; err != nil {
		return nil, fmt.Errorf("failed to create test channel %s: %w", slug, err)
	}
	return channel, nil
}

// CandidateOption mutates a candidate fixture before it is persisted
type CandidateOption func(*models.Candidate)

func WithStatus(status string) CandidateOption {
	return func(c *models.Candidate) { c.Status = status }
}

func WithProfile(nationality, position string) CandidateOption {
	return func(c *models.Candidate) {
		if nationality != "" {
			c.Nationality = &nationality
		}
		if position != "" {
			c.Position = &position
		}
	}
}

// CreateTestCandidate creates a NEW candidate with a unique reference code
func (tf *TestFixtures) CreateTestCandidate(opts ...CandidateOption) (*models.Candidate, error) {
	ref := fmt.Sprintf("REF-%d-%04d", time.Now().UnixNano(), rand.Intn(10000))

	candidate := &models.Candidate{
		UUID:          uuid.New(),
		ReferenceCode: ref,
		FullName:      "Test Candidate",
		Status:        models.CandidateStatusNew,
	}
	for _, opt := range opts {
		opt(candidate)
	}

	if err := tf.DB.DB.Create(candidate).Error; err != nil {
		return nil, fmt.Errorf("failed to create test candidate: %w", err)
	}
	return candidate, nil
}

// CreateTestCandidates creates n NEW candidates
func (tf *TestFixtures) CreateTestCandidates(n int, opts ...CandidateOption) ([]*models.Candidate, error) {
	candidates := make([]*models.Candidate, 0, n)
	for i := 0; i < n; i++ {
		c, err := tf.CreateTestCandidate(opts...)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, c)
	}
	return candidates, nil
}

// CreateTestAssignment creates an active assignment for a candidate
func (tf *TestFixtures) CreateTestAssignment(candidateID, channelID, assignedBy uint) (*models.Assignment, error) {
	assignment := &models.Assignment{
		CandidateID: candidateID,
		ChannelID:   channelID,
		AssignedBy:  assignedBy,
		AssignedAt:  utils.UTCNow(),
		IsActive:    true,
	}

	if err := tf.DB.DB.Create(assignment).Error; err != nil {
		return nil, fmt.Errorf("failed to create test assignment: %w", err)
	}
	return assignment, nil
}

// CreateAgedAssignment creates an active assignment whose AssignedAt lies in the past
func (tf *TestFixtures) CreateAgedAssignment(candidateID, channelID, assignedBy uint, age time.Duration) (*models.Assignment, error) {
	assignment := &models.Assignment{
		CandidateID: candidateID,
		ChannelID:   channelID,
		AssignedBy:  assignedBy,
		AssignedAt:  utils.UTCNow().Add(-age),
		IsActive:    true,
	}

	if err := tf.DB.DB.Create(assignment).Error; err != nil {
		return nil, fmt.Errorf("failed to create aged test assignment: %w", err)
	}
	return assignment, nil
}

// CreateTestBooking creates a booking and flips the candidate to BOOKED
func (tf *TestFixtures) CreateTestBooking(candidateID uint, identityNumber string, bookedBy uint) (*models.Booking, error) {
	booking := &models.Booking{
		CandidateID:    candidateID,
		IdentityNumber: identityNumber,
		BookedBy:       bookedBy,
		BookedAt:       utils.UTCNow(),
	}

	if err := tf.DB.DB.Create(booking).Error; err != nil {
		return nil, fmt.Errorf("failed to create test booking: %w", err)
	}
	if err := tf.DB.DB.Model(&models.Candidate{}).Where("id = ?", candidateID).
		Update("status", models.CandidateStatusBooked).Error; err != nil {
		return nil, fmt.Errorf("failed to mark candidate booked: %w", err)
	}
	return booking, nil
}

// CreateTestVisit records a visit against a channel
func (tf *TestFixtures) CreateTestVisit(channelID uint, isPaidSearch bool) (*models.Visit, error) {
	referrer := "https://www.google.com/"
	if !isPaidSearch {
		referrer = "https://www.facebook.com/"
	}

	visit := &models.Visit{
		UUID:         uuid.New(),
		ChannelID:    channelID,
		IsPaidSearch: isPaidSearch,
		Referrer:     &referrer,
	}

	if err := tf.DB.DB.Create(visit).Error; err != nil {
		return nil, fmt.Errorf("failed to create test visit: %w", err)
	}
	return visit, nil
}
