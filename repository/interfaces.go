// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"time"

	"github.com/qsr-platform/talent-distribution/models"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	SaveBatch(ctx context.Context, entities []*T) error
	Count(ctx context.Context, filter F) (int64, error)
	Exists(ctx context.Context, filter F) (bool, error)
}

// ChannelRepository defines operations for sales channels and their
// distribution rules. Rule configuration is written by the admin surface and
// read by the engine.
type ChannelRepository interface {
	Repository[models.Channel, models.ChannelFilter]
	BySlug(ctx context.Context, slug string) (*models.Channel, error)
	ByIDForUpdate(ctx context.Context, id uint) (*models.Channel, error)
	ListActive(ctx context.Context) ([]*models.Channel, error)
	ListAutoDistribute(ctx context.Context) ([]*models.Channel, error)
	Update(ctx context.Context, channel *models.Channel) error
}

// CandidateRepository defines operations for candidate profiles
type CandidateRepository interface {
	Repository[models.Candidate, models.CandidateFilter]
	ByUUID(ctx context.Context, uuid string) (*models.Candidate, error)
	ByIDForUpdate(ctx context.Context, id uint) (*models.Candidate, error)
	ListByIDs(ctx context.Context, ids []uint) ([]*models.Candidate, error)
	ListUnassignedNew(ctx context.Context, limit int) ([]*models.Candidate, error)
	UpdateStatus(ctx context.Context, candidateID uint, status string) error
}

// AssignmentRepository defines operations for candidate-channel assignments
type AssignmentRepository interface {
	Repository[models.Assignment, models.AssignmentFilter]
	ActiveByCandidateID(ctx context.Context, candidateID uint) (*models.Assignment, error)
	CountActiveByChannel(ctx context.Context, channelID uint) (int64, error)
	CountActiveByChannelSince(ctx context.Context, channelID uint, since time.Time) (int64, error)
	DeactivateActiveByCandidateIDs(ctx context.Context, candidateIDs []uint, removedBy uint, removedAt time.Time) (int64, error)
	DeactivateActiveOlderThan(ctx context.Context, cutoff time.Time, removedBy uint) (int64, error)
}

// BookingRepository defines operations for candidate reservations
type BookingRepository interface {
	Repository[models.Booking, models.BookingFilter]
	ByCandidateID(ctx context.Context, candidateID uint) (*models.Booking, error)
	CountByChannel(ctx context.Context, channelID uint) (int64, error)
	DeleteByID(ctx context.Context, id uint) error
}

// ContractRepository defines operations for finalized placements
type ContractRepository interface {
	Repository[models.Contract, models.ContractFilter]
	ByCandidateID(ctx context.Context, candidateID uint) (*models.Contract, error)
	CountByChannel(ctx context.Context, channelID uint) (int64, error)
	DeleteByID(ctx context.Context, id uint) error
}

// VisitRepository defines operations for routed-visitor tracking
type VisitRepository interface {
	Repository[models.Visit, models.VisitFilter]
	CountByChannelSince(ctx context.Context, channelID uint, since time.Time) (int64, error)
}

// ChannelStatRepository defines operations for per-day assignment counters
type ChannelStatRepository interface {
	Repository[models.ChannelStat, models.ChannelStatFilter]
	ByChannelAndDate(ctx context.Context, channelID uint, date time.Time) (*models.ChannelStat, error)
	ByChannelAndDateForUpdate(ctx context.Context, channelID uint, date time.Time) (*models.ChannelStat, error)
	IncrementAssigned(ctx context.Context, channelID uint, date time.Time, delta int, activeCount int) error
	SumAssignedByChannel(ctx context.Context, channelID uint) (int64, error)
}

// ActivityLogRepository defines operations for the append-only audit trail
type ActivityLogRepository interface {
	Repository[models.ActivityLog, models.ActivityLogFilter]
	ListByActor(ctx context.Context, actorID uint, limit, offset int) ([]*models.ActivityLog, error)
	ListByAction(ctx context.Context, action string, limit, offset int) ([]*models.ActivityLog, error)
	ListFailedActions(ctx context.Context, limit, offset int) ([]*models.ActivityLog, error)
}
