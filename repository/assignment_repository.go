package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/qsr-platform/talent-distribution/models"
	"gorm.io/gorm"
)

// AssignmentRepositoryImpl implements AssignmentRepository
type AssignmentRepositoryImpl struct {
	*BaseRepository[models.Assignment, models.AssignmentFilter]
}

func NewAssignmentRepository(db *gorm.DB) AssignmentRepository {
	return &AssignmentRepositoryImpl{BaseRepository: NewBaseRepository[models.Assignment, models.AssignmentFilter](db)}
}

func (r *AssignmentRepositoryImpl) applyFilter(db *gorm.DB, f models.AssignmentFilter) *gorm.DB {
	if f.ID != nil {
		db = db.Where("id = ?", *f.ID)
	}
	if f.CandidateID != nil {
		db = db.Where("candidate_id = ?", *f.CandidateID)
	}
	if f.ChannelID != nil {
		db = db.Where("channel_id = ?", *f.ChannelID)
	}
	if f.IsActive != nil {
		db = db.Where("is_active = ?", *f.IsActive)
	}
	if f.AssignedAfter != nil {
		db = db.Where("assigned_at >= ?", *f.AssignedAfter)
	}
	if f.AssignedBefore != nil {
		db = db.Where("assigned_at < ?", *f.AssignedBefore)
	}
	return db
}

func (r *AssignmentRepositoryImpl) ByFilter(ctx context.Context, filter models.AssignmentFilter, orderBy string, limit, offset int) ([]*models.Assignment, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Assignment{}), filter)
	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	var rows []*models.Assignment
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *AssignmentRepositoryImpl) Count(ctx context.Context, filter models.AssignmentFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Assignment{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *AssignmentRepositoryImpl) Exists(ctx context.Context, filter models.AssignmentFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}

func (r *AssignmentRepositoryImpl) ActiveByCandidateID(ctx context.Context, candidateID uint) (*models.Assignment, error) {
	active := true
	filter := models.AssignmentFilter{CandidateID: &candidateID, IsActive: &active}
	rows, err := r.ByFilter(ctx, filter, "id DESC", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *AssignmentRepositoryImpl) CountActiveByChannel(ctx context.Context, channelID uint) (int64, error) {
	active := true
	return r.Count(ctx, models.AssignmentFilter{ChannelID: &channelID, IsActive: &active})
}

func (r *AssignmentRepositoryImpl) CountActiveByChannelSince(ctx context.Context, channelID uint, since time.Time) (int64, error) {
	active := true
	return r.Count(ctx, models.AssignmentFilter{ChannelID: &channelID, IsActive: &active, AssignedAfter: &since})
}

// DeactivateActiveByCandidateIDs retires every active assignment of the given
// candidates. Returns the number of rows deactivated.
func (r *AssignmentRepositoryImpl) DeactivateActiveByCandidateIDs(ctx context.Context, candidateIDs []uint, removedBy uint, removedAt time.Time) (int64, error) {
	if len(candidateIDs) == 0 {
		return 0, nil
	}
	db := r.getDB(ctx)
	result := db.Model(&models.Assignment{}).
		Where("candidate_id IN ?", candidateIDs).
		Where("is_active = ?", true).
		Updates(map[string]any{
			"is_active":  false,
			"removed_at": removedAt,
			"removed_by": removedBy,
		})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to deactivate assignments: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// DeactivateActiveOlderThan retires active assignments assigned before the
// cutoff. Used by the external-scheduler sweep entry point.
func (r *AssignmentRepositoryImpl) DeactivateActiveOlderThan(ctx context.Context, cutoff time.Time, removedBy uint) (int64, error) {
	db := r.getDB(ctx)
	result := db.Model(&models.Assignment{}).
		Where("is_active = ?", true).
		Where("assigned_at < ?", cutoff).
		Updates(map[string]any{
			"is_active":  false,
			"removed_at": time.Now().UTC(),
			"removed_by": removedBy,
		})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to sweep expired assignments: %w", result.Error)
	}
	return result.RowsAffected, nil
}
