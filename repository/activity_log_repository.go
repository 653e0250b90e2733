package repository

import (
	"context"

	"github.com/qsr-platform/talent-distribution/models"
	"gorm.io/gorm"
)

// ActivityLogRepositoryImpl implements ActivityLogRepository
type ActivityLogRepositoryImpl struct {
	*BaseRepository[models.ActivityLog, models.ActivityLogFilter]
}

func NewActivityLogRepository(db *gorm.DB) ActivityLogRepository {
	return &ActivityLogRepositoryImpl{BaseRepository: NewBaseRepository[models.ActivityLog, models.ActivityLogFilter](db)}
}

func (r *ActivityLogRepositoryImpl) applyFilter(db *gorm.DB, f models.ActivityLogFilter) *gorm.DB {
	if f.ID != nil {
		db = db.Where("id = ?", *f.ID)
	}
	if f.ActorID != nil {
		db = db.Where("actor_id = ?", *f.ActorID)
	}
	if f.Action != nil {
		db = db.Where("action = ?", *f.Action)
	}
	if f.Success != nil {
		db = db.Where("success = ?", *f.Success)
	}
	if f.RequestID != nil {
		db = db.Where("request_id = ?", *f.RequestID)
	}
	if f.CreatedAfter != nil {
		db = db.Where("created_at >= ?", *f.CreatedAfter)
	}
	if f.CreatedBefore != nil {
		db = db.Where("created_at < ?", *f.CreatedBefore)
	}
	return db
}

func (r *ActivityLogRepositoryImpl) ByFilter(ctx context.Context, filter models.ActivityLogFilter, orderBy string, limit, offset int) ([]*models.ActivityLog, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.ActivityLog{}), filter)
	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	var rows []*models.ActivityLog
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *ActivityLogRepositoryImpl) Count(ctx context.Context, filter models.ActivityLogFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.ActivityLog{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *ActivityLogRepositoryImpl) Exists(ctx context.Context, filter models.ActivityLogFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}

func (r *ActivityLogRepositoryImpl) ListByActor(ctx context.Context, actorID uint, limit, offset int) ([]*models.ActivityLog, error) {
	return r.ByFilter(ctx, models.ActivityLogFilter{ActorID: &actorID}, "created_at DESC", limit, offset)
}

func (r *ActivityLogRepositoryImpl) ListByAction(ctx context.Context, action string, limit, offset int) ([]*models.ActivityLog, error) {
	return r.ByFilter(ctx, models.ActivityLogFilter{Action: &action}, "created_at DESC", limit, offset)
}

func (r *ActivityLogRepositoryImpl) ListFailedActions(ctx context.Context, limit, offset int) ([]*models.ActivityLog, error) {
	failed := false
	return r.ByFilter(ctx, models.ActivityLogFilter{Success: &failed}, "created_at DESC", limit, offset)
}
