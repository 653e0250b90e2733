package repository

import (
	"context"
	"time"

	"github.com/qsr-platform/talent-distribution/models"
	"gorm.io/gorm"
)

// VisitRepositoryImpl implements VisitRepository
type VisitRepositoryImpl struct {
	*BaseRepository[models.Visit, models.VisitFilter]
}

func NewVisitRepository(db *gorm.DB) VisitRepository {
	return &VisitRepositoryImpl{BaseRepository: NewBaseRepository[models.Visit, models.VisitFilter](db)}
}

func (r *VisitRepositoryImpl) applyFilter(db *gorm.DB, f models.VisitFilter) *gorm.DB {
	if f.ID != nil {
		db = db.Where("id = ?", *f.ID)
	}
	if f.ChannelID != nil {
		db = db.Where("channel_id = ?", *f.ChannelID)
	}
	if f.IsPaidSearch != nil {
		db = db.Where("is_paid_search = ?", *f.IsPaidSearch)
	}
	if f.CreatedAfter != nil {
		db = db.Where("created_at >= ?", *f.CreatedAfter)
	}
	if f.CreatedBefore != nil {
		db = db.Where("created_at < ?", *f.CreatedBefore)
	}
	return db
}

func (r *VisitRepositoryImpl) ByFilter(ctx context.Context, filter models.VisitFilter, orderBy string, limit, offset int) ([]*models.Visit, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Visit{}), filter)
	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	var rows []*models.Visit
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *VisitRepositoryImpl) Count(ctx context.Context, filter models.VisitFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Visit{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *VisitRepositoryImpl) Exists(ctx context.Context, filter models.VisitFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}

func (r *VisitRepositoryImpl) CountByChannelSince(ctx context.Context, channelID uint, since time.Time) (int64, error) {
	return r.Count(ctx, models.VisitFilter{ChannelID: &channelID, CreatedAfter: &since})
}
