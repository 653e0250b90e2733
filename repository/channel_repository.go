package repository

import (
	"context"
	"fmt"

	"github.com/qsr-platform/talent-distribution/models"
	"gorm.io/gorm"
)

// ChannelRepositoryImpl implements ChannelRepository
type ChannelRepositoryImpl struct {
	*BaseRepository[models.Channel, models.ChannelFilter]
}

func NewChannelRepository(db *gorm.DB) ChannelRepository {
	return &ChannelRepositoryImpl{BaseRepository: NewBaseRepository[models.Channel, models.ChannelFilter](db)}
}

func (r *ChannelRepositoryImpl) applyFilter(db *gorm.DB, f models.ChannelFilter) *gorm.DB {
	if f.ID != nil {
		db = db.Where("id = ?", *f.ID)
	}
	if f.Slug != nil {
		db = db.Where("slug = ?", *f.Slug)
	}
	if f.IsActive != nil {
		db = db.Where("is_active = ?", *f.IsActive)
	}
	if f.AutoDistribute != nil {
		db = db.Where("auto_distribute = ?", *f.AutoDistribute)
	}
	return db
}

func (r *ChannelRepositoryImpl) ByFilter(ctx context.Context, filter models.ChannelFilter, orderBy string, limit, offset int) ([]*models.Channel, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Channel{}), filter)
	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	var rows []*models.Channel
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *ChannelRepositoryImpl) Count(ctx context.Context, filter models.ChannelFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Channel{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *ChannelRepositoryImpl) Exists(ctx context.Context, filter models.ChannelFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}

func (r *ChannelRepositoryImpl) BySlug(ctx context.Context, slug string) (*models.Channel, error) {
	filter := models.ChannelFilter{Slug: &slug}
	rows, err := r.ByFilter(ctx, filter, "id DESC", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// ListActive returns active channels ordered by priority then id, the order
// the weighted selector walks.
func (r *ChannelRepositoryImpl) ListActive(ctx context.Context) ([]*models.Channel, error) {
	active := true
	return r.ByFilter(ctx, models.ChannelFilter{IsActive: &active}, "priority DESC, id ASC", 0, 0)
}

func (r *ChannelRepositoryImpl) ListAutoDistribute(ctx context.Context) ([]*models.Channel, error) {
	active := true
	auto := true
	return r.ByFilter(ctx, models.ChannelFilter{IsActive: &active, AutoDistribute: &auto}, "priority DESC, id ASC", 0, 0)
}

func (r *ChannelRepositoryImpl) Update(ctx context.Context, channel *models.Channel) error {
	db := r.getDB(ctx)
	if err := db.Save(channel).Error; err != nil {
		return fmt.Errorf("failed to update channel %d: %w", channel.ID, err)
	}
	return nil
}
