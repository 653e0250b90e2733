package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/qsr-platform/talent-distribution/models"
	"github.com/qsr-platform/talent-distribution/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ChannelStatRepositoryImpl implements ChannelStatRepository
type ChannelStatRepositoryImpl struct {
	*BaseRepository[models.ChannelStat, models.ChannelStatFilter]
}

func NewChannelStatRepository(db *gorm.DB) ChannelStatRepository {
	return &ChannelStatRepositoryImpl{BaseRepository: NewBaseRepository[models.ChannelStat, models.ChannelStatFilter](db)}
}

func (r *ChannelStatRepositoryImpl) applyFilter(db *gorm.DB, f models.ChannelStatFilter) *gorm.DB {
	if f.ID != nil {
		db = db.Where("id = ?", *f.ID)
	}
	if f.ChannelID != nil {
		db = db.Where("channel_id = ?", *f.ChannelID)
	}
	if f.Date != nil {
		db = db.Where("date = ?", *f.Date)
	}
	if f.DateAfter != nil {
		db = db.Where("date >= ?", *f.DateAfter)
	}
	if f.DateBefore != nil {
		db = db.Where("date < ?", *f.DateBefore)
	}
	return db
}

func (r *ChannelStatRepositoryImpl) ByFilter(ctx context.Context, filter models.ChannelStatFilter, orderBy string, limit, offset int) ([]*models.ChannelStat, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.ChannelStat{}), filter)
	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	var rows []*models.ChannelStat
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *ChannelStatRepositoryImpl) Count(ctx context.Context, filter models.ChannelStatFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.ChannelStat{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *ChannelStatRepositoryImpl) Exists(ctx context.Context, filter models.ChannelStatFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}

func (r *ChannelStatRepositoryImpl) ByChannelAndDate(ctx context.Context, channelID uint, date time.Time) (*models.ChannelStat, error) {
	day := utils.StartOfDayUTC(date)
	filter := models.ChannelStatFilter{ChannelID: &channelID, Date: &day}
	rows, err := r.ByFilter(ctx, filter, "id DESC", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// ByChannelAndDateForUpdate locks today's counter row so concurrent batches
// targeting the same channel serialize on the quota check.
func (r *ChannelStatRepositoryImpl) ByChannelAndDateForUpdate(ctx context.Context, channelID uint, date time.Time) (*models.ChannelStat, error) {
	db := r.getDB(ctx)
	var row models.ChannelStat
	err := db.Clauses(forUpdateClause()).
		Where("channel_id = ? AND date = ?", channelID, utils.StartOfDayUTC(date)).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// IncrementAssigned upserts the per-day counter, adding delta to the running
// total and recording the channel's current active assignment count. Must be
// called inside the same transaction as the assignment insert.
func (r *ChannelStatRepositoryImpl) IncrementAssigned(ctx context.Context, channelID uint, date time.Time, delta int, activeCount int) error {
	db := r.getDB(ctx)
	stat := models.ChannelStat{
		ChannelID:     channelID,
		Date:          utils.StartOfDayUTC(date),
		TotalAssigned: delta,
		ActiveCount:   activeCount,
	}
	err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "channel_id"}, {Name: "date"}},
		DoUpdates: clause.Assignments(map[string]any{
			"total_assigned": gorm.Expr("channel_stats.total_assigned + ?", delta),
			"active_count":   activeCount,
			"updated_at":     utils.UTCNow(),
		}),
	}).Create(&stat).Error
	if err != nil {
		return fmt.Errorf("failed to increment channel stats for channel %d: %w", channelID, err)
	}
	return nil
}

func (r *ChannelStatRepositoryImpl) SumAssignedByChannel(ctx context.Context, channelID uint) (int64, error) {
	db := r.getDB(ctx)
	var sum sql.NullInt64
	err := db.Model(&models.ChannelStat{}).
		Where("channel_id = ?", channelID).
		Select("SUM(total_assigned)").
		Scan(&sum).Error
	if err != nil {
		return 0, err
	}
	if !sum.Valid {
		return 0, nil
	}
	return sum.Int64, nil
}
