package repository

import (
	"context"
	"fmt"

	"github.com/qsr-platform/talent-distribution/models"
	"gorm.io/gorm"
)

// BookingRepositoryImpl implements BookingRepository
type BookingRepositoryImpl struct {
	*BaseRepository[models.Booking, models.BookingFilter]
}

func NewBookingRepository(db *gorm.DB) BookingRepository {
	return &BookingRepositoryImpl{BaseRepository: NewBaseRepository[models.Booking, models.BookingFilter](db)}
}

func (r *BookingRepositoryImpl) applyFilter(db *gorm.DB, f models.BookingFilter) *gorm.DB {
	if f.ID != nil {
		db = db.Where("id = ?", *f.ID)
	}
	if f.CandidateID != nil {
		db = db.Where("candidate_id = ?", *f.CandidateID)
	}
	if f.BookedBy != nil {
		db = db.Where("booked_by = ?", *f.BookedBy)
	}
	if f.BookedAfter != nil {
		db = db.Where("booked_at >= ?", *f.BookedAfter)
	}
	if f.BookedBefore != nil {
		db = db.Where("booked_at < ?", *f.BookedBefore)
	}
	return db
}

func (r *BookingRepositoryImpl) ByFilter(ctx context.Context, filter models.BookingFilter, orderBy string, limit, offset int) ([]*models.Booking, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Booking{}), filter)
	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	var rows []*models.Booking
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *BookingRepositoryImpl) Count(ctx context.Context, filter models.BookingFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Booking{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *BookingRepositoryImpl) Exists(ctx context.Context, filter models.BookingFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}

func (r *BookingRepositoryImpl) ByCandidateID(ctx context.Context, candidateID uint) (*models.Booking, error) {
	filter := models.BookingFilter{CandidateID: &candidateID}
	rows, err := r.ByFilter(ctx, filter, "id DESC", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// CountByChannel counts bookings whose candidate is actively assigned to the
// given channel.
func (r *BookingRepositoryImpl) CountByChannel(ctx context.Context, channelID uint) (int64, error) {
	db := r.getDB(ctx)
	var count int64
	err := db.Model(&models.Booking{}).
		Joins("JOIN assignments ON assignments.candidate_id = bookings.candidate_id AND assignments.is_active = true").
		Where("assignments.channel_id = ?", channelID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *BookingRepositoryImpl) DeleteByID(ctx context.Context, id uint) error {
	db := r.getDB(ctx)
	result := db.Delete(&models.Booking{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete booking %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
