package repository

import (
	"context"
	"fmt"

	"github.com/qsr-platform/talent-distribution/models"
	"gorm.io/gorm"
)

// ContractRepositoryImpl implements ContractRepository
type ContractRepositoryImpl struct {
	*BaseRepository[models.Contract, models.ContractFilter]
}

func NewContractRepository(db *gorm.DB) ContractRepository {
	return &ContractRepositoryImpl{BaseRepository: NewBaseRepository[models.Contract, models.ContractFilter](db)}
}

func (r *ContractRepositoryImpl) applyFilter(db *gorm.DB, f models.ContractFilter) *gorm.DB {
	if f.ID != nil {
		db = db.Where("id = ?", *f.ID)
	}
	if f.CandidateID != nil {
		db = db.Where("candidate_id = ?", *f.CandidateID)
	}
	if f.CreatedBy != nil {
		db = db.Where("created_by = ?", *f.CreatedBy)
	}
	if f.CreatedAfter != nil {
		db = db.Where("created_at >= ?", *f.CreatedAfter)
	}
	if f.CreatedBefore != nil {
		db = db.Where("created_at < ?", *f.CreatedBefore)
	}
	return db
}

func (r *ContractRepositoryImpl) ByFilter(ctx context.Context, filter models.ContractFilter, orderBy string, limit, offset int) ([]*models.Contract, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Contract{}), filter)
	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	var rows []*models.Contract
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *ContractRepositoryImpl) Count(ctx context.Context, filter models.ContractFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Contract{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *ContractRepositoryImpl) Exists(ctx context.Context, filter models.ContractFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}

func (r *ContractRepositoryImpl) ByCandidateID(ctx context.Context, candidateID uint) (*models.Contract, error) {
	filter := models.ContractFilter{CandidateID: &candidateID}
	rows, err := r.ByFilter(ctx, filter, "id DESC", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// CountByChannel counts contracts whose candidate is actively assigned to
// the given channel.
func (r *ContractRepositoryImpl) CountByChannel(ctx context.Context, channelID uint) (int64, error) {
	db := r.getDB(ctx)
	var count int64
	err := db.Model(&models.Contract{}).
		Joins("JOIN assignments ON assignments.candidate_id = contracts.candidate_id AND assignments.is_active = true").
		Where("assignments.channel_id = ?", channelID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *ContractRepositoryImpl) DeleteByID(ctx context.Context, id uint) error {
	db := r.getDB(ctx)
	result := db.Delete(&models.Contract{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete contract %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
