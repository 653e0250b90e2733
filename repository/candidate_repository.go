package repository

import (
	"context"
	"fmt"

	"github.com/qsr-platform/talent-distribution/models"
	"github.com/qsr-platform/talent-distribution/utils"
	"gorm.io/gorm"
)

// CandidateRepositoryImpl implements CandidateRepository
type CandidateRepositoryImpl struct {
	*BaseRepository[models.Candidate, models.CandidateFilter]
}

func NewCandidateRepository(db *gorm.DB) CandidateRepository {
	return &CandidateRepositoryImpl{BaseRepository: NewBaseRepository[models.Candidate, models.CandidateFilter](db)}
}

func (r *CandidateRepositoryImpl) applyFilter(db *gorm.DB, f models.CandidateFilter) *gorm.DB {
	if f.ID != nil {
		db = db.Where("id = ?", *f.ID)
	}
	if f.UUID != nil {
		db = db.Where("uuid = ?", *f.UUID)
	}
	if f.ReferenceCode != nil {
		db = db.Where("reference_code = ?", *f.ReferenceCode)
	}
	if f.Status != nil {
		db = db.Where("status = ?", *f.Status)
	}
	if f.Nationality != nil {
		db = db.Where("nationality = ?", *f.Nationality)
	}
	if f.Position != nil {
		db = db.Where("position LIKE ?", "%"+*f.Position+"%")
	}
	if f.CreatedAfter != nil {
		db = db.Where("created_at >= ?", *f.CreatedAfter)
	}
	if f.CreatedBefore != nil {
		db = db.Where("created_at < ?", *f.CreatedBefore)
	}
	return db
}

func (r *CandidateRepositoryImpl) ByFilter(ctx context.Context, filter models.CandidateFilter, orderBy string, limit, offset int) ([]*models.Candidate, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Candidate{}), filter)
	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	var rows []*models.Candidate
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *CandidateRepositoryImpl) Count(ctx context.Context, filter models.CandidateFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Candidate{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *CandidateRepositoryImpl) Exists(ctx context.Context, filter models.CandidateFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}

func (r *CandidateRepositoryImpl) ByUUID(ctx context.Context, uuid string) (*models.Candidate, error) {
	filter := models.CandidateFilter{UUID: &uuid}
	rows, err := r.ByFilter(ctx, filter, "id DESC", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *CandidateRepositoryImpl) ListByIDs(ctx context.Context, ids []uint) ([]*models.Candidate, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	db := r.getDB(ctx)
	var rows []*models.Candidate
	if err := db.Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListUnassignedNew returns NEW candidates without an active assignment,
// oldest first, the pool AutoDistribute draws from.
func (r *CandidateRepositoryImpl) ListUnassignedNew(ctx context.Context, limit int) ([]*models.Candidate, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.Candidate{}).
		Where("status = ?", models.CandidateStatusNew).
		Where("NOT EXISTS (SELECT 1 FROM assignments a WHERE a.candidate_id = candidates.id AND a.is_active)").
		Order("id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var rows []*models.Candidate
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *CandidateRepositoryImpl) UpdateStatus(ctx context.Context, candidateID uint, status string) error {
	db := r.getDB(ctx)
	result := db.Model(&models.Candidate{}).
		Where("id = ?", candidateID).
		Updates(map[string]any{"status": status, "updated_at": utils.UTCNow()})
	if result.Error != nil {
		return fmt.Errorf("failed to update candidate %d status: %w", candidateID, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
