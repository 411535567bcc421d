package repository

import (
	"errors"

	"github.com/inkwell-cms/inkwell-backend/internal/common"
	"github.com/inkwell-cms/inkwell-backend/internal/domain"
	"gorm.io/gorm"
)

// RevisionRepository is the append-only revision log. Rows are never
// updated; DeleteByEntity exists only for the hard-delete cascade.
type RevisionRepository interface {
	Record(entityType string, entityID uint64, payload []byte) (*domain.Revision, error)
	Find(id uint64) (*domain.Revision, error)
	List(entityType string, entityID uint64, limit, offset int) ([]*domain.Revision, error)
	CountByEntity(entityType string, entityID uint64) (int64, error)
	DeleteByEntity(entityType string, entityID uint64) error
}

type revisionRepository struct {
	db *gorm.DB
}

// NewRevisionRepository creates a RevisionRepository. Pass a transaction
// handle to get a tx-scoped instance.
func NewRevisionRepository(db *gorm.DB) RevisionRepository {
	return &revisionRepository{db: db}
}

func (r *revisionRepository) Record(entityType string, entityID uint64, payload []byte) (*domain.Revision, error) {
	rev := domain.Revision{
		EntityType: entityType,
		EntityID:   entityID,
		Payload:    payload,
	}
	if err := r.db.Create(&rev).Error; err != nil {
		return nil, err
	}
	return &rev, nil
}

func (r *revisionRepository) Find(id uint64) (*domain.Revision, error) {
	var rev domain.Revision
	err := r.db.First(&rev, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rev, nil
}

// List returns revisions newest first. id DESC breaks ties between rows
// created within one timestamp granule.
func (r *revisionRepository) List(entityType string, entityID uint64, limit, offset int) ([]*domain.Revision, error) {
	var rows []*domain.Revision
	q := r.db.Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("created_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}
	err := q.Find(&rows).Error
	return rows, err
}

func (r *revisionRepository) CountByEntity(entityType string, entityID uint64) (int64, error) {
	var count int64
	err := r.db.Model(&domain.Revision{}).
		Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Count(&count).Error
	return count, err
}

func (r *revisionRepository) DeleteByEntity(entityType string, entityID uint64) error {
	return r.db.Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Delete(&domain.Revision{}).Error
}
