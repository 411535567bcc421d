package repository

import (
	"errors"

	"github.com/inkwell-cms/inkwell-backend/internal/common"
	"github.com/inkwell-cms/inkwell-backend/internal/domain"
	"github.com/inkwell-cms/inkwell-backend/pkg/slug"
	"gorm.io/gorm"
)

// SlugRepository is the store for locale-scoped slugs. It owns the two slug
// invariants: at most one active row per (entity, locale), and no two
// entities of one type sharing an active slug within a locale.
type SlugRepository interface {
	Upsert(entityType string, entityID uint64, locale string, rawSlug string) (*domain.Slug, error)
	FindActive(entityType string, entityID uint64, locale string) (*domain.Slug, error)
	FindAllByEntity(entityType string, entityID uint64) ([]*domain.Slug, error)
	ResolveEntity(entityType string, locale string, slugStr string) (uint64, error)
	DeleteByEntity(entityType string, entityID uint64) error
}

type slugRepository struct {
	db *gorm.DB
}

// NewSlugRepository creates a SlugRepository. Pass a transaction handle to
// get a tx-scoped instance.
func NewSlugRepository(db *gorm.DB) SlugRepository {
	return &slugRepository{db: db}
}

// Upsert normalizes rawSlug and makes it the entity's active slug for the
// locale. A rename deactivates the previous row instead of deleting it, so
// the old URL keeps resolving. Returns common.ErrSlugConflict when another
// entity already holds the normalized string as an active slug in the same
// (entityType, locale).
func (r *slugRepository) Upsert(entityType string, entityID uint64, locale string, rawSlug string) (*domain.Slug, error) {
	normalized := slug.Normalize(rawSlug)
	if normalized == "" {
		return nil, common.ErrInvalidInput
	}

	current, err := r.FindActive(entityType, entityID, locale)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}
	if current != nil && current.Slug == normalized {
		// Idempotent: already the active slug.
		return current, nil
	}

	var conflicts int64
	err = r.db.Model(&domain.Slug{}).
		Where("entity_type = ? AND locale = ? AND slug = ? AND active = ? AND entity_id != ?",
			entityType, locale, normalized, true, entityID).
		Count(&conflicts).Error
	if err != nil {
		return nil, err
	}
	if conflicts > 0 {
		return nil, common.ErrSlugConflict
	}

	if current != nil {
		current.Active = false
		if err := r.db.Save(current).Error; err != nil {
			return nil, err
		}
	}

	// The entity may be reclaiming one of its own historical slugs.
	var revived domain.Slug
	err = r.db.Where("entity_type = ? AND entity_id = ? AND locale = ? AND slug = ?",
		entityType, entityID, locale, normalized).
		First(&revived).Error
	if err == nil {
		revived.Active = true
		if err := r.db.Save(&revived).Error; err != nil {
			return nil, err
		}
		return &revived, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	row := domain.Slug{
		EntityType: entityType,
		EntityID:   entityID,
		Locale:     locale,
		Slug:       normalized,
		Active:     true,
	}
	if err := r.db.Create(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *slugRepository) FindActive(entityType string, entityID uint64, locale string) (*domain.Slug, error) {
	var row domain.Slug
	err := r.db.Where("entity_type = ? AND entity_id = ? AND locale = ? AND active = ?",
		entityType, entityID, locale, true).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *slugRepository) FindAllByEntity(entityType string, entityID uint64) ([]*domain.Slug, error) {
	var rows []*domain.Slug
	err := r.db.Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("id ASC").Find(&rows).Error
	return rows, err
}

// ResolveEntity looks slugStr up across active and inactive rows. When
// several rows match, the active one wins; among inactive rows the most
// recently active (latest updated_at, then highest id) wins.
func (r *slugRepository) ResolveEntity(entityType string, locale string, slugStr string) (uint64, error) {
	var row domain.Slug
	err := r.db.Where("entity_type = ? AND locale = ? AND slug = ?", entityType, locale, slugStr).
		Order("active DESC, updated_at DESC, id DESC").
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, common.ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	return row.EntityID, nil
}

// DeleteByEntity removes all slug rows for an entity. Used only by the
// hard-delete cascade.
func (r *slugRepository) DeleteByEntity(entityType string, entityID uint64) error {
	return r.db.Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Delete(&domain.Slug{}).Error
}
