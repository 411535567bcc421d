package repository

import (
	"errors"

	"github.com/inkwell-cms/inkwell-backend/internal/common"
	"github.com/inkwell-cms/inkwell-backend/internal/domain"
	"gorm.io/gorm"
)

// TranslationFields are the writable localized fields of a content entity.
type TranslationFields struct {
	Title       string
	Description string
	Body        string
}

// TranslationRepository is the store for localized content fields.
// One row per (entity_type, entity_id, locale); Upsert keeps it that way.
type TranslationRepository interface {
	Upsert(entityType string, entityID uint64, locale string, fields TranslationFields) (*domain.Translation, error)
	Find(entityType string, entityID uint64, locale string) (*domain.Translation, error)
	FindAllByEntity(entityType string, entityID uint64) ([]*domain.Translation, error)
	Deactivate(entityType string, entityID uint64, locale string) error
	DeleteByEntity(entityType string, entityID uint64) error
}

type translationRepository struct {
	db *gorm.DB
}

// NewTranslationRepository creates a TranslationRepository. Pass a
// transaction handle to get a tx-scoped instance.
func NewTranslationRepository(db *gorm.DB) TranslationRepository {
	return &translationRepository{db: db}
}

// Upsert updates the existing (entity, locale) row and reactivates it, or
// inserts a new one. Field validation belongs to the calling service.
func (r *translationRepository) Upsert(entityType string, entityID uint64, locale string, fields TranslationFields) (*domain.Translation, error) {
	var t domain.Translation
	err := r.db.Where("entity_type = ? AND entity_id = ? AND locale = ?", entityType, entityID, locale).
		First(&t).Error
	switch {
	case err == nil:
		t.Title = fields.Title
		t.Description = fields.Description
		t.Body = fields.Body
		t.Active = true
		if err := r.db.Save(&t).Error; err != nil {
			return nil, err
		}
		return &t, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		t = domain.Translation{
			EntityType:  entityType,
			EntityID:    entityID,
			Locale:      locale,
			Active:      true,
			Title:       fields.Title,
			Description: fields.Description,
			Body:        fields.Body,
		}
		if err := r.db.Create(&t).Error; err != nil {
			return nil, err
		}
		return &t, nil
	default:
		return nil, err
	}
}

func (r *translationRepository) Find(entityType string, entityID uint64, locale string) (*domain.Translation, error) {
	var t domain.Translation
	err := r.db.Where("entity_type = ? AND entity_id = ? AND locale = ?", entityType, entityID, locale).
		First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// FindAllByEntity returns every translation row for the entity ordered by
// id asc, so fallback selection in the resolver is deterministic.
func (r *translationRepository) FindAllByEntity(entityType string, entityID uint64) ([]*domain.Translation, error) {
	var rows []*domain.Translation
	err := r.db.Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("id ASC").Find(&rows).Error
	return rows, err
}

func (r *translationRepository) Deactivate(entityType string, entityID uint64, locale string) error {
	return r.db.Model(&domain.Translation{}).
		Where("entity_type = ? AND entity_id = ? AND locale = ?", entityType, entityID, locale).
		Update("active", false).Error
}

// DeleteByEntity removes all translation rows for an entity. Used only by
// the hard-delete cascade.
func (r *translationRepository) DeleteByEntity(entityType string, entityID uint64) error {
	return r.db.Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Delete(&domain.Translation{}).Error
}
