package repository

import (
	"errors"

	"github.com/inkwell-cms/inkwell-backend/internal/common"
	"github.com/inkwell-cms/inkwell-backend/internal/domain"
	"gorm.io/gorm"
)

// CategoryRepository handles category entity rows.
type CategoryRepository interface {
	FindByID(id uint64) (*domain.Category, error)
	FindByIDUnscoped(id uint64) (*domain.Category, error)
	Create(category *domain.Category) error
	Update(category *domain.Category) error
	SoftDelete(id uint64) error
	HardDelete(id uint64) error
	CountChildren(id uint64) (int64, error)
}

type categoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository creates a CategoryRepository
func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) FindByID(id uint64) (*domain.Category, error) {
	var category domain.Category
	err := r.db.First(&category, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// FindByIDUnscoped also returns soft-deleted categories.
func (r *categoryRepository) FindByIDUnscoped(id uint64) (*domain.Category, error) {
	var category domain.Category
	err := r.db.Unscoped().First(&category, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) Create(category *domain.Category) error {
	return r.db.Create(category).Error
}

func (r *categoryRepository) Update(category *domain.Category) error {
	return r.db.Save(category).Error
}

func (r *categoryRepository) SoftDelete(id uint64) error {
	return r.db.Delete(&domain.Category{}, id).Error
}

func (r *categoryRepository) HardDelete(id uint64) error {
	return r.db.Unscoped().Delete(&domain.Category{}, id).Error
}

// CountChildren counts non-deleted categories whose parent is id.
func (r *categoryRepository) CountChildren(id uint64) (int64, error) {
	var count int64
	err := r.db.Model(&domain.Category{}).Where("parent_id = ?", id).Count(&count).Error
	return count, err
}
