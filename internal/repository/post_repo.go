package repository

import (
	"errors"

	"github.com/inkwell-cms/inkwell-backend/internal/common"
	"github.com/inkwell-cms/inkwell-backend/internal/domain"
	"gorm.io/gorm"
)

// PostRepository handles post entity rows. Localized fields and slugs live
// in their own stores.
type PostRepository interface {
	FindByID(id uint64) (*domain.Post, error)
	FindByIDUnscoped(id uint64) (*domain.Post, error)
	Create(post *domain.Post) error
	Update(post *domain.Post) error
	SoftDelete(id uint64) error
	HardDelete(id uint64) error
	IncrementViewCount(id uint64) error
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a PostRepository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) FindByID(id uint64) (*domain.Post, error) {
	var post domain.Post
	err := r.db.First(&post, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// FindByIDUnscoped also returns soft-deleted posts. Privileged paths only.
func (r *postRepository) FindByIDUnscoped(id uint64) (*domain.Post, error) {
	var post domain.Post
	err := r.db.Unscoped().First(&post, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) Create(post *domain.Post) error {
	return r.db.Create(post).Error
}

func (r *postRepository) Update(post *domain.Post) error {
	return r.db.Save(post).Error
}

func (r *postRepository) SoftDelete(id uint64) error {
	return r.db.Delete(&domain.Post{}, id).Error
}

func (r *postRepository) HardDelete(id uint64) error {
	return r.db.Unscoped().Delete(&domain.Post{}, id).Error
}

// IncrementViewCount is a single atomic UPDATE, invoked explicitly from the
// public read path (never as a fetch side effect).
func (r *postRepository) IncrementViewCount(id uint64) error {
	return r.db.Model(&domain.Post{}).Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error
}
