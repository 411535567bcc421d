package repository

import (
	"errors"

	"github.com/inkwell-cms/inkwell-backend/internal/common"
	"github.com/inkwell-cms/inkwell-backend/internal/domain"
	"gorm.io/gorm"
)

// TaxonomyRepository handles taxonomy node rows and their content
// associations. Structural consistency (cycles, sibling sets, nested-set
// bounds) is enforced one level up in the taxonomy service.
type TaxonomyRepository interface {
	FindByID(id uint64) (*domain.TaxonomyNode, error)
	FindAll() ([]*domain.TaxonomyNode, error)
	Children(parentID *uint64) ([]*domain.TaxonomyNode, error)
	Subtree(lft, rgt int) ([]*domain.TaxonomyNode, error)
	Create(node *domain.TaxonomyNode) error
	Update(node *domain.TaxonomyNode) error
	UpdateParent(id uint64, parentID *uint64, sortOrder int) error
	UpdateSortOrder(id uint64, sortOrder int) error
	UpdateBounds(id uint64, lft, rgt, depth int) error
	Delete(id uint64) error
	CountChildren(id uint64) (int64, error)
	CountAssociations(nodeID uint64) (int64, error)
	CreateAssociation(assoc *domain.TaxonomyAssociation) error
	AssociationExists(nodeID uint64, entityType string, entityID uint64) (bool, error)
	DeleteAssociationsByEntity(entityType string, entityID uint64) error
}

type taxonomyRepository struct {
	db *gorm.DB
}

// NewTaxonomyRepository creates a TaxonomyRepository. Pass a transaction
// handle to get a tx-scoped instance.
func NewTaxonomyRepository(db *gorm.DB) TaxonomyRepository {
	return &taxonomyRepository{db: db}
}

func (r *taxonomyRepository) FindByID(id uint64) (*domain.TaxonomyNode, error) {
	var node domain.TaxonomyNode
	err := r.db.First(&node, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &node, nil
}

func (r *taxonomyRepository) FindAll() ([]*domain.TaxonomyNode, error) {
	var nodes []*domain.TaxonomyNode
	err := r.db.Order("sort_order ASC, lft ASC, id ASC").Find(&nodes).Error
	return nodes, err
}

// Children returns the direct children of parentID (nil for roots) in
// sibling order.
func (r *taxonomyRepository) Children(parentID *uint64) ([]*domain.TaxonomyNode, error) {
	var nodes []*domain.TaxonomyNode
	q := r.db.Order("sort_order ASC, lft ASC, id ASC")
	if parentID == nil {
		q = q.Where("parent_id IS NULL")
	} else {
		q = q.Where("parent_id = ?", *parentID)
	}
	err := q.Find(&nodes).Error
	return nodes, err
}

// Subtree returns every node whose interval lies within [lft, rgt],
// including the subtree root, in pre-order.
func (r *taxonomyRepository) Subtree(lft, rgt int) ([]*domain.TaxonomyNode, error) {
	var nodes []*domain.TaxonomyNode
	err := r.db.Where("lft >= ? AND rgt <= ?", lft, rgt).
		Order("lft ASC").Find(&nodes).Error
	return nodes, err
}

func (r *taxonomyRepository) Create(node *domain.TaxonomyNode) error {
	return r.db.Create(node).Error
}

func (r *taxonomyRepository) Update(node *domain.TaxonomyNode) error {
	return r.db.Save(node).Error
}

func (r *taxonomyRepository) UpdateParent(id uint64, parentID *uint64, sortOrder int) error {
	return r.db.Model(&domain.TaxonomyNode{}).Where("id = ?", id).
		Updates(map[string]interface{}{"parent_id": parentID, "sort_order": sortOrder}).Error
}

func (r *taxonomyRepository) UpdateSortOrder(id uint64, sortOrder int) error {
	return r.db.Model(&domain.TaxonomyNode{}).Where("id = ?", id).
		UpdateColumn("sort_order", sortOrder).Error
}

func (r *taxonomyRepository) UpdateBounds(id uint64, lft, rgt, depth int) error {
	return r.db.Model(&domain.TaxonomyNode{}).Where("id = ?", id).
		Updates(map[string]interface{}{"lft": lft, "rgt": rgt, "depth": depth}).Error
}

func (r *taxonomyRepository) Delete(id uint64) error {
	return r.db.Delete(&domain.TaxonomyNode{}, id).Error
}

func (r *taxonomyRepository) CountChildren(id uint64) (int64, error) {
	var count int64
	err := r.db.Model(&domain.TaxonomyNode{}).Where("parent_id = ?", id).Count(&count).Error
	return count, err
}

func (r *taxonomyRepository) CountAssociations(nodeID uint64) (int64, error) {
	var count int64
	err := r.db.Model(&domain.TaxonomyAssociation{}).Where("node_id = ?", nodeID).Count(&count).Error
	return count, err
}

func (r *taxonomyRepository) CreateAssociation(assoc *domain.TaxonomyAssociation) error {
	return r.db.Create(assoc).Error
}

func (r *taxonomyRepository) AssociationExists(nodeID uint64, entityType string, entityID uint64) (bool, error) {
	var count int64
	err := r.db.Model(&domain.TaxonomyAssociation{}).
		Where("node_id = ? AND entity_type = ? AND entity_id = ?", nodeID, entityType, entityID).
		Count(&count).Error
	return count > 0, err
}

func (r *taxonomyRepository) DeleteAssociationsByEntity(entityType string, entityID uint64) error {
	return r.db.Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Delete(&domain.TaxonomyAssociation{}).Error
}
