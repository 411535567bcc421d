package service

import (
	"fmt"
	"sort"
	"strings"

	"github.com/inkwell-cms/inkwell-backend/internal/common"
	"github.com/inkwell-cms/inkwell-backend/internal/domain"
	"github.com/inkwell-cms/inkwell-backend/internal/repository"
	"github.com/inkwell-cms/inkwell-backend/pkg/slug"
	"gorm.io/gorm"
)

// TaxonomyService maintains the unified tag/category tree: parent/child
// structure, sibling order and the nested-set encoding. Every structural
// mutation runs in one transaction and leaves (lft, rgt, depth) consistent,
// so subtree queries by interval containment stay correct.
type TaxonomyService struct {
	db *gorm.DB
}

// NewTaxonomyService creates a TaxonomyService
func NewTaxonomyService(db *gorm.DB) *TaxonomyService {
	return &TaxonomyService{db: db}
}

// NodeInput carries the fields for a new taxonomy node. Slug is derived
// from Name when empty.
type NodeInput struct {
	Type        string
	Name        string
	Slug        string
	Description *string
	ParentID    *uint64
	SortOrder   int
	Meta        domain.JSONMap
}

// CreateNode inserts a node and renumbers the tree in one transaction.
func (s *TaxonomyService) CreateNode(input NodeInput) (*domain.TaxonomyNode, error) {
	if input.Type != domain.NodeTypeTag && input.Type != domain.NodeTypeCategory {
		return nil, fmt.Errorf("%w: unknown node type %q", common.ErrInvalidInput, input.Type)
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, fmt.Errorf("%w: empty name", common.ErrInvalidInput)
	}
	raw := input.Slug
	if raw == "" {
		raw = input.Name
	}
	normalized := slug.Normalize(raw)
	if normalized == "" {
		return nil, fmt.Errorf("%w: empty slug", common.ErrInvalidInput)
	}

	node := &domain.TaxonomyNode{
		Type:        input.Type,
		Name:        input.Name,
		Slug:        normalized,
		Description: input.Description,
		ParentID:    input.ParentID,
		SortOrder:   input.SortOrder,
		Meta:        input.Meta,
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		nodes := repository.NewTaxonomyRepository(tx)
		if input.ParentID != nil {
			if _, err := nodes.FindByID(*input.ParentID); err != nil {
				return fmt.Errorf("parent node: %w", err)
			}
		}
		var taken int64
		err := tx.Model(&domain.TaxonomyNode{}).
			Where("type = ? AND slug = ?", input.Type, normalized).
			Count(&taken).Error
		if err != nil {
			return err
		}
		if taken > 0 {
			return common.ErrSlugConflict
		}
		if err := nodes.Create(node); err != nil {
			return err
		}
		return RebuildTree(tx)
	})
	if err != nil {
		return nil, err
	}
	return node, nil
}

// Reparent moves a node (and its subtree) under newParentID, or to the root
// when nil. Returns common.ErrCycleDetected when the new parent is the node
// itself or one of its descendants; the tree is left untouched in that
// case. The node is appended at the end of its new sibling list.
func (s *TaxonomyService) Reparent(nodeID uint64, newParentID *uint64) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		nodes := repository.NewTaxonomyRepository(tx)
		if _, err := nodes.FindByID(nodeID); err != nil {
			return err
		}
		if newParentID != nil {
			if err := s.checkNoCycle(nodes, nodeID, *newParentID); err != nil {
				return err
			}
		}

		siblings, err := nodes.Children(newParentID)
		if err != nil {
			return err
		}
		if err := nodes.UpdateParent(nodeID, newParentID, len(siblings)); err != nil {
			return err
		}
		return RebuildTree(tx)
	})
}

// checkNoCycle walks the ancestor chain of candidateParent up to the root;
// if nodeID appears the reparent would create a cycle.
func (s *TaxonomyService) checkNoCycle(nodes repository.TaxonomyRepository, nodeID, candidateParent uint64) error {
	if candidateParent == nodeID {
		return common.ErrCycleDetected
	}
	visited := map[uint64]bool{}
	current := candidateParent
	for {
		if visited[current] {
			// Pre-existing corruption; refuse to make it worse.
			return common.ErrCycleDetected
		}
		visited[current] = true

		node, err := nodes.FindByID(current)
		if err != nil {
			return err
		}
		if node.ParentID == nil {
			return nil
		}
		if *node.ParentID == nodeID {
			return common.ErrCycleDetected
		}
		current = *node.ParentID
	}
}

// ReorderSiblings assigns sort_order = index for every id in orderedIDs.
// The id set must exactly match the current children of parentID; partial
// reorders are rejected with common.ErrInvalidSiblingSet so a sibling left
// out of the list is never silently reordered to the end.
func (s *TaxonomyService) ReorderSiblings(parentID *uint64, orderedIDs []uint64) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		nodes := repository.NewTaxonomyRepository(tx)
		children, err := nodes.Children(parentID)
		if err != nil {
			return err
		}
		if len(children) != len(orderedIDs) {
			return common.ErrInvalidSiblingSet
		}
		current := make(map[uint64]bool, len(children))
		for _, c := range children {
			current[c.ID] = true
		}
		seen := make(map[uint64]bool, len(orderedIDs))
		for _, id := range orderedIDs {
			if !current[id] || seen[id] {
				return common.ErrInvalidSiblingSet
			}
			seen[id] = true
		}

		for i, id := range orderedIDs {
			if err := nodes.UpdateSortOrder(id, i); err != nil {
				return err
			}
		}
		return RebuildTree(tx)
	})
}

// Delete removes a leaf node with no attached content. Both guards are
// checked before any mutation, so a failed delete leaves the tree exactly
// as it was.
func (s *TaxonomyService) Delete(nodeID uint64) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		nodes := repository.NewTaxonomyRepository(tx)
		if _, err := nodes.FindByID(nodeID); err != nil {
			return err
		}
		children, err := nodes.CountChildren(nodeID)
		if err != nil {
			return err
		}
		if children > 0 {
			return common.ErrHasChildren
		}
		attached, err := nodes.CountAssociations(nodeID)
		if err != nil {
			return err
		}
		if attached > 0 {
			return common.ErrHasAttachedContent
		}

		if err := nodes.Delete(nodeID); err != nil {
			return err
		}
		return RebuildTree(tx)
	})
}

// Attach links a content entity to a node. Duplicate attachments are
// ignored.
func (s *TaxonomyService) Attach(nodeID uint64, entityType string, entityID uint64) error {
	nodes := repository.NewTaxonomyRepository(s.db)
	if _, err := nodes.FindByID(nodeID); err != nil {
		return err
	}
	exists, err := nodes.AssociationExists(nodeID, entityType, entityID)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return nodes.CreateAssociation(&domain.TaxonomyAssociation{
		NodeID:     nodeID,
		EntityType: entityType,
		EntityID:   entityID,
	})
}

// Subtree returns a node and all its descendants in pre-order, using the
// nested-set interval.
func (s *TaxonomyService) Subtree(nodeID uint64) ([]*domain.TaxonomyNode, error) {
	nodes := repository.NewTaxonomyRepository(s.db)
	node, err := nodes.FindByID(nodeID)
	if err != nil {
		return nil, err
	}
	return nodes.Subtree(node.Lft, node.Rgt)
}

// RebuildTree recomputes (lft, rgt, depth) for every node with a recursive
// pre-order walk from each root. Siblings are visited in
// (sort_order, lft, id) order. Nodes whose parent row is missing are
// treated as roots so a partially migrated tree still gets valid bounds.
func RebuildTree(tx *gorm.DB) error {
	repo := repository.NewTaxonomyRepository(tx)
	all, err := repo.FindAll()
	if err != nil {
		return err
	}

	byID := make(map[uint64]*domain.TaxonomyNode, len(all))
	for _, n := range all {
		byID[n.ID] = n
	}

	children := make(map[uint64][]*domain.TaxonomyNode)
	var roots []*domain.TaxonomyNode
	for _, n := range all {
		if n.ParentID == nil {
			roots = append(roots, n)
			continue
		}
		if _, ok := byID[*n.ParentID]; !ok {
			roots = append(roots, n)
			continue
		}
		children[*n.ParentID] = append(children[*n.ParentID], n)
	}

	order := func(nodes []*domain.TaxonomyNode) {
		sort.SliceStable(nodes, func(i, j int) bool {
			a, b := nodes[i], nodes[j]
			if a.SortOrder != b.SortOrder {
				return a.SortOrder < b.SortOrder
			}
			if a.Lft != b.Lft {
				return a.Lft < b.Lft
			}
			return a.ID < b.ID
		})
	}
	order(roots)
	for _, group := range children {
		order(group)
	}

	counter := 1
	var walk func(node *domain.TaxonomyNode, depth int) error
	walk = func(node *domain.TaxonomyNode, depth int) error {
		lft := counter
		counter++
		for _, child := range children[node.ID] {
			if err := walk(child, depth+1); err != nil {
				return err
			}
		}
		rgt := counter
		counter++
		if node.Lft == lft && node.Rgt == rgt && node.Depth == depth {
			return nil
		}
		return repo.UpdateBounds(node.ID, lft, rgt, depth)
	}
	for _, root := range roots {
		if err := walk(root, 0); err != nil {
			return err
		}
	}
	return nil
}
