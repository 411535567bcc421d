package service

import (
	"testing"

	"github.com/inkwell-cms/inkwell-backend/internal/common"
	"github.com/inkwell-cms/inkwell-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

// loadTree returns all nodes keyed by id and fails the test if the
// nested-set bounds are inconsistent: lft < rgt on every node, every child
// interval strictly inside its parent's, and all bounds unique.
func loadTree(t *testing.T, db *gorm.DB) map[uint64]*domain.TaxonomyNode {
	t.Helper()
	var nodes []*domain.TaxonomyNode
	if err := db.Find(&nodes).Error; err != nil {
		t.Fatalf("load nodes: %v", err)
	}
	byID := make(map[uint64]*domain.TaxonomyNode, len(nodes))
	seen := make(map[int]bool, len(nodes)*2)
	for _, n := range nodes {
		byID[n.ID] = n
		if n.Lft >= n.Rgt {
			t.Errorf("node %d: lft %d >= rgt %d", n.ID, n.Lft, n.Rgt)
		}
		for _, b := range []int{n.Lft, n.Rgt} {
			if seen[b] {
				t.Errorf("bound %d used twice", b)
			}
			seen[b] = true
		}
	}
	for _, n := range nodes {
		if n.ParentID == nil {
			continue
		}
		parent, ok := byID[*n.ParentID]
		if !ok {
			t.Errorf("node %d: parent %d missing", n.ID, *n.ParentID)
			continue
		}
		if n.Lft <= parent.Lft || n.Rgt >= parent.Rgt {
			t.Errorf("node %d: [%d,%d] not inside parent %d [%d,%d]",
				n.ID, n.Lft, n.Rgt, parent.ID, parent.Lft, parent.Rgt)
		}
		if n.Depth != parent.Depth+1 {
			t.Errorf("node %d: depth %d, parent depth %d", n.ID, n.Depth, parent.Depth)
		}
	}
	return byID
}

func mustCreateNode(t *testing.T, svc *TaxonomyService, nodeType, name string, parentID *uint64, sortOrder int) *domain.TaxonomyNode {
	t.Helper()
	node, err := svc.CreateNode(NodeInput{
		Type:      nodeType,
		Name:      name,
		ParentID:  parentID,
		SortOrder: sortOrder,
	})
	if err != nil {
		t.Fatalf("create node %s failed: %v", name, err)
	}
	return node
}

func TestCreateNodeAssignsBounds(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTaxonomyService(db)

	root := mustCreateNode(t, svc, domain.NodeTypeCategory, "Root", nil, 0)
	a := mustCreateNode(t, svc, domain.NodeTypeCategory, "A", &root.ID, 0)
	b := mustCreateNode(t, svc, domain.NodeTypeCategory, "B", &root.ID, 1)

	tree := loadTree(t, db)
	assert.Equal(t, 1, tree[root.ID].Lft)
	assert.Equal(t, 6, tree[root.ID].Rgt)
	assert.Equal(t, 2, tree[a.ID].Lft)
	assert.Equal(t, 3, tree[a.ID].Rgt)
	assert.Equal(t, 4, tree[b.ID].Lft)
	assert.Equal(t, 5, tree[b.ID].Rgt)
	assert.Equal(t, 1, tree[a.ID].Depth)
}

func TestCreateNodeValidation(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTaxonomyService(db)

	_, err := svc.CreateNode(NodeInput{Type: "widget", Name: "x"})
	assert.ErrorIs(t, err, common.ErrInvalidInput)

	_, err = svc.CreateNode(NodeInput{Type: domain.NodeTypeTag, Name: "   "})
	assert.ErrorIs(t, err, common.ErrInvalidInput)

	_, err = svc.CreateNode(NodeInput{Type: domain.NodeTypeTag, Name: "x", ParentID: ptr(uint64(999))})
	assert.ErrorIs(t, err, common.ErrNotFound)

	// Slug derived from the name when not given.
	node, err := svc.CreateNode(NodeInput{Type: domain.NodeTypeTag, Name: "Hello World"})
	assert.NoError(t, err)
	assert.Equal(t, "hello-world", node.Slug)

	// Slugs are unique per node type; another type may reuse the string.
	_, err = svc.CreateNode(NodeInput{Type: domain.NodeTypeTag, Name: "Hello, World"})
	assert.ErrorIs(t, err, common.ErrSlugConflict)
	_, err = svc.CreateNode(NodeInput{Type: domain.NodeTypeCategory, Name: "Hello World"})
	assert.NoError(t, err)
}

func TestReparentMovesSubtree(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTaxonomyService(db)

	rootA := mustCreateNode(t, svc, domain.NodeTypeCategory, "A", nil, 0)
	rootB := mustCreateNode(t, svc, domain.NodeTypeCategory, "B", nil, 1)
	child := mustCreateNode(t, svc, domain.NodeTypeCategory, "Child", &rootA.ID, 0)
	grand := mustCreateNode(t, svc, domain.NodeTypeCategory, "Grand", &child.ID, 0)

	assert.NoError(t, svc.Reparent(child.ID, &rootB.ID))

	tree := loadTree(t, db)
	assert.Equal(t, rootB.ID, *tree[child.ID].ParentID)
	// The grandchild travels with its parent.
	assert.Equal(t, child.ID, *tree[grand.ID].ParentID)
	assert.Equal(t, 2, tree[grand.ID].Depth)

	subtree, err := svc.Subtree(rootB.ID)
	assert.NoError(t, err)
	assert.Len(t, subtree, 3)
}

func TestReparentToRoot(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTaxonomyService(db)

	root := mustCreateNode(t, svc, domain.NodeTypeCategory, "Root", nil, 0)
	child := mustCreateNode(t, svc, domain.NodeTypeCategory, "Child", &root.ID, 0)

	assert.NoError(t, svc.Reparent(child.ID, nil))

	tree := loadTree(t, db)
	assert.Nil(t, tree[child.ID].ParentID)
	assert.Equal(t, 0, tree[child.ID].Depth)
}

func TestReparentRejectsCycles(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTaxonomyService(db)

	root := mustCreateNode(t, svc, domain.NodeTypeCategory, "Root", nil, 0)
	child := mustCreateNode(t, svc, domain.NodeTypeCategory, "Child", &root.ID, 0)
	grand := mustCreateNode(t, svc, domain.NodeTypeCategory, "Grand", &child.ID, 0)

	before := loadTree(t, db)

	// Under itself.
	assert.ErrorIs(t, svc.Reparent(child.ID, &child.ID), common.ErrCycleDetected)
	// Under its own descendant.
	assert.ErrorIs(t, svc.Reparent(root.ID, &grand.ID), common.ErrCycleDetected)

	// A rejected reparent leaves the tree byte-for-byte as it was.
	after := loadTree(t, db)
	for id, b := range before {
		a := after[id]
		assert.Equal(t, b.Lft, a.Lft, "node %d lft", id)
		assert.Equal(t, b.Rgt, a.Rgt, "node %d rgt", id)
		assert.Equal(t, b.ParentID, a.ParentID, "node %d parent", id)
	}
}

func TestReorderSiblings(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTaxonomyService(db)

	root := mustCreateNode(t, svc, domain.NodeTypeCategory, "Root", nil, 0)
	a := mustCreateNode(t, svc, domain.NodeTypeCategory, "A", &root.ID, 0)
	b := mustCreateNode(t, svc, domain.NodeTypeCategory, "B", &root.ID, 1)
	c := mustCreateNode(t, svc, domain.NodeTypeCategory, "C", &root.ID, 2)

	assert.NoError(t, svc.ReorderSiblings(&root.ID, []uint64{c.ID, a.ID, b.ID}))

	tree := loadTree(t, db)
	assert.Less(t, tree[c.ID].Lft, tree[a.ID].Lft)
	assert.Less(t, tree[a.ID].Lft, tree[b.ID].Lft)
}

func TestReorderSiblingsRejectsPartialSets(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTaxonomyService(db)

	root := mustCreateNode(t, svc, domain.NodeTypeCategory, "Root", nil, 0)
	a := mustCreateNode(t, svc, domain.NodeTypeCategory, "A", &root.ID, 0)
	b := mustCreateNode(t, svc, domain.NodeTypeCategory, "B", &root.ID, 1)
	outsider := mustCreateNode(t, svc, domain.NodeTypeCategory, "Outsider", nil, 1)

	// Missing a sibling.
	assert.ErrorIs(t, svc.ReorderSiblings(&root.ID, []uint64{a.ID}), common.ErrInvalidSiblingSet)
	// Duplicate id.
	assert.ErrorIs(t, svc.ReorderSiblings(&root.ID, []uint64{a.ID, a.ID}), common.ErrInvalidSiblingSet)
	// Node from another parent.
	assert.ErrorIs(t, svc.ReorderSiblings(&root.ID, []uint64{a.ID, outsider.ID}), common.ErrInvalidSiblingSet)
	_ = b
}

func TestDeleteGuards(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTaxonomyService(db)

	root := mustCreateNode(t, svc, domain.NodeTypeCategory, "Root", nil, 0)
	child := mustCreateNode(t, svc, domain.NodeTypeTag, "Child", &root.ID, 0)

	assert.ErrorIs(t, svc.Delete(root.ID), common.ErrHasChildren)

	assert.NoError(t, svc.Attach(child.ID, domain.EntityTypePost, 7))
	assert.ErrorIs(t, svc.Delete(child.ID), common.ErrHasAttachedContent)

	// Detach, then the leaf goes; afterwards the parent is a deletable leaf.
	db.Where("node_id = ?", child.ID).Delete(&domain.TaxonomyAssociation{})
	assert.NoError(t, svc.Delete(child.ID))
	assert.NoError(t, svc.Delete(root.ID))

	var remaining int64
	db.Model(&domain.TaxonomyNode{}).Count(&remaining)
	assert.Zero(t, remaining)
}

func TestAttachIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTaxonomyService(db)

	node := mustCreateNode(t, svc, domain.NodeTypeTag, "golang", nil, 0)

	assert.NoError(t, svc.Attach(node.ID, domain.EntityTypePost, 1))
	assert.NoError(t, svc.Attach(node.ID, domain.EntityTypePost, 1))

	var count int64
	db.Model(&domain.TaxonomyAssociation{}).Count(&count)
	assert.EqualValues(t, 1, count)
}
