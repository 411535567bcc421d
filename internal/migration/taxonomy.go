package migration

import (
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/inkwell-cms/inkwell-backend/internal/domain"
	"github.com/inkwell-cms/inkwell-backend/internal/service"
	"gorm.io/gorm"
)

// TaxonomyReport is what the operator sees after a run. Skipped counts are
// informational (idempotent re-runs skip everything already migrated);
// orphan counts need review.
type TaxonomyReport struct {
	RunID             string
	TagsCreated       int
	TagsSkipped       int
	CategoriesCreated int
	CategoriesSkipped int
	CategoriesOrphan  int
	RelationsCreated  int
	RelationsSkipped  int
	RelationsOrphan   int
	Duration          time.Duration
}

func (r *TaxonomyReport) String() string {
	return fmt.Sprintf(
		"run=%s tags=%d/%d categories=%d/%d (orphan %d) relations=%d/%d (orphan %d) took=%s",
		r.RunID,
		r.TagsCreated, r.TagsCreated+r.TagsSkipped,
		r.CategoriesCreated, r.CategoriesCreated+r.CategoriesSkipped,
		r.CategoriesOrphan,
		r.RelationsCreated, r.RelationsCreated+r.RelationsSkipped,
		r.RelationsOrphan,
		r.Duration.Round(time.Millisecond),
	)
}

// MigrateTaxonomy turns the legacy flat tags/categories tables into the
// unified nested-set taxonomy and translates article_tag/article_category
// rows into generic taxonomy associations.
//
// The job is idempotent-by-marker: every migrated node stashes its legacy
// id in meta, and re-runs skip rows whose legacy id is already present.
// Relationship rows whose legacy target cannot be found are skipped and
// counted, never fatal.
func MigrateTaxonomy(db *gorm.DB) (*TaxonomyReport, error) {
	report := &TaxonomyReport{RunID: uuid.NewString()}
	start := time.Now()

	tagMap, catMap, err := loadMigratedNodes(db)
	if err != nil {
		return nil, fmt.Errorf("load migrated markers: %w", err)
	}

	log.Println("[taxonomy-migration] Migrating tags → taxonomy_nodes...")
	if err := migrateTagNodes(db, report, tagMap); err != nil {
		return nil, fmt.Errorf("migrate tags: %w", err)
	}

	log.Println("[taxonomy-migration] Migrating categories → taxonomy_nodes...")
	if err := migrateCategoryNodes(db, report, catMap); err != nil {
		return nil, fmt.Errorf("migrate categories: %w", err)
	}

	log.Println("[taxonomy-migration] Migrating article relations → taxonomy_associations...")
	if err := migrateRelations(db, report, tagMap, catMap); err != nil {
		return nil, fmt.Errorf("migrate relations: %w", err)
	}

	log.Println("[taxonomy-migration] Rebuilding nested-set bounds...")
	if err := db.Transaction(service.RebuildTree); err != nil {
		return nil, fmt.Errorf("rebuild tree: %w", err)
	}

	report.Duration = time.Since(start)
	log.Printf("[taxonomy-migration] Done: %s", report)
	return report, nil
}

// loadMigratedNodes scans existing taxonomy nodes and rebuilds the
// legacyID → nodeID maps from the stashed meta markers, so a restarted run
// picks up exactly where the previous one stopped.
func loadMigratedNodes(db *gorm.DB) (tagMap, catMap map[uint64]uint64, err error) {
	var nodes []*domain.TaxonomyNode
	if err := db.Find(&nodes).Error; err != nil {
		return nil, nil, err
	}
	tagMap = make(map[uint64]uint64)
	catMap = make(map[uint64]uint64)
	for _, n := range nodes {
		if id, ok := metaID(n.Meta, domain.MetaOriginalTagID); ok {
			tagMap[id] = n.ID
		}
		if id, ok := metaID(n.Meta, domain.MetaOriginalCategoryID); ok {
			catMap[id] = n.ID
		}
	}
	return tagMap, catMap, nil
}

// metaID reads a numeric id out of a JSON meta map. Numbers come back from
// the JSON column as float64.
func metaID(meta domain.JSONMap, key string) (uint64, bool) {
	v, ok := meta[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return uint64(n), true
	case int64:
		return uint64(n), true
	case uint64:
		return n, true
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return uint64(i), true
	default:
		return 0, false
	}
}

func migrateTagNodes(db *gorm.DB, report *TaxonomyReport, tagMap map[uint64]uint64) error {
	var tags []*domain.LegacyTag
	if err := db.Find(&tags).Error; err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		for _, tag := range tags {
			if _, done := tagMap[tag.ID]; done {
				report.TagsSkipped++
				continue
			}
			node := &domain.TaxonomyNode{
				Type: domain.NodeTypeTag,
				Name: tag.Name,
				Slug: tag.Slug,
				Meta: domain.JSONMap{
					domain.MetaOriginalTagID:    tag.ID,
					domain.MetaLegacyColor:      tag.Color,
					domain.MetaLegacyUsageCount: tag.UsageCount,
					domain.MetaLegacyIsActive:   tag.IsActive,
					domain.MetaMigrated:         true,
				},
			}
			if err := tx.Create(node).Error; err != nil {
				return err
			}
			tagMap[tag.ID] = node.ID
			report.TagsCreated++
		}
		return nil
	})
}

// migrateCategoryNodes processes legacy categories in ancestor-depth order,
// so a parent is always migrated before any of its children regardless of
// legacy id ordering. Rows whose parent chain is broken or cyclic are
// counted as orphans and skipped.
func migrateCategoryNodes(db *gorm.DB, report *TaxonomyReport, catMap map[uint64]uint64) error {
	var categories []*domain.LegacyCategory
	if err := db.Find(&categories).Error; err != nil {
		return err
	}

	byLegacyID := make(map[uint64]*domain.LegacyCategory, len(categories))
	for _, c := range categories {
		byLegacyID[c.ID] = c
	}

	depths := make(map[uint64]int, len(categories))
	var chainDepth func(id uint64, trail map[uint64]bool) (int, bool)
	chainDepth = func(id uint64, trail map[uint64]bool) (int, bool) {
		if d, ok := depths[id]; ok {
			return d, d >= 0
		}
		c, ok := byLegacyID[id]
		if !ok || trail[id] {
			// Missing parent row or a parent_id cycle.
			depths[id] = -1
			return -1, false
		}
		if c.ParentID == nil {
			depths[id] = 0
			return 0, true
		}
		trail[id] = true
		parentDepth, ok := chainDepth(*c.ParentID, trail)
		delete(trail, id)
		if !ok {
			depths[id] = -1
			return -1, false
		}
		depths[id] = parentDepth + 1
		return depths[id], true
	}

	var ordered []*domain.LegacyCategory
	for _, c := range categories {
		if _, ok := chainDepth(c.ID, map[uint64]bool{}); !ok {
			report.CategoriesOrphan++
			log.Printf("[taxonomy-migration] Skipping category %d (%s): broken parent chain", c.ID, c.Name)
			continue
		}
		ordered = append(ordered, c)
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		if depths[ordered[i].ID] != depths[ordered[j].ID] {
			return depths[ordered[i].ID] < depths[ordered[j].ID]
		}
		return ordered[i].ID < ordered[j].ID
	})

	return db.Transaction(func(tx *gorm.DB) error {
		for _, c := range ordered {
			if _, done := catMap[c.ID]; done {
				report.CategoriesSkipped++
				continue
			}
			var parentID *uint64
			if c.ParentID != nil {
				newID, ok := catMap[*c.ParentID]
				if !ok {
					// Parent was migrated in neither this run nor a
					// previous one; keep the child out rather than
					// attach it to the wrong place.
					report.CategoriesOrphan++
					log.Printf("[taxonomy-migration] Skipping category %d (%s): parent %d not migrated", c.ID, c.Name, *c.ParentID)
					continue
				}
				parentID = &newID
			}
			node := &domain.TaxonomyNode{
				Type:        domain.NodeTypeCategory,
				Name:        c.Name,
				Slug:        c.Slug,
				Description: c.Description,
				ParentID:    parentID,
				SortOrder:   c.SortOrder,
				Meta: domain.JSONMap{
					domain.MetaOriginalCategoryID: c.ID,
					domain.MetaLegacyIsActive:     c.IsActive,
					domain.MetaMigrated:           true,
				},
			}
			if err := tx.Create(node).Error; err != nil {
				return err
			}
			catMap[c.ID] = node.ID
			report.CategoriesCreated++
		}
		return nil
	})
}

// migrateRelations translates article_tag and article_category rows into
// taxonomy associations. The lookup is an exact match on the stashed legacy
// id, never on name or slug. Rows whose target is missing are skipped and
// counted for operator review.
func migrateRelations(db *gorm.DB, report *TaxonomyReport, tagMap, catMap map[uint64]uint64) error {
	var articleTags []*domain.LegacyArticleTag
	if err := db.Find(&articleTags).Error; err != nil {
		return err
	}
	var articleCategories []*domain.LegacyArticleCategory
	if err := db.Find(&articleCategories).Error; err != nil {
		return err
	}

	existing, err := loadAssociationSet(db)
	if err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		link := func(nodeID, articleID uint64) error {
			key := assocKey(nodeID, domain.EntityTypePost, articleID)
			if existing[key] {
				report.RelationsSkipped++
				return nil
			}
			assoc := &domain.TaxonomyAssociation{
				NodeID:     nodeID,
				EntityType: domain.EntityTypePost,
				EntityID:   articleID,
			}
			if err := tx.Create(assoc).Error; err != nil {
				return err
			}
			existing[key] = true
			report.RelationsCreated++
			return nil
		}

		for _, at := range articleTags {
			nodeID, ok := tagMap[at.TagID]
			if !ok {
				report.RelationsOrphan++
				log.Printf("[taxonomy-migration] Skipping article_tag (%d, %d): tag not migrated", at.ArticleID, at.TagID)
				continue
			}
			if err := link(nodeID, at.ArticleID); err != nil {
				return err
			}
		}
		for _, ac := range articleCategories {
			nodeID, ok := catMap[ac.CategoryID]
			if !ok {
				report.RelationsOrphan++
				log.Printf("[taxonomy-migration] Skipping article_category (%d, %d): category not migrated", ac.ArticleID, ac.CategoryID)
				continue
			}
			if err := link(nodeID, ac.ArticleID); err != nil {
				return err
			}
		}
		return nil
	})
}

func loadAssociationSet(db *gorm.DB) (map[string]bool, error) {
	var rows []*domain.TaxonomyAssociation
	if err := db.Find(&rows).Error; err != nil {
		return nil, err
	}
	set := make(map[string]bool, len(rows))
	for _, a := range rows {
		set[assocKey(a.NodeID, a.EntityType, a.EntityID)] = true
	}
	return set, nil
}

func assocKey(nodeID uint64, entityType string, entityID uint64) string {
	return fmt.Sprintf("%d:%s:%d", nodeID, entityType, entityID)
}

// VerifyTaxonomy checks the nested-set invariants over the whole tree:
// lft < rgt everywhere, and every child interval strictly inside its
// parent's. Returns the first violation found.
func VerifyTaxonomy(db *gorm.DB) error {
	var nodes []*domain.TaxonomyNode
	if err := db.Order("lft ASC").Find(&nodes).Error; err != nil {
		return err
	}
	byID := make(map[uint64]*domain.TaxonomyNode, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = n
	}
	for _, n := range nodes {
		if n.Lft >= n.Rgt {
			return fmt.Errorf("node %d: lft %d >= rgt %d", n.ID, n.Lft, n.Rgt)
		}
		if n.ParentID == nil {
			continue
		}
		parent, ok := byID[*n.ParentID]
		if !ok {
			return fmt.Errorf("node %d: parent %d missing", n.ID, *n.ParentID)
		}
		if n.Lft <= parent.Lft || n.Rgt >= parent.Rgt {
			return fmt.Errorf("node %d: interval [%d,%d] not inside parent %d [%d,%d]",
				n.ID, n.Lft, n.Rgt, parent.ID, parent.Lft, parent.Rgt)
		}
	}
	log.Printf("[taxonomy-migration] Verify OK: %d nodes", len(nodes))
	return nil
}
