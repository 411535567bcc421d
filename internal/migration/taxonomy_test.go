package migration

import (
	"testing"

	"github.com/inkwell-cms/inkwell-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := RunSchema(db); err != nil {
		t.Fatalf("failed to run schema: %v", err)
	}
	err = db.AutoMigrate(
		&domain.LegacyTag{},
		&domain.LegacyCategory{},
		&domain.LegacyArticleTag{},
		&domain.LegacyArticleCategory{},
	)
	if err != nil {
		t.Fatalf("failed to migrate legacy tables: %v", err)
	}
	return db
}

func seedLegacy(t *testing.T, db *gorm.DB) {
	t.Helper()
	tags := []domain.LegacyTag{
		{ID: 1, Name: "Go", Slug: "go", Color: "#00add8", UsageCount: 12, IsActive: true},
		{ID: 2, Name: "Databases", Slug: "databases", Color: "#333333", UsageCount: 4, IsActive: true},
	}
	// Non-monotonic ids on purpose: category 1's parent is category 5.
	categories := []domain.LegacyCategory{
		{ID: 5, Name: "News", Slug: "news", SortOrder: 0, IsActive: true},
		{ID: 1, Name: "Local", Slug: "local", ParentID: ptr(uint64(5)), SortOrder: 0, IsActive: true},
		{ID: 3, Name: "World", Slug: "world", ParentID: ptr(uint64(5)), SortOrder: 1, IsActive: true},
	}
	relations := []domain.LegacyArticleTag{
		{ArticleID: 100, TagID: 1},
		{ArticleID: 100, TagID: 2},
		{ArticleID: 101, TagID: 1},
	}
	articleCategories := []domain.LegacyArticleCategory{
		{ArticleID: 100, CategoryID: 1},
	}
	if err := db.Create(&tags).Error; err != nil {
		t.Fatalf("seed tags: %v", err)
	}
	if err := db.Create(&categories).Error; err != nil {
		t.Fatalf("seed categories: %v", err)
	}
	if err := db.Create(&relations).Error; err != nil {
		t.Fatalf("seed article_tag: %v", err)
	}
	if err := db.Create(&articleCategories).Error; err != nil {
		t.Fatalf("seed article_category: %v", err)
	}
}

func TestMigrateTaxonomy(t *testing.T) {
	db := setupTestDB(t)
	seedLegacy(t, db)

	report, err := MigrateTaxonomy(db)
	assert.NoError(t, err)
	assert.Equal(t, 2, report.TagsCreated)
	assert.Equal(t, 3, report.CategoriesCreated)
	assert.Equal(t, 0, report.CategoriesOrphan)
	assert.Equal(t, 4, report.RelationsCreated)
	assert.Equal(t, 0, report.RelationsOrphan)

	// Parent chains carried over despite the non-monotonic legacy ids.
	var local domain.TaxonomyNode
	err = db.Where("slug = ?", "local").First(&local).Error
	assert.NoError(t, err)
	assert.NotNil(t, local.ParentID)
	var news domain.TaxonomyNode
	err = db.Where("slug = ?", "news").First(&news).Error
	assert.NoError(t, err)
	assert.Equal(t, news.ID, *local.ParentID)

	// Legacy attributes stashed in meta.
	var goTag domain.TaxonomyNode
	err = db.Where("slug = ?", "go").First(&goTag).Error
	assert.NoError(t, err)
	assert.Equal(t, "#00add8", goTag.Meta[domain.MetaLegacyColor])
	id, ok := goTag.Meta[domain.MetaOriginalTagID].(float64)
	assert.True(t, ok)
	assert.EqualValues(t, 1, id)

	assert.NoError(t, VerifyTaxonomy(db))
}

func TestMigrateTaxonomyIdempotent(t *testing.T) {
	db := setupTestDB(t)
	seedLegacy(t, db)

	first, err := MigrateTaxonomy(db)
	assert.NoError(t, err)
	assert.Equal(t, 2, first.TagsCreated)

	second, err := MigrateTaxonomy(db)
	assert.NoError(t, err)
	assert.Equal(t, 0, second.TagsCreated)
	assert.Equal(t, 2, second.TagsSkipped)
	assert.Equal(t, 0, second.CategoriesCreated)
	assert.Equal(t, 3, second.CategoriesSkipped)
	assert.Equal(t, 0, second.RelationsCreated)
	assert.Equal(t, 4, second.RelationsSkipped)

	var nodes, assocs int64
	db.Model(&domain.TaxonomyNode{}).Count(&nodes)
	db.Model(&domain.TaxonomyAssociation{}).Count(&assocs)
	assert.EqualValues(t, 5, nodes)
	assert.EqualValues(t, 4, assocs)
}

func TestMigrateTaxonomyOrphans(t *testing.T) {
	db := setupTestDB(t)
	// A category pointing at a parent row that does not exist, and a
	// relation pointing at a tag that does not exist.
	db.Create(&domain.LegacyCategory{ID: 1, Name: "Lost", Slug: "lost", ParentID: ptr(uint64(42))})
	db.Create(&domain.LegacyTag{ID: 1, Name: "Go", Slug: "go"})
	db.Create(&domain.LegacyArticleTag{ArticleID: 100, TagID: 99})

	report, err := MigrateTaxonomy(db)
	assert.NoError(t, err)
	assert.Equal(t, 1, report.CategoriesOrphan)
	assert.Equal(t, 0, report.CategoriesCreated)
	assert.Equal(t, 1, report.TagsCreated)
	assert.Equal(t, 1, report.RelationsOrphan)
	assert.Equal(t, 0, report.RelationsCreated)
}

func TestMigrateTaxonomyParentCycle(t *testing.T) {
	db := setupTestDB(t)
	// Two legacy rows forming a parent_id cycle are both orphans.
	db.Create(&domain.LegacyCategory{ID: 1, Name: "A", Slug: "a", ParentID: ptr(uint64(2))})
	db.Create(&domain.LegacyCategory{ID: 2, Name: "B", Slug: "b", ParentID: ptr(uint64(1))})
	db.Create(&domain.LegacyCategory{ID: 3, Name: "Ok", Slug: "ok"})

	report, err := MigrateTaxonomy(db)
	assert.NoError(t, err)
	assert.Equal(t, 2, report.CategoriesOrphan)
	assert.Equal(t, 1, report.CategoriesCreated)
}

func TestVerifyTaxonomyDetectsBadBounds(t *testing.T) {
	db := setupTestDB(t)
	db.Create(&domain.TaxonomyNode{Type: domain.NodeTypeTag, Name: "x", Slug: "x", Lft: 3, Rgt: 2})

	assert.Error(t, VerifyTaxonomy(db))
}

func ptr[T any](v T) *T { return &v }
