package service

import (
	"testing"

	"github.com/inkwell-cms/inkwell-backend/internal/domain"
	"github.com/inkwell-cms/inkwell-backend/pkg/locale"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	err = db.AutoMigrate(
		&domain.Post{},
		&domain.Category{},
		&domain.Translation{},
		&domain.Slug{},
		&domain.Revision{},
		&domain.TaxonomyNode{},
		&domain.TaxonomyAssociation{},
		&domain.LegacyTag{},
		&domain.LegacyCategory{},
		&domain.LegacyArticleTag{},
		&domain.LegacyArticleCategory{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}
	return db
}

func testLocales() *locale.Set {
	return locale.NewSet(locale.LocaleEn, []locale.Locale{locale.LocaleEn, locale.LocaleLt, locale.LocaleRu})
}
