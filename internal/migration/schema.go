package migration

import (
	"github.com/inkwell-cms/inkwell-backend/internal/domain"
	"gorm.io/gorm"
)

// RunSchema creates all content-engine tables via AutoMigrate.
// Safe to run multiple times (AutoMigrate is idempotent). The legacy
// tag/category tables are inputs only and are never created here.
func RunSchema(db *gorm.DB) error {
	return db.AutoMigrate(
		// Content entities
		&domain.Post{},
		&domain.Category{},

		// Locale-scoped stores
		&domain.Translation{},
		&domain.Slug{},

		// Revision log
		&domain.Revision{},

		// Unified taxonomy
		&domain.TaxonomyNode{},
		&domain.TaxonomyAssociation{},
	)
}
