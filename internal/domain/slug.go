package domain

import "time"

// Slug maps a normalized, locale-scoped slug string to a content entity.
// Renames deactivate the old row instead of deleting it, so historical URLs
// keep resolving. Invariants: one active row per (entity, locale), and no
// two entities of the same type share an active slug within a locale.
type Slug struct {
	ID         uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	EntityType string    `gorm:"column:entity_type;type:varchar(20);index:idx_slug_lookup" json:"entity_type"`
	EntityID   uint64    `gorm:"column:entity_id;index" json:"entity_id"`
	Locale     string    `gorm:"column:locale;type:varchar(10);index:idx_slug_lookup" json:"locale"`
	Slug       string    `gorm:"column:slug;type:varchar(255);index:idx_slug_lookup" json:"slug"`
	Active     bool      `gorm:"column:active;default:true" json:"active"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Slug) TableName() string { return "content_slugs" }
