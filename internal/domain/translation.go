package domain

import "time"

// Translation holds the localized fields of a content entity. At most one
// row exists per (entity_type, entity_id, locale); the active flag allows
// soft-disabling a locale without deleting the row.
type Translation struct {
	ID          uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	EntityType  string    `gorm:"column:entity_type;type:varchar(20);uniqueIndex:idx_translation_entity_locale" json:"entity_type"`
	EntityID    uint64    `gorm:"column:entity_id;uniqueIndex:idx_translation_entity_locale" json:"entity_id"`
	Locale      string    `gorm:"column:locale;type:varchar(10);uniqueIndex:idx_translation_entity_locale" json:"locale"`
	Active      bool      `gorm:"column:active;default:true" json:"active"`
	Title       string    `gorm:"column:title;type:varchar(255)" json:"title"`
	Description string    `gorm:"column:description;type:text" json:"description"`
	Body        string    `gorm:"column:body;type:mediumtext" json:"body"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Translation) TableName() string { return "content_translations" }
