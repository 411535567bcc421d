package domain

import (
	"time"

	"gorm.io/gorm"
)

// Content entity types. Translation, Slug and Revision rows reference their
// owner through an (entity_type, entity_id) pair.
const (
	EntityTypePost     = "post"
	EntityTypeCategory = "category"
)

// Post is a slug-addressable content entity. Localized fields live in
// Translation rows, URLs in Slug rows.
type Post struct {
	ID        uint64         `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Published bool           `gorm:"column:published;default:false;index" json:"published"`
	Position  *int           `gorm:"column:position" json:"position,omitempty"`
	ViewCount uint64         `gorm:"column:view_count;default:0" json:"view_count"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"column:deleted_at;index" json:"-"`
}

func (Post) TableName() string { return "posts" }

// Category is a content entity with a position in the flat category tree.
// The unified taxonomy produced by the migrator lives in TaxonomyNode.
type Category struct {
	ID        uint64         `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ParentID  *uint64        `gorm:"column:parent_id;index" json:"parent_id,omitempty"`
	SortOrder int            `gorm:"column:sort_order;default:0" json:"sort_order"`
	Published bool           `gorm:"column:published;default:false;index" json:"published"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"column:deleted_at;index" json:"-"`
}

func (Category) TableName() string { return "content_categories" }
