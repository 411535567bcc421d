package domain

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// Taxonomy node types
const (
	NodeTypeTag      = "tag"
	NodeTypeCategory = "category"
)

// Meta keys stashed by the taxonomy migrator. Relationship migration looks
// legacy ids up through these keys only, never through name or slug.
const (
	MetaOriginalTagID      = "original_tag_id"
	MetaOriginalCategoryID = "original_category_id"
	MetaLegacyColor        = "color"
	MetaLegacyUsageCount   = "usage_count"
	MetaLegacyIsActive     = "is_active"
	MetaMigrated           = "migrated"
)

// JSONMap stores schemaless metadata as a JSON column.
type JSONMap map[string]interface{}

// Value implements driver.Valuer
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner
func (m *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*m = make(JSONMap)
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return nil
	}
	return json.Unmarshal(data, m)
}

// TaxonomyNode is one node of the unified tag/category tree. parent_id and
// sort_order are the authoritative structure; (lft, rgt, depth) are the
// nested-set encoding rebuilt after every structural mutation so subtree
// membership stays a range query.
type TaxonomyNode struct {
	ID          uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Type        string    `gorm:"column:type;type:varchar(20);index" json:"type"`
	Name        string    `gorm:"column:name;type:varchar(100)" json:"name"`
	Slug        string    `gorm:"column:slug;type:varchar(100);index" json:"slug"`
	Description *string   `gorm:"column:description;type:text" json:"description,omitempty"`
	ParentID    *uint64   `gorm:"column:parent_id;index" json:"parent_id,omitempty"`
	SortOrder   int       `gorm:"column:sort_order;default:0" json:"sort_order"`
	Lft         int       `gorm:"column:lft;default:0;index" json:"lft"`
	Rgt         int       `gorm:"column:rgt;default:0;index" json:"rgt"`
	Depth       int       `gorm:"column:depth;default:0" json:"depth"`
	Meta        JSONMap   `gorm:"column:meta;type:json" json:"meta,omitempty"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (TaxonomyNode) TableName() string { return "taxonomy_nodes" }

// TaxonomyAssociation attaches a content entity to a taxonomy node.
// Generic replacement for the legacy article_tag / article_category tables.
type TaxonomyAssociation struct {
	NodeID     uint64 `gorm:"column:node_id;primaryKey" json:"node_id"`
	EntityType string `gorm:"column:entity_type;type:varchar(20);primaryKey" json:"entity_type"`
	EntityID   uint64 `gorm:"column:entity_id;primaryKey" json:"entity_id"`
}

func (TaxonomyAssociation) TableName() string { return "taxonomy_associations" }
