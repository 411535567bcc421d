package domain

// Legacy flat tables read by the taxonomy migrator. These models are
// read-only inputs; the engine never writes to them.

// LegacyTag mirrors the legacy tags table.
type LegacyTag struct {
	ID         uint64 `gorm:"column:id;primaryKey"`
	Name       string `gorm:"column:name"`
	Slug       string `gorm:"column:slug"`
	Color      string `gorm:"column:color"`
	UsageCount int    `gorm:"column:usage_count"`
	IsActive   bool   `gorm:"column:is_active"`
}

func (LegacyTag) TableName() string { return "tags" }

// LegacyCategory mirrors the legacy categories table. ParentID chains are
// not guaranteed to be monotonic: a child's id may be lower than its
// parent's.
type LegacyCategory struct {
	ID          uint64  `gorm:"column:id;primaryKey"`
	Name        string  `gorm:"column:name"`
	Slug        string  `gorm:"column:slug"`
	Description *string `gorm:"column:description"`
	ParentID    *uint64 `gorm:"column:parent_id"`
	SortOrder   int     `gorm:"column:sort_order"`
	IsActive    bool    `gorm:"column:is_active"`
}

func (LegacyCategory) TableName() string { return "categories" }

// LegacyArticleTag mirrors the legacy article_tag join table.
type LegacyArticleTag struct {
	ArticleID uint64 `gorm:"column:article_id;primaryKey"`
	TagID     uint64 `gorm:"column:tag_id;primaryKey"`
}

func (LegacyArticleTag) TableName() string { return "article_tag" }

// LegacyArticleCategory mirrors the legacy article_category join table.
type LegacyArticleCategory struct {
	ArticleID  uint64 `gorm:"column:article_id;primaryKey"`
	CategoryID uint64 `gorm:"column:category_id;primaryKey"`
}

func (LegacyArticleCategory) TableName() string { return "article_category" }
