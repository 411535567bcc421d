package domain

import "time"

// Revision is an immutable snapshot of an entity's content state, appended
// after every translation or slug mutation. Rows are never updated; they are
// removed only by the hard-delete cascade of the owning entity.
type Revision struct {
	ID         uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	EntityType string    `gorm:"column:entity_type;type:varchar(20);index:idx_revision_entity" json:"entity_type"`
	EntityID   uint64    `gorm:"column:entity_id;index:idx_revision_entity" json:"entity_id"`
	Payload    []byte    `gorm:"column:payload;type:json" json:"payload"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Revision) TableName() string { return "content_revisions" }

// RevisionSummary is the listing view of a revision: everything but the blob.
type RevisionSummary struct {
	ID        uint64    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}
