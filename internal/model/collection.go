package model

import (
	"time"

	"github.com/google/uuid"
)

type Collection struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(256);not null;index" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Filled by CollectionRepository queries, not a column.
	BookmarksCount int64 `gorm:"-" json:"bookmarks_count"`
}

func (c *Collection) TableName() string {
	return "collections"
}
