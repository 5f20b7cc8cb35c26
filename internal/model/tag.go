package model

import (
	"time"

	"github.com/google/uuid"
)

type Tag struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(64);not null;uniqueIndex" json:"name"`
	CreatedAt time.Time `json:"created_at"`

	Bookmarks []Bookmark `gorm:"many2many:bookmark_tags" json:"-"`
}

func (t *Tag) TableName() string {
	return "tags"
}
