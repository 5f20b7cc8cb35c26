package model

import (
	"time"

	"github.com/google/uuid"
)

type Bookmark struct {
	ID           uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	URL          string     `gorm:"type:varchar(1024);not null;index" json:"url"`
	Title        *string    `gorm:"type:varchar(256);index" json:"title"`
	Description  *string    `gorm:"type:varchar(1024)" json:"description"`
	CollectionID *uuid.UUID `gorm:"type:uuid" json:"collection_id"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	Collection   *Collection           `gorm:"foreignKey:CollectionID;constraint:OnDelete:SET NULL" json:"collection,omitempty"`
	AISuggestion *BookmarkAISuggestion `gorm:"foreignKey:BookmarkID" json:"ai_suggestion,omitempty"`
	Tags         []Tag                 `gorm:"many2many:bookmark_tags" json:"tags,omitempty"`
}

func (b *Bookmark) TableName() string {
	return "bookmarks"
}
