package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// BookmarkAISuggestion holds what the analysis pipeline derived for a
// bookmark. The user can accept or ignore it; it never overwrites the
// bookmark's own fields directly.
type BookmarkAISuggestion struct {
	BookmarkID   uuid.UUID  `gorm:"type:uuid;primaryKey" json:"bookmark_id"`
	Title        string     `gorm:"type:varchar(256);not null" json:"title"`
	Description  string     `gorm:"type:varchar(1024);not null" json:"description"`
	CollectionID *uuid.UUID `gorm:"type:uuid" json:"collection_id"`
	Tags         string     `gorm:"type:jsonb;default:'[]'" json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (s *BookmarkAISuggestion) TableName() string {
	return "bookmark_ai_suggestions"
}

func (s *BookmarkAISuggestion) SetTags(tags []string) error {
	if tags == nil {
		tags = []string{}
	}
	raw, err := json.Marshal(tags)
	if err != nil {
		return err
	}
	s.Tags = string(raw)
	return nil
}

func (s *BookmarkAISuggestion) TagList() []string {
	var tags []string
	if err := json.Unmarshal([]byte(s.Tags), &tags); err != nil {
		return nil
	}
	return tags
}
