package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/hfortier/linkstash/internal/model"
)

type SuggestionDTO struct {
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	CollectionID *uuid.UUID `json:"collection_id"`
	Tags         []string   `json:"tags"`
}

type BookmarkDTO struct {
	ID           uuid.UUID      `json:"id"`
	URL          string         `json:"url"`
	Title        *string        `json:"title"`
	Description  *string        `json:"description"`
	CollectionID *uuid.UUID     `json:"collection_id"`
	CreatedAt    time.Time      `json:"created_at"`
	AISuggestion *SuggestionDTO `json:"ai_suggestion,omitempty"`
}

type SearchResultDTO struct {
	URL            string `json:"url"`
	ContentPreview string `json:"content_preview"`
}

func NewBookmarkDTO(bookmark *model.Bookmark) BookmarkDTO {
	d := BookmarkDTO{
		ID:           bookmark.ID,
		URL:          bookmark.URL,
		Title:        bookmark.Title,
		Description:  bookmark.Description,
		CollectionID: bookmark.CollectionID,
		CreatedAt:    bookmark.CreatedAt,
	}
	if bookmark.AISuggestion != nil {
		d.AISuggestion = &SuggestionDTO{
			Title:        bookmark.AISuggestion.Title,
			Description:  bookmark.AISuggestion.Description,
			CollectionID: bookmark.AISuggestion.CollectionID,
			Tags:         bookmark.AISuggestion.TagList(),
		}
	}
	return d
}
