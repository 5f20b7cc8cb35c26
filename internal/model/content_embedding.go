package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

// ContentEmbedding is a dedup cache of page embeddings keyed by
// (content_hash, url). Identical content for the same URL reuses the stored
// vector instead of calling the embedding model again.
type ContentEmbedding struct {
	ID             uuid.UUID       `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	URL            string          `gorm:"type:varchar(1024);not null;index;uniqueIndex:idx_content_embedding_hash_url,priority:2" json:"url"`
	ContentHash    string          `gorm:"type:varchar(64);not null;index;uniqueIndex:idx_content_embedding_hash_url,priority:1" json:"content_hash"`
	ContentPreview string          `gorm:"type:varchar(500)" json:"content_preview"`
	Embedding      pgvector.Vector `gorm:"type:vector(384)" json:"-"`
	CreatedAt      time.Time       `json:"created_at"`
}

func (e *ContentEmbedding) TableName() string {
	return "content_embeddings"
}
