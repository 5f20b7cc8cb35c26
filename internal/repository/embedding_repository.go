package repository

import (
	"context"
	"errors"

	"github.com/hfortier/linkstash/internal/model"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EmbeddingRepository struct {
	db *gorm.DB
}

func NewEmbeddingRepository(db *gorm.DB) *EmbeddingRepository {
	return &EmbeddingRepository{db}
}

// FindByHashAndURL returns (nil, nil) when no embedding is cached for the
// content hash + URL pair.
func (r *EmbeddingRepository) FindByHashAndURL(ctx context.Context, contentHash, url string) (*model.ContentEmbedding, error) {
	var embedding model.ContentEmbedding
	err := r.db.WithContext(ctx).
		First(&embedding, "content_hash = ? AND url = ?", contentHash, url).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &embedding, nil
}

// Create inserts a new embedding row. Two jobs embedding identical content
// can race past the cache check; the unique index plus DO NOTHING makes the
// losing insert a no-op instead of an error.
func (r *EmbeddingRepository) Create(ctx context.Context, embedding *model.ContentEmbedding) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(embedding).Error
}

// SearchSimilar returns embeddings ordered by cosine distance to the query
// vector, keeping only rows under the distance threshold.
func (r *EmbeddingRepository) SearchSimilar(ctx context.Context, query pgvector.Vector, limit int, maxDistance float64) ([]model.ContentEmbedding, error) {
	var results []model.ContentEmbedding
	err := r.db.WithContext(ctx).Raw(`
        SELECT *, embedding <=> ? AS distance
        FROM content_embeddings
        WHERE embedding <=> ? < ?
        ORDER BY embedding <=> ?
        LIMIT ?
    `, query, query, maxDistance, query, limit).Scan(&results).Error
	return results, err
}
