package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/hfortier/linkstash/internal/model"
	"github.com/pgvector/pgvector-go"
)

// DefaultSimilarityThreshold is the maximum cosine distance for a match.
const DefaultSimilarityThreshold = 0.8

type SimilarityStore interface {
	SearchSimilar(ctx context.Context, query pgvector.Vector, limit int, maxDistance float64) ([]model.ContentEmbedding, error)
}

// SearchUsecase answers semantic search queries against the embedding store.
type SearchUsecase struct {
	embedder   Embedder
	embeddings SimilarityStore
	threshold  float64
}

func NewSearchUsecase(embedder Embedder, embeddings SimilarityStore) *SearchUsecase {
	return &SearchUsecase{
		embedder:   embedder,
		embeddings: embeddings,
		threshold:  DefaultSimilarityThreshold,
	}
}

// Search embeds the query and returns stored content ordered by cosine
// distance. A blank query returns no results without calling the model.
func (uc *SearchUsecase) Search(ctx context.Context, query string, limit int) ([]model.ContentEmbedding, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 10
	}

	vector, err := uc.embedder.GenerateEmbedding(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	return uc.embeddings.SearchSimilar(ctx, pgvector.NewVector(vector), limit, uc.threshold)
}
