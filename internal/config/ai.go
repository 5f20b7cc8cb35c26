package config

import (
	"os"
	"strconv"
	"sync"
)

type AIConfig struct {
	// Provider selects the analysis backend: "gemini" (default) or "openrouter".
	Provider string

	GeminiAPIKey     string
	GeminiModel      string
	EmbeddingModel   string
	EmbeddingDim     int
	OpenRouterAPIKey string
	OpenRouterModel  string
}

var (
	aiConfig *AIConfig
	aiOnce   sync.Once
)

func LoadAIConfig() *AIConfig {
	aiOnce.Do(func() {
		provider := os.Getenv("AI_PROVIDER")
		if provider == "" {
			provider = "gemini"
		}
		geminiModel := os.Getenv("GEMINI_MODEL")
		if geminiModel == "" {
			geminiModel = "gemini-2.5-flash"
		}
		embeddingModel := os.Getenv("EMBEDDING_MODEL")
		if embeddingModel == "" {
			embeddingModel = "gemini-embedding-001"
		}
		// Vector column width is fixed per deployment, changing it requires
		// rebuilding the content_embedding table.
		dim := 384
		if v := os.Getenv("EMBEDDING_DIM"); v != "" {
			if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
				dim = parsed
			}
		}
		openRouterModel := os.Getenv("OPENROUTER_MODEL")
		if openRouterModel == "" {
			openRouterModel = "openai/gpt-4o-mini"
		}
		aiConfig = &AIConfig{
			Provider:         provider,
			GeminiAPIKey:     os.Getenv("GEMINI_API_KEY"),
			GeminiModel:      geminiModel,
			EmbeddingModel:   embeddingModel,
			EmbeddingDim:     dim,
			OpenRouterAPIKey: os.Getenv("OPENROUTER_API_KEY"),
			OpenRouterModel:  openRouterModel,
		}
	})
	return aiConfig
}
