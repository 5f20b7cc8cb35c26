package service

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/hfortier/linkstash/internal/config"
	"github.com/hfortier/linkstash/internal/model"
	"github.com/tidwall/gjson"
)

const openRouterEndpoint = "https://openrouter.ai/api/v1/chat/completions"

// OpenRouterService is an alternative analysis provider over the OpenRouter
// chat API. It does not provide embeddings; the Gemini service stays in
// place for those even when this provider is selected.
type OpenRouterService struct {
	APIKey string
	Model  string
	client *resty.Client
}

func NewOpenRouterService() *OpenRouterService {
	aiConfig := config.LoadAIConfig()
	return &OpenRouterService{
		APIKey: aiConfig.OpenRouterAPIKey,
		Model:  aiConfig.OpenRouterModel,
		client: resty.New(),
	}
}

func (s *OpenRouterService) Analyze(ctx context.Context, text string, knownCollections []string) (model.AnalysisResult, error) {
	if s.APIKey == "" {
		return model.AnalysisResult{}, fmt.Errorf("OPENROUTER_API_KEY not set")
	}
	if len(text) > maxAnalysisInputLen {
		text = text[:maxAnalysisInputLen]
	}
	prompt := buildAnalysisPrompt(text, knownCollections)

	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+s.APIKey).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]interface{}{
			"model": s.Model,
			"messages": []map[string]string{
				{"role": "system", "content": "You are an assistant that organizes web bookmarks."},
				{"role": "user", "content": prompt},
			},
		}).
		Post(openRouterEndpoint)
	if err != nil {
		return model.AnalysisResult{}, fmt.Errorf("openrouter request: %w", err)
	}
	if resp.StatusCode() != 200 {
		return model.AnalysisResult{}, fmt.Errorf("openrouter HTTP %d: %s", resp.StatusCode(), resp.String())
	}

	content := gjson.Get(resp.String(), "choices.0.message.content").String()
	if content == "" {
		return model.AnalysisResult{}, fmt.Errorf("openrouter returned no content")
	}

	return parseAnalysisResult(content)
}
