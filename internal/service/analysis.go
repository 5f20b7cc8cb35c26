package service

import (
	"fmt"
	"strings"

	"github.com/hfortier/linkstash/internal/model"
	"github.com/tidwall/gjson"
)

// ValidationError reports which field of the model output was missing or of
// the wrong type. Malformed provider output is a hard failure, never
// silently coerced.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("analysis response invalid: field %q %s", e.Field, e.Reason)
}

const analysisPromptTemplate = `You are a bookmark organizer. Analyze the following web page text and derive metadata for it.

Existing collections: [%s]
Prefer one of the existing collections when it fits the content. Only propose a new collection name if none of them apply.

Return your answer STRICTLY in JSON format with this schema:
{
  "summary": "<2-3 sentence summary of the page>",
  "collection": "<single collection label for the page>",
  "title": "<concise page title>",
  "tags": ["<short lowercase tag>", ...]
}

Page text:
%s
`

func buildAnalysisPrompt(text string, knownCollections []string) string {
	return fmt.Sprintf(analysisPromptTemplate, strings.Join(knownCollections, ", "), text)
}

// parseAnalysisResult validates the raw model output field by field and
// builds the typed result. Models occasionally wrap JSON in markdown fences;
// those are stripped before parsing.
func parseAnalysisResult(raw string) (model.AnalysisResult, error) {
	var result model.AnalysisResult

	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	if !gjson.Valid(cleaned) {
		return result, &ValidationError{Field: "(root)", Reason: "is not valid JSON"}
	}

	for _, field := range []string{"summary", "collection", "title"} {
		v := gjson.Get(cleaned, field)
		if !v.Exists() {
			return result, &ValidationError{Field: field, Reason: "is missing"}
		}
		if v.Type != gjson.String {
			return result, &ValidationError{Field: field, Reason: "is not a string"}
		}
	}

	tags := gjson.Get(cleaned, "tags")
	if !tags.Exists() {
		return result, &ValidationError{Field: "tags", Reason: "is missing"}
	}
	if !tags.IsArray() {
		return result, &ValidationError{Field: "tags", Reason: "is not an array"}
	}
	tagList := []string{}
	for _, t := range tags.Array() {
		if t.Type != gjson.String {
			return result, &ValidationError{Field: "tags", Reason: "contains a non-string element"}
		}
		tagList = append(tagList, t.String())
	}

	result = model.AnalysisResult{
		Summary:    gjson.Get(cleaned, "summary").String(),
		Collection: gjson.Get(cleaned, "collection").String(),
		Title:      gjson.Get(cleaned, "title").String(),
		Tags:       tagList,
	}
	return result, nil
}
