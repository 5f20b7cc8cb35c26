package model

import "encoding/json"

// AnalysisResult is the validated output of the analysis provider for one
// page. All four fields are required; the provider layer rejects partial or
// mistyped output before a value of this type is built. Serialized as-is
// into Job.Results once the job completes.
type AnalysisResult struct {
	Summary    string   `json:"summary"`
	Collection string   `json:"collection"`
	Title      string   `json:"title"`
	Tags       []string `json:"tags"`
}

// Marshal serializes the result for storage in the jobs.results column.
// Tags always serialize as a JSON array, never null.
func (r AnalysisResult) Marshal() (string, error) {
	if r.Tags == nil {
		r.Tags = []string{}
	}
	raw, err := json.Marshal(r)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// UnmarshalAnalysisResult reads a stored jobs.results payload back.
func UnmarshalAnalysisResult(raw string) (AnalysisResult, error) {
	var r AnalysisResult
	err := json.Unmarshal([]byte(raw), &r)
	return r, err
}
