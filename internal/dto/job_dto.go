package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/hfortier/linkstash/internal/model"
)

type JobSummaryDTO struct {
	ID         uuid.UUID `json:"id"`
	BookmarkID uuid.UUID `json:"bookmark_id"`
	Status     string    `json:"status"`
	Type       string    `json:"type"`
	URL        string    `json:"url"`
	CreatedAt  time.Time `json:"created_at"`
}

type JobDTO struct {
	ID           uuid.UUID             `json:"id"`
	BookmarkID   uuid.UUID             `json:"bookmark_id"`
	Status       string                `json:"status"`
	Type         string                `json:"type"`
	CreatedAt    time.Time             `json:"created_at"`
	CompletedAt  *time.Time            `json:"completed_at"`
	ErrorMessage *string               `json:"error_message"`
	Results      *model.AnalysisResult `json:"results"`
}

func NewJobSummaryDTO(job *model.Job) JobSummaryDTO {
	d := JobSummaryDTO{
		ID:         job.ID,
		BookmarkID: job.BookmarkID,
		Status:     string(job.Status),
		Type:       string(job.Type),
		CreatedAt:  job.CreatedAt,
	}
	if job.Bookmark != nil {
		d.URL = job.Bookmark.URL
	}
	return d
}

// NewJobDTO converts a job row. Stored results deserialize back into the
// structured payload; a payload that no longer parses is surfaced as nil
// rather than failing the status read.
func NewJobDTO(job *model.Job) JobDTO {
	d := JobDTO{
		ID:           job.ID,
		BookmarkID:   job.BookmarkID,
		Status:       string(job.Status),
		Type:         string(job.Type),
		CreatedAt:    job.CreatedAt,
		CompletedAt:  job.CompletedAt,
		ErrorMessage: job.ErrorMessage,
	}
	if job.Results != nil {
		if results, err := model.UnmarshalAnalysisResult(*job.Results); err == nil {
			d.Results = &results
		}
	}
	return d
}
