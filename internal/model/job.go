package model

import (
	"time"

	"github.com/google/uuid"
)

type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// Terminal reports whether the status is a rest state that is never left.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

type JobType string

const (
	JobTypeScrape  JobType = "scrape"
	JobTypeEmbed   JobType = "embed"
	JobTypeAnalyze JobType = "analyze"
)

// Job is one scrape/analyze run for a bookmark. Created in pending state by
// the submit endpoint; only the orchestrator moves it to processing and then
// to exactly one terminal state. A terminal job is never revived, retries
// create a new row.
type Job struct {
	ID           uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	BookmarkID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"bookmark_id"`
	Status       JobStatus  `gorm:"type:varchar(50);not null;default:pending" json:"status"`
	Type         JobType    `gorm:"type:varchar(50);not null;default:scrape" json:"type"`
	Results      *string    `gorm:"type:jsonb" json:"results"`
	ErrorMessage *string    `gorm:"type:text" json:"error_message"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	CompletedAt  *time.Time `json:"completed_at"`

	Bookmark *Bookmark `gorm:"foreignKey:BookmarkID;constraint:OnDelete:CASCADE" json:"bookmark,omitempty"`
}

func (j *Job) TableName() string {
	return "jobs"
}
