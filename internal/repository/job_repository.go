package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/hfortier/linkstash/internal/model"
	"gorm.io/gorm"
)

type JobRepository struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{db}
}

func (r *JobRepository) Create(ctx context.Context, job *model.Job) error {
	return r.db.WithContext(ctx).Create(job).Error
}

// Save overwrites the whole row (upsert semantics). A subsequent FindByID
// from any caller observes the write.
func (r *JobRepository) Save(ctx context.Context, job *model.Job) error {
	return r.db.WithContext(ctx).Save(job).Error
}

// FindByID returns (nil, nil) when no job exists for the id.
func (r *JobRepository) FindByID(ctx context.Context, id string) (*model.Job, error) {
	var job model.Job
	err := r.db.WithContext(ctx).First(&job, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// FindActiveByBookmark returns the newest non-failed job for a bookmark, or
// (nil, nil) when every job for it has failed or none exist.
func (r *JobRepository) FindActiveByBookmark(ctx context.Context, bookmarkID uuid.UUID) (*model.Job, error) {
	var job model.Job
	err := r.db.WithContext(ctx).
		Where("bookmark_id = ? AND status <> ?", bookmarkID, model.JobStatusFailed).
		Order("created_at DESC").
		First(&job).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// FindStuckProcessing returns jobs still marked processing that were created
// before the given threshold. Used by startup recovery.
func (r *JobRepository) FindStuckProcessing(ctx context.Context, olderThan time.Time) ([]model.Job, error) {
	var jobs []model.Job
	err := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", model.JobStatusProcessing, olderThan).
		Find(&jobs).Error
	return jobs, err
}

func (r *JobRepository) List(ctx context.Context, status *model.JobStatus) ([]model.Job, error) {
	q := r.db.WithContext(ctx).Preload("Bookmark").Order("created_at DESC")
	if status != nil {
		q = q.Where("status = ?", *status)
	}
	var jobs []model.Job
	err := q.Find(&jobs).Error
	return jobs, err
}

func (r *JobRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&model.Job{}, "id = ?", id).Error
}
