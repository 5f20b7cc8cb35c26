package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hfortier/linkstash/internal/cache"
	"github.com/hfortier/linkstash/internal/model"
	"github.com/pgvector/pgvector-go"
)

// DefaultJobTimeout is the wall-clock budget for one job's whole pipeline,
// fetch through embedding.
const DefaultJobTimeout = 600 * time.Second

const (
	embeddingInputLimit   = 8192
	contentPreviewLimit   = 500
	errMsgOrphanedCleanup = "Job timed out or app was restarted"
)

type JobStore interface {
	Create(ctx context.Context, job *model.Job) error
	Save(ctx context.Context, job *model.Job) error
	FindByID(ctx context.Context, id string) (*model.Job, error)
	FindActiveByBookmark(ctx context.Context, bookmarkID uuid.UUID) (*model.Job, error)
	FindStuckProcessing(ctx context.Context, olderThan time.Time) ([]model.Job, error)
	List(ctx context.Context, status *model.JobStatus) ([]model.Job, error)
	Delete(ctx context.Context, id string) error
}

type BookmarkStore interface {
	Create(ctx context.Context, bookmark *model.Bookmark) error
	FindByURL(ctx context.Context, url string) (*model.Bookmark, error)
	SaveSuggestion(ctx context.Context, suggestion *model.BookmarkAISuggestion) error
}

type CollectionStore interface {
	FindAll(ctx context.Context) ([]model.Collection, error)
}

type TagStore interface {
	EnsureAll(ctx context.Context, names []string) ([]model.Tag, error)
}

type EmbeddingStore interface {
	FindByHashAndURL(ctx context.Context, contentHash, url string) (*model.ContentEmbedding, error)
	Create(ctx context.Context, embedding *model.ContentEmbedding) error
}

type ContentFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

type ContentExtractor interface {
	Extract(html []byte) (string, error)
}

type Analyzer interface {
	Analyze(ctx context.Context, text string, knownCollections []string) (model.AnalysisResult, error)
}

type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// ScrapeUsecase drives a job through pending -> processing -> terminal.
// Only this type moves jobs out of pending; terminal jobs are never revived.
type ScrapeUsecase struct {
	jobs        JobStore
	bookmarks   BookmarkStore
	collections CollectionStore
	tags        TagStore
	embeddings  EmbeddingStore
	fetcher     ContentFetcher
	extractor   ContentExtractor
	analyzer    Analyzer
	embedder    Embedder
	cache       cache.Cache
	timeout     time.Duration
}

func NewScrapeUsecase(
	jobs JobStore,
	bookmarks BookmarkStore,
	collections CollectionStore,
	tags TagStore,
	embeddings EmbeddingStore,
	fetcher ContentFetcher,
	extractor ContentExtractor,
	analyzer Analyzer,
	embedder Embedder,
	statusCache cache.Cache,
	timeout time.Duration,
) *ScrapeUsecase {
	return &ScrapeUsecase{
		jobs:        jobs,
		bookmarks:   bookmarks,
		collections: collections,
		tags:        tags,
		embeddings:  embeddings,
		fetcher:     fetcher,
		extractor:   extractor,
		analyzer:    analyzer,
		embedder:    embedder,
		cache:       statusCache,
		timeout:     timeout,
	}
}

// Submit finds or creates the bookmark for a URL and returns its active job.
// When a non-failed job already exists it is returned unchanged; otherwise a
// pending job is created and the pipeline is dispatched fire-and-forget.
// The second return value reports whether a new job was created.
func (uc *ScrapeUsecase) Submit(ctx context.Context, url string) (*model.Job, bool, error) {
	bookmark, err := uc.bookmarks.FindByURL(ctx, url)
	if err != nil {
		return nil, false, fmt.Errorf("find bookmark: %w", err)
	}
	if bookmark == nil {
		bookmark = &model.Bookmark{ID: uuid.New(), URL: url}
		if err := uc.bookmarks.Create(ctx, bookmark); err != nil {
			return nil, false, fmt.Errorf("create bookmark: %w", err)
		}
	}

	existing, err := uc.jobs.FindActiveByBookmark(ctx, bookmark.ID)
	if err != nil {
		return nil, false, fmt.Errorf("find active job: %w", err)
	}
	if existing != nil {
		return existing, false, nil
	}

	job := &model.Job{
		ID:         uuid.New(),
		BookmarkID: bookmark.ID,
		Status:     model.JobStatusPending,
		Type:       model.JobTypeScrape,
		CreatedAt:  time.Now().UTC(),
	}
	if err := uc.jobs.Create(ctx, job); err != nil {
		return nil, false, fmt.Errorf("create job: %w", err)
	}

	go uc.Run(job.ID.String(), url)

	return job, true, nil
}

// Run executes the full pipeline for one job. Every code path out of here
// leaves the job in a terminal state once it has been marked processing; a
// missing job id is a silent no-op so duplicate invocations against deleted
// jobs stay harmless.
func (uc *ScrapeUsecase) Run(jobID string, url string) {
	ctx := context.Background()

	job, err := uc.jobs.FindByID(ctx, jobID)
	if err != nil {
		slog.Error("job lookup failed", "job_id", jobID, "err", err)
		return
	}
	if job == nil {
		slog.Warn("job not found, skipping", "job_id", jobID)
		return
	}
	if job.Status != model.JobStatusPending {
		slog.Info("job is not pending, skipping", "job_id", jobID, "status", job.Status)
		return
	}

	// The processing transition must be durable before any network call so
	// startup recovery can detect jobs orphaned by a crash.
	job.Status = model.JobStatusProcessing
	if err := uc.jobs.Save(ctx, job); err != nil {
		slog.Error("failed to mark job processing", "job_id", jobID, "err", err)
		return
	}
	uc.mirrorStatus(ctx, job)
	slog.Info("job started", "job_id", jobID, "url", url, "timeout", uc.timeout)

	runCtx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	type pipelineOutcome struct {
		results model.AnalysisResult
		err     error
	}
	done := make(chan pipelineOutcome, 1)
	go func() {
		results, err := uc.process(runCtx, job, url)
		done <- pipelineOutcome{results: results, err: err}
	}()

	select {
	case outcome := <-done:
		if outcome.err != nil {
			slog.Error("job failed", "job_id", jobID, "err", outcome.err)
			uc.failJob(ctx, job, outcome.err.Error())
			return
		}
		payload, err := outcome.results.Marshal()
		if err != nil {
			uc.failJob(ctx, job, fmt.Sprintf("serialize results: %v", err))
			return
		}
		now := time.Now().UTC()
		job.Status = model.JobStatusCompleted
		job.CompletedAt = &now
		job.Results = &payload
		if err := uc.jobs.Save(ctx, job); err != nil {
			slog.Error("failed to persist completed job", "job_id", jobID, "err", err)
			return
		}
		uc.mirrorStatus(ctx, job)
		slog.Info("job completed", "job_id", jobID, "url", url)

	case <-runCtx.Done():
		// The pipeline goroutine is abandoned; it cannot flip the job back
		// because terminal saves below are full-row overwrites.
		slog.Warn("job timed out", "job_id", jobID, "timeout", uc.timeout)
		uc.failJob(ctx, job, fmt.Sprintf("Job timed out after %d seconds", int(uc.timeout.Seconds())))
	}
}

// process is the pipeline body: fetch, extract, analyze, persist suggestion,
// best-effort embedding. Partial writes before a failure point are not
// rolled back; Run forces the job itself to a terminal state afterwards.
func (uc *ScrapeUsecase) process(ctx context.Context, job *model.Job, url string) (model.AnalysisResult, error) {
	var zero model.AnalysisResult

	html, err := uc.fetcher.Fetch(ctx, url)
	if err != nil {
		return zero, fmt.Errorf("fetch stage: %w", err)
	}

	text, err := uc.extractor.Extract(html)
	if err != nil {
		return zero, fmt.Errorf("extract stage: %w", err)
	}

	collections, err := uc.collections.FindAll(ctx)
	if err != nil {
		return zero, fmt.Errorf("load collections: %w", err)
	}
	names := make([]string, 0, len(collections))
	for _, c := range collections {
		names = append(names, c.Name)
	}

	results, err := uc.analyzer.Analyze(ctx, text, names)
	if err != nil {
		return zero, fmt.Errorf("analysis stage: %w", err)
	}

	// Collection resolution: exact case-sensitive match reuses the existing
	// collection; anything else leaves the association null. Unknown labels
	// never create collections.
	var collectionID *uuid.UUID
	for _, c := range collections {
		if c.Name == results.Collection {
			id := c.ID
			collectionID = &id
			break
		}
	}

	suggestion := &model.BookmarkAISuggestion{
		BookmarkID:   job.BookmarkID,
		Title:        results.Title,
		Description:  results.Summary,
		CollectionID: collectionID,
	}
	if err := suggestion.SetTags(results.Tags); err != nil {
		return zero, fmt.Errorf("serialize tags: %w", err)
	}
	if err := uc.bookmarks.SaveSuggestion(ctx, suggestion); err != nil {
		return zero, fmt.Errorf("save suggestion: %w", err)
	}

	if _, err := uc.tags.EnsureAll(ctx, results.Tags); err != nil {
		slog.Warn("tag materialization failed", "job_id", job.ID, "err", err)
	}

	// Embedding is best-effort enrichment; its failure never fails the job.
	if err := uc.saveEmbedding(ctx, url, text); err != nil {
		slog.Warn("embedding failed, continuing without it", "job_id", job.ID, "url", url, "err", err)
	}

	return results, nil
}

// saveEmbedding stores a content embedding for the extracted text unless an
// identical (content hash, url) pair is already cached.
func (uc *ScrapeUsecase) saveEmbedding(ctx context.Context, url, text string) error {
	hash := sha256.Sum256([]byte(text))
	contentHash := hex.EncodeToString(hash[:])

	existing, err := uc.embeddings.FindByHashAndURL(ctx, contentHash, url)
	if err != nil {
		return fmt.Errorf("embedding lookup: %w", err)
	}
	if existing != nil {
		slog.Info("embedding already exists, reusing", "url", url)
		return nil
	}

	input := text
	if len(input) > embeddingInputLimit {
		input = input[:embeddingInputLimit]
	}
	vector, err := uc.embedder.GenerateEmbedding(ctx, input)
	if err != nil {
		return fmt.Errorf("generate embedding: %w", err)
	}

	preview := text
	if len(preview) > contentPreviewLimit {
		preview = preview[:contentPreviewLimit]
	}
	embedding := &model.ContentEmbedding{
		ID:             uuid.New(),
		URL:            url,
		ContentHash:    contentHash,
		ContentPreview: preview,
		Embedding:      pgvector.NewVector(vector),
	}
	if err := uc.embeddings.Create(ctx, embedding); err != nil {
		return fmt.Errorf("store embedding: %w", err)
	}
	return nil
}

func (uc *ScrapeUsecase) failJob(ctx context.Context, job *model.Job, message string) {
	now := time.Now().UTC()
	job.Status = model.JobStatusFailed
	job.CompletedAt = &now
	job.ErrorMessage = &message
	if err := uc.jobs.Save(ctx, job); err != nil {
		slog.Error("failed to persist failed job", "job_id", job.ID, "err", err)
		return
	}
	uc.mirrorStatus(ctx, job)
}

func (uc *ScrapeUsecase) mirrorStatus(ctx context.Context, job *model.Job) {
	if err := uc.cache.SetJobStatus(ctx, job.ID, string(job.Status), cache.JobStatusTTL); err != nil {
		slog.Debug("job status cache write failed", "job_id", job.ID, "err", err)
	}
}

// GetJob returns a job by id, or (nil, nil) when it does not exist.
func (uc *ScrapeUsecase) GetJob(ctx context.Context, id string) (*model.Job, error) {
	return uc.jobs.FindByID(ctx, id)
}

// CachedStatus returns the mirrored status for a job when one is present.
func (uc *ScrapeUsecase) CachedStatus(ctx context.Context, id uuid.UUID) (string, bool) {
	status, ok, err := uc.cache.GetJobStatus(ctx, id)
	if err != nil {
		return "", false
	}
	return status, ok
}

// ListJobs returns jobs newest-first, optionally filtered by status.
func (uc *ScrapeUsecase) ListJobs(ctx context.Context, status *model.JobStatus) ([]model.Job, error) {
	return uc.jobs.List(ctx, status)
}

// DeleteJob removes a terminal job. Jobs still processing cannot be deleted.
func (uc *ScrapeUsecase) DeleteJob(ctx context.Context, id string) error {
	job, err := uc.jobs.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if job == nil {
		return ErrJobNotFound
	}
	if job.Status == model.JobStatusProcessing {
		return ErrJobStillProcessing
	}
	return uc.jobs.Delete(ctx, id)
}
