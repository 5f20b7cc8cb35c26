package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hfortier/linkstash/internal/cache"
	"github.com/hfortier/linkstash/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeJobStore struct {
	mu   sync.Mutex
	jobs map[string]model.Job
}

func newFakeJobStore() *fakeJobStore {
	return &fakeJobStore{jobs: map[string]model.Job{}}
}

func (s *fakeJobStore) Create(_ context.Context, job *model.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID.String()] = *job
	return nil
}

func (s *fakeJobStore) Save(_ context.Context, job *model.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID.String()] = *job
	return nil
}

func (s *fakeJobStore) FindByID(_ context.Context, id string) (*model.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil, nil
	}
	copied := job
	return &copied, nil
}

func (s *fakeJobStore) FindActiveByBookmark(_ context.Context, bookmarkID uuid.UUID) (*model.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var newest *model.Job
	for _, job := range s.jobs {
		if job.BookmarkID != bookmarkID || job.Status == model.JobStatusFailed {
			continue
		}
		if newest == nil || job.CreatedAt.After(newest.CreatedAt) {
			copied := job
			newest = &copied
		}
	}
	return newest, nil
}

func (s *fakeJobStore) FindStuckProcessing(_ context.Context, olderThan time.Time) ([]model.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var stuck []model.Job
	for _, job := range s.jobs {
		if job.Status == model.JobStatusProcessing && job.CreatedAt.Before(olderThan) {
			stuck = append(stuck, job)
		}
	}
	return stuck, nil
}

func (s *fakeJobStore) List(_ context.Context, status *model.JobStatus) ([]model.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Job
	for _, job := range s.jobs {
		if status == nil || job.Status == *status {
			out = append(out, job)
		}
	}
	return out, nil
}

func (s *fakeJobStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.jobs, id)
	return nil
}

func (s *fakeJobStore) get(t *testing.T, id uuid.UUID) model.Job {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id.String()]
	require.True(t, ok, "job %s not in store", id)
	return job
}

type fakeBookmarkStore struct {
	mu          sync.Mutex
	byURL       map[string]model.Bookmark
	suggestions map[uuid.UUID]model.BookmarkAISuggestion
}

func newFakeBookmarkStore() *fakeBookmarkStore {
	return &fakeBookmarkStore{
		byURL:       map[string]model.Bookmark{},
		suggestions: map[uuid.UUID]model.BookmarkAISuggestion{},
	}
}

func (s *fakeBookmarkStore) Create(_ context.Context, bookmark *model.Bookmark) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byURL[bookmark.URL] = *bookmark
	return nil
}

func (s *fakeBookmarkStore) FindByURL(_ context.Context, url string) (*model.Bookmark, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	bookmark, ok := s.byURL[url]
	if !ok {
		return nil, nil
	}
	copied := bookmark
	return &copied, nil
}

func (s *fakeBookmarkStore) SaveSuggestion(_ context.Context, suggestion *model.BookmarkAISuggestion) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.suggestions[suggestion.BookmarkID] = *suggestion
	return nil
}

type fakeCollectionStore struct {
	collections []model.Collection
}

func (s *fakeCollectionStore) FindAll(context.Context) ([]model.Collection, error) {
	return s.collections, nil
}

type fakeTagStore struct {
	mu      sync.Mutex
	ensured [][]string
	err     error
}

func (s *fakeTagStore) EnsureAll(_ context.Context, names []string) ([]model.Tag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	s.ensured = append(s.ensured, names)
	tags := make([]model.Tag, 0, len(names))
	for _, name := range names {
		tags = append(tags, model.Tag{ID: uuid.New(), Name: name})
	}
	return tags, nil
}

type fakeEmbeddingStore struct {
	mu      sync.Mutex
	rows    map[string]model.ContentEmbedding
	created int
}

func newFakeEmbeddingStore() *fakeEmbeddingStore {
	return &fakeEmbeddingStore{rows: map[string]model.ContentEmbedding{}}
}

func embeddingKey(hash, url string) string { return hash + "|" + url }

func (s *fakeEmbeddingStore) FindByHashAndURL(_ context.Context, contentHash, url string) (*model.ContentEmbedding, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[embeddingKey(contentHash, url)]
	if !ok {
		return nil, nil
	}
	copied := row
	return &copied, nil
}

func (s *fakeEmbeddingStore) Create(_ context.Context, embedding *model.ContentEmbedding) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[embeddingKey(embedding.ContentHash, embedding.URL)] = *embedding
	s.created++
	return nil
}

type fakeFetcher struct {
	html []byte
	err  error
	// block, when set, makes Fetch wait until the context is cancelled.
	block bool
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.html, nil
}

type fakeExtractor struct {
	text string
	err  error
}

func (e *fakeExtractor) Extract([]byte) (string, error) {
	if e.err != nil {
		return "", e.err
	}
	return e.text, nil
}

type fakeAnalyzer struct {
	result model.AnalysisResult
	err    error
}

func (a *fakeAnalyzer) Analyze(context.Context, string, []string) (model.AnalysisResult, error) {
	if a.err != nil {
		return model.AnalysisResult{}, a.err
	}
	return a.result, nil
}

type fakeEmbedder struct {
	mu    sync.Mutex
	vec   []float32
	err   error
	calls int
}

func (e *fakeEmbedder) GenerateEmbedding(context.Context, string) ([]float32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	return e.vec, nil
}

func (e *fakeEmbedder) callCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}

type fixture struct {
	jobs        *fakeJobStore
	bookmarks   *fakeBookmarkStore
	collections *fakeCollectionStore
	tags        *fakeTagStore
	embeddings  *fakeEmbeddingStore
	fetcher     *fakeFetcher
	extractor   *fakeExtractor
	analyzer    *fakeAnalyzer
	embedder    *fakeEmbedder
	uc          *ScrapeUsecase
}

func newFixture(timeout time.Duration) *fixture {
	f := &fixture{
		jobs:        newFakeJobStore(),
		bookmarks:   newFakeBookmarkStore(),
		collections: &fakeCollectionStore{},
		tags:        &fakeTagStore{},
		embeddings:  newFakeEmbeddingStore(),
		fetcher:     &fakeFetcher{html: []byte("<html><body>hello</body></html>")},
		extractor:   &fakeExtractor{text: "hello world content"},
		analyzer: &fakeAnalyzer{result: model.AnalysisResult{
			Summary:    "A page about things.",
			Collection: "Tech",
			Title:      "Things",
			Tags:       []string{"go", "testing"},
		}},
		embedder: &fakeEmbedder{vec: []float32{0.1, 0.2, 0.3}},
	}
	f.uc = NewScrapeUsecase(
		f.jobs, f.bookmarks, f.collections, f.tags, f.embeddings,
		f.fetcher, f.extractor, f.analyzer, f.embedder,
		cache.NewNoopCache(), timeout,
	)
	return f
}

func (f *fixture) seedJob(t *testing.T, status model.JobStatus, url string) *model.Job {
	t.Helper()
	bookmark := &model.Bookmark{ID: uuid.New(), URL: url}
	require.NoError(t, f.bookmarks.Create(context.Background(), bookmark))
	job := &model.Job{
		ID:         uuid.New(),
		BookmarkID: bookmark.ID,
		Status:     status,
		Type:       model.JobTypeScrape,
		CreatedAt:  time.Now().UTC(),
	}
	require.NoError(t, f.jobs.Create(context.Background(), job))
	return job
}

func TestRunCompletesJobAndPersistsEverything(t *testing.T) {
	f := newFixture(DefaultJobTimeout)
	f.collections.collections = []model.Collection{{ID: uuid.New(), Name: "Tech"}}
	job := f.seedJob(t, model.JobStatusPending, "https://example.com/a")

	f.uc.Run(job.ID.String(), "https://example.com/a")

	got := f.jobs.get(t, job.ID)
	assert.Equal(t, model.JobStatusCompleted, got.Status)
	require.NotNil(t, got.CompletedAt)
	assert.Nil(t, got.ErrorMessage)

	require.NotNil(t, got.Results)
	results, err := model.UnmarshalAnalysisResult(*got.Results)
	require.NoError(t, err)
	assert.Equal(t, "A page about things.", results.Summary)
	assert.Equal(t, "Tech", results.Collection)
	assert.Equal(t, "Things", results.Title)
	assert.Equal(t, []string{"go", "testing"}, results.Tags)

	suggestion, ok := f.bookmarks.suggestions[job.BookmarkID]
	require.True(t, ok, "suggestion not saved")
	assert.Equal(t, "Things", suggestion.Title)
	require.NotNil(t, suggestion.CollectionID)
	assert.Equal(t, f.collections.collections[0].ID, *suggestion.CollectionID)
	assert.Equal(t, []string{"go", "testing"}, suggestion.TagList())

	assert.Equal(t, 1, f.embeddings.created)
	assert.Len(t, f.tags.ensured, 1)
}

func TestRunFailsJobOnFetchError(t *testing.T) {
	f := newFixture(DefaultJobTimeout)
	f.fetcher.err = errors.New("connection refused")
	job := f.seedJob(t, model.JobStatusPending, "https://example.com/down")

	f.uc.Run(job.ID.String(), "https://example.com/down")

	got := f.jobs.get(t, job.ID)
	assert.Equal(t, model.JobStatusFailed, got.Status)
	require.NotNil(t, got.ErrorMessage)
	assert.Contains(t, *got.ErrorMessage, "fetch stage")
	assert.Contains(t, *got.ErrorMessage, "connection refused")
	require.NotNil(t, got.CompletedAt)
	assert.Nil(t, got.Results)
}

func TestRunFailsJobOnAnalysisError(t *testing.T) {
	f := newFixture(DefaultJobTimeout)
	f.analyzer.err = errors.New("model returned garbage")
	job := f.seedJob(t, model.JobStatusPending, "https://example.com/b")

	f.uc.Run(job.ID.String(), "https://example.com/b")

	got := f.jobs.get(t, job.ID)
	assert.Equal(t, model.JobStatusFailed, got.Status)
	require.NotNil(t, got.ErrorMessage)
	assert.Contains(t, *got.ErrorMessage, "analysis stage")
}

func TestRunTimesOutAndFailsJob(t *testing.T) {
	f := newFixture(50 * time.Millisecond)
	f.fetcher.block = true
	job := f.seedJob(t, model.JobStatusPending, "https://example.com/slow")

	f.uc.Run(job.ID.String(), "https://example.com/slow")

	got := f.jobs.get(t, job.ID)
	assert.Equal(t, model.JobStatusFailed, got.Status)
	require.NotNil(t, got.ErrorMessage)
	assert.True(t, strings.HasPrefix(*got.ErrorMessage, "Job timed out after"),
		"unexpected message: %s", *got.ErrorMessage)
	require.NotNil(t, got.CompletedAt)
}

func TestRunSkipsNonPendingJobs(t *testing.T) {
	for _, status := range []model.JobStatus{
		model.JobStatusProcessing,
		model.JobStatusCompleted,
		model.JobStatusFailed,
	} {
		t.Run(string(status), func(t *testing.T) {
			f := newFixture(DefaultJobTimeout)
			job := f.seedJob(t, status, "https://example.com/"+string(status))

			f.uc.Run(job.ID.String(), "https://example.com/"+string(status))

			got := f.jobs.get(t, job.ID)
			assert.Equal(t, status, got.Status, "status must not change")
			assert.Equal(t, 0, f.embedder.callCount())
		})
	}
}

func TestRunUnknownJobIsNoOp(t *testing.T) {
	f := newFixture(DefaultJobTimeout)
	f.uc.Run(uuid.NewString(), "https://example.com/ghost")
	assert.Equal(t, 0, f.embedder.callCount())
}

func TestRunEmbeddingFailureDoesNotFailJob(t *testing.T) {
	f := newFixture(DefaultJobTimeout)
	f.embedder.err = errors.New("quota exceeded")
	job := f.seedJob(t, model.JobStatusPending, "https://example.com/c")

	f.uc.Run(job.ID.String(), "https://example.com/c")

	got := f.jobs.get(t, job.ID)
	assert.Equal(t, model.JobStatusCompleted, got.Status)
	assert.Equal(t, 0, f.embeddings.created)
}

func TestRunReusesExistingEmbedding(t *testing.T) {
	f := newFixture(DefaultJobTimeout)
	url := "https://example.com/d"
	job := f.seedJob(t, model.JobStatusPending, url)

	// First run stores the embedding, second run for identical content must
	// not call the embedding model again.
	f.uc.Run(job.ID.String(), url)
	require.Equal(t, 1, f.embedder.callCount())
	require.Equal(t, 1, f.embeddings.created)

	second := f.seedJob(t, model.JobStatusPending, url)
	f.uc.Run(second.ID.String(), url)

	assert.Equal(t, 1, f.embedder.callCount())
	assert.Equal(t, 1, f.embeddings.created)
}

func TestRunUnknownCollectionLeavesAssociationNull(t *testing.T) {
	f := newFixture(DefaultJobTimeout)
	f.collections.collections = []model.Collection{{ID: uuid.New(), Name: "Recipes"}}
	f.analyzer.result.Collection = "Machine Learning"
	job := f.seedJob(t, model.JobStatusPending, "https://example.com/e")

	f.uc.Run(job.ID.String(), "https://example.com/e")

	got := f.jobs.get(t, job.ID)
	assert.Equal(t, model.JobStatusCompleted, got.Status)

	suggestion := f.bookmarks.suggestions[job.BookmarkID]
	assert.Nil(t, suggestion.CollectionID, "unknown label must not bind a collection")
	// The raw label is still visible in the stored results.
	results, err := model.UnmarshalAnalysisResult(*got.Results)
	require.NoError(t, err)
	assert.Equal(t, "Machine Learning", results.Collection)
}

func TestRunCollectionMatchIsCaseSensitive(t *testing.T) {
	f := newFixture(DefaultJobTimeout)
	f.collections.collections = []model.Collection{{ID: uuid.New(), Name: "tech"}}
	f.analyzer.result.Collection = "Tech"
	job := f.seedJob(t, model.JobStatusPending, "https://example.com/f")

	f.uc.Run(job.ID.String(), "https://example.com/f")

	suggestion := f.bookmarks.suggestions[job.BookmarkID]
	assert.Nil(t, suggestion.CollectionID)
}

func TestRunTagFailureDoesNotFailJob(t *testing.T) {
	f := newFixture(DefaultJobTimeout)
	f.tags.err = errors.New("unique violation")
	job := f.seedJob(t, model.JobStatusPending, "https://example.com/g")

	f.uc.Run(job.ID.String(), "https://example.com/g")

	got := f.jobs.get(t, job.ID)
	assert.Equal(t, model.JobStatusCompleted, got.Status)
}

func TestSubmitCreatesBookmarkAndPendingJob(t *testing.T) {
	f := newFixture(DefaultJobTimeout)
	// Keep the dispatched pipeline parked so the job state stays observable.
	f.fetcher.block = true

	job, created, err := f.uc.Submit(context.Background(), "https://example.com/new")
	require.NoError(t, err)
	assert.True(t, created)
	require.NotNil(t, job)
	assert.Equal(t, model.JobTypeScrape, job.Type)

	bookmark, err := f.bookmarks.FindByURL(context.Background(), "https://example.com/new")
	require.NoError(t, err)
	require.NotNil(t, bookmark)
	assert.Equal(t, bookmark.ID, job.BookmarkID)
}

func TestSubmitReturnsExistingActiveJob(t *testing.T) {
	f := newFixture(DefaultJobTimeout)
	f.fetcher.block = true

	first, created, err := f.uc.Submit(context.Background(), "https://example.com/dup")
	require.NoError(t, err)
	require.True(t, created)

	second, created, err := f.uc.Submit(context.Background(), "https://example.com/dup")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
}

func TestSubmitAfterFailureCreatesNewJob(t *testing.T) {
	f := newFixture(DefaultJobTimeout)
	url := "https://example.com/retry"
	bookmark := &model.Bookmark{ID: uuid.New(), URL: url}
	require.NoError(t, f.bookmarks.Create(context.Background(), bookmark))
	failed := &model.Job{
		ID:         uuid.New(),
		BookmarkID: bookmark.ID,
		Status:     model.JobStatusFailed,
		Type:       model.JobTypeScrape,
		CreatedAt:  time.Now().UTC().Add(-time.Hour),
	}
	require.NoError(t, f.jobs.Create(context.Background(), failed))
	f.fetcher.block = true

	job, created, err := f.uc.Submit(context.Background(), url)
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEqual(t, failed.ID, job.ID)
	assert.Equal(t, bookmark.ID, job.BookmarkID)
}

func TestDeleteJob(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		f := newFixture(DefaultJobTimeout)
		err := f.uc.DeleteJob(context.Background(), uuid.NewString())
		assert.ErrorIs(t, err, ErrJobNotFound)
	})

	t.Run("still processing", func(t *testing.T) {
		f := newFixture(DefaultJobTimeout)
		job := f.seedJob(t, model.JobStatusProcessing, "https://example.com/h")
		err := f.uc.DeleteJob(context.Background(), job.ID.String())
		assert.ErrorIs(t, err, ErrJobStillProcessing)
	})

	t.Run("terminal job deleted", func(t *testing.T) {
		f := newFixture(DefaultJobTimeout)
		job := f.seedJob(t, model.JobStatusCompleted, "https://example.com/i")
		require.NoError(t, f.uc.DeleteJob(context.Background(), job.ID.String()))
		got, err := f.jobs.FindByID(context.Background(), job.ID.String())
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestListJobsFiltersByStatus(t *testing.T) {
	f := newFixture(DefaultJobTimeout)
	f.seedJob(t, model.JobStatusCompleted, "https://example.com/j")
	f.seedJob(t, model.JobStatusFailed, "https://example.com/k")

	status := model.JobStatusFailed
	jobs, err := f.uc.ListJobs(context.Background(), &status)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, model.JobStatusFailed, jobs[0].Status)

	all, err := f.uc.ListJobs(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestResultsSerializationRoundTrip(t *testing.T) {
	in := model.AnalysisResult{Summary: "s", Collection: "c", Title: "t", Tags: nil}
	raw, err := in.Marshal()
	require.NoError(t, err)
	assert.Contains(t, raw, `"tags":[]`, "nil tags must serialize as an empty array")

	out, err := model.UnmarshalAnalysisResult(raw)
	require.NoError(t, err)
	assert.Equal(t, "s", out.Summary)
	assert.Empty(t, out.Tags)
}

func TestTimeoutMessageNamesBudget(t *testing.T) {
	f := newFixture(2 * time.Second)
	f.fetcher.block = true
	job := f.seedJob(t, model.JobStatusPending, "https://example.com/budget")

	f.uc.Run(job.ID.String(), "https://example.com/budget")

	got := f.jobs.get(t, job.ID)
	require.NotNil(t, got.ErrorMessage)
	assert.Equal(t, fmt.Sprintf("Job timed out after %d seconds", 2), *got.ErrorMessage)
}
