package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/hfortier/linkstash/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanupOrphanedJobsFailsStaleProcessing(t *testing.T) {
	f := newFixture(10 * time.Minute)

	stale := f.seedJob(t, model.JobStatusProcessing, "https://example.com/stale")
	stale.CreatedAt = time.Now().UTC().Add(-20 * time.Minute)
	require.NoError(t, f.jobs.Save(context.Background(), stale))

	fresh := f.seedJob(t, model.JobStatusProcessing, "https://example.com/fresh")
	fresh.CreatedAt = time.Now().UTC().Add(-2 * time.Minute)
	require.NoError(t, f.jobs.Save(context.Background(), fresh))

	done := f.seedJob(t, model.JobStatusCompleted, "https://example.com/done")

	cleaned := f.uc.CleanupOrphanedJobs(context.Background())
	assert.Equal(t, 1, cleaned)

	gotStale := f.jobs.get(t, stale.ID)
	assert.Equal(t, model.JobStatusFailed, gotStale.Status)
	require.NotNil(t, gotStale.ErrorMessage)
	assert.Equal(t, "Job timed out or app was restarted", *gotStale.ErrorMessage)
	require.NotNil(t, gotStale.CompletedAt)

	// A job still inside the timeout window may have a live pipeline.
	gotFresh := f.jobs.get(t, fresh.ID)
	assert.Equal(t, model.JobStatusProcessing, gotFresh.Status)
	assert.Nil(t, gotFresh.ErrorMessage)

	gotDone := f.jobs.get(t, done.ID)
	assert.Equal(t, model.JobStatusCompleted, gotDone.Status)
}

func TestCleanupOrphanedJobsNothingToDo(t *testing.T) {
	f := newFixture(10 * time.Minute)
	f.seedJob(t, model.JobStatusPending, "https://example.com/pending")

	cleaned := f.uc.CleanupOrphanedJobs(context.Background())
	assert.Equal(t, 0, cleaned)
}
