package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/hfortier/linkstash/internal/model"
)

// CleanupOrphanedJobs resolves jobs left in processing by an unclean
// shutdown. A job is treated as orphaned once it has been processing longer
// than the maximum possible runtime; jobs still inside the timeout window
// are left alone so a live pipeline is never double-failed. Returns the
// number of jobs cleaned. Errors are logged only: recovery is best-effort
// and must never block boot.
func (uc *ScrapeUsecase) CleanupOrphanedJobs(ctx context.Context) int {
	threshold := time.Now().UTC().Add(-uc.timeout)

	stuck, err := uc.jobs.FindStuckProcessing(ctx, threshold)
	if err != nil {
		slog.Error("orphaned job scan failed", "err", err)
		return 0
	}
	if len(stuck) == 0 {
		slog.Info("no orphaned jobs found")
		return 0
	}

	cleaned := 0
	for i := range stuck {
		job := &stuck[i]
		now := time.Now().UTC()
		msg := errMsgOrphanedCleanup
		job.Status = model.JobStatusFailed
		job.CompletedAt = &now
		job.ErrorMessage = &msg
		if err := uc.jobs.Save(ctx, job); err != nil {
			slog.Error("failed to clean up orphaned job", "job_id", job.ID, "err", err)
			continue
		}
		uc.mirrorStatus(ctx, job)
		cleaned++
	}

	slog.Info("cleaned up orphaned jobs", "count", cleaned)
	return cleaned
}
