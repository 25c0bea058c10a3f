package jobs

import (
	"context"
	"time"

	"github.com/privatinsolvenz/lead-dashboard/internal/domain"
	"go.uber.org/zap"
)

// SyncAllJobName identifies the bulk tracker sync in the scheduler
const SyncAllJobName = "sync_all"

// DefaultSyncAllTimeout bounds a scheduled run when no timeout is configured
const DefaultSyncAllTimeout = 10 * time.Minute

// BulkSyncer pushes every active lead to the task tracker
type BulkSyncer interface {
	SyncAll(ctx context.Context) (*domain.SyncSummary, error)
}

// SyncAllJob periodically pushes all leads to the task tracker so edits that
// failed to sync earlier are eventually reconciled
type SyncAllJob struct {
	syncer  BulkSyncer
	logger  *zap.Logger
	timeout time.Duration
}

func NewSyncAllJob(syncer BulkSyncer, logger *zap.Logger, timeout time.Duration) *SyncAllJob {
	if timeout <= 0 {
		timeout = DefaultSyncAllTimeout
	}
	return &SyncAllJob{syncer: syncer, logger: logger, timeout: timeout}
}

// Run performs one bulk sync. It returns the summary for callers that run the
// job directly; the scheduler ignores it.
func (j *SyncAllJob) Run() *domain.SyncSummary {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()
	summary, err := j.syncer.SyncAll(ctx)
	if err != nil {
		j.logger.Error("scheduled sync failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)))
		return summary
	}

	fields := []zap.Field{
		zap.Int("total", summary.Total),
		zap.Int("successful", summary.Successful),
		zap.Int("failed", summary.Failed),
		zap.Duration("duration", time.Since(start)),
	}
	if summary.Failed > 0 {
		j.logger.Warn("scheduled sync completed with failures", fields...)
	} else {
		j.logger.Info("scheduled sync completed", fields...)
	}
	return summary
}

// RegisterSyncAllJob schedules the bulk sync. An empty spec leaves the job
// disabled and registers nothing.
func RegisterSyncAllJob(scheduler *Scheduler, syncer BulkSyncer, logger *zap.Logger, spec string, timeout time.Duration) (bool, error) {
	if spec == "" {
		return false, nil
	}
	job := NewSyncAllJob(syncer, logger, timeout)
	if err := scheduler.Add(SyncAllJobName, spec, func() { job.Run() }); err != nil {
		return false, err
	}
	return true, nil
}
