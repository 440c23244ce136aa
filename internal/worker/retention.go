package worker

import (
	"context"
	"time"

	"github.com/Judeyaw1/MentalhealthCRM-sub002/internal/repository"
	"github.com/Judeyaw1/MentalhealthCRM-sub002/internal/service/audit"
	"github.com/Judeyaw1/MentalhealthCRM-sub002/pkg/logger"
)

// RetentionJob prunes processed outbox rows and expired audit entries on a
// fixed interval.
type RetentionJob struct {
	audits   audit.AuditService
	outbox   repository.OutboxRepository
	interval time.Duration
	keepFor  time.Duration
	logger   *logger.Logger
}

func NewRetentionJob(
	audits audit.AuditService,
	outbox repository.OutboxRepository,
	interval, keepFor time.Duration,
	logger *logger.Logger,
) *RetentionJob {
	return &RetentionJob{
		audits:   audits,
		outbox:   outbox,
		interval: interval,
		keepFor:  keepFor,
		logger:   logger,
	}
}

func (j *RetentionJob) Start(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.run(ctx)
		}
	}
}

func (j *RetentionJob) run(ctx context.Context) {
	cutoff := time.Now().Add(-j.keepFor)

	if n, err := j.outbox.DeleteProcessedBefore(ctx, cutoff); err != nil {
		j.logger.Error(err, "failed to prune outbox events")
	} else if n > 0 {
		j.logger.Debug("pruned outbox events", "count", n)
	}

	if n, err := j.audits.Cleanup(ctx, cutoff); err != nil {
		j.logger.Error(err, "failed to prune audit logs")
	} else if n > 0 {
		j.logger.Debug("pruned audit logs", "count", n)
	}
}
