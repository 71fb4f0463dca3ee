// Package jobs provides scheduled background tasks built on
// github.com/robfig/cron/v3. Jobs are managed through JobManager, which
// starts and stops them as a group; a failed start rolls back the jobs
// already running.
package jobs

import (
	"fmt"
	"log/slog"

	"orderflow/internal/core/application/usecases/queries"
)

// JobManager coordinates all scheduled jobs in the application.
type JobManager struct {
	statusSummaryJob *StatusSummaryJob
}

// NewJobManager creates a new job manager with all required jobs.
func NewJobManager(
	statusSummaryHandler queries.GetStatusSummaryQueryHandler,
	logger *slog.Logger,
) *JobManager {
	return &JobManager{
		statusSummaryJob: NewStatusSummaryJob(statusSummaryHandler, logger),
	}
}

// StartAll starts all scheduled jobs.
func (jm *JobManager) StartAll() error {
	if err := jm.statusSummaryJob.Start(); err != nil {
		return fmt.Errorf("failed to start status summary job: %w", err)
	}
	return nil
}

// StopAll stops all scheduled jobs gracefully.
func (jm *JobManager) StopAll() {
	jm.statusSummaryJob.Stop()
}
