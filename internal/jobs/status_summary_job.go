package jobs

import (
	"context"
	"log/slog"

	"orderflow/internal/core/application/usecases/queries"

	"github.com/robfig/cron/v3"
)

// StatusSummaryJob periodically logs order counts per status.
// Gives operators a heartbeat of the order pipeline without a metrics stack.
type StatusSummaryJob struct {
	handler queries.GetStatusSummaryQueryHandler
	cron    *cron.Cron
	logger  *slog.Logger
}

// NewStatusSummaryJob creates a job that reports the status distribution
// once a minute.
func NewStatusSummaryJob(handler queries.GetStatusSummaryQueryHandler, logger *slog.Logger) *StatusSummaryJob {
	return &StatusSummaryJob{
		handler: handler,
		cron:    cron.New(cron.WithSeconds()),
		logger:  logger.With("component", "status_summary_job"),
	}
}

// Start begins the status summary job to run at the top of every minute.
func (j *StatusSummaryJob) Start() error {
	_, err := j.cron.AddFunc("0 * * * * *", func() {
		ctx := context.Background()

		rows, err := j.handler.Handle(ctx, queries.NewGetStatusSummaryQuery())
		if err != nil {
			j.logger.ErrorContext(ctx, "Status summary job failed", "error", err)
			return
		}

		args := make([]any, 0, len(rows)*2)
		var total int64
		for _, row := range rows {
			args = append(args, row.Status, row.Count)
			total += row.Count
		}
		args = append(args, "total", total)

		j.logger.InfoContext(ctx, "order status summary", args...)
	})

	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Status summary job started (running every minute)")
	return nil
}

// Stop stops the status summary job.
func (j *StatusSummaryJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "Status summary job stopped")
}
