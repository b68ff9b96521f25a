package jobs

import (
	"log/slog"

	"github.com/kiranshivaraju/mediashelf/pkg/models"
)

// LogObserver logs every terminal transition. Failures are logged at error level with
// the message the user sees as a notification.
func LogObserver(logger *slog.Logger) Observer {
	if logger == nil {
		logger = slog.Default()
	}
	return func(e Event) {
		if e.Type != EventUpdated || !e.Record.Status.IsTerminal() {
			return
		}

		attrs := []any{
			"job_id", e.Record.ID,
			"kind", e.Record.Kind,
			"status", e.Record.Status,
			"title", e.Record.Title,
		}
		if e.Record.Status == models.JobStatusError {
			msg := ""
			if e.Record.Error != nil {
				msg = *e.Record.Error
			}
			logger.Error("job failed", append(attrs, "error", msg)...)
			return
		}
		logger.Info("job finished", attrs...)
	}
}
