package jobs

import (
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Entry pairs a cron schedule ("@every 30s", "*/5 * * * *") with its job.
type Entry struct {
	Name     string
	Schedule string
	Job      cron.Job
}

// NewScheduler registers every entry. A run still in progress when the next
// tick fires is skipped.
func NewScheduler(logger *zap.Logger, entries ...Entry) (*cron.Cron, error) {
	c := cron.New(cron.WithChain(
		cron.Recover(cron.DefaultLogger),
		cron.SkipIfStillRunning(cron.DefaultLogger),
	))
	for _, e := range entries {
		if _, err := c.AddJob(e.Schedule, e.Job); err != nil {
			return nil, fmt.Errorf("invalid %s schedule %q: %w", e.Name, e.Schedule, err)
		}
		logger.Info("job scheduled", zap.String("job", e.Name), zap.String("schedule", e.Schedule))
	}
	return c, nil
}
