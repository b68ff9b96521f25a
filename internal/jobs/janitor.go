package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Janitor periodically prunes old terminal records from a Tracker.
type Janitor struct {
	cron      *cron.Cron
	tracker   *Tracker
	retention time.Duration
}

// NewJanitor schedules pruning with a standard cron expression or descriptor such as "@hourly".
func NewJanitor(tracker *Tracker, schedule string, retention time.Duration) (*Janitor, error) {
	j := &Janitor{
		cron:      cron.New(),
		tracker:   tracker,
		retention: retention,
	}
	if _, err := j.cron.AddFunc(schedule, j.Run); err != nil {
		return nil, fmt.Errorf("invalid cleanup schedule %q: %w", schedule, err)
	}
	return j, nil
}

func (j *Janitor) Start() {
	j.cron.Start()
}

// Stop stops the scheduler. The returned context is done once a running prune finishes.
func (j *Janitor) Stop() context.Context {
	return j.cron.Stop()
}

// Run prunes once.
func (j *Janitor) Run() {
	if n := j.tracker.Prune(j.retention); n > 0 {
		slog.Info("pruned finished jobs", "count", n, "retention", j.retention.String())
	}
}
