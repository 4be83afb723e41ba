// internal/app/system/tasks/jobs.go
package tasks

import (
	"context"
	"time"

	"github.com/dalemusser/campushub/internal/app/gcal"
)

// CalendarSyncJob sweeps every stored Google Calendar grant and mirrors
// upcoming events of each user's joined organizations. The sweep tolerates
// per-user failures, so one revoked grant never delays the rest.
func CalendarSyncJob(syncer *gcal.Syncer, interval time.Duration) Job {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return Job{
		Name:     "google-calendar-sync",
		Interval: interval,
		Timeout:  interval,
		Run: func(ctx context.Context) error {
			syncer.SyncAll(ctx)
			return nil
		},
	}
}
