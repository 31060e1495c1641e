// Package retention prunes mention rows past the retention horizon on
// a cron schedule. Detection never deletes data, this is the only
// component that does.
package retention

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"token-radar/internal/observability"
	"token-radar/internal/storage"
)

const sweepTimeout = time.Minute

// Janitor deletes mentions older than the retention horizon.
type Janitor struct {
	store    storage.MentionStore
	horizon  time.Duration
	schedule string
	cron     *cron.Cron
}

// NewJanitor creates a janitor. The schedule is a standard 5-field
// cron expression, e.g. "0 * * * *" for hourly.
func NewJanitor(store storage.MentionStore, horizon time.Duration, schedule string) *Janitor {
	return &Janitor{
		store:    store,
		horizon:  horizon,
		schedule: schedule,
		cron:     cron.New(),
	}
}

// Start begins the scheduled sweeps.
func (j *Janitor) Start() error {
	_, err := j.cron.AddFunc(j.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
		defer cancel()

		if _, err := j.Sweep(ctx, time.Now().UTC()); err != nil {
			logrus.Errorf("Retention sweep failed: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("schedule retention sweep %q: %w", j.schedule, err)
	}

	j.cron.Start()
	logrus.Infof("Retention janitor started: horizon %v, schedule %q", j.horizon, j.schedule)
	return nil
}

// Stop stops the scheduled sweeps.
func (j *Janitor) Stop() {
	if j.cron != nil {
		j.cron.Stop()
		logrus.Info("Retention janitor stopped")
	}
}

// Sweep deletes every mention observed before now minus the horizon
// and returns the number of rows removed.
func (j *Janitor) Sweep(ctx context.Context, now time.Time) (int64, error) {
	cutoff := now.Add(-j.horizon)

	purged, err := j.store.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		observability.RecordStoreError()
		return 0, fmt.Errorf("delete mentions before %s: %w", cutoff.Format(time.RFC3339), err)
	}

	if purged > 0 {
		observability.RecordMentionsPurged(purged)
		logrus.Infof("Retention sweep purged %d mentions observed before %s", purged, cutoff.Format(time.RFC3339))
	}
	return purged, nil
}
