// Package scheduler runs periodic maintenance jobs.
package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/sirupsen/logrus"
)

// Refresher recomputes stored share tallies.
type Refresher interface {
	Refresh(ctx context.Context) (int, error)
}

type Scheduler struct {
	s   gocron.Scheduler
	log *logrus.Entry
}

// New schedules the share tally refresh every interval and at each local midnight.
// Runs of the same job never overlap.
func New(shares Refresher, interval time.Duration, loc *time.Location, log *logrus.Logger) (*Scheduler, error) {
	s, err := gocron.NewScheduler(gocron.WithLocation(loc))
	if err != nil {
		return nil, err
	}
	sch := &Scheduler{s: s, log: log.WithField("component", "scheduler")}
	task := gocron.NewTask(sch.refresh, shares)

	if _, err := s.NewJob(
		gocron.DurationJob(interval),
		task,
		gocron.WithName("share-count-refresh"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	); err != nil {
		return nil, err
	}
	if _, err := s.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(0, 0, 5))),
		task,
		gocron.WithName("share-count-midnight"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	); err != nil {
		return nil, err
	}
	return sch, nil
}

func (sch *Scheduler) refresh(ctx context.Context, shares Refresher) {
	start := time.Now()
	n, err := shares.Refresh(ctx)
	if err != nil {
		sch.log.WithError(err).Error("share count refresh failed")
		return
	}
	sch.log.WithFields(logrus.Fields{
		"updated":  n,
		"duration": time.Since(start).String(),
	}).Debug("share counts refreshed")
}

func (sch *Scheduler) Start() { sch.s.Start() }

// Shutdown stops scheduling and waits for running jobs.
func (sch *Scheduler) Shutdown() error { return sch.s.Shutdown() }
