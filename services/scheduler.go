// services/scheduler.go
package services

import (
	"time"

	"github.com/go-co-op/gocron/v2"
	log "github.com/sirupsen/logrus"
)

// StartRolloverScheduler runs the rollover sweep every hour. Rollover is
// idempotent, so the interval only bounds how stale an idle user's streak
// can look. Returns the scheduler so main can shut it down.
func (e *EconomyService) StartRolloverScheduler() (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	_, err = sched.NewJob(
		gocron.DurationJob(1*time.Hour),
		gocron.NewTask(func() {
			e.SweepRollovers()
		}),
	)
	if err != nil {
		return nil, err
	}

	sched.Start()
	log.Info("rollover scheduler started")
	return sched, nil
}
