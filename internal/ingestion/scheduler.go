package ingestion

import (
	"context"
	"fmt"
	"log"

	"github.com/robfig/cron/v3"
)

// Runner is satisfied by *Service.
type Runner interface {
	Run(ctx context.Context) (Summary, error)
}

// Scheduler triggers reloads on a cron schedule.
type Scheduler struct {
	cron *cron.Cron
}

// NewScheduler registers runner under the standard five-field cron spec (or a
// descriptor such as "@daily").
func NewScheduler(runner Runner, spec string) (*Scheduler, error) {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	_, err := c.AddFunc(spec, func() {
		log.Printf("[CRON] scheduled currency reload starting")
		if _, err := runner.Run(context.Background()); err != nil {
			log.Printf("[CRON] scheduled currency reload failed: %v", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid reload schedule %q: %w", spec, err)
	}
	return &Scheduler{cron: c}, nil
}

// Start begins running scheduled reloads in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the schedule. The returned context is done once a running reload finishes.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// Entries returns the number of registered jobs.
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}
