package escalation

import (
	"context"
	"io"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// sweepTimeout bounds one scheduled sweep.
const sweepTimeout = 2 * time.Minute

// Scheduler runs the sweep on a cron schedule inside the process.
type Scheduler struct {
	cron    *cron.Cron
	sweeper *Sweeper
	logger  *log.Logger
}

// NewScheduler registers the sweep under spec, e.g. "@every 1m" or "*/5 * * * *".
// Overlapping runs are skipped.
func NewScheduler(spec string, loc *time.Location, sweeper *Sweeper, logger *log.Logger) (*Scheduler, error) {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithChain(cron.SkipIfStillRunning(cron.PrintfLogger(logger))),
	)
	s := &Scheduler{
		cron:    c,
		sweeper: sweeper,
		logger:  logger,
	}
	if _, err := c.AddFunc(spec, s.run); err != nil {
		return nil, err
	}
	return s, nil
}

// Start launches the scheduler loop.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops the scheduler and waits for a running sweep to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	if _, err := s.sweeper.Sweep(ctx); err != nil {
		s.logger.Printf("scheduler: sweep failed: %v", err)
	}
}
