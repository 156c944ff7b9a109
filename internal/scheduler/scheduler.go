package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/example/roombooker/internal/runner"
)

// Scheduler re-runs the booking pipeline on a fixed interval. Runs are
// strictly sequential: ticks fire on the same goroutine that runs the
// pipeline, since the site session cannot carry concurrent carts.
type Scheduler struct {
	Runner   *runner.Runner
	Interval time.Duration
}

func (s *Scheduler) Run(ctx context.Context) error {
	t := time.NewTicker(s.Interval)
	defer t.Stop()

	// kick immediately
	s.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	if err := s.Runner.Run(ctx); err != nil {
		log.Printf("scheduler: run failed: %v", err)
	}
}
