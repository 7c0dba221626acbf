package archive

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// DefaultInterval is the sweep cadence. It is a tunable, not a correctness
// parameter: a task is archived on the first tick at or after its deadline.
const DefaultInterval = 500 * time.Millisecond

// Sweeper applies a sweep at now and reports how many tasks moved.
// *tasks.Store implements it.
type Sweeper interface {
	ArchiveDue(now time.Time) int
}

type Scheduler struct {
	Sweeper  Sweeper
	Interval time.Duration

	// Now defaults to time.Now.
	Now func() time.Time
	Log *log.Logger
}

func (s *Scheduler) interval() time.Duration {
	if s.Interval <= 0 {
		return DefaultInterval
	}
	return s.Interval
}

func (s *Scheduler) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Tick runs one sweep.
func (s *Scheduler) Tick() int {
	n := s.Sweeper.ArchiveDue(s.now())
	if n > 0 && s.Log != nil {
		s.Log.Debug("archived tasks", "count", n)
	}
	return n
}

// Run ticks until ctx is done and returns ctx.Err(). Cancelling ctx is how
// callers tear the timer down.
func (s *Scheduler) Run(ctx context.Context) error {
	t := time.NewTicker(s.interval())
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			s.Tick()
		}
	}
}
