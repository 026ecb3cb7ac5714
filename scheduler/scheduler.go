package scheduler

import (
	"context"
	"log"
	"sync"
	"time"
)

// Scheduler runs a named maintenance task at a fixed interval. The task
// also runs once immediately on Start so gauges and sweeps do not wait a
// full interval for their first pass.
type Scheduler struct {
	name     string
	interval time.Duration
	task     func(context.Context)
	wg       sync.WaitGroup
	mu       sync.Mutex
	running  bool
	cancel   context.CancelFunc
}

// New creates a scheduler for the given task
func New(name string, interval time.Duration, task func(context.Context)) *Scheduler {
	return &Scheduler{
		name:     name,
		interval: interval,
		task:     task,
	}
}

// Start implements core.Interface
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	ctx, s.cancel = context.WithCancel(ctx)
	s.running = true

	log.Printf("Scheduler: %s every %v", s.name, s.interval)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		s.task(ctx)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.task(ctx)
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop terminates the periodic task and waits for it to finish
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	s.running = false
}

// IsRunning returns true if the task is currently scheduled
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}
