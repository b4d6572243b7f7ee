// ABOUTME: Interval scheduler driving periodic group refreshes and maintenance jobs
// ABOUTME: A job is rescheduled only after its run returns, so runs of one job never overlap

package scheduler

import (
	"context"
	"sync"
	"time"

	"rssfilter-api/core/interfaces"
)

// JobFunc is one schedulable unit of work.
type JobFunc func(ctx context.Context)

type job struct {
	name     string
	interval time.Duration
	fn       JobFunc

	// kick wakes the job loop early for manual triggers and removal
	kick    chan struct{}
	removed bool
}

// Scheduler runs named jobs at per-job intervals. The next run of a job
// is scheduled when the previous one returns, which serializes runs of
// the same job while still letting different jobs run concurrently.
type Scheduler struct {
	mu      sync.Mutex
	jobs    map[string]*job
	logger  interfaces.Logger
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
}

// New creates an empty scheduler.
func New(logger interfaces.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		jobs:   make(map[string]*job),
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Add registers a job. The first run fires immediately once the
// scheduler is started; subsequent runs fire interval after the
// previous run returns. Adding an existing name replaces the job.
func (s *Scheduler) Add(name string, interval time.Duration, fn JobFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.jobs[name]; ok {
		s.removeLocked(old)
	}

	j := &job{
		name:     name,
		interval: interval,
		fn:       fn,
		kick:     make(chan struct{}, 1),
	}
	s.jobs[name] = j

	if s.started {
		s.wg.Add(1)
		go s.loop(j)
	}
}

// Remove unregisters a job. A run already in flight finishes.
func (s *Scheduler) Remove(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if j, ok := s.jobs[name]; ok {
		s.removeLocked(j)
		delete(s.jobs, name)
	}
}

// Update changes a job's interval. It applies when the job next
// reschedules.
func (s *Scheduler) Update(name string, interval time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if j, ok := s.jobs[name]; ok {
		j.interval = interval
	}
}

// Trigger wakes a job to run now instead of waiting out its interval.
// A trigger during a run is coalesced into at most one extra run.
func (s *Scheduler) Trigger(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if j, ok := s.jobs[name]; ok && !j.removed {
		select {
		case j.kick <- struct{}{}:
		default:
		}
	}
}

// Start launches the loops for all registered jobs.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true
	for _, j := range s.jobs {
		s.wg.Add(1)
		go s.loop(j)
	}
	s.logger.Info("scheduler started", map[string]interface{}{
		"jobs": len(s.jobs),
	})
}

// Stop cancels all jobs and waits for in-flight runs to finish.
func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
	s.logger.Info("scheduler stopped", nil)
}

func (s *Scheduler) removeLocked(j *job) {
	j.removed = true
	select {
	case j.kick <- struct{}{}:
	default:
	}
}

// loop drives one job: wait, run, reschedule.
func (s *Scheduler) loop(j *job) {
	defer s.wg.Done()

	delay := time.Duration(0)
	for {
		timer := time.NewTimer(delay)
		select {
		case <-s.ctx.Done():
			timer.Stop()
			return
		case <-j.kick:
			timer.Stop()
		case <-timer.C:
		}

		s.mu.Lock()
		removed := j.removed
		interval := j.interval
		s.mu.Unlock()
		if removed {
			return
		}

		started := time.Now()
		j.fn(s.ctx)
		s.logger.Debug("job run finished", map[string]interface{}{
			"job":      j.name,
			"duration": time.Since(started).String(),
		})

		delay = interval
	}
}
