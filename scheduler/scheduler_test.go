package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type nopLogger struct{}

func (nopLogger) Debug(msg string, fields map[string]interface{}) {}
func (nopLogger) Info(msg string, fields map[string]interface{})  {}
func (nopLogger) Warn(msg string, fields map[string]interface{})  {}
func (nopLogger) Error(msg string, fields map[string]interface{}) {}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func TestScheduler_RunsJobImmediatelyOnStart(t *testing.T) {
	s := New(nopLogger{})
	var runs int32
	s.Add("job", time.Hour, func(ctx context.Context) {
		atomic.AddInt32(&runs, 1)
	})

	s.Start()
	defer s.Stop()

	waitFor(t, time.Second, func() bool { return atomic.LoadInt32(&runs) == 1 })
}

func TestScheduler_ReschedulesAfterRunReturns(t *testing.T) {
	s := New(nopLogger{})
	var runs int32
	s.Add("job", 20*time.Millisecond, func(ctx context.Context) {
		atomic.AddInt32(&runs, 1)
	})

	s.Start()
	defer s.Stop()

	waitFor(t, time.Second, func() bool { return atomic.LoadInt32(&runs) >= 3 })
}

func TestScheduler_RunsOfOneJobNeverOverlap(t *testing.T) {
	s := New(nopLogger{})
	var inFlight int32
	var overlapped int32
	s.Add("job", time.Millisecond, func(ctx context.Context) {
		if atomic.AddInt32(&inFlight, 1) > 1 {
			atomic.StoreInt32(&overlapped, 1)
		}
		time.Sleep(20 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
	})

	s.Start()
	time.Sleep(150 * time.Millisecond)
	s.Stop()

	if atomic.LoadInt32(&overlapped) == 1 {
		t.Error("runs of the same job overlapped")
	}
}

func TestScheduler_DifferentJobsRunConcurrently(t *testing.T) {
	s := New(nopLogger{})
	var mu sync.Mutex
	running := make(map[string]bool)
	sawBoth := false

	hold := func(name string) func(ctx context.Context) {
		return func(ctx context.Context) {
			mu.Lock()
			running[name] = true
			if running["a"] && running["b"] {
				sawBoth = true
			}
			mu.Unlock()
			time.Sleep(50 * time.Millisecond)
			mu.Lock()
			running[name] = false
			mu.Unlock()
		}
	}
	s.Add("a", time.Hour, hold("a"))
	s.Add("b", time.Hour, hold("b"))

	s.Start()
	time.Sleep(100 * time.Millisecond)
	s.Stop()

	mu.Lock()
	defer mu.Unlock()
	if !sawBoth {
		t.Error("expected both jobs in flight at once")
	}
}

func TestScheduler_Trigger(t *testing.T) {
	s := New(nopLogger{})
	var runs int32
	s.Add("job", time.Hour, func(ctx context.Context) {
		atomic.AddInt32(&runs, 1)
	})

	s.Start()
	defer s.Stop()

	// First run fires immediately; the trigger forces a second one long
	// before the hour is up.
	waitFor(t, time.Second, func() bool { return atomic.LoadInt32(&runs) == 1 })
	s.Trigger("job")
	waitFor(t, time.Second, func() bool { return atomic.LoadInt32(&runs) == 2 })
}

func TestScheduler_Remove(t *testing.T) {
	s := New(nopLogger{})
	var runs int32
	s.Add("job", 10*time.Millisecond, func(ctx context.Context) {
		atomic.AddInt32(&runs, 1)
	})

	s.Start()
	defer s.Stop()

	waitFor(t, time.Second, func() bool { return atomic.LoadInt32(&runs) >= 1 })
	s.Remove("job")
	settled := atomic.LoadInt32(&runs)
	time.Sleep(50 * time.Millisecond)

	if diff := atomic.LoadInt32(&runs) - settled; diff > 1 {
		t.Errorf("job kept running after removal (%d extra runs)", diff)
	}
}

func TestScheduler_StopWaitsForInFlightRun(t *testing.T) {
	s := New(nopLogger{})
	done := make(chan struct{})
	s.Add("job", time.Hour, func(ctx context.Context) {
		time.Sleep(50 * time.Millisecond)
		close(done)
	})

	s.Start()
	time.Sleep(10 * time.Millisecond)
	s.Stop()

	select {
	case <-done:
	default:
		t.Error("Stop returned before the in-flight run finished")
	}
}

func TestScheduler_AddAfterStart(t *testing.T) {
	s := New(nopLogger{})
	s.Start()
	defer s.Stop()

	var runs int32
	s.Add("late", time.Hour, func(ctx context.Context) {
		atomic.AddInt32(&runs, 1)
	})

	waitFor(t, time.Second, func() bool { return atomic.LoadInt32(&runs) == 1 })
}
