package scheduler

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"
)

func newScheduler(t *testing.T) *Scheduler {
	t.Helper()
	s, err := NewScheduler(DefaultConfig())
	if err != nil {
		t.Fatalf("NewScheduler() error = %v", err)
	}
	t.Cleanup(func() { s.Stop() })
	return s
}

func noopHandler(ctx context.Context) error { return nil }

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Timezone != "Asia/Seoul" {
		t.Errorf("Timezone = %q", cfg.Timezone)
	}
}

func TestNewScheduler_BadTimezoneFallsBack(t *testing.T) {
	s, err := NewScheduler(Config{Timezone: "Not/AZone"})
	if err != nil {
		t.Fatalf("NewScheduler() error = %v", err)
	}
	defer s.Stop()
	if s.Timezone() == nil {
		t.Error("timezone should fall back, not be nil")
	}
}

func TestScheduler_Register(t *testing.T) {
	s := newScheduler(t)

	task := IntervalTask("tick", "follow-along tick", 10*time.Second, noopHandler)
	if err := s.Register(task); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	got, ok := s.GetTask("tick")
	if !ok {
		t.Fatal("task not found after Register")
	}
	if !got.Enabled {
		t.Error("task should be enabled")
	}
	if got.NextRun == nil {
		t.Error("NextRun should be set")
	}
	if got.Timeout != time.Minute {
		t.Errorf("Timeout = %v, want default", got.Timeout)
	}
}

func TestScheduler_Register_Validation(t *testing.T) {
	s := newScheduler(t)

	if err := s.Register(&Task{Handler: noopHandler}); err == nil {
		t.Error("missing ID should fail")
	}
	if err := s.Register(&Task{ID: "x"}); err == nil {
		t.Error("missing handler should fail")
	}
}

func TestScheduler_Unregister(t *testing.T) {
	s := newScheduler(t)

	s.Register(IntervalTask("tick", "tick", time.Second, noopHandler))
	if err := s.Unregister("tick"); err != nil {
		t.Fatalf("Unregister() error = %v", err)
	}
	if _, ok := s.GetTask("tick"); ok {
		t.Error("task should be gone")
	}
	if err := s.Unregister("nope"); err != nil {
		t.Errorf("unknown id should be a no-op, got %v", err)
	}
}

func TestScheduler_EnableDisable(t *testing.T) {
	s := newScheduler(t)
	s.Register(IntervalTask("tick", "tick", time.Second, noopHandler))

	if err := s.Disable("tick"); err != nil {
		t.Fatalf("Disable() error = %v", err)
	}
	task, _ := s.GetTask("tick")
	if task.Enabled {
		t.Error("task should be disabled")
	}

	if err := s.Enable("tick"); err != nil {
		t.Fatalf("Enable() error = %v", err)
	}
	task, _ = s.GetTask("tick")
	if !task.Enabled {
		t.Error("task should be enabled")
	}

	if err := s.Enable("nope"); err == nil {
		t.Error("unknown id should fail")
	}
	if err := s.Disable("nope"); err == nil {
		t.Error("unknown id should fail")
	}
}

func TestScheduler_StartStop(t *testing.T) {
	s := newScheduler(t)

	if err := s.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := s.Start(); err == nil {
		t.Error("second Start should fail")
	}
	if err := s.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if err := s.Stop(); err != nil {
		t.Errorf("Stop when stopped should be a no-op, got %v", err)
	}
	if err := s.Start(); err != nil {
		t.Fatalf("restart error = %v", err)
	}
}

func TestScheduler_RunNow(t *testing.T) {
	s := newScheduler(t)

	done := make(chan struct{})
	var calls int32
	s.Register(IntervalTask("tick", "tick", time.Hour, func(ctx context.Context) error {
		if atomic.AddInt32(&calls, 1) == 1 {
			close(done)
		}
		return nil
	}))

	if err := s.RunNow("tick"); err != nil {
		t.Fatalf("RunNow() error = %v", err)
	}
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("handler was not invoked")
	}

	if err := s.RunNow("nope"); err == nil {
		t.Error("unknown id should fail")
	}
}

func TestScheduler_ErrorTracking(t *testing.T) {
	s := newScheduler(t)

	done := make(chan struct{})
	s.Register(IntervalTask("bad", "bad", time.Hour, func(ctx context.Context) error {
		defer close(done)
		return fmt.Errorf("archive prune failed")
	}))

	s.RunNow("bad")
	<-done
	// counters update after the handler returns
	deadline := time.After(2 * time.Second)
	for {
		task, _ := s.GetTask("bad")
		if task.ErrorCount == 1 && task.LastError == "archive prune failed" {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("counters not updated: %+v", task)
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestScheduler_IntervalExecution(t *testing.T) {
	s := newScheduler(t)

	var calls int32
	s.Register(IntervalTask("fast", "fast", 20*time.Millisecond, func(ctx context.Context) error {
		atomic.AddInt32(&calls, 1)
		return nil
	}))

	if err := s.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	time.Sleep(150 * time.Millisecond)
	s.Stop()

	if n := atomic.LoadInt32(&calls); n < 2 {
		t.Errorf("calls = %d, want repeated runs", n)
	}
}

func TestScheduler_CalculateNextRun_Daily(t *testing.T) {
	s := newScheduler(t)

	next := s.calculateNextRun(Schedule{Type: ScheduleDaily, At: "03:30"})
	if next.Hour() != 3 || next.Minute() != 30 {
		t.Errorf("next = %v, want 03:30", next)
	}
	if !next.After(time.Now().In(s.Timezone())) {
		t.Errorf("next = %v, want in the future", next)
	}

	// malformed At reads as midnight
	next = s.calculateNextRun(Schedule{Type: ScheduleDaily, At: "nope"})
	if next.Hour() != 0 || next.Minute() != 0 {
		t.Errorf("malformed At: next = %v, want 00:00", next)
	}
}

func TestScheduler_GetStats(t *testing.T) {
	s := newScheduler(t)

	s.Register(IntervalTask("a", "a", time.Hour, noopHandler))
	s.Register(DailyTask("b", "b", "03:30", noopHandler))
	s.Disable("b")

	stats := s.GetStats()
	if stats.TotalTasks != 2 || stats.EnabledTasks != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.Timezone != "Asia/Seoul" {
		t.Errorf("Timezone = %q", stats.Timezone)
	}
}

func TestTaskBuilders(t *testing.T) {
	it := IntervalTask("tick", "follow-along tick", 10*time.Second, noopHandler)
	if it.Schedule.Type != ScheduleInterval || it.Schedule.Interval != 10*time.Second {
		t.Errorf("interval task = %+v", it.Schedule)
	}

	dt := DailyTask("prune", "archive prune", "03:30", noopHandler)
	if dt.Schedule.Type != ScheduleDaily || dt.Schedule.At != "03:30" {
		t.Errorf("daily task = %+v", dt.Schedule)
	}
}
