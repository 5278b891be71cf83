package core

import (
	"context"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestReminderRotatorWraps(t *testing.T) {
	r := NewReminderRotator(0)
	if r.interval != time.Minute {
		t.Fatalf("expected default interval, got %s", r.interval)
	}
	if r.Current() != HealthReminders[0] {
		t.Fatalf("rotation must start at the first reminder")
	}
	for i := 1; i < len(HealthReminders); i++ {
		if got := r.Advance(); got != HealthReminders[i] {
			t.Fatalf("step %d = %q", i, got)
		}
	}
	if got := r.Advance(); got != HealthReminders[0] {
		t.Fatalf("rotation must wrap, got %q", got)
	}
}

func TestReminderRotatorRunStopsWithContext(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	r := NewReminderRotator(time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()
	deadline := time.After(2 * time.Second)
	for r.Current() == HealthReminders[0] {
		select {
		case <-deadline:
			t.Fatalf("rotator never advanced")
		case <-time.After(time.Millisecond):
		}
	}
	cancel()
	<-done
}
