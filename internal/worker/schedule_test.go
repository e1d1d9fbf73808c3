package worker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestDailyScheduleNextRun(t *testing.T) {
	s := DailySchedule{Hour: 8}

	tests := []struct {
		name  string
		after time.Time
		want  time.Time
	}{
		{
			name:  "before the hour runs same day",
			after: time.Date(2026, 3, 10, 6, 30, 0, 0, time.UTC),
			want:  time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC),
		},
		{
			name:  "after the hour runs next day",
			after: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
			want:  time.Date(2026, 3, 11, 8, 0, 0, 0, time.UTC),
		},
		{
			name:  "exactly on the hour runs next day",
			after: time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC),
			want:  time.Date(2026, 3, 11, 8, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.NextRun(tt.after); !got.Equal(tt.want) {
				t.Errorf("NextRun(%v) = %v, want %v", tt.after, got, tt.want)
			}
		})
	}
}

func TestWeeklyScheduleNextRun(t *testing.T) {
	s := WeeklySchedule{Weekday: time.Monday, Hour: 10}

	tests := []struct {
		name  string
		after time.Time
		want  time.Time
	}{
		{
			name:  "midweek rolls to next monday",
			after: time.Date(2026, 3, 11, 12, 0, 0, 0, time.UTC), // Wednesday
			want:  time.Date(2026, 3, 16, 10, 0, 0, 0, time.UTC),
		},
		{
			name:  "monday before the hour runs same day",
			after: time.Date(2026, 3, 9, 7, 0, 0, 0, time.UTC), // Monday
			want:  time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC),
		},
		{
			name:  "monday after the hour waits a week",
			after: time.Date(2026, 3, 9, 11, 0, 0, 0, time.UTC),
			want:  time.Date(2026, 3, 16, 10, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.NextRun(tt.after); !got.Equal(tt.want) {
				t.Errorf("NextRun(%v) = %v, want %v", tt.after, got, tt.want)
			}
		})
	}
}

// tickSchedule fires a fixed short interval after any time, letting
// runner tests execute without waiting for wall-clock hours.
type tickSchedule struct{ every time.Duration }

func (s tickSchedule) NextRun(after time.Time) time.Time { return after.Add(s.every) }

func TestRunnerStartStop(t *testing.T) {
	var runs int64
	r := NewRunner("TestJob", tickSchedule{every: 10 * time.Millisecond},
		func(ctx context.Context) (int, error) {
			atomic.AddInt64(&runs, 1)
			return 1, nil
		})

	if err := r.Start(); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	if err := r.Start(); err == nil {
		t.Error("double Start() should return error")
	}
	if !r.Running() {
		t.Error("Running() = false after Start()")
	}

	deadline := time.After(2 * time.Second)
	for atomic.LoadInt64(&runs) == 0 {
		select {
		case <-deadline:
			t.Fatal("job never ran")
		case <-time.After(5 * time.Millisecond):
		}
	}

	r.Stop()
	if r.Running() {
		t.Error("Running() = true after Stop()")
	}

	// Stop again is a no-op.
	r.Stop()
}
