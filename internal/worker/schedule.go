package worker

import "time"

// Schedule computes when a job should next run. Times are local server
// time, matching how the gym staff reason about opening hours.
type Schedule interface {
	NextRun(after time.Time) time.Time
}

// DailySchedule fires once a day at a fixed hour.
type DailySchedule struct {
	Hour int
}

// NextRun returns the next occurrence of Hour strictly after the given
// time.
func (s DailySchedule) NextRun(after time.Time) time.Time {
	next := time.Date(after.Year(), after.Month(), after.Day(), s.Hour, 0, 0, 0, after.Location())
	if !next.After(after) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// WeeklySchedule fires once a week on a fixed weekday and hour.
type WeeklySchedule struct {
	Weekday time.Weekday
	Hour    int
}

// NextRun returns the next occurrence of Weekday at Hour strictly
// after the given time.
func (s WeeklySchedule) NextRun(after time.Time) time.Time {
	next := time.Date(after.Year(), after.Month(), after.Day(), s.Hour, 0, 0, 0, after.Location())
	daysAhead := (int(s.Weekday) - int(after.Weekday()) + 7) % 7
	next = next.AddDate(0, 0, daysAhead)
	if !next.After(after) {
		next = next.AddDate(0, 0, 7)
	}
	return next
}
