// Package workout implements the in-session tracking model: sets,
// per-exercise results, the session state machine, and the coordinator
// that owns the single active session.
package workout

import "time"

// Set is one performed (or planned) repetition unit, tracked in memory
// during an active session. Sets are only persisted at finalization, and
// only when completed with valid data.
type Set struct {
	Number      int
	WeightKg    *float64
	Reps        int
	Minutes     int
	Seconds     int
	DistanceM   *float64
	IsWarmup    bool
	IsCompleted bool
	CompletedAt *time.Time
}

// SetTime sets the duration fields, clamping minutes to ≥ 0 and seconds
// to [0, 59].
func (s *Set) SetTime(minutes, seconds int) {
	if minutes < 0 {
		minutes = 0
	}
	if seconds < 0 {
		seconds = 0
	}
	if seconds > 59 {
		seconds = 59
	}
	s.Minutes = minutes
	s.Seconds = seconds
}

// DurationSec is the total tracked duration in seconds.
func (s *Set) DurationSec() int {
	return s.Minutes*60 + s.Seconds
}

// HasValidData reports whether the set carries any trackable work:
// weight, reps, duration, or distance.
func (s *Set) HasValidData() bool {
	if s.WeightKg != nil && *s.WeightKg > 0 {
		return true
	}
	if s.Reps > 0 {
		return true
	}
	if s.DurationSec() > 0 {
		return true
	}
	if s.DistanceM != nil && *s.DistanceM > 0 {
		return true
	}
	return false
}

// Volume is weight × reps for a completed weighted set, else 0.
func (s *Set) Volume() float64 {
	if !s.IsCompleted || s.WeightKg == nil {
		return 0
	}
	return *s.WeightKg * float64(s.Reps)
}

// Complete marks the set done and stamps the completion time. A set that
// is already completed is left untouched; the UI disables the action, but
// a stray double-tap must not move the timestamp.
func (s *Set) Complete(now time.Time) {
	if s.IsCompleted {
		return
	}
	s.IsCompleted = true
	s.CompletedAt = &now
}
