package workout

import (
	"testing"
	"time"

	"github.com/meltforce/liftlog/internal/models"
)

// TestAddSetDefaults verifies a new set copies the previous set's values
// for rapid consecutive entry, and that numbering is count+1.
func TestAddSetDefaults(t *testing.T) {
	r := &ExerciseResult{}
	first := r.AddSet()
	if first.Number != 1 {
		t.Errorf("first set number = %d, want 1", first.Number)
	}
	first.WeightKg = ptr(80)
	first.Reps = 5
	first.SetTime(1, 30)

	second := r.AddSet()
	if second.Number != 2 {
		t.Errorf("second set number = %d, want 2", second.Number)
	}
	if second.WeightKg == nil || *second.WeightKg != 80 {
		t.Errorf("weight not copied: %v", second.WeightKg)
	}
	if second.Reps != 5 || second.DurationSec() != 90 {
		t.Errorf("reps/duration not copied: %d reps, %ds", second.Reps, second.DurationSec())
	}

	// Copies are independent — editing set 2 must not touch set 1.
	*second.WeightKg = 85
	if *first.WeightKg != 80 {
		t.Error("weight pointer shared between sets")
	}
}

// TestVolumeAggregation verifies totalVolume stays equal to Σ weight×reps
// over completed sets through add/complete/remove sequences.
func TestVolumeAggregation(t *testing.T) {
	r := &ExerciseResult{}
	now := time.Now()

	a := r.AddSet()
	a.WeightKg = ptr(50)
	a.Reps = 10
	b := r.AddSet()
	b.WeightKg = ptr(60)
	b.Reps = 8
	c := r.AddSet()
	c.WeightKg = ptr(70)
	c.Reps = 5

	r.CompleteSet(0, now)
	r.CompleteSet(1, now)
	if got := r.TotalVolume(); got != 50*10+60*8 {
		t.Errorf("volume = %v, want %v", got, 50*10+60*8)
	}

	r.RemoveSet(1)
	if got := r.TotalVolume(); got != 500 {
		t.Errorf("volume after remove = %v, want 500", got)
	}
	if got := r.CompletedSets(); got != 1 {
		t.Errorf("completed = %d, want 1", got)
	}

	r.CompleteSet(1, now) // the 70 kg set, now at index 1
	if got := r.TotalVolume(); got != 500+350 {
		t.Errorf("volume = %v, want 850", got)
	}
	if got := r.TotalReps(); got != 15 {
		t.Errorf("reps = %d, want 15", got)
	}
	if got := r.MaxWeight(); got != 70 {
		t.Errorf("max weight = %v, want 70", got)
	}
}

// TestCompleteSetLocalPR verifies the per-session PR flag flips when a
// completed set's weight beats the result's prior completed max.
func TestCompleteSetLocalPR(t *testing.T) {
	r := &ExerciseResult{}
	now := time.Now()
	a := r.AddSet()
	a.WeightKg = ptr(100)
	b := r.AddSet()
	b.WeightKg = ptr(90)

	r.CompleteSet(0, now)
	if !r.IsPersonalRecord {
		t.Error("first completed weighted set should flag a local PR")
	}
	r.IsPersonalRecord = false
	r.CompleteSet(1, now) // lighter than the 100 kg max
	if r.IsPersonalRecord {
		t.Error("lighter set must not flag a PR")
	}
}

// TestCompleteSetOutOfRange verifies bad indices are defensive no-ops,
// never panics.
func TestCompleteSetOutOfRange(t *testing.T) {
	r := &ExerciseResult{}
	r.AddSet()
	if done := r.CompleteSet(5, time.Now()); done {
		t.Error("out-of-range complete reported all done")
	}
	r.RemoveSet(-1)
	r.RemoveSet(7)
	if len(r.Sets) != 1 {
		t.Errorf("set count = %d, want 1", len(r.Sets))
	}
}

// TestCompletionPercentage verifies the target-sets denominator with the
// current-count fallback.
func TestCompletionPercentage(t *testing.T) {
	r := &ExerciseResult{Exercise: models.WorkoutExercise{TargetSets: 4}}
	now := time.Now()
	r.AddSet().Reps = 5
	r.AddSet().Reps = 5
	r.CompleteSet(0, now)
	if got := r.CompletionPercentage(); got != 0.25 {
		t.Errorf("completion = %v, want 0.25", got)
	}

	noTarget := &ExerciseResult{}
	noTarget.AddSet().Reps = 5
	noTarget.CompleteSet(0, now)
	if got := noTarget.CompletionPercentage(); got != 1 {
		t.Errorf("fallback completion = %v, want 1", got)
	}
}
