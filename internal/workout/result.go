package workout

import (
	"time"

	"github.com/meltforce/liftlog/internal/models"
)

// ExerciseResult is the ordered list of sets performed for one exercise
// within one session. All aggregates are recomputed from the sets on
// every read; nothing is cached that could diverge from its source.
type ExerciseResult struct {
	Exercise models.WorkoutExercise
	Sets     []*Set
	Notes    string

	// IsPersonalRecord is the per-session local signal: a completed set
	// exceeded this result's own previous max weight. Cross-session PR
	// detection against history happens at finalization.
	IsPersonalRecord bool
}

// AddSet appends a new set, copying weight/reps/duration/distance from
// the previous set when one exists so rapid consecutive entry only needs
// the changed fields. Returns the new set.
func (r *ExerciseResult) AddSet() *Set {
	s := &Set{Number: len(r.Sets) + 1}
	if n := len(r.Sets); n > 0 {
		prev := r.Sets[n-1]
		if prev.WeightKg != nil {
			w := *prev.WeightKg
			s.WeightKg = &w
		}
		s.Reps = prev.Reps
		s.Minutes = prev.Minutes
		s.Seconds = prev.Seconds
		if prev.DistanceM != nil {
			d := *prev.DistanceM
			s.DistanceM = &d
		}
	}
	r.Sets = append(r.Sets, s)
	return s
}

// CompleteSet marks the set at index done, flags a local personal record
// when its weight beats the completed max so far, and reports whether
// every set in the result is now completed. Out-of-range indices no-op.
func (r *ExerciseResult) CompleteSet(index int, now time.Time) (allCompleted bool) {
	if index < 0 || index >= len(r.Sets) {
		return false
	}

	prevMax := r.maxCompletedWeight()
	set := r.Sets[index]
	set.Complete(now)

	if set.WeightKg != nil && *set.WeightKg > prevMax {
		r.IsPersonalRecord = true
	}

	return r.CompletedSets() == len(r.Sets)
}

// RemoveSet deletes the set at index. Remaining sets keep their numbers;
// display renumbering is the caller's concern and persisted numbering is
// assigned fresh at finalization. Out-of-range indices no-op.
func (r *ExerciseResult) RemoveSet(index int) {
	if index < 0 || index >= len(r.Sets) {
		return
	}
	r.Sets = append(r.Sets[:index], r.Sets[index+1:]...)
}

// CompletedSets counts sets marked completed.
func (r *ExerciseResult) CompletedSets() int {
	n := 0
	for _, s := range r.Sets {
		if s.IsCompleted {
			n++
		}
	}
	return n
}

// TotalVolume is Σ weight×reps over completed sets.
func (r *ExerciseResult) TotalVolume() float64 {
	var v float64
	for _, s := range r.Sets {
		v += s.Volume()
	}
	return v
}

// MaxWeight is the heaviest weight among completed sets, 0 if none.
func (r *ExerciseResult) MaxWeight() float64 {
	return r.maxCompletedWeight()
}

// TotalReps is Σ reps over completed sets.
func (r *ExerciseResult) TotalReps() int {
	n := 0
	for _, s := range r.Sets {
		if s.IsCompleted {
			n += s.Reps
		}
	}
	return n
}

// CompletionPercentage is completed sets over the template's target set
// count, falling back to the current set count when no target is set.
func (r *ExerciseResult) CompletionPercentage() float64 {
	target := r.Exercise.TargetSets
	if target == 0 {
		target = len(r.Sets)
	}
	if target == 0 {
		return 0
	}
	return float64(r.CompletedSets()) / float64(target)
}

func (r *ExerciseResult) maxCompletedWeight() float64 {
	var max float64
	for _, s := range r.Sets {
		if s.IsCompleted && s.WeightKg != nil && *s.WeightKg > max {
			max = *s.WeightKg
		}
	}
	return max
}
