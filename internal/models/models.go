package models

import (
	"time"

	"github.com/google/uuid"
)

// Gender selects between the male and female variants of the BMR and
// Navy body-fat formulas.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// UserProfile holds the anthropometric data and goal selections consumed
// by the formula endpoints and the smart set defaults.
type UserProfile struct {
	UserID        int     `json:"user_id"`
	Gender        Gender  `json:"gender"`
	Age           int     `json:"age"`
	HeightCm      float64 `json:"height_cm"`
	WeightKg      float64 `json:"weight_kg"`
	ActivityLevel string  `json:"activity_level"`
	Goal          string  `json:"goal"`

	// Stored one-rep maxes per major lift, kg. Zero means not set.
	BenchPressOneRM   float64 `json:"bench_press_one_rm"`
	SquatOneRM        float64 `json:"squat_one_rm"`
	DeadliftOneRM     float64 `json:"deadlift_one_rm"`
	OverheadPressOneRM float64 `json:"overhead_press_one_rm"`
	PullUpOneRM       float64 `json:"pull_up_one_rm"`
}

// HasAllOneRMs reports whether the four lifts a program start requires
// have confirmed values.
func (p UserProfile) HasAllOneRMs() bool {
	return p.BenchPressOneRM > 0 && p.SquatOneRM > 0 &&
		p.DeadliftOneRM > 0 && p.OverheadPressOneRM > 0
}

// Exercise is a persistent exercise definition referenced by sets.
type Exercise struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// Workout is a workout template: an ordered list of exercises with
// per-exercise target set counts.
type Workout struct {
	ID        uuid.UUID         `json:"id"`
	ProgramID *uuid.UUID        `json:"program_id,omitempty"`
	Name      string            `json:"name"`
	Notes     string            `json:"notes"`
	Week      int               `json:"week"`
	Day       int               `json:"day"`
	Exercises []WorkoutExercise `json:"exercises"`
}

// WorkoutExercise is one slot in a workout template.
type WorkoutExercise struct {
	ExerciseID uuid.UUID `json:"exercise_id"`
	Name       string    `json:"name"`
	TargetSets int       `json:"target_sets"`
}

// Program is a multi-week training plan template.
type Program struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Weeks       int       `json:"weeks"`
	DaysPerWeek int       `json:"days_per_week"`
	Workouts    []Workout `json:"workouts"`
}

// TotalWorkouts is the number of workouts a full run of the program contains.
func (p Program) TotalWorkouts() int {
	return p.Weeks * p.DaysPerWeek
}

// SetRow is a persisted set, ready for insertion into the sets table.
// Set numbers are 1-based and continue across sessions for the same
// exercise; they are assigned at session finalization.
type SetRow struct {
	ID          uuid.UUID  `json:"id"`
	UserID      int        `json:"user_id"`
	ExerciseID  uuid.UUID  `json:"exercise_id"`
	SessionID   uuid.UUID  `json:"session_id"`
	SetNumber   int        `json:"set_number"`
	WeightKg    *float64   `json:"weight_kg,omitempty"`
	Reps        int        `json:"reps"`
	DurationSec *int       `json:"duration_sec,omitempty"`
	DistanceM   *float64   `json:"distance_m,omitempty"`
	IsWarmup    bool       `json:"is_warmup"`
	IsCompleted bool       `json:"is_completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// SessionRow is a persisted (finalized) workout session.
type SessionRow struct {
	ID          uuid.UUID  `json:"id"`
	UserID      int        `json:"user_id"`
	WorkoutID   uuid.UUID  `json:"workout_id"`
	ExecutionID *uuid.UUID `json:"execution_id,omitempty"`
	StartTime   time.Time  `json:"start_time"`
	EndTime     *time.Time `json:"end_time,omitempty"`
	IsCompleted bool       `json:"is_completed"`
	Notes       string     `json:"notes"`
	Feeling     int        `json:"feeling"`
	TotalVolume float64    `json:"total_volume"`
	TotalSets   int        `json:"total_sets"`
	TotalReps   int        `json:"total_reps"`
}

// ExecutionRow is a persisted program execution: the live progress record
// of a user working through a program.
type ExecutionRow struct {
	ID                uuid.UUID   `json:"id"`
	UserID            int         `json:"user_id"`
	ProgramID         uuid.UUID   `json:"program_id"`
	CurrentWeek       int         `json:"current_week"`
	CurrentDay        int         `json:"current_day"`
	CompletedWorkouts []uuid.UUID `json:"completed_workouts"`
	IsPaused          bool        `json:"is_paused"`
	StartDate         time.Time   `json:"start_date"`
}

// PersonalRecord is a new best recorded at session finalization.
type PersonalRecord struct {
	ExerciseName  string   `json:"exercise_name"`
	WeightKg      float64  `json:"weight_kg"`
	PreviousBest  *float64 `json:"previous_best,omitempty"`
	Unit          string   `json:"unit"`
}

// SessionSummary is the best-effort payload exported to an external
// health sink after a session finalizes.
type SessionSummary struct {
	SessionID    uuid.UUID `json:"session_id"`
	WorkoutName  string    `json:"workout_name"`
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`
	DurationSec  float64   `json:"duration_sec"`
	TotalVolume  float64   `json:"total_volume"`
	TotalSets    int       `json:"total_sets"`
	CaloriesEst  float64   `json:"calories_est"`
}
