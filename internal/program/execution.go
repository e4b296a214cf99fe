// Package program tracks progress through multi-week training plans:
// the current week/day cursor, completed workouts, pause state, and the
// next workout to present.
package program

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/liftlog/internal/models"
)

// ErrMissingOneRMs is returned when starting a program without the four
// confirmed one-rep maxes. Callers route through the 1RM setup flow
// first and retry.
var ErrMissingOneRMs = errors.New("program start requires bench, squat, deadlift, and overhead press one-rep maxes")

// Status is the execution lifecycle state. Completed is terminal.
type Status string

const (
	StatusActive    Status = "active"
	StatusPaused    Status = "paused"
	StatusCompleted Status = "completed"
)

// Execution is the live progress record of a user working through a
// program. Week and day are 1-based and only ever advance; pause
// freezes, never rewinds.
type Execution struct {
	ID          uuid.UUID
	UserID      int
	Program     models.Program
	CurrentWeek int
	CurrentDay  int
	IsPaused    bool
	StartDate   time.Time

	completed      map[uuid.UUID]bool
	completedOrder []uuid.UUID
}

// Start creates an execution at week 1, day 1. The profile must carry
// all four major-lift 1RMs; the smart weight suggestions the program's
// workouts rely on are meaningless without them.
func Start(p models.Program, profile models.UserProfile) (*Execution, error) {
	if !profile.HasAllOneRMs() {
		return nil, ErrMissingOneRMs
	}
	return &Execution{
		ID:          uuid.New(),
		UserID:      profile.UserID,
		Program:     p,
		CurrentWeek: 1,
		CurrentDay:  1,
		StartDate:   time.Now(),
		completed:   map[uuid.UUID]bool{},
	}, nil
}

// Resume reconstructs an execution from its persisted row and program.
func Resume(row models.ExecutionRow, p models.Program) *Execution {
	e := &Execution{
		ID:          row.ID,
		UserID:      row.UserID,
		Program:     p,
		CurrentWeek: row.CurrentWeek,
		CurrentDay:  row.CurrentDay,
		IsPaused:    row.IsPaused,
		StartDate:   row.StartDate,
		completed:   map[uuid.UUID]bool{},
	}
	for _, id := range row.CompletedWorkouts {
		if !e.completed[id] {
			e.completed[id] = true
			e.completedOrder = append(e.completedOrder, id)
		}
	}
	return e
}

// Row renders the execution for persistence.
func (e *Execution) Row() models.ExecutionRow {
	return models.ExecutionRow{
		ID:                e.ID,
		UserID:            e.UserID,
		ProgramID:         e.Program.ID,
		CurrentWeek:       e.CurrentWeek,
		CurrentDay:        e.CurrentDay,
		CompletedWorkouts: append([]uuid.UUID(nil), e.completedOrder...),
		IsPaused:          e.IsPaused,
		StartDate:         e.StartDate,
	}
}

// Status reports active, paused, or completed.
func (e *Execution) Status() Status {
	switch {
	case e.IsCompleted():
		return StatusCompleted
	case e.IsPaused:
		return StatusPaused
	default:
		return StatusActive
	}
}

// CurrentWorkout returns the first workout in program order not yet
// completed, or false once every workout is done. Lookups keep working
// while paused so resume can show where the user left off.
func (e *Execution) CurrentWorkout() (models.Workout, bool) {
	for _, w := range e.Program.Workouts {
		if !e.completed[w.ID] {
			return w, true
		}
	}
	return models.Workout{}, false
}

// CompleteCurrentWorkout records the current workout as done and
// advances the day cursor, wrapping into the next week past daysPerWeek.
// A completed execution is terminal: further calls are no-ops.
func (e *Execution) CompleteCurrentWorkout() {
	if e.IsCompleted() {
		return
	}
	w, ok := e.CurrentWorkout()
	if !ok {
		return
	}
	e.completed[w.ID] = true
	e.completedOrder = append(e.completedOrder, w.ID)

	if e.IsCompleted() {
		return
	}
	e.CurrentDay++
	if e.CurrentDay > e.Program.DaysPerWeek {
		e.CurrentDay = 1
		e.CurrentWeek++
	}
}

// CompletedCount is the number of distinct workouts completed.
func (e *Execution) CompletedCount() int {
	return len(e.completedOrder)
}

// ProgressPercentage is completed workouts over the program total, in
// [0, 1]. Monotonically non-decreasing: completions are never removed.
func (e *Execution) ProgressPercentage() float64 {
	total := e.Program.TotalWorkouts()
	if total == 0 {
		return 0
	}
	p := float64(len(e.completedOrder)) / float64(total)
	if p > 1 {
		p = 1
	}
	return p
}

// IsCompleted reports whether every program workout is done. Once true
// it stays true; no further workouts are offered.
func (e *Execution) IsCompleted() bool {
	return len(e.completedOrder) >= e.Program.TotalWorkouts()
}

// Pause freezes the execution. The cursor keeps its position.
func (e *Execution) Pause() {
	if !e.IsCompleted() {
		e.IsPaused = true
	}
}

// Unpause resumes a paused execution.
func (e *Execution) Unpause() {
	e.IsPaused = false
}
