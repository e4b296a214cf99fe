package workout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/liftlog/internal/models"
)

// DefaultPRScanSessions bounds the historical scan for cross-session
// personal-record detection to the most recent N completed sessions per
// exercise. The bound is deliberate: the scan is recency-biased rather
// than globally exhaustive, trading completeness for a cheap query.
const DefaultPRScanSessions = 20

var (
	// ErrNotInProgress is returned when an operation needs an InProgress
	// session but the session is unstarted or already terminal.
	ErrNotInProgress = errors.New("session is not in progress")
)

// State is the session lifecycle state. Completed and Discarded are
// terminal; no transitions leave them.
type State int

const (
	StateNotStarted State = iota
	StateInProgress
	StateCompleted
	StateDiscarded
)

func (s State) String() string {
	switch s {
	case StateInProgress:
		return "in_progress"
	case StateCompleted:
		return "completed"
	case StateDiscarded:
		return "discarded"
	default:
		return "not_started"
	}
}

// Store is the persistence surface the session machine needs. It is
// satisfied by *storage.DB; tests use an in-memory fake.
type Store interface {
	// GetOrCreateExercise resolves an exercise definition by name,
	// creating it if missing.
	GetOrCreateExercise(ctx context.Context, name string) (models.Exercise, error)
	// MaxSetNumber returns the highest persisted set number for the
	// exercise across all of the user's history, 0 if none.
	MaxSetNumber(ctx context.Context, userID int, exerciseID uuid.UUID) (int, error)
	// RecentExerciseMax returns the max completed-set weight for the
	// exercise name over the user's most recent sessionLimit completed
	// sessions, 0 if none.
	RecentExerciseMax(ctx context.Context, userID int, exerciseName string, sessionLimit int) (float64, error)
	// SaveSnapshot upserts the in-progress session and its current sets,
	// incomplete placeholders included. Used by the debounced mid-session
	// save so a crash loses at most one debounce window.
	SaveSnapshot(ctx context.Context, session models.SessionRow, sets []models.SetRow) error
	// FinalizeSession atomically deletes placeholder sets for the given
	// exercises, inserts the final set rows, appends workout notes, and
	// upserts the completed session row. All or nothing.
	FinalizeSession(ctx context.Context, session models.SessionRow, sets []models.SetRow, exerciseIDs []uuid.UUID, noteAppend string) error
	// DeleteSession removes the session row and every set attached to it.
	DeleteSession(ctx context.Context, sessionID uuid.UUID) error
}

// Session is one workout attempt against a Workout template, optionally
// under a program execution. All mutation is synchronous; the only async
// path out of a session is the fire-and-forget export after finalize.
type Session struct {
	ID          uuid.UUID
	UserID      int
	Workout     models.Workout
	ExecutionID *uuid.UUID
	StartTime   time.Time
	EndTime     *time.Time
	Results     []*ExerciseResult
	Notes       string
	Feeling     int
	PRsHit      []models.PersonalRecord

	// OnExerciseCompleted fires when completing a set leaves every set in
	// that exercise completed. Drives collapse/expand UX upstream.
	OnExerciseCompleted func(*ExerciseResult)

	state   State
	store   Store
	profile models.UserProfile
	log     *slog.Logger
}

// NewSession starts a session against a workout template: one empty
// ExerciseResult per template exercise. Sets are added manually by the
// user; nothing is pre-seeded.
func NewSession(w models.Workout, profile models.UserProfile, executionID *uuid.UUID, store Store, log *slog.Logger) *Session {
	s := &Session{
		ID:          uuid.New(),
		UserID:      profile.UserID,
		Workout:     w,
		ExecutionID: executionID,
		StartTime:   time.Now(),
		state:       StateInProgress,
		store:       store,
		profile:     profile,
		log:         log,
	}
	for _, ex := range w.Exercises {
		s.Results = append(s.Results, &ExerciseResult{Exercise: ex})
	}
	return s
}

// State returns the current lifecycle state.
func (s *Session) State() State { return s.state }

// AddExercise adds an exercise mid-session, resolving (or creating) its
// persistent definition. Adding an exercise already in the session is a
// logged no-op. The new result is seeded with one set whose weight
// defaults to 70% of the user's stored 1RM for a keyword-matched lift.
func (s *Session) AddExercise(ctx context.Context, name string) error {
	if s.state != StateInProgress {
		return ErrNotInProgress
	}

	for _, r := range s.Results {
		if strings.EqualFold(r.Exercise.Name, name) {
			s.log.Info("exercise already in session, skipping", "exercise", name)
			return nil
		}
	}

	ex, err := s.store.GetOrCreateExercise(ctx, name)
	if err != nil {
		return fmt.Errorf("resolving exercise %q: %w", name, err)
	}

	result := &ExerciseResult{
		Exercise: models.WorkoutExercise{ExerciseID: ex.ID, Name: ex.Name},
	}
	set := result.AddSet()
	if w := defaultWeight(s.profile, ex.Name); w > 0 {
		set.WeightKg = &w
	}
	s.Results = append(s.Results, result)
	return nil
}

// defaultWeight maps an exercise name to 70% of the matching stored 1RM.
// Bench and generic presses share the bench max; overhead is checked
// before the generic press keyword so it gets its own max.
func defaultWeight(p models.UserProfile, exerciseName string) float64 {
	name := strings.ToLower(exerciseName)
	var oneRM float64
	switch {
	case strings.Contains(name, "bench"):
		oneRM = p.BenchPressOneRM
	case strings.Contains(name, "overhead"):
		oneRM = p.OverheadPressOneRM
	case strings.Contains(name, "press"):
		oneRM = p.BenchPressOneRM
	case strings.Contains(name, "squat"):
		oneRM = p.SquatOneRM
	case strings.Contains(name, "deadlift"):
		oneRM = p.DeadliftOneRM
	case strings.Contains(name, "pull"):
		oneRM = p.PullUpOneRM
	}
	return oneRM * 0.7
}

// CompleteSet marks a set done, firing OnExerciseCompleted when the
// exercise is now fully complete. Bad indices no-op — an assertion the
// UI should make impossible, but never worth a panic.
func (s *Session) CompleteSet(exerciseIndex, setIndex int) {
	if s.state != StateInProgress {
		return
	}
	if exerciseIndex < 0 || exerciseIndex >= len(s.Results) {
		return
	}
	r := s.Results[exerciseIndex]
	if r.CompleteSet(setIndex, time.Now()) && s.OnExerciseCompleted != nil {
		s.OnExerciseCompleted(r)
	}
}

// TotalVolume is the session-wide Σ weight×reps over completed sets.
func (s *Session) TotalVolume() float64 {
	var v float64
	for _, r := range s.Results {
		v += r.TotalVolume()
	}
	return v
}

// TotalSets counts completed sets across all exercises.
func (s *Session) TotalSets() int {
	n := 0
	for _, r := range s.Results {
		n += r.CompletedSets()
	}
	return n
}

// TotalReps sums reps over completed sets across all exercises.
func (s *Session) TotalReps() int {
	n := 0
	for _, r := range s.Results {
		n += r.TotalReps()
	}
	return n
}

// Duration is end − start for a finished session, time since start for a
// live one.
func (s *Session) Duration() time.Duration {
	if s.EndTime != nil {
		return s.EndTime.Sub(s.StartTime)
	}
	return time.Since(s.StartTime)
}

// HasValidCompletedSets reports whether discarding this session would
// lose real data; callers must confirm with the user before doing so.
func (s *Session) HasValidCompletedSets() bool {
	for _, r := range s.Results {
		for _, set := range r.Sets {
			if set.IsCompleted && set.HasValidData() {
				return true
			}
		}
	}
	return false
}

// Finalize persists the session: placeholder sets are deleted, completed
// valid sets are numbered continuing from each exercise's historical max,
// per-exercise notes are appended to the workout, and the session row is
// written — all in one transaction. On any store error the session stays
// InProgress so the user can retry; nothing is partially committed.
// Returns the personal records detected against recent history.
func (s *Session) Finalize(ctx context.Context, notes string, feeling int) ([]models.PersonalRecord, error) {
	if s.state != StateInProgress {
		return nil, ErrNotInProgress
	}

	now := time.Now()
	var (
		rows        []models.SetRow
		exerciseIDs []uuid.UUID
		noteParts   []string
		prs         []models.PersonalRecord
	)

	for _, r := range s.Results {
		exerciseIDs = append(exerciseIDs, r.Exercise.ExerciseID)

		maxNum, err := s.store.MaxSetNumber(ctx, s.UserID, r.Exercise.ExerciseID)
		if err != nil {
			return nil, fmt.Errorf("querying max set number for %q: %w", r.Exercise.Name, err)
		}

		next := maxNum + 1
		var sessionMax float64
		for _, set := range r.Sets {
			if !set.IsCompleted || !set.HasValidData() {
				continue
			}
			row := models.SetRow{
				ID:          uuid.New(),
				UserID:      s.UserID,
				ExerciseID:  r.Exercise.ExerciseID,
				SessionID:   s.ID,
				SetNumber:   next,
				Reps:        set.Reps,
				IsWarmup:    set.IsWarmup,
				IsCompleted: true,
				CompletedAt: set.CompletedAt,
			}
			if set.WeightKg != nil {
				w := *set.WeightKg
				row.WeightKg = &w
				if w > sessionMax {
					sessionMax = w
				}
			}
			if d := set.DurationSec(); d > 0 {
				row.DurationSec = &d
			}
			if set.DistanceM != nil {
				dist := *set.DistanceM
				row.DistanceM = &dist
			}
			rows = append(rows, row)
			next++
		}

		if sessionMax > 0 {
			prevBest, err := s.store.RecentExerciseMax(ctx, s.UserID, r.Exercise.Name, DefaultPRScanSessions)
			if err != nil {
				return nil, fmt.Errorf("scanning recent sessions for %q: %w", r.Exercise.Name, err)
			}
			if sessionMax > prevBest {
				pr := models.PersonalRecord{
					ExerciseName: r.Exercise.Name,
					WeightKg:     sessionMax,
					Unit:         "kg",
				}
				if prevBest > 0 {
					prev := prevBest
					pr.PreviousBest = &prev
				}
				prs = append(prs, pr)
			}
		}

		if r.Notes != "" {
			noteParts = append(noteParts, fmt.Sprintf("%s: %s", r.Exercise.Name, r.Notes))
		}
	}

	row := models.SessionRow{
		ID:          s.ID,
		UserID:      s.UserID,
		WorkoutID:   s.Workout.ID,
		ExecutionID: s.ExecutionID,
		StartTime:   s.StartTime,
		EndTime:     &now,
		IsCompleted: true,
		Notes:       notes,
		Feeling:     feeling,
	}
	// Totals recomputed from the sets being persisted, never carried state.
	for _, sr := range rows {
		if sr.WeightKg != nil {
			row.TotalVolume += *sr.WeightKg * float64(sr.Reps)
		}
		row.TotalReps += sr.Reps
	}
	row.TotalSets = len(rows)

	if err := s.store.FinalizeSession(ctx, row, rows, exerciseIDs, strings.Join(noteParts, "\n")); err != nil {
		return nil, fmt.Errorf("saving session: %w", err)
	}

	s.state = StateCompleted
	s.EndTime = &now
	s.Notes = notes
	s.Feeling = feeling
	s.PRsHit = prs
	s.log.Info("session finalized",
		"session_id", s.ID,
		"sets", row.TotalSets,
		"volume", row.TotalVolume,
		"prs", len(prs),
	)
	return prs, nil
}

// Discard deletes the session and any pending snapshot rows. Total and
// immediate: no partial data survives.
func (s *Session) Discard(ctx context.Context) error {
	if s.state != StateInProgress {
		return ErrNotInProgress
	}
	if err := s.store.DeleteSession(ctx, s.ID); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	s.state = StateDiscarded
	s.log.Info("session discarded", "session_id", s.ID)
	return nil
}

// snapshotRows renders the current in-memory sets as rows for the
// debounced mid-session save. Numbers here are provisional; final
// numbering happens at Finalize.
func (s *Session) snapshotRows() (models.SessionRow, []models.SetRow) {
	row := models.SessionRow{
		ID:          s.ID,
		UserID:      s.UserID,
		WorkoutID:   s.Workout.ID,
		ExecutionID: s.ExecutionID,
		StartTime:   s.StartTime,
		Notes:       s.Notes,
		Feeling:     s.Feeling,
		TotalVolume: s.TotalVolume(),
		TotalSets:   s.TotalSets(),
		TotalReps:   s.TotalReps(),
	}

	var rows []models.SetRow
	for _, r := range s.Results {
		for _, set := range r.Sets {
			sr := models.SetRow{
				ID:          uuid.New(),
				UserID:      s.UserID,
				ExerciseID:  r.Exercise.ExerciseID,
				SessionID:   s.ID,
				SetNumber:   set.Number,
				Reps:        set.Reps,
				IsWarmup:    set.IsWarmup,
				IsCompleted: set.IsCompleted,
				CompletedAt: set.CompletedAt,
			}
			if set.WeightKg != nil {
				w := *set.WeightKg
				sr.WeightKg = &w
			}
			if d := set.DurationSec(); d > 0 {
				sr.DurationSec = &d
			}
			if set.DistanceM != nil {
				dist := *set.DistanceM
				sr.DistanceM = &dist
			}
			rows = append(rows, sr)
		}
	}
	return row, rows
}
