package workout

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/meltforce/liftlog/internal/models"
)

// savedSnapshot is one SaveSnapshot call as the fake store received it.
type savedSnapshot struct {
	row  models.SessionRow
	sets []models.SetRow
}

// fakeStore is an in-memory Store for driving the session machine
// without a database. Snapshot writes arrive on the debouncer goroutine,
// so those paths are guarded by mu.
type fakeStore struct {
	exercises     map[string]models.Exercise
	maxSetNumbers map[uuid.UUID]int
	recentMax     map[string]float64

	mu             sync.Mutex
	saved          []savedSnapshot
	ops            []string
	finalized      []models.SetRow
	finalizedRow   *models.SessionRow
	noteAppend     string
	deletedFor     []uuid.UUID
	deletedSession *uuid.UUID

	failFinalize error

	// When set, SaveSnapshot signals snapshotBusy on entry and then
	// blocks until snapshotGate closes.
	snapshotBusy chan struct{}
	snapshotGate chan struct{}
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		exercises:     map[string]models.Exercise{},
		maxSetNumbers: map[uuid.UUID]int{},
		recentMax:     map[string]float64{},
	}
}

func (f *fakeStore) GetOrCreateExercise(_ context.Context, name string) (models.Exercise, error) {
	key := strings.ToLower(name)
	if ex, ok := f.exercises[key]; ok {
		return ex, nil
	}
	ex := models.Exercise{ID: uuid.New(), Name: name}
	f.exercises[key] = ex
	return ex, nil
}

func (f *fakeStore) MaxSetNumber(_ context.Context, _ int, exerciseID uuid.UUID) (int, error) {
	return f.maxSetNumbers[exerciseID], nil
}

func (f *fakeStore) RecentExerciseMax(_ context.Context, _ int, exerciseName string, _ int) (float64, error) {
	return f.recentMax[exerciseName], nil
}

func (f *fakeStore) SaveSnapshot(_ context.Context, row models.SessionRow, sets []models.SetRow) error {
	if f.snapshotBusy != nil {
		f.snapshotBusy <- struct{}{}
	}
	if f.snapshotGate != nil {
		<-f.snapshotGate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, savedSnapshot{row: row, sets: sets})
	f.ops = append(f.ops, "snapshot")
	return nil
}

func (f *fakeStore) FinalizeSession(_ context.Context, session models.SessionRow, sets []models.SetRow, exerciseIDs []uuid.UUID, noteAppend string) error {
	if f.failFinalize != nil {
		return f.failFinalize
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.finalizedRow = &session
	f.finalized = sets
	f.deletedFor = exerciseIDs
	f.noteAppend = noteAppend
	f.ops = append(f.ops, "finalize")
	return nil
}

func (f *fakeStore) DeleteSession(_ context.Context, sessionID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletedSession = &sessionID
	f.ops = append(f.ops, "delete")
	return nil
}

func (f *fakeStore) savedSnapshots() []savedSnapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]savedSnapshot(nil), f.saved...)
}

func (f *fakeStore) opLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.ops...)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func benchWorkout(exerciseID uuid.UUID) models.Workout {
	return models.Workout{
		ID:   uuid.New(),
		Name: "Push Day",
		Exercises: []models.WorkoutExercise{
			{ExerciseID: exerciseID, Name: "Bench Press", TargetSets: 3},
		},
	}
}

// TestNewSessionSeedsEmptyResults verifies starting a session creates
// one empty result per template exercise with no pre-seeded sets — the
// user adds sets manually, a preserved behavioral contract.
func TestNewSessionSeedsEmptyResults(t *testing.T) {
	store := newFakeStore()
	s := NewSession(benchWorkout(uuid.New()), models.UserProfile{UserID: 1}, nil, store, testLogger())

	if s.State() != StateInProgress {
		t.Errorf("state = %v, want in_progress", s.State())
	}
	if len(s.Results) != 1 {
		t.Fatalf("results = %d, want 1", len(s.Results))
	}
	if len(s.Results[0].Sets) != 0 {
		t.Errorf("sets pre-seeded: %d, want 0", len(s.Results[0].Sets))
	}
}

// TestAddExerciseDuplicate verifies adding an exercise already in the
// session is a no-op rather than a duplicate entry.
func TestAddExerciseDuplicate(t *testing.T) {
	store := newFakeStore()
	s := NewSession(benchWorkout(uuid.New()), models.UserProfile{UserID: 1}, nil, store, testLogger())

	if err := s.AddExercise(context.Background(), "bench press"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s.Results) != 1 {
		t.Errorf("results = %d, want 1 (duplicate must not append)", len(s.Results))
	}
}

// TestAddExerciseDefaultWeight verifies the seeded set defaults to 70%
// of the keyword-matched stored 1RM.
func TestAddExerciseDefaultWeight(t *testing.T) {
	store := newFakeStore()
	profile := models.UserProfile{
		UserID:             1,
		SquatOneRM:         140,
		OverheadPressOneRM: 60,
		BenchPressOneRM:    100,
	}
	s := NewSession(models.Workout{ID: uuid.New(), Name: "Lower"}, profile, nil, store, testLogger())

	tests := []struct {
		exercise string
		want     float64
	}{
		{"Back Squat", 98},          // 140 × 0.7
		{"Overhead Press", 42},      // overhead beats the generic press keyword
		{"Incline Press", 70},       // press → bench max
		{"Face Pull Apart Machine", 0},
	}
	for _, tt := range tests {
		if err := s.AddExercise(context.Background(), tt.exercise); err != nil {
			t.Fatalf("AddExercise(%q): %v", tt.exercise, err)
		}
		r := s.Results[len(s.Results)-1]
		if len(r.Sets) != 1 {
			t.Fatalf("%q: seeded sets = %d, want 1", tt.exercise, len(r.Sets))
		}
		got := 0.0
		if r.Sets[0].WeightKg != nil {
			got = *r.Sets[0].WeightKg
		}
		if got != tt.want {
			t.Errorf("%q default weight = %v, want %v", tt.exercise, got, tt.want)
		}
	}
}

// TestAddExerciseDefaultWeightPullUp covers the pull keyword separately
// since the face-pull case above deliberately has no stored pull-up max.
func TestAddExerciseDefaultWeightPullUp(t *testing.T) {
	store := newFakeStore()
	profile := models.UserProfile{UserID: 1, PullUpOneRM: 90}
	s := NewSession(models.Workout{ID: uuid.New()}, profile, nil, store, testLogger())

	if err := s.AddExercise(context.Background(), "Weighted Pull-Up"); err != nil {
		t.Fatal(err)
	}
	set := s.Results[0].Sets[0]
	if set.WeightKg == nil || *set.WeightKg != 63 {
		t.Errorf("default weight = %v, want 63", set.WeightKg)
	}
}

// TestCompleteSetFiresExerciseCompleted verifies the all-sets-complete
// callback fires exactly when the last set of an exercise completes.
func TestCompleteSetFiresExerciseCompleted(t *testing.T) {
	store := newFakeStore()
	s := NewSession(benchWorkout(uuid.New()), models.UserProfile{UserID: 1}, nil, store, testLogger())

	var fired int
	s.OnExerciseCompleted = func(*ExerciseResult) { fired++ }

	r := s.Results[0]
	r.AddSet().Reps = 5
	r.AddSet().Reps = 5

	s.CompleteSet(0, 0)
	if fired != 0 {
		t.Errorf("callback fired after first set; want only on last")
	}
	s.CompleteSet(0, 1)
	if fired != 1 {
		t.Errorf("callback fired %d times, want 1", fired)
	}
}

// TestFinalizeNumberingContinuity verifies spec property 1: with N
// previously persisted sets, K new completed+valid sets are numbered
// N+1…N+K regardless of interleaved invalid or incomplete sets.
func TestFinalizeNumberingContinuity(t *testing.T) {
	store := newFakeStore()
	benchID := uuid.New()
	store.maxSetNumbers[benchID] = 7

	s := NewSession(benchWorkout(benchID), models.UserProfile{UserID: 1}, nil, store, testLogger())
	r := s.Results[0]

	a := r.AddSet()
	a.WeightKg = ptr(50)
	a.Reps = 10
	b := r.AddSet() // completed but invalid: no data survives
	b.WeightKg = ptr(0)
	b.Reps = 0
	c := r.AddSet() // valid but never completed
	c.WeightKg = ptr(60)
	c.Reps = 8
	d := r.AddSet()
	d.WeightKg = ptr(55)
	d.Reps = 8

	s.CompleteSet(0, 0)
	s.CompleteSet(0, 1)
	s.CompleteSet(0, 3)

	if _, err := s.Finalize(context.Background(), "", 3); err != nil {
		t.Fatalf("finalize: %v", err)
	}

	if len(store.finalized) != 2 {
		t.Fatalf("persisted sets = %d, want 2", len(store.finalized))
	}
	if store.finalized[0].SetNumber != 8 || store.finalized[1].SetNumber != 9 {
		t.Errorf("set numbers = %d, %d; want 8, 9",
			store.finalized[0].SetNumber, store.finalized[1].SetNumber)
	}
	if s.State() != StateCompleted {
		t.Errorf("state = %v, want completed", s.State())
	}
}

// TestFinalizeDiscardsInvalidSets verifies spec scenario 7: only
// completed sets with valid data are persisted.
func TestFinalizeDiscardsInvalidSets(t *testing.T) {
	store := newFakeStore()
	benchID := uuid.New()
	s := NewSession(benchWorkout(benchID), models.UserProfile{UserID: 1}, nil, store, testLogger())
	r := s.Results[0]

	a := r.AddSet()
	a.WeightKg = ptr(50)
	a.Reps = 10
	b := r.AddSet()
	b.WeightKg = ptr(0)
	b.Reps = 0
	c := r.AddSet()
	c.WeightKg = ptr(60)
	c.Reps = 8

	s.CompleteSet(0, 0)
	s.CompleteSet(0, 1)
	// c stays incomplete

	if _, err := s.Finalize(context.Background(), "", 0); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if len(store.finalized) != 1 {
		t.Fatalf("persisted sets = %d, want 1", len(store.finalized))
	}
	row := store.finalized[0]
	if row.SetNumber != 1 || *row.WeightKg != 50 || row.Reps != 10 {
		t.Errorf("persisted row = #%d %v×%d, want #1 50×10", row.SetNumber, *row.WeightKg, row.Reps)
	}
}

// TestFinalizePersonalRecord verifies cross-session PR detection against
// the bounded recent-history maximum, including previous-best capture.
func TestFinalizePersonalRecord(t *testing.T) {
	store := newFakeStore()
	benchID := uuid.New()
	store.recentMax["Bench Press"] = 95

	s := NewSession(benchWorkout(benchID), models.UserProfile{UserID: 1}, nil, store, testLogger())
	set := s.Results[0].AddSet()
	set.WeightKg = ptr(100)
	set.Reps = 3
	s.CompleteSet(0, 0)

	prs, err := s.Finalize(context.Background(), "", 4)
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if len(prs) != 1 {
		t.Fatalf("PRs = %d, want 1", len(prs))
	}
	pr := prs[0]
	if pr.ExerciseName != "Bench Press" || pr.WeightKg != 100 {
		t.Errorf("PR = %+v", pr)
	}
	if pr.PreviousBest == nil || *pr.PreviousBest != 95 {
		t.Errorf("previous best = %v, want 95", pr.PreviousBest)
	}
}

// TestFinalizeNoPRWhenBelowBest verifies no PR event when the session
// max does not beat recent history.
func TestFinalizeNoPRWhenBelowBest(t *testing.T) {
	store := newFakeStore()
	store.recentMax["Bench Press"] = 120

	s := NewSession(benchWorkout(uuid.New()), models.UserProfile{UserID: 1}, nil, store, testLogger())
	set := s.Results[0].AddSet()
	set.WeightKg = ptr(100)
	set.Reps = 3
	s.CompleteSet(0, 0)

	prs, err := s.Finalize(context.Background(), "", 0)
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if len(prs) != 0 {
		t.Errorf("PRs = %d, want 0", len(prs))
	}
}

// TestFinalizeNotesAppend verifies per-exercise notes are rendered as
// "{exercise}: {notes}" lines for the workout notes append.
func TestFinalizeNotesAppend(t *testing.T) {
	store := newFakeStore()
	s := NewSession(benchWorkout(uuid.New()), models.UserProfile{UserID: 1}, nil, store, testLogger())
	s.Results[0].Notes = "felt heavy off the chest"
	set := s.Results[0].AddSet()
	set.WeightKg = ptr(80)
	set.Reps = 5
	s.CompleteSet(0, 0)

	if _, err := s.Finalize(context.Background(), "good session", 4); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if want := "Bench Press: felt heavy off the chest"; store.noteAppend != want {
		t.Errorf("note append = %q, want %q", store.noteAppend, want)
	}
	if store.finalizedRow.Notes != "good session" || store.finalizedRow.Feeling != 4 {
		t.Errorf("session row notes/feeling = %q/%d", store.finalizedRow.Notes, store.finalizedRow.Feeling)
	}
}

// TestFinalizeStoreFailureKeepsInProgress verifies a persistence failure
// aborts the transition: the session stays InProgress for retry and no
// terminal state is reached.
func TestFinalizeStoreFailureKeepsInProgress(t *testing.T) {
	store := newFakeStore()
	store.failFinalize = errors.New("disk full")

	s := NewSession(benchWorkout(uuid.New()), models.UserProfile{UserID: 1}, nil, store, testLogger())
	set := s.Results[0].AddSet()
	set.WeightKg = ptr(80)
	set.Reps = 5
	s.CompleteSet(0, 0)

	if _, err := s.Finalize(context.Background(), "", 0); err == nil {
		t.Fatal("expected finalize error")
	}
	if s.State() != StateInProgress {
		t.Errorf("state = %v, want in_progress after failed finalize", s.State())
	}

	// Retry succeeds once the store recovers.
	store.failFinalize = nil
	if _, err := s.Finalize(context.Background(), "", 0); err != nil {
		t.Fatalf("retry finalize: %v", err)
	}
	if s.State() != StateCompleted {
		t.Errorf("state = %v, want completed", s.State())
	}
}

// TestFinalizeTotalsRecomputed verifies the persisted session totals
// equal the recomputed sums over the persisted sets (round-trip property).
func TestFinalizeTotalsRecomputed(t *testing.T) {
	store := newFakeStore()
	s := NewSession(benchWorkout(uuid.New()), models.UserProfile{UserID: 1}, nil, store, testLogger())
	r := s.Results[0]
	a := r.AddSet()
	a.WeightKg = ptr(50)
	a.Reps = 10
	b := r.AddSet()
	b.WeightKg = ptr(60)
	b.Reps = 8
	s.CompleteSet(0, 0)
	s.CompleteSet(0, 1)

	wantVolume := s.TotalVolume()
	wantSets := s.TotalSets()
	wantReps := s.TotalReps()

	if _, err := s.Finalize(context.Background(), "", 0); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	row := store.finalizedRow
	if row.TotalVolume != wantVolume || row.TotalSets != wantSets || row.TotalReps != wantReps {
		t.Errorf("persisted totals = %v/%d/%d, want %v/%d/%d",
			row.TotalVolume, row.TotalSets, row.TotalReps, wantVolume, wantSets, wantReps)
	}
}

// TestTerminalStateRejectsOperations verifies no transitions leave a
// terminal state.
func TestTerminalStateRejectsOperations(t *testing.T) {
	store := newFakeStore()
	s := NewSession(benchWorkout(uuid.New()), models.UserProfile{UserID: 1}, nil, store, testLogger())
	set := s.Results[0].AddSet()
	set.Reps = 5
	s.CompleteSet(0, 0)

	if _, err := s.Finalize(context.Background(), "", 0); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if err := s.AddExercise(context.Background(), "Squat"); !errors.Is(err, ErrNotInProgress) {
		t.Errorf("AddExercise after finalize = %v, want ErrNotInProgress", err)
	}
	if err := s.Discard(context.Background()); !errors.Is(err, ErrNotInProgress) {
		t.Errorf("Discard after finalize = %v, want ErrNotInProgress", err)
	}
	if _, err := s.Finalize(context.Background(), "", 0); !errors.Is(err, ErrNotInProgress) {
		t.Errorf("double finalize = %v, want ErrNotInProgress", err)
	}
}

// TestDiscardDeletesSession verifies discard removes the pending session
// record and lands in the Discarded terminal state.
func TestDiscardDeletesSession(t *testing.T) {
	store := newFakeStore()
	s := NewSession(benchWorkout(uuid.New()), models.UserProfile{UserID: 1}, nil, store, testLogger())

	if err := s.Discard(context.Background()); err != nil {
		t.Fatalf("discard: %v", err)
	}
	if s.State() != StateDiscarded {
		t.Errorf("state = %v, want discarded", s.State())
	}
	if store.deletedSession == nil || *store.deletedSession != s.ID {
		t.Errorf("deleted session = %v, want %v", store.deletedSession, s.ID)
	}
}
