package activity

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/meltforce/liftlog/internal/models"
)

type fakeRecorder struct {
	mu     sync.Mutex
	events []string
	fail   error
	done   chan struct{}
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{done: make(chan struct{}, 16)}
}

func (f *fakeRecorder) InsertActivityEvent(ctx context.Context, userID int, kind, detail string) error {
	f.mu.Lock()
	f.events = append(f.events, kind+" "+detail)
	f.mu.Unlock()
	f.done <- struct{}{}
	return f.fail
}

func (f *fakeRecorder) wait(t *testing.T) {
	t.Helper()
	select {
	case <-f.done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for activity write")
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestPersonalRecordDetail verifies the recorded detail includes the previous
// best when one exists.
func TestPersonalRecordDetail(t *testing.T) {
	rec := newFakeRecorder()
	sink := NewSink(rec, testLogger())

	prev := 100.0
	sink.LogPersonalRecord(1, models.PersonalRecord{
		ExerciseName: "Bench Press", WeightKg: 105, PreviousBest: &prev,
	})
	rec.wait(t)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.events) != 1 {
		t.Fatalf("got %d events, want 1", len(rec.events))
	}
	want := "personal_record Bench Press: 105.0 kg (was 100.0)"
	if rec.events[0] != want {
		t.Errorf("event = %q, want %q", rec.events[0], want)
	}
}

// TestRecordFailureDoesNotPropagate verifies that a failing insert is dropped
// silently rather than surfacing to the caller.
func TestRecordFailureDoesNotPropagate(t *testing.T) {
	rec := newFakeRecorder()
	rec.fail = errors.New("db down")
	sink := NewSink(rec, testLogger())

	sink.LogProgramStarted(1, "5/3/1")
	rec.wait(t)
	// Nothing to assert beyond "did not panic or block": the write is
	// fire-and-forget by contract.
}

// TestWorkoutCompletedDetail verifies the summary fields land in the detail line.
func TestWorkoutCompletedDetail(t *testing.T) {
	rec := newFakeRecorder()
	sink := NewSink(rec, testLogger())

	sink.LogWorkoutCompleted(2, models.SessionSummary{
		WorkoutName: "Push Day", TotalSets: 12, TotalVolume: 4200,
	})
	rec.wait(t)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	want := "workout_completed Push Day: 12 sets, 4200 kg volume"
	if rec.events[0] != want {
		t.Errorf("event = %q, want %q", rec.events[0], want)
	}
}
