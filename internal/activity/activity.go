package activity

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/meltforce/liftlog/internal/models"
)

// Event kinds stored in the activity log.
const (
	KindWorkoutCompleted = "workout_completed"
	KindPersonalRecord   = "personal_record"
	KindProgramStarted   = "program_started"
	KindProgramFinished  = "program_finished"
)

// Recorder is the subset of the storage layer the sink writes through.
type Recorder interface {
	InsertActivityEvent(ctx context.Context, userID int, kind, detail string) error
}

// Sink records notable training events. Writes are fire-and-forget: a
// failed insert is logged and dropped, it never blocks or fails the
// operation that produced the event.
type Sink struct {
	store Recorder
	log   *slog.Logger
}

func NewSink(store Recorder, log *slog.Logger) *Sink {
	return &Sink{store: store, log: log}
}

// LogWorkoutCompleted records a finished session.
func (s *Sink) LogWorkoutCompleted(userID int, summary models.SessionSummary) {
	detail := fmt.Sprintf("%s: %d sets, %.0f kg volume", summary.WorkoutName, summary.TotalSets, summary.TotalVolume)
	s.record(userID, KindWorkoutCompleted, detail)
}

// LogPersonalRecord records a new personal best.
func (s *Sink) LogPersonalRecord(userID int, pr models.PersonalRecord) {
	detail := fmt.Sprintf("%s: %.1f kg", pr.ExerciseName, pr.WeightKg)
	if pr.PreviousBest != nil {
		detail = fmt.Sprintf("%s: %.1f kg (was %.1f)", pr.ExerciseName, pr.WeightKg, *pr.PreviousBest)
	}
	s.record(userID, KindPersonalRecord, detail)
}

// LogProgramStarted records the start of a program execution.
func (s *Sink) LogProgramStarted(userID int, programName string) {
	s.record(userID, KindProgramStarted, programName)
}

// LogProgramFinished records a completed program execution.
func (s *Sink) LogProgramFinished(userID int, programName string) {
	s.record(userID, KindProgramFinished, programName)
}

func (s *Sink) record(userID int, kind, detail string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.store.InsertActivityEvent(ctx, userID, kind, detail); err != nil {
			s.log.Warn("failed to record activity event",
				"kind", kind, "user_id", userID, "error", err)
		}
	}()
}
