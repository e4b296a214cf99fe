package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/meltforce/liftlog/internal/models"
	"github.com/meltforce/liftlog/internal/program"
	"github.com/meltforce/liftlog/internal/workout"
)

// kcalPerMinute is the flat calorie-burn estimate attached to exported
// session summaries. Deliberately crude; the external sink refines it.
const kcalPerMinute = 6.0

var (
	errExerciseIndex = errors.New("exercise index out of range")
	errSetIndex      = errors.New("set index out of range")
)

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	userID := mustUserID(r)

	var req struct {
		WorkoutID uuid.UUID `json:"workout_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	tmpl, err := s.db.GetWorkout(r.Context(), req.WorkoutID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "workout not found"})
		return
	}
	profile, err := s.db.GetProfile(r.Context(), userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	// A workout belonging to the active program counts toward that
	// execution; ad-hoc workouts run free-standing.
	var executionID *uuid.UUID
	if exec, err := s.db.GetActiveExecution(r.Context(), userID); err == nil && exec != nil &&
		tmpl.ProgramID != nil && *tmpl.ProgramID == exec.ProgramID {
		id := exec.ID
		executionID = &id
	}

	coord := s.coordinator(userID)
	if err := coord.Start(*tmpl, profile, executionID); err != nil {
		if errors.Is(err, workout.ErrSessionActive) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	var view map[string]any
	if err := coord.View(func(sess *workout.Session) { view = sessionView(sess) }); err != nil {
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleActiveSession(w http.ResponseWriter, r *http.Request) {
	var view map[string]any
	err := s.coordinator(mustUserID(r)).View(func(sess *workout.Session) { view = sessionView(sess) })
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no session in progress"})
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleAddExercise(w http.ResponseWriter, r *http.Request) {
	userID := mustUserID(r)

	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "exercise name required"})
		return
	}

	var view map[string]any
	err := s.coordinator(userID).Update(func(sess *workout.Session) error {
		if err := sess.AddExercise(r.Context(), req.Name); err != nil {
			return err
		}
		view = sessionView(sess)
		return nil
	})
	writeSessionUpdate(w, view, err)
}

func (s *Server) handleAddSet(w http.ResponseWriter, r *http.Request) {
	userID := mustUserID(r)

	var req struct {
		ExerciseIndex int `json:"exercise_index"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	var view map[string]any
	err := s.coordinator(userID).Update(func(sess *workout.Session) error {
		if req.ExerciseIndex < 0 || req.ExerciseIndex >= len(sess.Results) {
			return errExerciseIndex
		}
		sess.Results[req.ExerciseIndex].AddSet()
		view = sessionView(sess)
		return nil
	})
	writeSessionUpdate(w, view, err)
}

func (s *Server) handleUpdateSet(w http.ResponseWriter, r *http.Request) {
	userID := mustUserID(r)

	var req struct {
		ExerciseIndex int      `json:"exercise_index"`
		SetIndex      int      `json:"set_index"`
		WeightKg      *float64 `json:"weight_kg"`
		Reps          *int     `json:"reps"`
		Minutes       *int     `json:"minutes"`
		Seconds       *int     `json:"seconds"`
		DistanceM     *float64 `json:"distance_m"`
		IsWarmup      *bool    `json:"is_warmup"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	var view map[string]any
	err := s.coordinator(userID).Update(func(sess *workout.Session) error {
		if req.ExerciseIndex < 0 || req.ExerciseIndex >= len(sess.Results) {
			return errExerciseIndex
		}
		result := sess.Results[req.ExerciseIndex]
		if req.SetIndex < 0 || req.SetIndex >= len(result.Sets) {
			return errSetIndex
		}

		set := result.Sets[req.SetIndex]
		if req.WeightKg != nil {
			kg := *req.WeightKg
			set.WeightKg = &kg
		}
		if req.Reps != nil {
			set.Reps = *req.Reps
		}
		if req.Minutes != nil || req.Seconds != nil {
			min, sec := set.Minutes, set.Seconds
			if req.Minutes != nil {
				min = *req.Minutes
			}
			if req.Seconds != nil {
				sec = *req.Seconds
			}
			set.SetTime(min, sec)
		}
		if req.DistanceM != nil {
			d := *req.DistanceM
			set.DistanceM = &d
		}
		if req.IsWarmup != nil {
			set.IsWarmup = *req.IsWarmup
		}
		view = sessionView(sess)
		return nil
	})
	writeSessionUpdate(w, view, err)
}

func (s *Server) handleCompleteSet(w http.ResponseWriter, r *http.Request) {
	userID := mustUserID(r)

	var req struct {
		ExerciseIndex int `json:"exercise_index"`
		SetIndex      int `json:"set_index"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	var view map[string]any
	err := s.coordinator(userID).Update(func(sess *workout.Session) error {
		sess.CompleteSet(req.ExerciseIndex, req.SetIndex)
		view = sessionView(sess)
		return nil
	})
	writeSessionUpdate(w, view, err)
}

// writeSessionUpdate maps a coordinator Update outcome: no live session
// is a conflict, a bad index is the caller's error, anything else is the
// store's. On success the view rendered inside the update is returned.
func writeSessionUpdate(w http.ResponseWriter, view map[string]any, err error) {
	switch {
	case errors.Is(err, workout.ErrNoActiveSession):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, errExerciseIndex) || errors.Is(err, errSetIndex):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case err != nil:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	default:
		writeJSON(w, http.StatusOK, view)
	}
}

func (s *Server) handleFinishSession(w http.ResponseWriter, r *http.Request) {
	userID := mustUserID(r)

	var req struct {
		Notes   string `json:"notes"`
		Feeling int    `json:"feeling"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	sess, prs, err := s.coordinator(userID).Finish(r.Context(), req.Notes, req.Feeling)
	if err != nil {
		if errors.Is(err, workout.ErrNoActiveSession) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	if len(prs) > 0 {
		if err := s.db.InsertPersonalRecords(r.Context(), userID, sess.ID, prs); err != nil {
			s.log.Error("persisting personal records", "session_id", sess.ID, "error", err)
		}
		for _, pr := range prs {
			s.sink.LogPersonalRecord(userID, pr)
		}
	}

	summary := summarize(sess)
	s.sink.LogWorkoutCompleted(userID, summary)
	if s.exporter != nil {
		s.exporter.Export(summary)
	}

	if sess.ExecutionID != nil {
		s.advanceExecution(r, userID, sess)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"session":          sessionView(sess),
		"personal_records": prs,
	})
}

// advanceExecution marks the finished session's workout complete on the
// user's active program execution. Failures here are logged, not
// surfaced: the session itself committed.
func (s *Server) advanceExecution(r *http.Request, userID int, sess *workout.Session) {
	row, err := s.db.GetActiveExecution(r.Context(), userID)
	if err != nil || row == nil || row.ID != *sess.ExecutionID {
		return
	}
	prog, err := s.db.GetProgram(r.Context(), row.ProgramID)
	if err != nil {
		s.log.Error("loading program for execution advance", "error", err)
		return
	}
	exec := program.Resume(*row, *prog)
	exec.CompleteCurrentWorkout()
	if err := s.db.UpdateExecution(r.Context(), exec.Row()); err != nil {
		s.log.Error("advancing program execution", "execution_id", exec.ID, "error", err)
		return
	}
	if exec.IsCompleted() {
		s.sink.LogProgramFinished(userID, prog.Name)
	}
}

func (s *Server) handleDiscardSession(w http.ResponseWriter, r *http.Request) {
	userID := mustUserID(r)

	var req struct {
		Confirmed bool `json:"confirmed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	err := s.coordinator(userID).Discard(r.Context(), req.Confirmed)
	switch {
	case errors.Is(err, workout.ErrNoActiveSession):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, workout.ErrConfirmationRequired):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error(), "confirmation_required": "true"})
	case err != nil:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	default:
		writeJSON(w, http.StatusOK, map[string]string{"status": "discarded"})
	}
}

func (s *Server) handleQuerySessions(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseTimeRange(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	rows, err := s.db.QuerySessions(r.Context(), mustUserID(r), start, end)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid session ID"})
		return
	}
	detail, err := s.db.GetSession(r.Context(), id, mustUserID(r))
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// sessionView renders a live session for API responses. Callers hold
// the coordinator lock; the set list is copied out because the JSON
// encoding happens after the lock is released.
func sessionView(sess *workout.Session) map[string]any {
	results := make([]workout.ExerciseResult, len(sess.Results))
	for i, r := range sess.Results {
		cp := *r
		cp.Sets = make([]*workout.Set, len(r.Sets))
		for j, set := range r.Sets {
			s2 := *set
			cp.Sets[j] = &s2
		}
		results[i] = cp
	}
	return map[string]any{
		"id":           sess.ID,
		"workout":      sess.Workout,
		"execution_id": sess.ExecutionID,
		"start_time":   sess.StartTime,
		"state":        sess.State().String(),
		"results":      results,
		"total_volume": sess.TotalVolume(),
		"total_sets":   sess.TotalSets(),
		"total_reps":   sess.TotalReps(),
	}
}

func summarize(sess *workout.Session) models.SessionSummary {
	dur := sess.Duration()
	end := sess.StartTime.Add(dur)
	if sess.EndTime != nil {
		end = *sess.EndTime
	}
	return models.SessionSummary{
		SessionID:   sess.ID,
		WorkoutName: sess.Workout.Name,
		StartTime:   sess.StartTime,
		EndTime:     end,
		DurationSec: dur.Seconds(),
		TotalVolume: sess.TotalVolume(),
		TotalSets:   sess.TotalSets(),
		CaloriesEst: dur.Minutes() * kcalPerMinute,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func parseTimeRange(r *http.Request) (start, end time.Time, err error) {
	startStr := r.URL.Query().Get("start")
	endStr := r.URL.Query().Get("end")

	if startStr == "" {
		// Default: last 30 days
		end = time.Now()
		start = end.AddDate(0, 0, -30)
		return
	}

	start, err = time.Parse(time.RFC3339, startStr)
	if err != nil {
		start, err = time.Parse("2006-01-02", startStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	}

	if endStr == "" {
		end = time.Now()
	} else {
		end, err = time.Parse(time.RFC3339, endStr)
		if err != nil {
			end, err = time.Parse("2006-01-02", endStr)
			if err != nil {
				return time.Time{}, time.Time{}, err
			}
			// End of day for date-only
			end = end.Add(24 * time.Hour)
		}
	}
	return
}
