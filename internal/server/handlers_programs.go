package server

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/meltforce/liftlog/internal/program"
)

func (s *Server) handleStartProgram(w http.ResponseWriter, r *http.Request) {
	userID := mustUserID(r)

	programID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid program ID"})
		return
	}

	if active, err := s.db.GetActiveExecution(r.Context(), userID); err == nil && active != nil {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "a program is already in progress"})
		return
	}

	prog, err := s.db.GetProgram(r.Context(), programID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "program not found"})
		return
	}
	profile, err := s.db.GetProfile(r.Context(), userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	exec, err := program.Start(*prog, profile)
	if err != nil {
		if errors.Is(err, program.ErrMissingOneRMs) {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if err := s.db.InsertExecution(r.Context(), exec.Row()); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	s.sink.LogProgramStarted(userID, prog.Name)
	writeJSON(w, http.StatusOK, executionView(exec))
}

func (s *Server) handleCurrentExecution(w http.ResponseWriter, r *http.Request) {
	userID := mustUserID(r)

	row, err := s.db.GetActiveExecution(r.Context(), userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if row == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no program in progress"})
		return
	}
	prog, err := s.db.GetProgram(r.Context(), row.ProgramID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, executionView(program.Resume(*row, *prog)))
}

func (s *Server) handlePauseProgram(w http.ResponseWriter, r *http.Request) {
	s.setPaused(w, r, true)
}

func (s *Server) handleUnpauseProgram(w http.ResponseWriter, r *http.Request) {
	s.setPaused(w, r, false)
}

func (s *Server) setPaused(w http.ResponseWriter, r *http.Request, paused bool) {
	userID := mustUserID(r)

	row, err := s.db.GetActiveExecution(r.Context(), userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if row == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no program in progress"})
		return
	}
	prog, err := s.db.GetProgram(r.Context(), row.ProgramID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	exec := program.Resume(*row, *prog)
	if paused {
		exec.Pause()
	} else {
		exec.Unpause()
	}
	if err := s.db.UpdateExecution(r.Context(), exec.Row()); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, executionView(exec))
}

// executionView renders a program execution with its derived progress.
func executionView(exec *program.Execution) map[string]any {
	view := map[string]any{
		"id":           exec.ID,
		"program":      exec.Program,
		"current_week": exec.CurrentWeek,
		"current_day":  exec.CurrentDay,
		"status":       exec.Status(),
		"completed":    exec.CompletedCount(),
		"progress":     exec.ProgressPercentage(),
		"start_date":   exec.StartDate,
	}
	if next, ok := exec.CurrentWorkout(); ok {
		view["next_workout"] = next
	}
	return view
}
