package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/meltforce/liftlog/internal/achievements"
	"github.com/meltforce/liftlog/internal/formulas"
	"github.com/meltforce/liftlog/internal/models"
	"github.com/meltforce/liftlog/internal/storage"
)

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := s.db.GetProfile(r.Context(), mustUserID(r))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var p models.UserProfile
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	p.UserID = mustUserID(r)
	if err := s.db.UpdateProfile(r.Context(), p); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// handleNutritionTargets derives the full calorie and macro breakdown
// from the stored profile. Passing body_fat switches the BMR base to
// Katch-McArdle.
func (s *Server) handleNutritionTargets(w http.ResponseWriter, r *http.Request) {
	profile, err := s.db.GetProfile(r.Context(), mustUserID(r))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if profile.WeightKg <= 0 || profile.HeightCm <= 0 || profile.Age <= 0 {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": "profile incomplete: weight, height, and age required"})
		return
	}

	var bmr float64
	if bfStr := r.URL.Query().Get("body_fat"); bfStr != "" {
		bf, ok := formulas.ParseDecimal(bfStr)
		if !ok {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body_fat value"})
			return
		}
		bmr = formulas.BMRKatchMcArdle(profile.WeightKg, bf)
	} else {
		bmr = formulas.BMRMifflinStJeor(profile.WeightKg, profile.HeightCm, profile.Age, profile.Gender)
	}

	tdee := formulas.TDEE(bmr, profile.ActivityLevel)
	goal := formulas.CalorieGoal(tdee, profile.Goal)
	macros := formulas.Macros(goal, profile.WeightKg)

	writeJSON(w, http.StatusOK, map[string]any{
		"bmr":          bmr,
		"tdee":         tdee,
		"calorie_goal": goal,
		"macros":       macros,
	})
}

// handleOneRM estimates a one-rep max. Weight arrives as a string so
// clients can pass locale-formatted input ("102,5") straight through.
func (s *Server) handleOneRM(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Weight  string `json:"weight"`
		Reps    int    `json:"reps"`
		Formula string `json:"formula"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	weight, ok := formulas.ParseDecimal(req.Weight)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid weight value"})
		return
	}
	formula := formulas.OneRMFormula(req.Formula)
	if req.Formula == "" {
		formula = formulas.Epley
	}

	estimate, ok := formulas.OneRM(weight, req.Reps, formula)
	if !ok {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": "estimation failed for given inputs"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"one_rm":  estimate,
		"formula": formula,
	})
}

func (s *Server) handleBodyFat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Gender   models.Gender `json:"gender"`
		HeightCm float64       `json:"height_cm"`
		NeckCm   float64       `json:"neck_cm"`
		WaistCm  float64       `json:"waist_cm"`
		HipCm    float64       `json:"hip_cm"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	pct, ok := formulas.BodyFatNavy(req.Gender, req.HeightCm, req.NeckCm, req.WaistCm, req.HipCm)
	if !ok {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": "measurements out of range for estimation"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]float64{"body_fat_percent": pct})
}

func (s *Server) handleQueryRecords(w http.ResponseWriter, r *http.Request) {
	limit := queryLimit(r, 50)
	records, err := s.db.QueryPersonalRecords(r.Context(), mustUserID(r), limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleAchievements(w http.ResponseWriter, r *http.Request) {
	stats, err := s.db.GetAchievementStats(r.Context(), mustUserID(r))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, achievements.Evaluate(achievements.DefaultCatalog(), stats))
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.db.GetTrainingStats(r.Context(), mustUserID(r))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleActivity(w http.ResponseWriter, r *http.Request) {
	events, err := s.db.QueryActivityEvents(r.Context(), mustUserID(r), queryLimit(r, 50))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, events)
}

func (s *Server) handleListExercises(w http.ResponseWriter, r *http.Request) {
	exercises, err := s.db.ListExercises(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, exercises)
}

func (s *Server) handleQueryWeight(w http.ResponseWriter, r *http.Request) {
	entries, err := s.db.QueryWeightEntries(r.Context(), mustUserID(r), queryLimit(r, 90))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleAddWeight(w http.ResponseWriter, r *http.Request) {
	s.insertWeight(w, r)
}

// handleIngestWeight is the device-push variant of handleAddWeight; same
// body, different auth path.
func (s *Server) handleIngestWeight(w http.ResponseWriter, r *http.Request) {
	s.insertWeight(w, r)
}

func (s *Server) insertWeight(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Weight string     `json:"weight"`
		Date   *time.Time `json:"date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	weight, ok := formulas.ParseDecimal(req.Weight)
	if !ok || weight <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid weight value"})
		return
	}
	date := time.Now()
	if req.Date != nil {
		date = *req.Date
	}
	if err := s.db.InsertWeightEntry(r.Context(), mustUserID(r), weight, date); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "recorded"})
}

func (s *Server) handleAddNutrition(w http.ResponseWriter, r *http.Request) {
	s.insertNutrition(w, r)
}

func (s *Server) handleIngestNutrition(w http.ResponseWriter, r *http.Request) {
	s.insertNutrition(w, r)
}

func (s *Server) insertNutrition(w http.ResponseWriter, r *http.Request) {
	var e storage.NutritionEntry
	if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	e.UserID = mustUserID(r)
	if e.EntryDate.IsZero() {
		e.EntryDate = time.Now()
	}
	if err := s.db.InsertNutritionEntry(r.Context(), e); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "recorded"})
}

func queryLimit(r *http.Request, def int) int {
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}
