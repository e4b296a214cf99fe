package mcp

import (
	"context"
	"strconv"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/meltforce/liftlog/internal/achievements"
	"github.com/meltforce/liftlog/internal/formulas"
	"github.com/meltforce/liftlog/internal/program"
)

// defaultTimeRange returns start/end defaulting to the last 30 days.
func defaultTimeRange(startStr, endStr string) (time.Time, time.Time, error) {
	var start, end time.Time
	var err error

	if endStr != "" {
		end, err = parseFlexTime(endStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		end = time.Now()
	}

	if startStr != "" {
		start, err = parseFlexTime(startStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		start = end.AddDate(0, 0, -30)
	}

	return start, end, nil
}

func parseFlexTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}
	t, err = time.Parse("2006-01-02", s)
	if err == nil {
		return t, nil
	}
	return time.Time{}, err
}

// --- Tool definitions ---

var toolGetTrainingHistory = mcp.NewTool("get_training_history",
	mcp.WithDescription("Query completed workout sessions. Returns session summaries including duration, total volume, set and rep counts, feeling, and notes."),
	mcp.WithString("start", mcp.Description("Start date (ISO 8601 or YYYY-MM-DD). Defaults to 30 days ago.")),
	mcp.WithString("end", mcp.Description("End date (ISO 8601 or YYYY-MM-DD). Defaults to now.")),
)

var toolGetSets = mcp.NewTool("get_sets",
	mcp.WithDescription("Query individual persisted sets, newest first. Returns weight, reps, duration, and distance per set."),
	mcp.WithString("exercise", mcp.Description("Filter by exercise name (partial match, e.g. 'bench press')")),
	mcp.WithString("limit", mcp.Description("Maximum sets to return. Defaults to 100.")),
)

var toolGetPersonalRecords = mcp.NewTool("get_personal_records",
	mcp.WithDescription("List personal records, newest first: exercise, new best weight, previous best, and when it was achieved."),
	mcp.WithString("limit", mcp.Description("Maximum records to return. Defaults to 50.")),
)

var toolGetProgramProgress = mcp.NewTool("get_program_progress",
	mcp.WithDescription("Current program execution: program name, week/day cursor, completion percentage, paused state, and the next scheduled workout."),
)

var toolGetAchievements = mcp.NewTool("get_achievements",
	mcp.WithDescription("Evaluate all achievements against the user's full history. Returns per-achievement progress and unlocked state."),
)

var toolGetTrainingStats = mcp.NewTool("get_training_stats",
	mcp.WithDescription("Lifetime aggregate statistics: total sessions, sets, volume tonnage, personal records, and the span of recorded history."),
)

var toolEstimateOneRM = mcp.NewTool("estimate_one_rm",
	mcp.WithDescription("Estimate a one-rep max from a weight lifted for a number of reps. Supports the Epley, Brzycki, and Lander formulas."),
	mcp.WithString("weight", mcp.Required(), mcp.Description("Weight lifted in kg. Comma or dot decimal separator accepted.")),
	mcp.WithString("reps", mcp.Required(), mcp.Description("Repetitions performed")),
	mcp.WithString("formula", mcp.Description("Estimation formula. Defaults to epley."), mcp.Enum("epley", "brzycki", "lander")),
)

var toolGetNutritionTargets = mcp.NewTool("get_nutrition_targets",
	mcp.WithDescription("Derive BMR, TDEE, calorie goal, and macro targets from the stored user profile."),
	mcp.WithString("body_fat", mcp.Description("Body fat percentage. When set, BMR uses Katch-McArdle instead of Mifflin-St Jeor.")),
)

// --- Tool handlers ---

func (h *handlers) getTrainingHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, end, err := defaultTimeRange(req.GetString("start", ""), req.GetString("end", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	uid := UserIDFromContext(ctx)
	sessions, err := h.ds.QuerySessions(ctx, uid, start, end)
	if err != nil {
		h.log.Error("mcp get_training_history", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(sessions)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getSets(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := 100
	if v := req.GetString("limit", ""); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return mcp.NewToolResultError("invalid limit"), nil
		}
		limit = n
	}

	uid := UserIDFromContext(ctx)
	sets, err := h.ds.QuerySets(ctx, uid, req.GetString("exercise", ""), limit)
	if err != nil {
		h.log.Error("mcp get_sets", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(sets)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getPersonalRecords(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := 50
	if v := req.GetString("limit", ""); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return mcp.NewToolResultError("invalid limit"), nil
		}
		limit = n
	}

	uid := UserIDFromContext(ctx)
	records, err := h.ds.QueryPersonalRecords(ctx, uid, limit)
	if err != nil {
		h.log.Error("mcp get_personal_records", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(records)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getProgramProgress(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid := UserIDFromContext(ctx)

	row, err := h.ds.GetActiveExecution(ctx, uid)
	if err != nil {
		h.log.Error("mcp get_program_progress", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	if row == nil {
		return mcp.NewToolResultText("no program in progress"), nil
	}
	prog, err := h.ds.GetProgram(ctx, row.ProgramID)
	if err != nil {
		h.log.Error("mcp get_program_progress", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	exec := program.Resume(*row, *prog)
	view := map[string]any{
		"program":      prog.Name,
		"current_week": exec.CurrentWeek,
		"current_day":  exec.CurrentDay,
		"status":       exec.Status(),
		"completed":    exec.CompletedCount(),
		"total":        prog.TotalWorkouts(),
		"progress":     exec.ProgressPercentage(),
	}
	if next, ok := exec.CurrentWorkout(); ok {
		view["next_workout"] = next.Name
	}

	result, err := mcp.NewToolResultJSON(view)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getAchievements(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid := UserIDFromContext(ctx)

	stats, err := h.ds.GetAchievementStats(ctx, uid)
	if err != nil {
		h.log.Error("mcp get_achievements", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(achievements.Evaluate(achievements.DefaultCatalog(), stats))
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getTrainingStats(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid := UserIDFromContext(ctx)

	stats, err := h.ds.GetTrainingStats(ctx, uid)
	if err != nil {
		h.log.Error("mcp get_training_stats", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(stats)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) estimateOneRM(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	weightStr, err := req.RequireString("weight")
	if err != nil {
		return mcp.NewToolResultError("weight parameter is required"), nil
	}
	repsStr, err := req.RequireString("reps")
	if err != nil {
		return mcp.NewToolResultError("reps parameter is required"), nil
	}

	weight, ok := formulas.ParseDecimal(weightStr)
	if !ok {
		return mcp.NewToolResultError("invalid weight value"), nil
	}
	reps, err := strconv.Atoi(repsStr)
	if err != nil {
		return mcp.NewToolResultError("invalid reps value"), nil
	}

	formula := formulas.OneRMFormula(req.GetString("formula", string(formulas.Epley)))
	estimate, ok := formulas.OneRM(weight, reps, formula)
	if !ok {
		return mcp.NewToolResultError("estimation failed for given inputs"), nil
	}

	result, err := mcp.NewToolResultJSON(map[string]any{
		"one_rm":  estimate,
		"formula": formula,
	})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getNutritionTargets(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid := UserIDFromContext(ctx)

	profile, err := h.ds.GetProfile(ctx, uid)
	if err != nil {
		h.log.Error("mcp get_nutrition_targets", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	if profile.WeightKg <= 0 || profile.HeightCm <= 0 || profile.Age <= 0 {
		return mcp.NewToolResultError("profile incomplete: weight, height, and age required"), nil
	}

	var bmr float64
	if bfStr := req.GetString("body_fat", ""); bfStr != "" {
		bf, ok := formulas.ParseDecimal(bfStr)
		if !ok {
			return mcp.NewToolResultError("invalid body_fat value"), nil
		}
		bmr = formulas.BMRKatchMcArdle(profile.WeightKg, bf)
	} else {
		bmr = formulas.BMRMifflinStJeor(profile.WeightKg, profile.HeightCm, profile.Age, profile.Gender)
	}

	tdee := formulas.TDEE(bmr, profile.ActivityLevel)
	goal := formulas.CalorieGoal(tdee, profile.Goal)
	macros := formulas.Macros(goal, profile.WeightKg)

	result, err := mcp.NewToolResultJSON(map[string]any{
		"bmr":          bmr,
		"tdee":         tdee,
		"calorie_goal": goal,
		"macros":       macros,
	})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
