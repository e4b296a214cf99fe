package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/meltforce/liftlog/internal/achievements"
)

// TrainingStats holds aggregate statistics about a user's stored data.
type TrainingStats struct {
	TotalSessions   int64      `json:"total_sessions"`
	TotalSets       int64      `json:"total_sets"`
	TotalVolumeKg   float64    `json:"total_volume_kg"`
	PersonalRecords int64      `json:"personal_records"`
	WeightEntries   int64      `json:"weight_entries"`
	EarliestSession *time.Time `json:"earliest_session"`
	LatestSession   *time.Time `json:"latest_session"`
}

// GetTrainingStats returns aggregate statistics for a user's history.
func (db *DB) GetTrainingStats(ctx context.Context, userID int) (*TrainingStats, error) {
	stats := &TrainingStats{}

	err := db.Pool.QueryRow(ctx, `
		SELECT COUNT(*), COALESCE(SUM(total_volume), 0), MIN(start_time), MAX(start_time)
		FROM sessions WHERE user_id = $1 AND is_completed
	`, userID).Scan(&stats.TotalSessions, &stats.TotalVolumeKg, &stats.EarliestSession, &stats.LatestSession)
	if err != nil {
		return nil, fmt.Errorf("aggregating sessions: %w", err)
	}

	err = db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM sets WHERE user_id = $1 AND is_completed`, userID,
	).Scan(&stats.TotalSets)
	if err != nil {
		return nil, fmt.Errorf("counting sets: %w", err)
	}

	stats.PersonalRecords, err = db.CountPersonalRecords(ctx, userID)
	if err != nil {
		return nil, err
	}

	err = db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM weight_entries WHERE user_id = $1`, userID,
	).Scan(&stats.WeightEntries)
	if err != nil {
		return nil, fmt.Errorf("counting weight entries: %w", err)
	}

	return stats, nil
}

// GetAchievementStats assembles the raw counts the achievement evaluator
// runs over. Everything is derived fresh from history; no achievement
// progress is ever stored.
func (db *DB) GetAchievementStats(ctx context.Context, userID int) (achievements.Stats, error) {
	var s achievements.Stats

	ts, err := db.GetTrainingStats(ctx, userID)
	if err != nil {
		return s, err
	}
	s.Workouts = int(ts.TotalSessions)
	s.TotalVolumeKg = ts.TotalVolumeKg
	s.PersonalRecords = int(ts.PersonalRecords)
	s.WeightEntries = int(ts.WeightEntries)

	var nutrition int64
	err = db.Pool.QueryRow(ctx,
		`SELECT COUNT(DISTINCT entry_date) FROM nutrition_entries WHERE user_id = $1`, userID,
	).Scan(&nutrition)
	if err != nil {
		return s, fmt.Errorf("counting nutrition entries: %w", err)
	}
	s.NutritionEntries = int(nutrition)

	executions, err := db.CountCompletedExecutions(ctx, userID)
	if err != nil {
		return s, err
	}
	s.ProgramsCompleted = int(executions)

	return s, nil
}
