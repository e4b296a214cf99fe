package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/liftlog/internal/models"
)

// SessionDetail is a session with its persisted sets.
type SessionDetail struct {
	models.SessionRow
	Sets []models.SetRow `json:"sets"`
}

// QuerySessions retrieves a user's completed sessions in a time range,
// newest first.
func (db *DB) QuerySessions(ctx context.Context, userID int, start, end time.Time) ([]models.SessionRow, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, user_id, workout_id, execution_id, start_time, end_time,
		       is_completed, notes, feeling, total_volume, total_sets, total_reps
		FROM sessions
		WHERE user_id = $1 AND is_completed AND start_time >= $2 AND start_time < $3
		ORDER BY start_time DESC
	`, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	var result []models.SessionRow
	for rows.Next() {
		var s models.SessionRow
		if err := rows.Scan(&s.ID, &s.UserID, &s.WorkoutID, &s.ExecutionID, &s.StartTime, &s.EndTime,
			&s.IsCompleted, &s.Notes, &s.Feeling, &s.TotalVolume, &s.TotalSets, &s.TotalReps); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

// GetSession retrieves a single session with all of its sets.
func (db *DB) GetSession(ctx context.Context, sessionID uuid.UUID, userID int) (*SessionDetail, error) {
	row := db.Pool.QueryRow(ctx, `
		SELECT id, user_id, workout_id, execution_id, start_time, end_time,
		       is_completed, notes, feeling, total_volume, total_sets, total_reps
		FROM sessions WHERE id = $1 AND user_id = $2
	`, sessionID, userID)

	var s models.SessionRow
	err := row.Scan(&s.ID, &s.UserID, &s.WorkoutID, &s.ExecutionID, &s.StartTime, &s.EndTime,
		&s.IsCompleted, &s.Notes, &s.Feeling, &s.TotalVolume, &s.TotalSets, &s.TotalReps)
	if err != nil {
		return nil, fmt.Errorf("querying session: %w", err)
	}

	detail := &SessionDetail{SessionRow: s}

	setRows, err := db.Pool.Query(ctx, `
		SELECT id, user_id, exercise_id, session_id, set_number, weight_kg, reps,
		       duration_sec, distance_m, is_warmup, is_completed, completed_at
		FROM sets WHERE session_id = $1
		ORDER BY exercise_id, set_number ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("querying session sets: %w", err)
	}
	defer setRows.Close()

	for setRows.Next() {
		var r models.SetRow
		if err := setRows.Scan(&r.ID, &r.UserID, &r.ExerciseID, &r.SessionID, &r.SetNumber,
			&r.WeightKg, &r.Reps, &r.DurationSec, &r.DistanceM,
			&r.IsWarmup, &r.IsCompleted, &r.CompletedAt); err != nil {
			return nil, fmt.Errorf("scanning session set: %w", err)
		}
		detail.Sets = append(detail.Sets, r)
	}
	return detail, setRows.Err()
}

// CountCompletedSessions returns the user's lifetime completed session
// count.
func (db *DB) CountCompletedSessions(ctx context.Context, userID int) (int64, error) {
	var n int64
	err := db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM sessions WHERE user_id = $1 AND is_completed`, userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting sessions: %w", err)
	}
	return n, nil
}
