package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/liftlog/internal/models"
)

// PersonalRecordRow is a persisted personal-record event.
type PersonalRecordRow struct {
	ID           uuid.UUID `json:"id"`
	UserID       int       `json:"user_id"`
	SessionID    uuid.UUID `json:"session_id"`
	ExerciseName string    `json:"exercise_name"`
	WeightKg     float64   `json:"weight_kg"`
	PreviousBest *float64  `json:"previous_best,omitempty"`
	AchievedAt   time.Time `json:"achieved_at"`
}

// InsertPersonalRecords stores the PR events detected at finalization.
func (db *DB) InsertPersonalRecords(ctx context.Context, userID int, sessionID uuid.UUID, prs []models.PersonalRecord) error {
	for _, pr := range prs {
		_, err := db.Pool.Exec(ctx, `
			INSERT INTO personal_records (id, user_id, session_id, exercise_name, weight_kg, previous_best, achieved_at)
			VALUES ($1,$2,$3,$4,$5,$6,NOW())
		`, uuid.New(), userID, sessionID, pr.ExerciseName, pr.WeightKg, pr.PreviousBest)
		if err != nil {
			return fmt.Errorf("inserting personal record for %q: %w", pr.ExerciseName, err)
		}
	}
	return nil
}

// QueryPersonalRecords returns a user's PR history, newest first.
func (db *DB) QueryPersonalRecords(ctx context.Context, userID, limit int) ([]PersonalRecordRow, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, user_id, session_id, exercise_name, weight_kg, previous_best, achieved_at
		FROM personal_records
		WHERE user_id = $1
		ORDER BY achieved_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying personal records: %w", err)
	}
	defer rows.Close()

	var result []PersonalRecordRow
	for rows.Next() {
		var r PersonalRecordRow
		if err := rows.Scan(&r.ID, &r.UserID, &r.SessionID, &r.ExerciseName,
			&r.WeightKg, &r.PreviousBest, &r.AchievedAt); err != nil {
			return nil, fmt.Errorf("scanning personal record: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// CountPersonalRecords returns the user's lifetime PR count.
func (db *DB) CountPersonalRecords(ctx context.Context, userID int) (int64, error) {
	var n int64
	err := db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM personal_records WHERE user_id = $1`, userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting personal records: %w", err)
	}
	return n, nil
}
