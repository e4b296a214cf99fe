package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/meltforce/liftlog/internal/models"
)

// MaxSetNumber returns the highest persisted set number for the exercise
// across the user's entire history, 0 if none. Session finalization
// continues numbering from here — numbers never restart at 1 once
// history exists.
func (db *DB) MaxSetNumber(ctx context.Context, userID int, exerciseID uuid.UUID) (int, error) {
	var max int
	err := db.Pool.QueryRow(ctx,
		`SELECT COALESCE(MAX(set_number), 0) FROM sets
		 WHERE user_id = $1 AND exercise_id = $2 AND is_completed`,
		userID, exerciseID).Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("querying max set number: %w", err)
	}
	return max, nil
}

// RecentExerciseMax returns the heaviest completed-set weight for the
// exercise name over the user's most recent sessionLimit completed
// sessions, 0 if none. The LIMIT makes this a bounded, recency-biased
// scan rather than a global maximum.
func (db *DB) RecentExerciseMax(ctx context.Context, userID int, exerciseName string, sessionLimit int) (float64, error) {
	var max float64
	err := db.Pool.QueryRow(ctx, `
		SELECT COALESCE(MAX(st.weight_kg), 0)
		FROM sets st
		WHERE st.user_id = $1 AND st.is_completed AND st.session_id IN (
			SELECT s.id
			FROM sessions s
			JOIN sets s2 ON s2.session_id = s.id
			JOIN exercises e ON e.id = s2.exercise_id
			WHERE s.user_id = $1 AND s.is_completed AND LOWER(e.name) = LOWER($2)
			GROUP BY s.id
			ORDER BY MAX(s.start_time) DESC
			LIMIT $3
		) AND st.exercise_id IN (
			SELECT id FROM exercises WHERE LOWER(name) = LOWER($2)
		)
	`, userID, exerciseName, sessionLimit).Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("querying recent exercise max: %w", err)
	}
	return max, nil
}

// SaveSnapshot upserts the in-progress session row and replaces its set
// rows, placeholders included. Called from the debounced mid-session
// save; the whole snapshot is one transaction.
func (db *DB) SaveSnapshot(ctx context.Context, session models.SessionRow, sets []models.SetRow) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning snapshot tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := upsertSession(ctx, tx, session); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM sets WHERE session_id = $1`, session.ID); err != nil {
		return fmt.Errorf("clearing snapshot sets: %w", err)
	}
	if err := insertSets(ctx, tx, sets); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing snapshot: %w", err)
	}
	return nil
}

// FinalizeSession commits a finished session in a single transaction:
// placeholder (incomplete) sets for the finalized exercises are deleted,
// the session's snapshot rows are replaced by the final numbered sets,
// the note append lands on the workout, and the session row flips to
// completed. Any failure rolls the whole thing back.
func (db *DB) FinalizeSession(ctx context.Context, session models.SessionRow, sets []models.SetRow, exerciseIDs []uuid.UUID, noteAppend string) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning finalize tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if len(exerciseIDs) > 0 {
		if _, err := tx.Exec(ctx,
			`DELETE FROM sets WHERE user_id = $1 AND exercise_id = ANY($2) AND NOT is_completed`,
			session.UserID, exerciseIDs); err != nil {
			return fmt.Errorf("deleting placeholder sets: %w", err)
		}
	}
	if _, err := tx.Exec(ctx, `DELETE FROM sets WHERE session_id = $1`, session.ID); err != nil {
		return fmt.Errorf("clearing snapshot sets: %w", err)
	}
	if err := insertSets(ctx, tx, sets); err != nil {
		return err
	}
	if noteAppend != "" {
		if _, err := tx.Exec(ctx, `
			UPDATE workouts SET notes = CASE
				WHEN notes = '' THEN $2
				ELSE notes || E'\n' || $2
			END WHERE id = $1
		`, session.WorkoutID, noteAppend); err != nil {
			return fmt.Errorf("appending workout notes: %w", err)
		}
	}
	if err := upsertSession(ctx, tx, session); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing finalize: %w", err)
	}
	return nil
}

// DeleteSession removes a session row and every set attached to it.
func (db *DB) DeleteSession(ctx context.Context, sessionID uuid.UUID) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning delete tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM sets WHERE session_id = $1`, sessionID); err != nil {
		return fmt.Errorf("deleting session sets: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, sessionID); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing delete: %w", err)
	}
	return nil
}

// QuerySets retrieves a user's persisted sets, optionally filtered by
// exercise name (partial match), newest session first.
func (db *DB) QuerySets(ctx context.Context, userID int, exerciseFilter string, limit int) ([]models.SetRow, error) {
	query := `
		SELECT st.id, st.user_id, st.exercise_id, st.session_id, st.set_number,
		       st.weight_kg, st.reps, st.duration_sec, st.distance_m,
		       st.is_warmup, st.is_completed, st.completed_at
		FROM sets st
		JOIN exercises e ON e.id = st.exercise_id
		WHERE st.user_id = $1`
	args := []any{userID}
	if exerciseFilter != "" {
		query += ` AND e.name ILIKE '%' || $2 || '%'`
		args = append(args, exerciseFilter)
	}
	query += fmt.Sprintf(` ORDER BY st.completed_at DESC NULLS LAST, st.set_number ASC LIMIT %d`, limit)

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying sets: %w", err)
	}
	defer rows.Close()

	var result []models.SetRow
	for rows.Next() {
		var r models.SetRow
		if err := rows.Scan(&r.ID, &r.UserID, &r.ExerciseID, &r.SessionID, &r.SetNumber,
			&r.WeightKg, &r.Reps, &r.DurationSec, &r.DistanceM,
			&r.IsWarmup, &r.IsCompleted, &r.CompletedAt); err != nil {
			return nil, fmt.Errorf("scanning set: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// insertSets batch-inserts set rows within a transaction using a single
// multi-values statement.
func insertSets(ctx context.Context, tx pgx.Tx, rows []models.SetRow) error {
	if len(rows) == 0 {
		return nil
	}

	query := `INSERT INTO sets (id, user_id, exercise_id, session_id, set_number,
		weight_kg, reps, duration_sec, distance_m, is_warmup, is_completed, completed_at) VALUES `
	args := make([]any, 0, len(rows)*12)
	valueStrings := make([]string, 0, len(rows))

	for i, r := range rows {
		base := i * 12
		valueStrings = append(valueStrings, fmt.Sprintf(
			"($%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d)",
			base+1, base+2, base+3, base+4, base+5, base+6,
			base+7, base+8, base+9, base+10, base+11, base+12,
		))
		args = append(args, r.ID, r.UserID, r.ExerciseID, r.SessionID, r.SetNumber,
			r.WeightKg, r.Reps, r.DurationSec, r.DistanceM, r.IsWarmup, r.IsCompleted, r.CompletedAt)
	}

	query += strings.Join(valueStrings, ",")

	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("inserting sets: %w", err)
	}
	return nil
}

// upsertSession writes the session row, replacing an earlier snapshot of
// the same session if one exists.
func upsertSession(ctx context.Context, tx pgx.Tx, s models.SessionRow) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO sessions (id, user_id, workout_id, execution_id, start_time, end_time,
			is_completed, notes, feeling, total_volume, total_sets, total_reps)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		ON CONFLICT (id) DO UPDATE SET
			end_time = EXCLUDED.end_time,
			is_completed = EXCLUDED.is_completed,
			notes = EXCLUDED.notes,
			feeling = EXCLUDED.feeling,
			total_volume = EXCLUDED.total_volume,
			total_sets = EXCLUDED.total_sets,
			total_reps = EXCLUDED.total_reps
	`, s.ID, s.UserID, s.WorkoutID, s.ExecutionID, s.StartTime, s.EndTime,
		s.IsCompleted, s.Notes, s.Feeling, s.TotalVolume, s.TotalSets, s.TotalReps)
	if err != nil {
		return fmt.Errorf("upserting session: %w", err)
	}
	return nil
}
