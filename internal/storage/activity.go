package storage

import (
	"context"
	"fmt"
	"time"
)

// ActivityEvent is one entry in the activity log: a one-way notification
// record of something the user accomplished.
type ActivityEvent struct {
	ID        int64     `json:"id"`
	UserID    int       `json:"user_id"`
	Kind      string    `json:"kind"`
	Detail    string    `json:"detail"`
	CreatedAt time.Time `json:"created_at"`
}

// InsertActivityEvent appends an event to the activity log.
func (db *DB) InsertActivityEvent(ctx context.Context, userID int, kind, detail string) error {
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO activity_log (user_id, kind, detail) VALUES ($1, $2, $3)`,
		userID, kind, detail)
	if err != nil {
		return fmt.Errorf("inserting activity event: %w", err)
	}
	return nil
}

// QueryActivityEvents returns a user's activity log, newest first.
func (db *DB) QueryActivityEvents(ctx context.Context, userID, limit int) ([]ActivityEvent, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, user_id, kind, detail, created_at
		FROM activity_log
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying activity log: %w", err)
	}
	defer rows.Close()

	var result []ActivityEvent
	for rows.Next() {
		var e ActivityEvent
		if err := rows.Scan(&e.ID, &e.UserID, &e.Kind, &e.Detail, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning activity event: %w", err)
		}
		result = append(result, e)
	}
	return result, rows.Err()
}
