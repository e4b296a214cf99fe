package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// importWorkoutID is the deterministic ID of the synthetic workout that
// imported historical sessions attach to. Derived, not random, so
// repeated imports share one row.
var importWorkoutID = uuid.NewSHA1(uuid.NameSpaceOID, []byte("liftlog/imported-history"))

// EnsureImportWorkout creates the synthetic "Imported history" workout if
// it does not exist and returns its ID.
func (db *DB) EnsureImportWorkout(ctx context.Context) (uuid.UUID, error) {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO workouts (id, name, notes)
		VALUES ($1, 'Imported history', '')
		ON CONFLICT (id) DO NOTHING
	`, importWorkoutID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("ensuring import workout: %w", err)
	}
	return importWorkoutID, nil
}
