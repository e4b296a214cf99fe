package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/meltforce/liftlog/internal/models"
)

// GetOrCreateExercise resolves an exercise definition by name,
// case-insensitively, creating it if missing.
func (db *DB) GetOrCreateExercise(ctx context.Context, name string) (models.Exercise, error) {
	var ex models.Exercise
	err := db.Pool.QueryRow(ctx,
		`SELECT id, name FROM exercises WHERE LOWER(name) = LOWER($1)`, name,
	).Scan(&ex.ID, &ex.Name)
	if err == nil {
		return ex, nil
	}

	ex = models.Exercise{ID: uuid.New(), Name: name}
	_, err = db.Pool.Exec(ctx,
		`INSERT INTO exercises (id, name) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		ex.ID, ex.Name)
	if err != nil {
		return models.Exercise{}, fmt.Errorf("creating exercise %q: %w", name, err)
	}

	// A concurrent insert may have won the conflict; read back the row.
	err = db.Pool.QueryRow(ctx,
		`SELECT id, name FROM exercises WHERE LOWER(name) = LOWER($1)`, name,
	).Scan(&ex.ID, &ex.Name)
	if err != nil {
		return models.Exercise{}, fmt.Errorf("reading exercise %q: %w", name, err)
	}
	return ex, nil
}

// ListExercises returns all exercise definitions ordered by name.
func (db *DB) ListExercises(ctx context.Context) ([]models.Exercise, error) {
	rows, err := db.Pool.Query(ctx, `SELECT id, name FROM exercises ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying exercises: %w", err)
	}
	defer rows.Close()

	var result []models.Exercise
	for rows.Next() {
		var ex models.Exercise
		if err := rows.Scan(&ex.ID, &ex.Name); err != nil {
			return nil, fmt.Errorf("scanning exercise: %w", err)
		}
		result = append(result, ex)
	}
	return result, rows.Err()
}
