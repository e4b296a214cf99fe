package storage

import (
	"context"
	"fmt"
	"time"
)

// WeightEntry is one body-weight measurement.
type WeightEntry struct {
	ID        int64     `json:"id"`
	UserID    int       `json:"user_id"`
	WeightKg  float64   `json:"weight_kg"`
	EntryDate time.Time `json:"entry_date"`
}

// NutritionEntry is one logged nutrition day total.
type NutritionEntry struct {
	ID        int64     `json:"id"`
	UserID    int       `json:"user_id"`
	Calories  float64   `json:"calories"`
	ProteinG  float64   `json:"protein_g"`
	FatG      float64   `json:"fat_g"`
	CarbsG    float64   `json:"carbs_g"`
	EntryDate time.Time `json:"entry_date"`
}

// InsertWeightEntry records a body-weight measurement.
func (db *DB) InsertWeightEntry(ctx context.Context, userID int, weightKg float64, date time.Time) error {
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO weight_entries (user_id, weight_kg, entry_date) VALUES ($1, $2, $3)`,
		userID, weightKg, date)
	if err != nil {
		return fmt.Errorf("inserting weight entry: %w", err)
	}
	return nil
}

// QueryWeightEntries returns a user's weight history, newest first.
func (db *DB) QueryWeightEntries(ctx context.Context, userID, limit int) ([]WeightEntry, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, user_id, weight_kg, entry_date
		FROM weight_entries WHERE user_id = $1
		ORDER BY entry_date DESC LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying weight entries: %w", err)
	}
	defer rows.Close()

	var result []WeightEntry
	for rows.Next() {
		var e WeightEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.WeightKg, &e.EntryDate); err != nil {
			return nil, fmt.Errorf("scanning weight entry: %w", err)
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

// InsertNutritionEntry records a day's nutrition totals.
func (db *DB) InsertNutritionEntry(ctx context.Context, e NutritionEntry) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO nutrition_entries (user_id, calories, protein_g, fat_g, carbs_g, entry_date)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, e.UserID, e.Calories, e.ProteinG, e.FatG, e.CarbsG, e.EntryDate)
	if err != nil {
		return fmt.Errorf("inserting nutrition entry: %w", err)
	}
	return nil
}
