package storage

import (
	"context"
	"fmt"

	"github.com/meltforce/liftlog/internal/models"
)

// GetOrCreateUser finds or creates a user by Tailscale login name.
// Returns the user ID. Updates last_seen and display_name on each call.
func (db *DB) GetOrCreateUser(ctx context.Context, login, displayName string) (int, error) {
	var id int
	err := db.Pool.QueryRow(ctx, `
		INSERT INTO users (login, display_name)
		VALUES ($1, $2)
		ON CONFLICT (login) DO UPDATE
			SET last_seen = NOW(), display_name = COALESCE(NULLIF($2, ''), users.display_name)
		RETURNING id
	`, login, displayName).Scan(&id)
	return id, err
}

// GetProfile loads a user's anthropometric data, goal selections, and
// stored one-rep maxes. A user with no saved profile gets zero values.
func (db *DB) GetProfile(ctx context.Context, userID int) (models.UserProfile, error) {
	p := models.UserProfile{UserID: userID}
	err := db.Pool.QueryRow(ctx, `
		SELECT COALESCE(gender, ''), COALESCE(age, 0), COALESCE(height_cm, 0),
		       COALESCE(weight_kg, 0), COALESCE(activity_level, ''), COALESCE(goal, ''),
		       COALESCE(bench_press_one_rm, 0), COALESCE(squat_one_rm, 0),
		       COALESCE(deadlift_one_rm, 0), COALESCE(overhead_press_one_rm, 0),
		       COALESCE(pull_up_one_rm, 0)
		FROM users WHERE id = $1
	`, userID).Scan(&p.Gender, &p.Age, &p.HeightCm, &p.WeightKg, &p.ActivityLevel, &p.Goal,
		&p.BenchPressOneRM, &p.SquatOneRM, &p.DeadliftOneRM, &p.OverheadPressOneRM, &p.PullUpOneRM)
	if err != nil {
		return p, fmt.Errorf("querying profile: %w", err)
	}
	return p, nil
}

// UpdateProfile saves a user's profile fields and one-rep maxes.
func (db *DB) UpdateProfile(ctx context.Context, p models.UserProfile) error {
	_, err := db.Pool.Exec(ctx, `
		UPDATE users SET
			gender = $2, age = $3, height_cm = $4, weight_kg = $5,
			activity_level = $6, goal = $7,
			bench_press_one_rm = $8, squat_one_rm = $9, deadlift_one_rm = $10,
			overhead_press_one_rm = $11, pull_up_one_rm = $12
		WHERE id = $1
	`, p.UserID, p.Gender, p.Age, p.HeightCm, p.WeightKg, p.ActivityLevel, p.Goal,
		p.BenchPressOneRM, p.SquatOneRM, p.DeadliftOneRM, p.OverheadPressOneRM, p.PullUpOneRM)
	if err != nil {
		return fmt.Errorf("updating profile: %w", err)
	}
	return nil
}
