package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/meltforce/liftlog/internal/models"
)

// GetProgram retrieves a program template with its workouts and their
// exercise slots, in program order (week, then day).
func (db *DB) GetProgram(ctx context.Context, programID uuid.UUID) (*models.Program, error) {
	var p models.Program
	err := db.Pool.QueryRow(ctx,
		`SELECT id, name, weeks, days_per_week FROM programs WHERE id = $1`, programID,
	).Scan(&p.ID, &p.Name, &p.Weeks, &p.DaysPerWeek)
	if err != nil {
		return nil, fmt.Errorf("querying program: %w", err)
	}

	rows, err := db.Pool.Query(ctx, `
		SELECT id, program_id, name, notes, week, day
		FROM workouts WHERE program_id = $1
		ORDER BY week ASC, day ASC
	`, programID)
	if err != nil {
		return nil, fmt.Errorf("querying program workouts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var w models.Workout
		if err := rows.Scan(&w.ID, &w.ProgramID, &w.Name, &w.Notes, &w.Week, &w.Day); err != nil {
			return nil, fmt.Errorf("scanning workout: %w", err)
		}
		p.Workouts = append(p.Workouts, w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range p.Workouts {
		exercises, err := db.workoutExercises(ctx, p.Workouts[i].ID)
		if err != nil {
			return nil, err
		}
		p.Workouts[i].Exercises = exercises
	}
	return &p, nil
}

// GetWorkout retrieves a single workout template with its exercises.
func (db *DB) GetWorkout(ctx context.Context, workoutID uuid.UUID) (*models.Workout, error) {
	var w models.Workout
	err := db.Pool.QueryRow(ctx,
		`SELECT id, program_id, name, notes, week, day FROM workouts WHERE id = $1`, workoutID,
	).Scan(&w.ID, &w.ProgramID, &w.Name, &w.Notes, &w.Week, &w.Day)
	if err != nil {
		return nil, fmt.Errorf("querying workout: %w", err)
	}
	exercises, err := db.workoutExercises(ctx, workoutID)
	if err != nil {
		return nil, err
	}
	w.Exercises = exercises
	return &w, nil
}

func (db *DB) workoutExercises(ctx context.Context, workoutID uuid.UUID) ([]models.WorkoutExercise, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT we.exercise_id, e.name, we.target_sets
		FROM workout_exercises we
		JOIN exercises e ON e.id = we.exercise_id
		WHERE we.workout_id = $1
		ORDER BY we.position ASC
	`, workoutID)
	if err != nil {
		return nil, fmt.Errorf("querying workout exercises: %w", err)
	}
	defer rows.Close()

	var result []models.WorkoutExercise
	for rows.Next() {
		var we models.WorkoutExercise
		if err := rows.Scan(&we.ExerciseID, &we.Name, &we.TargetSets); err != nil {
			return nil, fmt.Errorf("scanning workout exercise: %w", err)
		}
		result = append(result, we)
	}
	return result, rows.Err()
}

// InsertExecution persists a newly started program execution.
func (db *DB) InsertExecution(ctx context.Context, row models.ExecutionRow) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO program_executions (id, user_id, program_id, current_week, current_day,
			completed_workouts, is_paused, start_date)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, row.ID, row.UserID, row.ProgramID, row.CurrentWeek, row.CurrentDay,
		row.CompletedWorkouts, row.IsPaused, row.StartDate)
	if err != nil {
		return fmt.Errorf("inserting execution: %w", err)
	}
	return nil
}

// UpdateExecution saves an execution's cursor, completions, and pause
// state.
func (db *DB) UpdateExecution(ctx context.Context, row models.ExecutionRow) error {
	_, err := db.Pool.Exec(ctx, `
		UPDATE program_executions SET
			current_week = $2, current_day = $3, completed_workouts = $4, is_paused = $5
		WHERE id = $1
	`, row.ID, row.CurrentWeek, row.CurrentDay, row.CompletedWorkouts, row.IsPaused)
	if err != nil {
		return fmt.Errorf("updating execution: %w", err)
	}
	return nil
}

// GetActiveExecution returns the user's most recently started execution
// that has not completed every workout, or nil if none.
func (db *DB) GetActiveExecution(ctx context.Context, userID int) (*models.ExecutionRow, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT pe.id, pe.user_id, pe.program_id, pe.current_week, pe.current_day,
		       pe.completed_workouts, pe.is_paused, pe.start_date
		FROM program_executions pe
		JOIN programs p ON p.id = pe.program_id
		WHERE pe.user_id = $1
		  AND cardinality(pe.completed_workouts) < p.weeks * p.days_per_week
		ORDER BY pe.start_date DESC
		LIMIT 1
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying active execution: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	var row models.ExecutionRow
	if err := rows.Scan(&row.ID, &row.UserID, &row.ProgramID, &row.CurrentWeek, &row.CurrentDay,
		&row.CompletedWorkouts, &row.IsPaused, &row.StartDate); err != nil {
		return nil, fmt.Errorf("scanning execution: %w", err)
	}
	return &row, rows.Err()
}

// CountCompletedExecutions counts executions where every program workout
// is done. Feeds the program-finisher achievement.
func (db *DB) CountCompletedExecutions(ctx context.Context, userID int) (int64, error) {
	var n int64
	err := db.Pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM program_executions pe
		JOIN programs p ON p.id = pe.program_id
		WHERE pe.user_id = $1
		  AND cardinality(pe.completed_workouts) >= p.weeks * p.days_per_week
	`, userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting completed executions: %w", err)
	}
	return n, nil
}
