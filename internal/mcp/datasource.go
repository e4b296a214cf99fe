package mcp

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/liftlog/internal/achievements"
	"github.com/meltforce/liftlog/internal/models"
	"github.com/meltforce/liftlog/internal/storage"
)

// DataSource abstracts the data layer for MCP tools, satisfied by
// *storage.DB. Tests substitute an in-memory fake.
type DataSource interface {
	QuerySessions(ctx context.Context, userID int, start, end time.Time) ([]models.SessionRow, error)
	QuerySets(ctx context.Context, userID int, exerciseFilter string, limit int) ([]models.SetRow, error)
	QueryPersonalRecords(ctx context.Context, userID, limit int) ([]storage.PersonalRecordRow, error)
	GetActiveExecution(ctx context.Context, userID int) (*models.ExecutionRow, error)
	GetProgram(ctx context.Context, programID uuid.UUID) (*models.Program, error)
	GetTrainingStats(ctx context.Context, userID int) (*storage.TrainingStats, error)
	GetAchievementStats(ctx context.Context, userID int) (achievements.Stats, error)
	GetProfile(ctx context.Context, userID int) (models.UserProfile, error)
	ListExercises(ctx context.Context) ([]models.Exercise, error)
}

// Compile-time check: *storage.DB satisfies DataSource.
var _ DataSource = (*storage.DB)(nil)
