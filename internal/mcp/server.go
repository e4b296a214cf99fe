package mcp

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

type contextKey int

const userIDKey contextKey = iota

// UserIDFromContext extracts the user ID injected by the transport layer.
func UserIDFromContext(ctx context.Context) int {
	if id, ok := ctx.Value(userIDKey).(int); ok {
		return id
	}
	return 1
}

// WithUserID returns a context with the given user ID.
func WithUserID(ctx context.Context, userID int) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("LiftLog", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("LiftLog training data server. Query workout history, sets, personal records, program progress, achievements, and nutrition targets. All data is scoped to the authenticated user."),
	)

	h := &handlers{ds: ds, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolGetTrainingHistory, Handler: h.getTrainingHistory},
		server.ServerTool{Tool: toolGetSets, Handler: h.getSets},
		server.ServerTool{Tool: toolGetPersonalRecords, Handler: h.getPersonalRecords},
		server.ServerTool{Tool: toolGetProgramProgress, Handler: h.getProgramProgress},
		server.ServerTool{Tool: toolGetAchievements, Handler: h.getAchievements},
		server.ServerTool{Tool: toolGetTrainingStats, Handler: h.getTrainingStats},
		server.ServerTool{Tool: toolEstimateOneRM, Handler: h.estimateOneRM},
		server.ServerTool{Tool: toolGetNutritionTargets, Handler: h.getNutritionTargets},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resRecentSessions, Handler: h.recentSessions},
		server.ServerResource{Resource: resTrainingStats, Handler: h.trainingStats},
		server.ServerResource{Resource: resExerciseCatalog, Handler: h.exerciseCatalog},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
}

// --- Resource definitions ---

var resRecentSessions = mcp.NewResource(
	"liftlog://recent_sessions",
	"Recent Sessions",
	mcp.WithResourceDescription("Completed workout sessions from the last 14 days"),
	mcp.WithMIMEType("application/json"),
)

var resTrainingStats = mcp.NewResource(
	"liftlog://training_stats",
	"Training Stats",
	mcp.WithResourceDescription("Lifetime aggregate statistics: sessions, sets, volume, personal records"),
	mcp.WithMIMEType("application/json"),
)

var resExerciseCatalog = mcp.NewResource(
	"liftlog://exercise_catalog",
	"Exercise Catalog",
	mcp.WithResourceDescription("All known exercise definitions"),
	mcp.WithMIMEType("application/json"),
)
