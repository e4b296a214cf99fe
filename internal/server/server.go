package server

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/meltforce/liftlog/internal/activity"
	"github.com/meltforce/liftlog/internal/healthexport"
	"github.com/meltforce/liftlog/internal/storage"
	"github.com/meltforce/liftlog/internal/workout"
)

// UserResolver maps an incoming request to a stable login and display
// name. The tsnet deployment resolves via WhoIs; plain deployments use a
// static local identity.
type UserResolver func(r *http.Request) (login, displayName string, err error)

// LocalResolver is the identity used when the server runs without a
// tailnet: every request maps to a single local user.
func LocalResolver(r *http.Request) (string, string, error) {
	return "local", "Local User", nil
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	db       *storage.DB
	sink     *activity.Sink
	exporter *healthexport.Client
	log      *slog.Logger
	apiKey   string
	resolver UserResolver
	router   chi.Router

	mu     sync.Mutex
	coords map[int]*workout.Coordinator
}

// New creates a new Server with all routes configured. exporter may be
// nil when health export is disabled.
func New(db *storage.DB, sink *activity.Sink, exporter *healthexport.Client, apiKey string, resolver UserResolver, log *slog.Logger) *Server {
	s := &Server{
		db:       db,
		sink:     sink,
		exporter: exporter,
		log:      log,
		apiKey:   apiKey,
		resolver: resolver,
		router:   chi.NewRouter(),
		coords:   make(map[int]*workout.Coordinator),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// coordinator returns the per-user session coordinator, creating it on
// first use. One coordinator per user means at most one live session
// per user.
func (s *Server) coordinator(userID int) *workout.Coordinator {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.coords[userID]
	if !ok {
		c = workout.NewCoordinator(s.db, s.log)
		s.coords[userID] = c
	}
	return c
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	// Device ingest endpoints (API key required, no user session)
	s.router.Route("/api/v1/ingest", func(r chi.Router) {
		r.Use(APIKeyAuth(s.apiKey))
		r.Use(Identity(s.resolver, s.db, s.log))
		r.Post("/weight", s.handleIngestWeight)
		r.Post("/nutrition", s.handleIngestNutrition)
	})

	// App API (identity via resolver — tsnet gates network access)
	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(Identity(s.resolver, s.db, s.log))

		r.Get("/profile", s.handleGetProfile)
		r.Put("/profile", s.handleUpdateProfile)

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/start", s.handleStartSession)
			r.Get("/active", s.handleActiveSession)
			r.Post("/exercises", s.handleAddExercise)
			r.Post("/sets", s.handleAddSet)
			r.Post("/sets/update", s.handleUpdateSet)
			r.Post("/sets/complete", s.handleCompleteSet)
			r.Post("/finish", s.handleFinishSession)
			r.Post("/discard", s.handleDiscardSession)
			r.Get("/", s.handleQuerySessions)
			r.Get("/{id}", s.handleGetSession)
		})

		r.Route("/programs", func(r chi.Router) {
			r.Get("/current", s.handleCurrentExecution)
			r.Post("/{id}/start", s.handleStartProgram)
			r.Post("/pause", s.handlePauseProgram)
			r.Post("/unpause", s.handleUnpauseProgram)
		})

		r.Get("/records", s.handleQueryRecords)
		r.Get("/achievements", s.handleAchievements)
		r.Get("/stats", s.handleStats)
		r.Get("/activity", s.handleActivity)
		r.Get("/exercises", s.handleListExercises)

		r.Get("/nutrition/targets", s.handleNutritionTargets)
		r.Post("/tools/onerm", s.handleOneRM)
		r.Post("/tools/bodyfat", s.handleBodyFat)

		r.Get("/weight", s.handleQueryWeight)
		r.Post("/weight", s.handleAddWeight)
		r.Post("/nutrition", s.handleAddNutrition)
	})
}
