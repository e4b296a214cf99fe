package workout

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/liftlog/internal/models"
)

var (
	// ErrSessionActive is returned when starting a session while one is
	// already in progress. Only one live session per coordinator.
	ErrSessionActive = errors.New("a session is already in progress")
	// ErrNoActiveSession is returned by operations that need a live session.
	ErrNoActiveSession = errors.New("no session in progress")
	// ErrConfirmationRequired is returned when discarding would lose
	// completed sets and the caller has not confirmed.
	ErrConfirmationRequired = errors.New("session has completed sets; confirmation required to discard")
)

// snapshot is an immutable render of the live session, built under the
// coordinator lock at mutation time and handed to the debounced writer.
type snapshot struct {
	row  models.SessionRow
	sets []models.SetRow
}

// Coordinator owns the single optional active session and the debounced
// snapshot save. Every touch of the live session goes through the
// coordinator lock (Start, View, Update, Finish, Discard); the timer
// goroutine never sees the session, only a snapshot already rendered by
// the mutating caller. That is what keeps the debounced save from
// racing concurrent request handlers.
type Coordinator struct {
	store Store
	log   *slog.Logger

	// saveDebounce is the snapshot quiet period; tests shorten it.
	saveDebounce time.Duration

	mu        sync.Mutex
	active    *Session
	debouncer *Debouncer

	pending atomic.Pointer[snapshot]
}

// NewCoordinator creates a coordinator with the default save debounce.
func NewCoordinator(store Store, log *slog.Logger) *Coordinator {
	return &Coordinator{store: store, log: log, saveDebounce: DefaultSaveDebounce}
}

// Start begins a session against the workout template. Fails with
// ErrSessionActive if one is already live.
func (c *Coordinator) Start(w models.Workout, profile models.UserProfile, executionID *uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active != nil && c.active.State() == StateInProgress {
		return ErrSessionActive
	}

	s := NewSession(w, profile, executionID, c.store, c.log)
	c.active = s
	c.debouncer = NewDebouncer(c.saveDebounce, c.writePending)
	c.log.Info("session started", "session_id", s.ID, "workout", w.Name)
	return nil
}

// View runs fn read-only against the live session under the session
// lock. Returns ErrNoActiveSession when none is in progress.
func (c *Coordinator) View(fn func(*Session)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == nil || c.active.State() != StateInProgress {
		return ErrNoActiveSession
	}
	fn(c.active)
	return nil
}

// Update runs fn against the live session under the session lock, then
// renders the snapshot rows synchronously and schedules the debounced
// write. Rapid updates coalesce: each replaces the pending snapshot and
// restarts the quiet period, and only the latest render is written.
func (c *Coordinator) Update(fn func(*Session) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == nil || c.active.State() != StateInProgress {
		return ErrNoActiveSession
	}
	if err := fn(c.active); err != nil {
		return err
	}

	row, sets := c.active.snapshotRows()
	c.pending.Store(&snapshot{row: row, sets: sets})
	c.debouncer.Trigger()
	return nil
}

// Finish finalizes the active session. The debounced save is cancelled
// and any in-flight snapshot write joined before finalize commits: a
// stale snapshot landing afterward would resurrect the session as
// in-progress. On store failure the session stays active for retry.
func (c *Coordinator) Finish(ctx context.Context, notes string, feeling int) (*Session, []models.PersonalRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.active
	if s == nil || s.State() != StateInProgress {
		return nil, nil, ErrNoActiveSession
	}
	c.pending.Store(nil)
	c.debouncer.Cancel()

	prs, err := s.Finalize(ctx, notes, feeling)
	if err != nil {
		return nil, nil, err
	}

	c.active = nil
	c.debouncer = nil
	return s, prs, nil
}

// Discard cancels the active session. When the session holds at least
// one valid completed set, confirmed must be true — a session with real
// data is never silently thrown away.
func (c *Coordinator) Discard(ctx context.Context, confirmed bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.active
	if s == nil || s.State() != StateInProgress {
		return ErrNoActiveSession
	}
	if s.HasValidCompletedSets() && !confirmed {
		return ErrConfirmationRequired
	}
	c.pending.Store(nil)
	c.debouncer.Cancel()

	if err := s.Discard(ctx); err != nil {
		return err
	}

	c.active = nil
	c.debouncer = nil
	return nil
}

// writePending runs on the debouncer goroutine. It deliberately takes
// no coordinator lock: the payload was rendered by the mutator, so the
// only shared state here is the pending pointer.
func (c *Coordinator) writePending() {
	snap := c.pending.Swap(nil)
	if snap == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := c.store.SaveSnapshot(ctx, snap.row, snap.sets); err != nil {
		// Best effort: the in-memory session is still authoritative and
		// finalize does its own synchronous save.
		c.log.Warn("session snapshot failed", "session_id", snap.row.ID, "error", err)
	}
}
