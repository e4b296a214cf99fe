package healthexport

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/liftlog/internal/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestSendSuccess verifies the summary arrives as JSON on the first attempt.
func TestSendSuccess(t *testing.T) {
	var got models.SessionSummary
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decoding body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, testLogger())
	summary := models.SessionSummary{
		SessionID:   uuid.New(),
		WorkoutName: "Leg Day",
		TotalVolume: 3100,
		TotalSets:   9,
	}
	if err := c.send(summary); err != nil {
		t.Fatalf("send: %v", err)
	}
	if got.WorkoutName != "Leg Day" || got.TotalSets != 9 {
		t.Errorf("server received %+v", got)
	}
}

// TestSendRetriesThenSucceeds verifies transient server errors are retried.
func TestSendRetriesThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, testLogger())
	if err := c.send(models.SessionSummary{SessionID: uuid.New()}); err != nil {
		t.Fatalf("send: %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", calls.Load())
	}
}

// TestSendGivesUpAfterThreeAttempts verifies a persistently failing endpoint
// produces an error instead of retrying forever.
func TestSendGivesUpAfterThreeAttempts(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, testLogger())
	if err := c.send(models.SessionSummary{SessionID: uuid.New()}); err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", calls.Load())
	}
}

// TestExportDoesNotBlock verifies the async entry point returns before
// delivery finishes.
func TestExportDoesNotBlock(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()
	defer close(release)

	c := NewClient(srv.URL, testLogger())
	done := make(chan struct{})
	go func() {
		c.Export(models.SessionSummary{SessionID: uuid.New()})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Export blocked on delivery")
	}
}
