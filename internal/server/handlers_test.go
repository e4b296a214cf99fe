package server

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// TestHandleOneRMEpley verifies the estimation endpoint computes the Epley
// formula and accepts comma-decimal input.
func TestHandleOneRMEpley(t *testing.T) {
	s := &Server{}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/tools/onerm",
		strings.NewReader(`{"weight":"100,0","reps":5,"formula":"epley"}`))
	rec := httptest.NewRecorder()
	s.handleOneRM(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		OneRM float64 `json:"one_rm"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if math.Abs(resp.OneRM-116.666) > 0.01 {
		t.Errorf("one_rm = %f, want ~116.67", resp.OneRM)
	}
}

// TestHandleOneRMDefaultsToEpley verifies an omitted formula falls back to Epley.
func TestHandleOneRMDefaultsToEpley(t *testing.T) {
	s := &Server{}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/tools/onerm",
		strings.NewReader(`{"weight":"60","reps":1}`))
	rec := httptest.NewRecorder()
	s.handleOneRM(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		OneRM   float64 `json:"one_rm"`
		Formula string  `json:"formula"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Formula != "epley" {
		t.Errorf("formula = %q, want epley", resp.Formula)
	}
}

// TestHandleOneRMBadWeight verifies malformed weight input gets a 400, not a panic.
func TestHandleOneRMBadWeight(t *testing.T) {
	s := &Server{}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/tools/onerm",
		strings.NewReader(`{"weight":"abc","reps":5}`))
	rec := httptest.NewRecorder()
	s.handleOneRM(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

// TestHandleBodyFatOutOfDomain verifies measurements that break the Navy
// formula's log domain produce a 422 rather than NaN in the response.
func TestHandleBodyFatOutOfDomain(t *testing.T) {
	s := &Server{}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/tools/bodyfat",
		strings.NewReader(`{"gender":"male","height_cm":180,"neck_cm":50,"waist_cm":50}`))
	rec := httptest.NewRecorder()
	s.handleBodyFat(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rec.Code)
	}
}

// TestHandleBodyFatValid verifies a plausible male measurement returns a
// percentage inside the clamp range.
func TestHandleBodyFatValid(t *testing.T) {
	s := &Server{}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/tools/bodyfat",
		strings.NewReader(`{"gender":"male","height_cm":180,"neck_cm":38,"waist_cm":85}`))
	rec := httptest.NewRecorder()
	s.handleBodyFat(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Pct float64 `json:"body_fat_percent"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Pct < 0 || resp.Pct > 50 {
		t.Errorf("body_fat_percent = %f, want within [0, 50]", resp.Pct)
	}
}

// TestParseTimeRangeDefaults verifies the 30-day default window.
func TestParseTimeRangeDefaults(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/sessions", nil)
	start, end, err := parseTimeRange(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	window := end.Sub(start)
	if window < 29*24*time.Hour || window > 31*24*time.Hour {
		t.Errorf("default window = %v, want ~30 days", window)
	}
}

// TestParseTimeRangeDateOnly verifies date-only params parse, with the end
// date extended to end of day.
func TestParseTimeRangeDateOnly(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/sessions?start=2026-01-01&end=2026-01-31", nil)
	start, end, err := parseTimeRange(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if start.Format("2006-01-02") != "2026-01-01" {
		t.Errorf("start = %v", start)
	}
	if end.Format("2006-01-02") != "2026-02-01" {
		t.Errorf("end = %v, want extended to 2026-02-01 00:00", end)
	}
}

// TestParseTimeRangeBadInput verifies garbage params error instead of
// silently defaulting.
func TestParseTimeRangeBadInput(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/sessions?start=notadate", nil)
	if _, _, err := parseTimeRange(req); err == nil {
		t.Fatal("expected error for malformed start")
	}
}

// TestQueryLimit verifies the limit param parses with a default fallback.
func TestQueryLimit(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?limit=10", nil)
	if got := queryLimit(req, 50); got != 10 {
		t.Errorf("queryLimit = %d, want 10", got)
	}
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	if got := queryLimit(req, 50); got != 50 {
		t.Errorf("queryLimit default = %d, want 50", got)
	}
	req = httptest.NewRequest(http.MethodGet, "/?limit=-3", nil)
	if got := queryLimit(req, 50); got != 50 {
		t.Errorf("queryLimit negative = %d, want default 50", got)
	}
}
