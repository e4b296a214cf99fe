package achievements

import "testing"

// TestEvaluateClamping verifies spec property 3: progress is clamped to
// [0, target] and completion holds exactly when the raw count reaches or
// exceeds the target.
func TestEvaluateClamping(t *testing.T) {
	stats := Stats{Workouts: 999, TotalVolumeKg: -50}
	results := Evaluate(DefaultCatalog(), stats)

	for _, a := range results {
		if a.Progress < 0 || a.Progress > a.Target {
			t.Errorf("%s: progress %v outside [0, %v]", a.ID, a.Progress, a.Target)
		}
		if a.IsCompleted != (a.Progress >= a.Target) {
			t.Errorf("%s: completed = %v with progress %v/%v", a.ID, a.IsCompleted, a.Progress, a.Target)
		}
	}
}

// TestEvaluateProgression walks one achievement through not-started,
// partial, and completed states.
func TestEvaluateProgression(t *testing.T) {
	catalog := []Definition{{Workouts10, "Regular", "", "workouts", 10}}

	tests := []struct {
		workouts  int
		progress  float64
		completed bool
	}{
		{0, 0, false},
		{4, 4, false},
		{10, 10, true},
		{25, 10, true}, // clamped at target once passed
	}
	for _, tt := range tests {
		got := Evaluate(catalog, Stats{Workouts: tt.workouts})
		if len(got) != 1 {
			t.Fatalf("results = %d, want 1", len(got))
		}
		if got[0].Progress != tt.progress || got[0].IsCompleted != tt.completed {
			t.Errorf("workouts=%d: progress=%v completed=%v, want %v/%v",
				tt.workouts, got[0].Progress, got[0].IsCompleted, tt.progress, tt.completed)
		}
	}
}

// TestEvaluateDispatchByID verifies dispatch is keyed by the stable ID:
// a retitled catalog entry still evaluates through its rule.
func TestEvaluateDispatchByID(t *testing.T) {
	catalog := []Definition{{PRHunter, "Cacciatore di Record", "", "records", 5}}
	got := Evaluate(catalog, Stats{PersonalRecords: 3})
	if got[0].Progress != 3 {
		t.Errorf("progress = %v, want 3 (rule must key on ID, not title)", got[0].Progress)
	}
}

// TestEvaluateUnknownID verifies catalog entries without a rule report
// zero progress instead of being dropped or panicking.
func TestEvaluateUnknownID(t *testing.T) {
	catalog := []Definition{{ID("future_badge"), "Future", "", "misc", 3}}
	got := Evaluate(catalog, Stats{Workouts: 100})
	if len(got) != 1 {
		t.Fatalf("results = %d, want 1", len(got))
	}
	if got[0].Progress != 0 || got[0].IsCompleted {
		t.Errorf("unknown rule: progress=%v completed=%v, want 0/false", got[0].Progress, got[0].IsCompleted)
	}
}

// TestEvaluateNoSideEffects verifies evaluation is pure: repeated calls
// with the same stats produce identical results.
func TestEvaluateNoSideEffects(t *testing.T) {
	stats := Stats{Workouts: 12, TotalVolumeKg: 15000, PersonalRecords: 2}
	a := Evaluate(DefaultCatalog(), stats)
	b := Evaluate(DefaultCatalog(), stats)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("evaluation not stable at %s", a[i].ID)
		}
	}
}
