// Package achievements computes progress toward a fixed catalog of
// milestones. Evaluation is pure and runs fresh from raw history counts
// on every call; progress is never stored.
package achievements

// ID is the stable dispatch key for an achievement rule. Rules are keyed
// by ID, never by display title: titles are localized and free to change
// without silently detaching the rule.
type ID string

const (
	FirstWorkout    ID = "first_workout"
	Workouts10      ID = "workouts_10"
	Workouts50      ID = "workouts_50"
	Workouts100     ID = "workouts_100"
	Volume10Tonnes  ID = "volume_10_tonnes"
	Volume100Tonnes ID = "volume_100_tonnes"
	PRHunter        ID = "pr_hunter"
	WeightWeek      ID = "weight_week"
	WeightMonth     ID = "weight_month"
	NutritionWeek   ID = "nutrition_week"
	ProgramFinisher ID = "program_finisher"
)

// Definition is one catalog entry: identity, display copy, and target.
type Definition struct {
	ID          ID      `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Target      float64 `json:"target"`
}

// Achievement is a catalog entry with evaluated progress.
type Achievement struct {
	Definition
	Progress    float64 `json:"progress"`
	IsCompleted bool    `json:"is_completed"`
}

// Stats are the raw counts achievements are computed from, derived from
// the user's full history.
type Stats struct {
	Workouts          int
	TotalVolumeKg     float64
	PersonalRecords   int
	WeightEntries     int
	NutritionEntries  int
	ProgramsCompleted int
}

// rules maps each achievement ID to its raw progress measure. Clamping
// to the target happens in Evaluate.
var rules = map[ID]func(Stats) float64{
	FirstWorkout:    func(s Stats) float64 { return float64(s.Workouts) },
	Workouts10:      func(s Stats) float64 { return float64(s.Workouts) },
	Workouts50:      func(s Stats) float64 { return float64(s.Workouts) },
	Workouts100:     func(s Stats) float64 { return float64(s.Workouts) },
	Volume10Tonnes:  func(s Stats) float64 { return s.TotalVolumeKg },
	Volume100Tonnes: func(s Stats) float64 { return s.TotalVolumeKg },
	PRHunter:        func(s Stats) float64 { return float64(s.PersonalRecords) },
	WeightWeek:      func(s Stats) float64 { return float64(s.WeightEntries) },
	WeightMonth:     func(s Stats) float64 { return float64(s.WeightEntries) },
	NutritionWeek:   func(s Stats) float64 { return float64(s.NutritionEntries) },
	ProgramFinisher: func(s Stats) float64 { return float64(s.ProgramsCompleted) },
}

// DefaultCatalog is the fixed achievement catalog.
func DefaultCatalog() []Definition {
	return []Definition{
		{FirstWorkout, "First Steps", "Complete your first workout", "workouts", 1},
		{Workouts10, "Regular", "Complete 10 workouts", "workouts", 10},
		{Workouts50, "Dedicated", "Complete 50 workouts", "workouts", 50},
		{Workouts100, "Centurion", "Complete 100 workouts", "workouts", 100},
		{Volume10Tonnes, "Ten Tonnes", "Lift 10,000 kg of total volume", "volume", 10000},
		{Volume100Tonnes, "Heavy Mover", "Lift 100,000 kg of total volume", "volume", 100000},
		{PRHunter, "PR Hunter", "Set 5 personal records", "records", 5},
		{WeightWeek, "On the Scale", "Log your weight 7 times", "tracking", 7},
		{WeightMonth, "Trend Watcher", "Log your weight 30 times", "tracking", 30},
		{NutritionWeek, "Fuel Log", "Log nutrition 7 days", "tracking", 7},
		{ProgramFinisher, "Program Finisher", "Complete a full training program", "programs", 1},
	}
}

// Evaluate computes progress for every catalog entry against the given
// stats. Progress is clamped to [0, target]; completion is progress
// reaching the target. Entries with no registered rule report zero
// progress rather than being dropped.
func Evaluate(catalog []Definition, stats Stats) []Achievement {
	out := make([]Achievement, 0, len(catalog))
	for _, def := range catalog {
		var raw float64
		if rule, ok := rules[def.ID]; ok {
			raw = rule(stats)
		}
		if raw < 0 {
			raw = 0
		}
		if raw > def.Target {
			raw = def.Target
		}
		out = append(out, Achievement{
			Definition:  def,
			Progress:    raw,
			IsCompleted: raw >= def.Target,
		})
	}
	return out
}
