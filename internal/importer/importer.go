package importer

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/liftlog/internal/formulas"
	"github.com/meltforce/liftlog/internal/models"
)

// Stats tracks import progress.
type Stats struct {
	FilesProcessed  int
	FilesSkipped    int
	FilesErrored    int
	RowsRead        int
	RowsSkipped     int
	SetsImported    int
	SessionsCreated int
}

// Store is the persistence surface the importer writes through,
// satisfied by *storage.DB.
type Store interface {
	GetOrCreateExercise(ctx context.Context, name string) (models.Exercise, error)
	MaxSetNumber(ctx context.Context, userID int, exerciseID uuid.UUID) (int, error)
	EnsureImportWorkout(ctx context.Context) (uuid.UUID, error)
	FinalizeSession(ctx context.Context, session models.SessionRow, sets []models.SetRow, exerciseIDs []uuid.UUID, noteAppend string) error
}

// Importer reads historical training CSVs and inserts one finalized
// session per training day. Expected columns:
//
//	date,exercise,weight_kg,reps,is_warmup
//
// Weight accepts comma or dot decimal separators; exported apps disagree
// on locale formatting.
type Importer struct {
	db     Store
	state  *StateDB
	log    *slog.Logger
	userID int
	dryRun bool
	stats  Stats

	// next set number per exercise, seeded lazily from history
	nextNum map[uuid.UUID]int
}

// New creates a new Importer. state may be nil to disable file-level
// dedup (every file is processed).
func New(db Store, state *StateDB, userID int, log *slog.Logger, dryRun bool) *Importer {
	return &Importer{
		db:      db,
		state:   state,
		log:     log,
		userID:  userID,
		dryRun:  dryRun,
		nextNum: make(map[uuid.UUID]int),
	}
}

// Import processes all .csv files under dir.
func (imp *Importer) Import(ctx context.Context, dir string) (*Stats, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		return &imp.stats, err
	}
	sort.Strings(files)

	for _, f := range files {
		skip, err := imp.alreadyImported(f)
		if err != nil {
			return &imp.stats, err
		}
		if skip {
			imp.log.Info("skipping already-imported file", "file", filepath.Base(f))
			imp.stats.FilesSkipped++
			continue
		}

		if err := imp.importFile(ctx, f); err != nil {
			imp.log.Warn("import failed", "file", filepath.Base(f), "error", err)
			imp.stats.FilesErrored++
			continue
		}
		imp.stats.FilesProcessed++

		if err := imp.markImported(f); err != nil {
			return &imp.stats, err
		}
	}

	return &imp.stats, nil
}

func (imp *Importer) alreadyImported(path string) (bool, error) {
	if imp.state == nil {
		return false, nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	hash, err := HashFile(path)
	if err != nil {
		return false, err
	}
	return imp.state.IsImported(filepath.Base(path), info.Size(), hash)
}

func (imp *Importer) markImported(path string) error {
	if imp.state == nil || imp.dryRun {
		return nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	hash, err := HashFile(path)
	if err != nil {
		return err
	}
	return imp.state.MarkImported(filepath.Base(path), info.Size(), hash)
}

// setRecord is one parsed CSV row.
type setRecord struct {
	date     time.Time
	exercise string
	weightKg float64
	reps     int
	isWarmup bool
}

func (imp *Importer) importFile(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	rows, err := r.ReadAll()
	if err != nil {
		return fmt.Errorf("reading csv: %w", err)
	}
	if len(rows) == 0 {
		return nil
	}

	// Header row is optional; detect it by an unparseable date column.
	if _, err := time.Parse("2006-01-02", rows[0][0]); err != nil {
		rows = rows[1:]
	}

	var records []setRecord
	for _, row := range rows {
		imp.stats.RowsRead++
		rec, ok := imp.parseRow(row)
		if !ok {
			imp.stats.RowsSkipped++
			continue
		}
		records = append(records, rec)
	}
	if len(records) == 0 {
		return nil
	}

	// One session per training day.
	byDate := make(map[time.Time][]setRecord)
	var dates []time.Time
	for _, rec := range records {
		if _, seen := byDate[rec.date]; !seen {
			dates = append(dates, rec.date)
		}
		byDate[rec.date] = append(byDate[rec.date], rec)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	workoutID, err := imp.db.EnsureImportWorkout(ctx)
	if err != nil {
		return err
	}

	for _, date := range dates {
		if err := imp.importDay(ctx, workoutID, date, byDate[date]); err != nil {
			return fmt.Errorf("importing %s: %w", date.Format("2006-01-02"), err)
		}
	}
	return nil
}

func (imp *Importer) parseRow(row []string) (setRecord, bool) {
	if len(row) < 4 {
		return setRecord{}, false
	}
	date, err := time.Parse("2006-01-02", strings.TrimSpace(row[0]))
	if err != nil {
		return setRecord{}, false
	}
	exercise := strings.TrimSpace(row[1])
	if exercise == "" {
		return setRecord{}, false
	}
	weight, ok := formulas.ParseDecimal(strings.TrimSpace(row[2]))
	if !ok || weight < 0 {
		return setRecord{}, false
	}
	reps, err := strconv.Atoi(strings.TrimSpace(row[3]))
	if err != nil || reps <= 0 {
		return setRecord{}, false
	}
	warmup := false
	if len(row) > 4 {
		warmup, _ = strconv.ParseBool(strings.TrimSpace(row[4]))
	}
	return setRecord{date: date, exercise: exercise, weightKg: weight, reps: reps, isWarmup: warmup}, true
}

func (imp *Importer) importDay(ctx context.Context, workoutID uuid.UUID, date time.Time, recs []setRecord) error {
	// Midday keeps imported sessions clear of timezone date shifts.
	start := date.Add(12 * time.Hour)
	end := start.Add(time.Hour)
	sessionID := uuid.New()

	var (
		sets        []models.SetRow
		exerciseIDs []uuid.UUID
		seen        = make(map[uuid.UUID]bool)
	)
	session := models.SessionRow{
		ID:          sessionID,
		UserID:      imp.userID,
		WorkoutID:   workoutID,
		StartTime:   start,
		EndTime:     &end,
		IsCompleted: true,
		Notes:       "Imported",
	}

	for _, rec := range recs {
		ex, err := imp.db.GetOrCreateExercise(ctx, rec.exercise)
		if err != nil {
			return err
		}
		if !seen[ex.ID] {
			seen[ex.ID] = true
			exerciseIDs = append(exerciseIDs, ex.ID)
		}

		num, err := imp.nextSetNumber(ctx, ex.ID)
		if err != nil {
			return err
		}

		weight := rec.weightKg
		completedAt := end
		row := models.SetRow{
			ID:          uuid.New(),
			UserID:      imp.userID,
			ExerciseID:  ex.ID,
			SessionID:   sessionID,
			SetNumber:   num,
			Reps:        rec.reps,
			IsWarmup:    rec.isWarmup,
			IsCompleted: true,
			CompletedAt: &completedAt,
		}
		if weight > 0 {
			row.WeightKg = &weight
		}
		sets = append(sets, row)

		if weight > 0 {
			session.TotalVolume += weight * float64(rec.reps)
		}
		session.TotalReps += rec.reps
	}
	session.TotalSets = len(sets)

	if imp.dryRun {
		imp.stats.SetsImported += len(sets)
		imp.stats.SessionsCreated++
		return nil
	}

	if err := imp.db.FinalizeSession(ctx, session, sets, exerciseIDs, ""); err != nil {
		return err
	}
	imp.stats.SetsImported += len(sets)
	imp.stats.SessionsCreated++
	return nil
}

// nextSetNumber continues each exercise's numbering from its stored
// history, then counts up locally across the whole import run.
func (imp *Importer) nextSetNumber(ctx context.Context, exerciseID uuid.UUID) (int, error) {
	if n, ok := imp.nextNum[exerciseID]; ok {
		imp.nextNum[exerciseID] = n + 1
		return n, nil
	}
	maxNum, err := imp.db.MaxSetNumber(ctx, imp.userID, exerciseID)
	if err != nil {
		return 0, err
	}
	imp.nextNum[exerciseID] = maxNum + 2
	return maxNum + 1, nil
}
