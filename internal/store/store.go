// Package store persists completed deconfliction runs so past reports can be
// reviewed and compared. Missions themselves are never stored — only the
// verdict, the parameters it was produced under, and the conflict events.
package store

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/corvid-data/airspace.report/internal/deconflict"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ErrNotFound is returned when a run ID has no record.
var ErrNotFound = errors.New("run not found")

// Store wraps the sqlite database holding run history.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and applies pending
// migrations. sqlite has a single writer; capping the pool at one connection
// keeps transactions from contending with themselves.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrateUp() error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("load embedded migrations: %w", err)
	}
	drv, err := migratesqlite.WithInstance(s.db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", drv)
	if err != nil {
		return fmt.Errorf("build migrator: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// Run is one recorded deconfliction check.
type Run struct {
	ID           string                     `json:"id"`
	CreatedAt    time.Time                  `json:"created_at"`
	PrimaryDrone string                     `json:"primary_drone"`
	DroneCount   int                        `json:"drone_count"`
	Safe         bool                       `json:"safe"`
	Config       deconflict.CheckConfig     `json:"config"`
	Conflicts    []deconflict.ConflictEvent `json:"conflicts"`
}

// RunSummary is a listing entry without the event detail.
type RunSummary struct {
	ID            string    `json:"id"`
	CreatedAt     time.Time `json:"created_at"`
	PrimaryDrone  string    `json:"primary_drone"`
	DroneCount    int       `json:"drone_count"`
	Safe          bool      `json:"safe"`
	ConflictCount int       `json:"conflict_count"`
}

// RecordRun stores a completed report and returns the new run's ID.
func (s *Store) RecordRun(primaryDrone string, droneCount int, cfg deconflict.CheckConfig, report *deconflict.Report) (string, error) {
	runID := uuid.NewString()

	tx, err := s.db.Begin()
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO runs (run_id, created_at, primary_drone, drone_count, safe, step, time_tolerance, safety_distance)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, time.Now().Unix(), primaryDrone, droneCount, boolToInt(report.Safe),
		cfg.Step, cfg.TimeTolerance, cfg.SafetyDistance)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	for _, ev := range report.Conflicts {
		_, err = tx.Exec(`
			INSERT INTO conflict_events (run_id, drone_a, drone_b, t_start, t_end, x, y, z, min_separation, severity)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			runID, ev.DroneA, ev.DroneB, ev.TStart, ev.TEnd,
			ev.Location.X, ev.Location.Y, ev.Location.Z, ev.MinSeparation, string(ev.Severity))
		if err != nil {
			return "", fmt.Errorf("insert conflict event: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return runID, nil
}

// GetRun returns one recorded run with its conflict events.
func (s *Store) GetRun(runID string) (*Run, error) {
	var (
		run       Run
		createdAt int64
		safe      int
	)
	err := s.db.QueryRow(`
		SELECT run_id, created_at, primary_drone, drone_count, safe, step, time_tolerance, safety_distance
		FROM runs WHERE run_id = ?`, runID).
		Scan(&run.ID, &createdAt, &run.PrimaryDrone, &run.DroneCount, &safe,
			&run.Config.Step, &run.Config.TimeTolerance, &run.Config.SafetyDistance)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, runID)
	}
	if err != nil {
		return nil, err
	}
	run.CreatedAt = time.Unix(createdAt, 0).UTC()
	run.Safe = safe != 0

	rows, err := s.db.Query(`
		SELECT drone_a, drone_b, t_start, t_end, x, y, z, min_separation, severity
		FROM conflict_events WHERE run_id = ? ORDER BY t_start, drone_b`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	run.Conflicts = []deconflict.ConflictEvent{}
	for rows.Next() {
		var (
			ev  deconflict.ConflictEvent
			sev string
		)
		if err := rows.Scan(&ev.DroneA, &ev.DroneB, &ev.TStart, &ev.TEnd,
			&ev.Location.X, &ev.Location.Y, &ev.Location.Z, &ev.MinSeparation, &sev); err != nil {
			return nil, err
		}
		ev.Severity = deconflict.Severity(sev)
		run.Conflicts = append(run.Conflicts, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &run, nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(`
		SELECT r.run_id, r.created_at, r.primary_drone, r.drone_count, r.safe,
		       (SELECT COUNT(*) FROM conflict_events e WHERE e.run_id = r.run_id)
		FROM runs r ORDER BY r.created_at DESC, r.run_id LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []RunSummary{}
	for rows.Next() {
		var (
			sum       RunSummary
			createdAt int64
			safe      int
		)
		if err := rows.Scan(&sum.ID, &createdAt, &sum.PrimaryDrone, &sum.DroneCount, &safe, &sum.ConflictCount); err != nil {
			return nil, err
		}
		sum.CreatedAt = time.Unix(createdAt, 0).UTC()
		sum.Safe = safe != 0
		out = append(out, sum)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
