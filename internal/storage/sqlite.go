// Package storage provides SQLite-based persistence for farm runs.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zstd"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/tui-farm/internal/run"
)

// Store manages the SQLite database connection for run persistence.
// Run documents are stored as zstd-compressed JSON next to a few indexed
// columns used for listings.
type Store struct {
	db  *sql.DB
	enc *zstd.Encoder
	dec *zstd.Decoder
	now func() time.Time
}

var _ run.Store = (*Store)(nil)

// RunSummary is one row of the run listing.
type RunSummary struct {
	ID          string
	Seed        int64
	Day         int
	Week        int
	TotalScore  int
	Money       int
	GoalsMet    int
	GoalsMissed int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Stats aggregates the day reports of a run.
type Stats struct {
	RunID     string
	Days      int
	Aborted   int
	BestDay   int
	AvgDay    float64
	Total     int64
	LastDayAt time.Time
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}
	// One writer keeps transactions from tripping over SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: zstd decoder: %w", err)
	}

	store := &Store{db: db, enc: enc, dec: dec, now: time.Now}
	if err := store.migrate(); err != nil {
		store.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}
	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			seed INTEGER NOT NULL,
			day INTEGER NOT NULL,
			week INTEGER NOT NULL,
			total_score INTEGER NOT NULL DEFAULT 0,
			money INTEGER NOT NULL DEFAULT 0,
			goals_met INTEGER NOT NULL DEFAULT 0,
			goals_missed INTEGER NOT NULL DEFAULT 0,
			data BLOB NOT NULL,
			created_at DATETIME NOT NULL,
			updated_at INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_runs_updated ON runs(updated_at DESC);

		CREATE TABLE IF NOT EXISTS day_reports (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			day INTEGER NOT NULL,
			week INTEGER NOT NULL,
			pipeline_run_id TEXT NOT NULL,
			passive INTEGER NOT NULL DEFAULT 0,
			pattern_total INTEGER NOT NULL DEFAULT 0,
			effect_bonus INTEGER NOT NULL DEFAULT 0,
			total INTEGER NOT NULL DEFAULT 0,
			money INTEGER NOT NULL DEFAULT 0,
			matches INTEGER NOT NULL DEFAULT 0,
			aborted INTEGER NOT NULL DEFAULT 0,
			reason TEXT,
			created_at DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_day_reports_run ON day_reports(run_id, id DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.enc != nil {
		s.enc.Close()
	}
	if s.dec != nil {
		s.dec.Close()
	}
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Save inserts or replaces a run.
func (s *Store) Save(ctx context.Context, d *run.Data) error {
	return s.saveRun(ctx, s.db, d)
}

func (s *Store) saveRun(ctx context.Context, ex execer, d *run.Data) error {
	raw, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("storage: cannot encode run: %w", err)
	}
	blob := s.enc.EncodeAll(raw, nil)

	_, err = ex.ExecContext(ctx,
		`INSERT INTO runs
		 (id, seed, day, week, total_score, money, goals_met, goals_missed, data, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   day = excluded.day,
		   week = excluded.week,
		   total_score = excluded.total_score,
		   money = excluded.money,
		   goals_met = excluded.goals_met,
		   goals_missed = excluded.goals_missed,
		   data = excluded.data,
		   updated_at = excluded.updated_at`,
		d.ID, d.Seeds.Run, d.Day, d.Week, d.TotalScore, d.Money, d.GoalsMet, d.GoalsMissed,
		blob, formatTime(d.CreatedAt), s.now().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("storage: cannot save run %s: %w", d.ID, err)
	}
	return nil
}

// Commit saves a run and appends its day record in one transaction.
func (s *Store) Commit(ctx context.Context, d *run.Data, rec run.DayRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if err := s.saveRun(ctx, tx, d); err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO day_reports
		 (run_id, day, week, pipeline_run_id, passive, pattern_total, effect_bonus, total, money, matches, aborted, reason, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID, rec.Day, rec.Week, rec.PipelineRunID,
		rec.Passive, rec.PatternTotal, rec.EffectBonus, rec.Total, rec.Money, rec.Matches,
		rec.Aborted, rec.Reason, formatTime(rec.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("storage: cannot save day report: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage: cannot commit day %d: %w", rec.Day, err)
	}
	return nil
}

// Load returns a run by ID.
func (s *Store) Load(ctx context.Context, id string) (*run.Data, error) {
	var blob []byte
	err := s.db.QueryRowContext(ctx, "SELECT data FROM runs WHERE id = ?", id).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", run.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query run: %w", err)
	}
	return s.decode(blob)
}

// Latest returns the most recently updated run.
func (s *Store) Latest(ctx context.Context) (*run.Data, error) {
	var blob []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT data FROM runs ORDER BY updated_at DESC LIMIT 1",
	).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, run.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query latest run: %w", err)
	}
	return s.decode(blob)
}

func (s *Store) decode(blob []byte) (*run.Data, error) {
	raw, err := s.dec.DecodeAll(blob, nil)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot decompress run: %w", err)
	}
	var d run.Data
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("storage: cannot decode run: %w", err)
	}
	return &d, nil
}

// Days returns the most recent day records of a run, newest first.
// A non-positive limit returns all of them.
func (s *Store) Days(ctx context.Context, runID string, limit int) ([]run.DayRecord, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, day, week, pipeline_run_id, passive, pattern_total, effect_bonus,
		        total, money, matches, aborted, reason, created_at
		 FROM day_reports
		 WHERE run_id = ?
		 ORDER BY id DESC
		 LIMIT ?`,
		runID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query day reports: %w", err)
	}
	defer rows.Close()

	var out []run.DayRecord
	for rows.Next() {
		var rec run.DayRecord
		var reason sql.NullString
		var createdAt any
		if err := rows.Scan(
			&rec.RunID,
			&rec.Day,
			&rec.Week,
			&rec.PipelineRunID,
			&rec.Passive,
			&rec.PatternTotal,
			&rec.EffectBonus,
			&rec.Total,
			&rec.Money,
			&rec.Matches,
			&rec.Aborted,
			&reason,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		rec.Reason = reason.String
		rec.CreatedAt = parseTime(createdAt)
		out = append(out, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return out, nil
}

// ListRuns returns the most recently updated runs.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, seed, day, week, total_score, money, goals_met, goals_missed, created_at, updated_at
		 FROM runs
		 ORDER BY updated_at DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var r RunSummary
		var createdAt any
		var updatedAt int64
		if err := rows.Scan(&r.ID, &r.Seed, &r.Day, &r.Week, &r.TotalScore, &r.Money,
			&r.GoalsMet, &r.GoalsMissed, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		r.CreatedAt = parseTime(createdAt)
		r.UpdatedAt = time.Unix(0, updatedAt).UTC()
		out = append(out, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return out, nil
}

// RunStats aggregates the resolved (not aborted) days of a run.
func (s *Store) RunStats(ctx context.Context, runID string) (*Stats, error) {
	stats := &Stats{RunID: runID}

	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(MAX(total), 0), COALESCE(AVG(total), 0), COALESCE(SUM(total), 0)
		 FROM day_reports WHERE run_id = ? AND aborted = 0`,
		runID,
	).Scan(&stats.Days, &stats.BestDay, &stats.AvgDay, &stats.Total)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get run stats: %w", err)
	}

	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM day_reports WHERE run_id = ? AND aborted = 1`,
		runID,
	).Scan(&stats.Aborted)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot count aborted days: %w", err)
	}

	var last any
	err = s.db.QueryRowContext(ctx,
		`SELECT created_at FROM day_reports WHERE run_id = ? ORDER BY id DESC LIMIT 1`,
		runID,
	).Scan(&last)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("storage: cannot get last day: %w", err)
	}
	if err == nil {
		stats.LastDayAt = parseTime(last)
	}

	return stats, nil
}

// DeleteRun removes a run and its day reports.
func (s *Store) DeleteRun(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, "DELETE FROM day_reports WHERE run_id = ?", id); err != nil {
		return fmt.Errorf("storage: cannot delete day reports: %w", err)
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM runs WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("storage: cannot delete run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", run.ErrNotFound, id)
	}
	return tx.Commit()
}

const timeLayout = "2006-01-02 15:04:05"

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTime handles both time.Time and string column values.
func parseTime(v any) time.Time {
	switch v := v.(type) {
	case time.Time:
		return v.UTC()
	case string:
		if parsed, err := time.Parse(time.RFC3339Nano, v); err == nil {
			return parsed.UTC()
		}
		if parsed, err := time.Parse(timeLayout, v); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
