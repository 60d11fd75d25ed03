package storage

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"serpavi_estimator/models"
)

// SQLiteStore holds operational data: estimate runs, their logs and the
// connectivity probe history.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS estimate_runs (
		id TEXT PRIMARY KEY,
		cadastral_ref TEXT NOT NULL,
		status TEXT NOT NULL,
		error_kind TEXT,
		min_price REAL,
		max_price REAL,
		reference_price REAL,
		price_per_area REAL,
		total_price REAL,
		method TEXT,
		debug BOOLEAN DEFAULT FALSE,
		started_at DATETIME,
		finished_at DATETIME,
		duration_ms INTEGER
	);

	CREATE INDEX IF NOT EXISTS idx_runs_ref ON estimate_runs(cadastral_ref);
	CREATE INDEX IF NOT EXISTS idx_runs_started ON estimate_runs(started_at);

	CREATE TABLE IF NOT EXISTS run_logs (
		id INTEGER PRIMARY KEY,
		run_id TEXT,
		level TEXT NOT NULL,
		message TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS probe_results (
		id INTEGER PRIMARY KEY,
		checked_at DATETIME NOT NULL,
		ok BOOLEAN NOT NULL,
		status_code INTEGER,
		body_bytes INTEGER,
		duration_ms INTEGER,
		error TEXT
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) CreateRun(run *models.EstimateRun) error {
	_, err := s.db.Exec(`
		INSERT INTO estimate_runs (
			id, cadastral_ref, status, error_kind,
			min_price, max_price, reference_price, price_per_area, total_price,
			method, debug, started_at, finished_at, duration_ms
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.CadastralRef, run.Status, run.ErrorKind,
		run.MinPrice, run.MaxPrice, run.ReferencePrice, run.PricePerArea, run.TotalPrice,
		run.Method, run.Debug, run.StartedAt, run.FinishedAt, run.DurationMS,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Log(runID string, level models.LogLevel, message string) {
	s.db.Exec(`INSERT INTO run_logs (run_id, level, message) VALUES (?, ?, ?)`,
		runID, string(level), message)
}

func (s *SQLiteStore) RecentRuns(limit int) ([]models.EstimateRun, error) {
	rows, err := s.db.Query(`
		SELECT id, cadastral_ref, status, COALESCE(error_kind, ''),
			min_price, max_price, reference_price, price_per_area, total_price,
			COALESCE(method, ''), debug, started_at, finished_at, duration_ms
		FROM estimate_runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []models.EstimateRun
	for rows.Next() {
		var run models.EstimateRun
		if err := rows.Scan(
			&run.ID, &run.CadastralRef, &run.Status, &run.ErrorKind,
			&run.MinPrice, &run.MaxPrice, &run.ReferencePrice, &run.PricePerArea, &run.TotalPrice,
			&run.Method, &run.Debug, &run.StartedAt, &run.FinishedAt, &run.DurationMS,
		); err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (s *SQLiteStore) CreateProbeResult(p *models.ProbeResult) error {
	_, err := s.db.Exec(`
		INSERT INTO probe_results (checked_at, ok, status_code, body_bytes, duration_ms, error)
		VALUES (?, ?, ?, ?, ?, ?)`,
		p.CheckedAt, p.OK, p.StatusCode, p.BodyBytes, p.DurationMS, p.Error)
	if err != nil {
		return fmt.Errorf("insert probe result: %w", err)
	}
	return nil
}

// Prune deletes runs, logs and probe results older than the cutoff.
func (s *SQLiteStore) Prune(cutoff time.Time) (int64, error) {
	var total int64

	res, err := s.db.Exec(`DELETE FROM estimate_runs WHERE started_at < ?`, cutoff)
	if err != nil {
		return total, err
	}
	if n, err := res.RowsAffected(); err == nil {
		total += n
	}

	if _, err := s.db.Exec(`DELETE FROM run_logs WHERE created_at < ?`, cutoff); err != nil {
		return total, err
	}
	if _, err := s.db.Exec(`DELETE FROM probe_results WHERE checked_at < ?`, cutoff); err != nil {
		return total, err
	}

	return total, nil
}
