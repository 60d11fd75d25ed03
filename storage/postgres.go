package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"serpavi_estimator/models"
)

// PostgresStore is an optional archive of completed estimates for
// downstream analysis. The service runs fine without it.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	config.MaxConns = 5
	config.MinConns = 1
	config.MaxConnLifetime = 30 * time.Minute
	config.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	store := &PostgresStore{pool: pool}
	if err := store.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return store, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS estimates (
			id UUID PRIMARY KEY,
			cadastral_ref TEXT NOT NULL,
			status TEXT NOT NULL,
			error_kind TEXT,
			min_price DOUBLE PRECISION,
			max_price DOUBLE PRECISION,
			reference_price DOUBLE PRECISION,
			price_per_area DOUBLE PRECISION,
			total_price DOUBLE PRECISION,
			method TEXT,
			started_at TIMESTAMPTZ,
			finished_at TIMESTAMPTZ,
			duration_ms BIGINT
		);
		CREATE INDEX IF NOT EXISTS idx_estimates_ref ON estimates(cadastral_ref);
	`)
	if err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) InsertEstimate(ctx context.Context, run *models.EstimateRun) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO estimates (
			id, cadastral_ref, status, error_kind,
			min_price, max_price, reference_price, price_per_area, total_price,
			method, started_at, finished_at, duration_ms
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO NOTHING`,
		run.ID, run.CadastralRef, run.Status, nullIfEmpty(run.ErrorKind),
		run.MinPrice, run.MaxPrice, run.ReferencePrice, run.PricePerArea, run.TotalPrice,
		nullIfEmpty(run.Method), run.StartedAt, run.FinishedAt, run.DurationMS,
	)
	if err != nil {
		return fmt.Errorf("insert estimate: %w", err)
	}
	return nil
}

func (s *PostgresStore) RecentEstimates(ctx context.Context, ref string, limit int) ([]models.EstimateRun, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, cadastral_ref, status, COALESCE(error_kind, ''),
			min_price, max_price, reference_price, price_per_area, total_price,
			COALESCE(method, ''), started_at, finished_at, duration_ms
		FROM estimates
		WHERE cadastral_ref = $1
		ORDER BY started_at DESC
		LIMIT $2`, ref, limit)
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
			&run.Method, &run.StartedAt, &run.FinishedAt, &run.DurationMS,
		); err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
