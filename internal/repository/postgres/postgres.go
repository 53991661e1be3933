package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spdash/dashboard/internal/domain"
)

const maxFetchLogs = 500

// PostgresRepository implements domain.FetchLogRepository
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// EnsureSchema creates the fetch_logs table if it does not exist
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	statements := []string{`
		CREATE TABLE IF NOT EXISTS fetch_logs (
			id            BIGSERIAL PRIMARY KEY,
			kind          TEXT NOT NULL,
			sp_id         TEXT NOT NULL DEFAULT '',
			sample_count  INTEGER NOT NULL,
			is_mock       BOOLEAN NOT NULL,
			avg_actual    DOUBLE PRECISION NOT NULL DEFAULT 0,
			avg_predicted DOUBLE PRECISION NOT NULL DEFAULT 0,
			duration_ms   BIGINT NOT NULL,
			timestamp     TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS fetch_logs_sp_id_timestamp_idx ON fetch_logs (sp_id, timestamp DESC)`,
	}

	for _, stmt := range statements {
		if _, err := r.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("postgres: failed to ensure schema: %w", err)
		}
	}
	return nil
}

// SaveFetchLog persists a fetch log entry to PostgreSQL
func (r *PostgresRepository) SaveFetchLog(ctx context.Context, entry domain.FetchLog) error {
	query := `
		INSERT INTO fetch_logs (
			kind, sp_id, sample_count, is_mock,
			avg_actual, avg_predicted, duration_ms, timestamp
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.pool.Exec(ctx, query,
		string(entry.Kind), entry.SPID, entry.SampleCount, entry.IsMock,
		entry.AvgActual, entry.AvgPredicted, entry.DurationMs, entry.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("postgres: failed to save fetch log: %w", err)
	}

	return nil
}

// RecentFetchLogs retrieves the newest fetch logs, optionally for one service point
func (r *PostgresRepository) RecentFetchLogs(ctx context.Context, spID string, limit int) ([]domain.FetchLog, error) {
	if limit <= 0 || limit > maxFetchLogs {
		limit = maxFetchLogs
	}

	query := `
		SELECT kind, sp_id, sample_count, is_mock,
			   avg_actual, avg_predicted, duration_ms, timestamp
		FROM fetch_logs
		WHERE ($1 = '' OR sp_id = $1)
		ORDER BY timestamp DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, spID, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query fetch logs: %w", err)
	}
	defer rows.Close()

	results := make([]domain.FetchLog, 0)
	for rows.Next() {
		var (
			entry domain.FetchLog
			kind  string
		)
		err := rows.Scan(
			&kind, &entry.SPID, &entry.SampleCount, &entry.IsMock,
			&entry.AvgActual, &entry.AvgPredicted, &entry.DurationMs, &entry.Timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("postgres: failed to scan fetch log row: %w", err)
		}
		entry.Kind = domain.FetchKind(kind)
		results = append(results, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: failed to read fetch logs: %w", err)
	}
	return results, nil
}

// Health checks database connectivity
func (r *PostgresRepository) Health(ctx context.Context) error {
	if err := r.pool.Ping(ctx); err != nil {
		return fmt.Errorf("postgres: health check failed: %w", err)
	}
	return nil
}

// Close releases the pool resources
func (r *PostgresRepository) Close() {
	if r.pool != nil {
		r.pool.Close()
	}
}
