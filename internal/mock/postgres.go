package mock

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `
	CREATE TABLE IF NOT EXISTS query_history (
		id SERIAL PRIMARY KEY,
		query TEXT NOT NULL,
		result JSONB NOT NULL,
		advanced BOOLEAN NOT NULL DEFAULT FALSE,
		request_id TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_query_history_created_at ON query_history(created_at DESC);
`

// PostgresStore keeps the history in a query_history table
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to databaseURL and creates the table if needed
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	cfg.MaxConns = 5
	cfg.MaxConnLifetime = 30 * time.Minute
	cfg.MaxConnIdleTime = 5 * time.Minute

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Save(ctx context.Context, entry Entry) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO query_history (query, result, advanced, request_id) VALUES ($1, $2::jsonb, $3, $4)`,
		entry.Query, string(entry.Result), entry.Advanced, entry.RequestID,
	)
	if err != nil {
		return fmt.Errorf("failed to save query: %w", err)
	}
	return nil
}

func (s *PostgresStore) Page(ctx context.Context, page, perPage int) ([]Entry, error) {
	// result::text keeps the stored document as raw JSON
	query := `SELECT id, query, result::text, advanced, COALESCE(request_id, ''), created_at
		FROM query_history ORDER BY created_at DESC, id DESC`

	var rows pgx.Rows
	var err error
	if perPage > 0 {
		if page < 1 {
			page = 1
		}
		rows, err = s.pool.Query(ctx, query+" LIMIT $1 OFFSET $2", perPage, (page-1)*perPage)
	} else {
		rows, err = s.pool.Query(ctx, query)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		var result string
		if err := rows.Scan(&e.ID, &e.Query, &result, &e.Advanced, &e.RequestID, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		e.Result = []byte(result)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
