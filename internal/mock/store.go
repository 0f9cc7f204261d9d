package mock

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/nztinversive/NASA-data-analyst-llm/internal/config"
	"github.com/nztinversive/NASA-data-analyst-llm/internal/migrations"
)

// Store persists answered queries
type Store interface {
	Save(ctx context.Context, entry Entry) error
	// Page returns entries newest first. perPage <= 0 returns everything.
	Page(ctx context.Context, page, perPage int) ([]Entry, error)
	Close() error
}

// SQLiteStore keeps the history in a local SQLite file
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (and migrates) the database at dbPath
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, config.DirPermissions); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to history database: %w", err)
	}

	if err := migrations.Run(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Save(ctx context.Context, entry Entry) error {
	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO query_history (query, result, advanced, request_id, created_at) VALUES (?, ?, ?, ?, ?)`,
		entry.Query,
		string(entry.Result),
		entry.Advanced,
		entry.RequestID,
		createdAt.UTC().Format("2006-01-02 15:04:05.000"),
	)
	if err != nil {
		return fmt.Errorf("failed to save query: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Page(ctx context.Context, page, perPage int) ([]Entry, error) {
	query := `SELECT id, query, result, advanced, COALESCE(request_id, ''), created_at
		FROM query_history ORDER BY created_at DESC, id DESC`
	var args []any
	if perPage > 0 {
		if page < 1 {
			page = 1
		}
		query += " LIMIT ? OFFSET ?"
		args = append(args, perPage, (page-1)*perPage)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		var result string
		var createdAt string
		if err := rows.Scan(&e.ID, &e.Query, &result, &e.Advanced, &e.RequestID, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		e.Result = json.RawMessage(result)
		e.CreatedAt = parseTimestamp(createdAt)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Count returns the number of stored queries
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM query_history").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count history: %w", err)
	}
	return count, nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// parseTimestamp accepts the layouts SQLite hands back for DATETIME columns
func parseTimestamp(s string) time.Time {
	layouts := []string{
		"2006-01-02 15:04:05.000",
		"2006-01-02 15:04:05",
		time.RFC3339Nano,
		time.RFC3339,
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
