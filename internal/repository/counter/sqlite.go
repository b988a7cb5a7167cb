package counter

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	// Registers the pure-Go "sqlite" driver.
	_ "modernc.org/sqlite"
)

// errPathRequired is returned when no database path is configured.
var errPathRequired = errors.New("storage path is required")

const schema = `CREATE TABLE IF NOT EXISTS counters (
	key   TEXT PRIMARY KEY,
	value INTEGER NOT NULL
)`

// SQLiteRepository persists counters in a SQLite database.
type SQLiteRepository struct {
	sqlDB *sql.DB
}

// OpenSQLite opens the database at path and creates the counters table.
func OpenSQLite(ctx context.Context, path string) (*SQLiteRepository, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errPathRequired
	}

	dsn := filepath.Clean(path) +
		"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(FULL)"

	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err = sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()

		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	if _, err = sqlDB.ExecContext(ctx, schema); err != nil {
		_ = sqlDB.Close()

		return nil, fmt.Errorf("create counters table: %w", err)
	}

	return &SQLiteRepository{sqlDB: sqlDB}, nil
}

// ReadCounter returns the stored value, or 0 if the key is absent.
func (r *SQLiteRepository) ReadCounter(ctx context.Context, key string) (int, error) {
	var value int

	err := r.sqlDB.QueryRowContext(ctx, `SELECT value FROM counters WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}

	if err != nil {
		return 0, fmt.Errorf("read counter %q: %w", key, err)
	}

	return value, nil
}

// WriteCounter upserts the value.
func (r *SQLiteRepository) WriteCounter(ctx context.Context, key string, value int) error {
	_, err := r.sqlDB.ExecContext(
		ctx,
		`INSERT INTO counters (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key,
		value,
	)
	if err != nil {
		return fmt.Errorf("write counter %q: %w", key, err)
	}

	return nil
}

// Close closes the SQLite handle.
func (r *SQLiteRepository) Close() error {
	if r == nil || r.sqlDB == nil {
		return nil
	}

	return r.sqlDB.Close()
}
