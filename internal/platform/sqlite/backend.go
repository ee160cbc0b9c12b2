// Package sqlite stores the vocabulary collection in a SQLite database file.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3" // registers the sqlite3 driver
	"github.com/phrazzld/scry-lexicon/internal/platform/logger"
	"github.com/phrazzld/scry-lexicon/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS collections (
	name TEXT PRIMARY KEY,
	payload BLOB NOT NULL,
	updated_at TEXT NOT NULL
)`

// Open connects to the database at path, creating its directory and the
// schema when missing. ":memory:" opens a private in-memory database.
func Open(ctx context.Context, path string) (*sqlx.DB, error) {
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create data directory: %w", err)
			}
		}
	}

	db, err := sqlx.ConnectContext(ctx, "sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// One connection: SQLite has a single writer, and each in-memory
	// connection would otherwise see its own database.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return db, nil
}

// collectionRow is one row of the collections table.
type collectionRow struct {
	Name      string `db:"name"`
	Payload   []byte `db:"payload"`
	UpdatedAt string `db:"updated_at"`
}

// Backend implements store.Backend on a row of the collections table.
type Backend struct {
	db     *sqlx.DB
	name   string
	now    func() time.Time
	logger *slog.Logger
}

var _ store.Backend = (*Backend)(nil)

// NewBackend creates a backend for the collection called name.
func NewBackend(db *sqlx.DB, name string, log *slog.Logger) (*Backend, error) {
	if db == nil {
		return nil, errors.New("db cannot be nil")
	}
	if name == "" {
		return nil, errors.New("collection name cannot be empty")
	}
	if log == nil {
		log = slog.Default()
	}

	return &Backend{
		db:     db,
		name:   name,
		now:    func() time.Time { return time.Now().UTC() },
		logger: log.With(slog.String("component", "sqlite_backend")),
	}, nil
}

// Load implements store.Backend.Load
func (b *Backend) Load(ctx context.Context) ([]byte, error) {
	var row collectionRow
	err := b.db.GetContext(ctx, &row,
		`SELECT name, payload, updated_at FROM collections WHERE name = ?`, b.name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNoPayload
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read collection %s: %w", b.name, err)
	}
	return row.Payload, nil
}

// Save implements store.Backend.Save
func (b *Backend) Save(ctx context.Context, payload []byte) error {
	row := collectionRow{
		Name:      b.name,
		Payload:   payload,
		UpdatedAt: b.now().Format(time.RFC3339Nano),
	}

	_, err := b.db.NamedExecContext(ctx, `
		INSERT INTO collections (name, payload, updated_at)
		VALUES (:name, :payload, :updated_at)
		ON CONFLICT(name) DO UPDATE SET
			payload = excluded.payload,
			updated_at = excluded.updated_at`, row)
	if err != nil {
		logger.FromContextOrDefault(ctx, b.logger).ErrorContext(ctx, "failed to save collection",
			slog.String("collection", b.name),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to write collection %s: %w", b.name, err)
	}
	return nil
}
