package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the pgx driver
	"github.com/phrazzld/scry-lexicon/internal/platform/logger"
	"github.com/phrazzld/scry-lexicon/internal/store"
)

// OpenDB opens a PostgreSQL connection pool through the pgx stdlib driver and
// verifies it with a ping.
func OpenDB(ctx context.Context, url string) (*sql.DB, error) {
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// CollectionBackend implements store.Backend on a row of the collections table.
type CollectionBackend struct {
	db     *sql.DB
	name   string
	logger *slog.Logger
}

var _ store.Backend = (*CollectionBackend)(nil)

// NewCollectionBackend creates a backend for the collection called name.
// The schema must already be migrated.
func NewCollectionBackend(db *sql.DB, name string, log *slog.Logger) (*CollectionBackend, error) {
	if db == nil {
		return nil, errors.New("db cannot be nil")
	}
	if name == "" {
		return nil, errors.New("collection name cannot be empty")
	}
	if log == nil {
		log = slog.Default()
	}

	return &CollectionBackend{
		db:     db,
		name:   name,
		logger: log.With(slog.String("component", "postgres_collection_backend")),
	}, nil
}

// Load implements store.Backend.Load
func (b *CollectionBackend) Load(ctx context.Context) ([]byte, error) {
	var payload []byte
	err := b.db.QueryRowContext(ctx,
		`SELECT payload FROM collections WHERE name = $1`,
		b.name,
	).Scan(&payload)
	if err != nil {
		return nil, MapError(err)
	}
	return payload, nil
}

// Save implements store.Backend.Save
func (b *CollectionBackend) Save(ctx context.Context, payload []byte) error {
	log := logger.FromContextOrDefault(ctx, b.logger)

	result, err := b.db.ExecContext(ctx, `
		INSERT INTO collections (name, payload, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (name) DO UPDATE
		SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at
	`, b.name, payload, time.Now().UTC())
	if err != nil {
		log.ErrorContext(ctx, "failed to save collection",
			slog.String("collection", b.name),
			slog.String("error", err.Error()))
		return MapError(err)
	}

	return CheckRowsAffected(result, "collection "+b.name)
}
