// Package filestore keeps the vocabulary collection in a single JSON file.
package filestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/phrazzld/scry-lexicon/internal/store"
)

// Backend implements store.Backend on a file. Saves write a temporary file in
// the same directory and rename it over the target.
type Backend struct {
	path   string
	logger *slog.Logger
}

var _ store.Backend = (*Backend)(nil)

// NewBackend creates a file backend at path, creating its directory.
func NewBackend(path string, log *slog.Logger) (*Backend, error) {
	if path == "" {
		return nil, errors.New("path cannot be empty")
	}
	if log == nil {
		log = slog.Default()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return &Backend{
		path:   path,
		logger: log.With(slog.String("component", "file_backend")),
	}, nil
}

// Load implements store.Backend.Load
func (b *Backend) Load(ctx context.Context) ([]byte, error) {
	payload, err := os.ReadFile(b.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, store.ErrNoPayload
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", b.path, err)
	}
	return payload, nil
}

// Save implements store.Backend.Save
func (b *Backend) Save(ctx context.Context, payload []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(b.path), filepath.Base(b.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	cleanup := func(cause error) error {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return cause
	}

	if _, err := tmp.Write(payload); err != nil {
		return cleanup(fmt.Errorf("failed to write temp file: %w", err))
	}
	if err := tmp.Sync(); err != nil {
		return cleanup(fmt.Errorf("failed to sync temp file: %w", err))
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpName, b.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w", b.path, err)
	}

	b.logger.DebugContext(ctx, "collection saved", slog.Int("bytes", len(payload)))
	return nil
}
