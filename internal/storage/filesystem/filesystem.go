// Package filesystem provides a local filesystem storage backend.
package filesystem

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/prn-tf/lightbox/internal/storage"
)

// Backend implements storage.Backend using the local filesystem.
// Files are written to a temporary name first and renamed into place so a
// crashed upload never leaves a partial file under its final name.
type Backend struct {
	dataDir string
	logger  zerolog.Logger
}

// NewBackend creates a filesystem backend rooted at dataDir.
// The directory is created if it does not exist.
func NewBackend(dataDir string, logger zerolog.Logger) (*Backend, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return &Backend{
		dataDir: dataDir,
		logger:  logger.With().Str("storage", "filesystem").Logger(),
	}, nil
}

// validateName rejects names that could escape the data directory.
func validateName(name string) error {
	if name == "" || name == "." || name == ".." {
		return fmt.Errorf("invalid file name: %q", name)
	}
	if strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("invalid file name: %q", name)
	}
	return nil
}

// Store writes content from a reader under the given name.
func (b *Backend) Store(ctx context.Context, name string, reader io.Reader, size int64) error {
	if err := validateName(name); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(b.dataDir, ".upload-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	written, err := io.Copy(tmp, reader)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write file: %w", err)
	}

	if size > 0 && written != size {
		_ = os.Remove(tmpName)
		return fmt.Errorf("size mismatch: expected %d bytes, wrote %d", size, written)
	}

	finalPath := filepath.Join(b.dataDir, name)
	if err := os.Rename(tmpName, finalPath); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to finalize file: %w", err)
	}

	b.logger.Debug().Str("name", name).Int64("size", written).Msg("stored file")
	return nil
}

// Retrieve opens the named file for reading.
func (b *Backend) Retrieve(ctx context.Context, name string) (io.ReadCloser, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}

	f, err := os.Open(filepath.Join(b.dataDir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, storage.ErrFileNotFound
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return f, nil
}

// Delete removes the named file.
func (b *Backend) Delete(ctx context.Context, name string) error {
	if err := validateName(name); err != nil {
		return err
	}

	if err := os.Remove(filepath.Join(b.dataDir, name)); err != nil {
		if os.IsNotExist(err) {
			return storage.ErrFileNotFound
		}
		return fmt.Errorf("failed to delete file: %w", err)
	}

	b.logger.Debug().Str("name", name).Msg("deleted file")
	return nil
}

// Exists checks if the named file exists.
func (b *Backend) Exists(ctx context.Context, name string) (bool, error) {
	if err := validateName(name); err != nil {
		return false, err
	}

	_, err := os.Stat(filepath.Join(b.dataDir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat file: %w", err)
	}
	return true, nil
}

// Ensure Backend implements storage.Backend.
var _ storage.Backend = (*Backend)(nil)
