// Package storage defines interfaces for photo binary storage backends.
// The storage layer is responsible for persisting and retrieving raw image
// data under generated names; metadata stays in the database.
package storage

import (
	"context"
	"errors"
	"io"
)

// ErrFileNotFound is returned when the named file does not exist in the backend.
var ErrFileNotFound = errors.New("file not found")

// Backend defines the interface for photo storage backends.
// Implementations include local filesystem and S3-compatible object storage.
type Backend interface {
	// Store writes content from a reader under the given name.
	// The name is generated by the caller and is unique per photo.
	Store(ctx context.Context, name string, reader io.Reader, size int64) error

	// Retrieve opens the named file for reading.
	// Returns ErrFileNotFound if the file doesn't exist.
	// The caller must close the returned reader.
	Retrieve(ctx context.Context, name string) (io.ReadCloser, error)

	// Delete removes the named file.
	// Returns ErrFileNotFound if the file doesn't exist.
	Delete(ctx context.Context, name string) error

	// Exists checks if the named file exists.
	Exists(ctx context.Context, name string) (bool, error)
}
