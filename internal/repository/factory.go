// Package repository provides the data access layer for Lightbox.
// This file contains the shared wiring types used by the cmd binaries when
// creating repositories from configuration.
package repository

import (
	"context"
)

// Repositories holds all repository instances.
type Repositories struct {
	User  UserRepository
	Photo PhotoRepository
}

// DatabaseHealth is an interface for database health checks.
// Both the SQLite and PostgreSQL connection wrappers satisfy it.
type DatabaseHealth interface {
	Ping(ctx context.Context) error
	Close() error
}
