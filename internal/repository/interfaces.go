// Package repository defines data access interfaces for Lightbox.
// These interfaces abstract database operations, allowing for different
// implementations (SQLite, PostgreSQL, in-memory for testing) while keeping
// the service layer clean.
package repository

import (
	"context"
	"time"

	"github.com/prn-tf/lightbox/internal/domain"
)

// =============================================================================
// User Repository
// =============================================================================

// UserRepository defines the interface for user data access.
type UserRepository interface {
	// Create creates a new user. Returns domain.ErrUserAlreadyExists when
	// the username or email is already taken.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by ID.
	GetByID(ctx context.Context, id int64) (*domain.User, error)

	// GetByEmail retrieves a user by email.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// Update updates an existing user.
	Update(ctx context.Context, user *domain.User) error

	// ExistsByUsername checks if a user with the given username exists.
	ExistsByUsername(ctx context.Context, username string) (bool, error)

	// ExistsByEmail checks if a user with the given email exists.
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// =============================================================================
// Photo Repository
// =============================================================================

// PhotoRepository defines the interface for photo data access.
type PhotoRepository interface {
	// Create creates a new photo together with its tags.
	Create(ctx context.Context, photo *domain.Photo) error

	// GetByID retrieves a photo with its tags and likes.
	GetByID(ctx context.Context, id int64) (*domain.Photo, error)

	// ListByOwner returns the owner's photos sorted by creation time
	// descending, paginated by opts.
	ListByOwner(ctx context.Context, ownerID int64, opts ListOptions) ([]*domain.Photo, error)

	// ToggleLike atomically flips the (photo, user) like membership and
	// returns the resulting set of liker IDs. The flip is add-if-absent /
	// remove-if-present: concurrent toggles by the same user can never
	// produce a duplicate entry. Returns domain.ErrPhotoNotFound when the
	// photo does not exist.
	ToggleLike(ctx context.Context, photoID, userID int64) ([]int64, error)

	// Delete removes a photo record and its tags and likes.
	Delete(ctx context.Context, id int64) error
}

// ListOptions contains common pagination options.
type ListOptions struct {
	// Offset is the number of records to skip.
	Offset int

	// Limit is the maximum number of records to return.
	Limit int
}

// =============================================================================
// Cache
// =============================================================================

// Cache defines the interface for caching operations.
// Implemented by Redis for shared deployments and by an in-memory cache for
// single-node setups.
type Cache interface {
	// Get retrieves a value by key.
	// Returns ErrCacheMiss if the key doesn't exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value with an optional TTL.
	// If ttl is 0, the value doesn't expire.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value by key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}
