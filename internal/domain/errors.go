// Package domain contains the core business entities for Lightbox.
package domain

import (
	"errors"
)

// Domain errors - these represent business rule violations.
// They are distinct from infrastructure errors (database, network, etc.).

var (
	// ===========================================
	// Validation Errors
	// ===========================================

	// ErrInvalidUsername indicates the username length is invalid (3-255 chars).
	ErrInvalidUsername = errors.New("invalid username: must be 3-255 characters")

	// ErrInvalidEmail indicates the email format is invalid.
	ErrInvalidEmail = errors.New("invalid email address")

	// ErrInvalidPassword indicates the password fails the strength policy.
	ErrInvalidPassword = errors.New("password must be at least 8 characters long and include uppercase, lowercase, number and special character")

	// ErrMissingFile indicates an upload request carried no file payload.
	ErrMissingFile = errors.New("no file provided")

	// ===========================================
	// Conflict Errors
	// ===========================================

	// ErrUserAlreadyExists indicates a user with the same username or email exists.
	ErrUserAlreadyExists = errors.New("user already exists")

	// ===========================================
	// Authentication Errors
	// ===========================================

	// ErrInvalidCredentials indicates authentication failed. The message is
	// deliberately identical for an unknown email and a wrong password so
	// that accounts cannot be enumerated.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidToken indicates the bearer token is malformed, has a bad
	// signature, or has expired.
	ErrInvalidToken = errors.New("invalid or expired token")

	// ErrMissingToken indicates no bearer token was presented.
	ErrMissingToken = errors.New("authentication required")

	// ===========================================
	// Not Found Errors
	// ===========================================

	// ErrUserNotFound indicates the requested user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrPhotoNotFound indicates the requested photo does not exist, or the
	// caller is not allowed to see that it exists.
	ErrPhotoNotFound = errors.New("photo not found")

	// ===========================================
	// Internal Errors
	// ===========================================

	// ErrInternal indicates an unexpected infrastructure failure.
	ErrInternal = errors.New("internal server error")
)

// IsValidation reports whether err is a validation failure, caught before
// anything was persisted.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidUsername) ||
		errors.Is(err, ErrInvalidEmail) ||
		errors.Is(err, ErrInvalidPassword) ||
		errors.Is(err, ErrMissingFile)
}

// IsConflict reports whether err is a uniqueness violation.
func IsConflict(err error) bool {
	return errors.Is(err, ErrUserAlreadyExists)
}

// IsAuth reports whether err is an authentication failure.
func IsAuth(err error) bool {
	return errors.Is(err, ErrInvalidCredentials) ||
		errors.Is(err, ErrInvalidToken) ||
		errors.Is(err, ErrMissingToken)
}

// IsNotFound reports whether err is a missing-resource failure. Ownership
// violations are folded into this class on purpose: a photo owned by
// someone else is indistinguishable from a photo that does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrPhotoNotFound)
}
