// Package domain contains the core business entities for Lightbox.
// These are pure Go structs with no external dependencies, representing
// the fundamental concepts of the photo sharing service.
package domain

import (
	"regexp"
	"time"
	"unicode"
)

// User represents a registered account.
// Users own photos and may like photos (their own included).
type User struct {
	// ID is the unique identifier for the user (auto-generated).
	ID int64 `json:"id"`

	// Username is the unique username for display.
	// Constraints: 3-255 characters.
	Username string `json:"username"`

	// Email is the unique email address used for login.
	Email string `json:"email"`

	// PasswordHash is the bcrypt hash of the user's password.
	// This must never be exposed in API responses.
	PasswordHash string `json:"-"`

	// Bio is a free-form profile description. Defaults to empty.
	Bio string `json:"bio"`

	// Avatar is a reference to the user's avatar image. Defaults to empty.
	Avatar string `json:"avatar"`

	// CreatedAt is the timestamp when the user was created.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is the timestamp when the user was last updated.
	UpdatedAt time.Time `json:"updated_at"`
}

// NewUser creates a new User with default values.
// The caller is responsible for hashing the password first; NewUser never
// sees a plaintext credential.
func NewUser(username, email, passwordHash string) *User {
	now := time.Now().UTC()
	return &User{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// PasswordSpecialChars is the set of special characters a password must
// draw from to satisfy the strength policy.
const PasswordSpecialChars = "@$!%*?&"

// emailPattern accepts local@domain.tld style addresses.
var emailPattern = regexp.MustCompile(`^[\w\-.]+@([\w-]+\.)+[\w-]{2,4}$`)

// ValidateUsername checks the username length constraint.
func ValidateUsername(username string) error {
	if len(username) < 3 || len(username) > 255 {
		return ErrInvalidUsername
	}
	return nil
}

// ValidateEmail checks the email format.
func ValidateEmail(email string) error {
	if !emailPattern.MatchString(email) {
		return ErrInvalidEmail
	}
	return nil
}

// ValidatePassword enforces the composite strength policy: at least
// 8 characters with one lowercase letter, one uppercase letter, one digit
// and one special character from PasswordSpecialChars.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return ErrInvalidPassword
	}

	var hasLower, hasUpper, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			for _, s := range PasswordSpecialChars {
				if r == s {
					hasSpecial = true
					break
				}
			}
		}
	}

	if !hasLower || !hasUpper || !hasDigit || !hasSpecial {
		return ErrInvalidPassword
	}
	return nil
}
