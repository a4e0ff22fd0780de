// Package service provides business logic services for Lightbox.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/prn-tf/lightbox/internal/domain"
	"github.com/prn-tf/lightbox/internal/repository"
)

// profileCacheTTL bounds how stale a cached profile can get.
const profileCacheTTL = 5 * time.Minute

func profileCacheKey(userID int64) string {
	return fmt.Sprintf("user:profile:%d", userID)
}

// UserService handles registration, authentication, and profile operations.
type UserService struct {
	userRepo   repository.UserRepository
	cache      repository.Cache
	bcryptCost int
	logger     zerolog.Logger
}

// NewUserService creates a new UserService.
func NewUserService(
	userRepo repository.UserRepository,
	cache repository.Cache,
	bcryptCost int,
	logger zerolog.Logger,
) *UserService {
	return &UserService{
		userRepo:   userRepo,
		cache:      cache,
		bcryptCost: bcryptCost,
		logger:     logger.With().Str("service", "user").Logger(),
	}
}

// =============================================================================
// Input/Output Structs
// =============================================================================

// RegisterInput contains the data needed to register a user.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// RegisterOutput contains the result of registering a user.
type RegisterOutput struct {
	User *domain.User
}

// AuthenticateInput contains the credentials for a login attempt.
type AuthenticateInput struct {
	Email    string
	Password string
}

// AuthenticateOutput contains the authenticated user.
type AuthenticateOutput struct {
	User *domain.User
}

// UpdateProfileInput contains the fields to change on a profile.
// Nil fields are left untouched.
type UpdateProfileInput struct {
	UserID   int64
	Username *string
	Bio      *string
}

// UpdateProfileOutput contains the updated user.
type UpdateProfileOutput struct {
	User *domain.User
}

// =============================================================================
// Service Methods
// =============================================================================

// Register creates a new user account.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (*RegisterOutput, error) {
	if err := domain.ValidateUsername(input.Username); err != nil {
		return nil, err
	}
	if err := domain.ValidateEmail(input.Email); err != nil {
		return nil, err
	}
	if err := domain.ValidatePassword(input.Password); err != nil {
		return nil, err
	}

	exists, err := s.userRepo.ExistsByUsername(ctx, input.Username)
	if err != nil {
		s.logger.Error().Err(err).Str("username", input.Username).Msg("failed to check username")
		return nil, fmt.Errorf("%w: %v", domain.ErrInternal, err)
	}
	if exists {
		return nil, fmt.Errorf("%w: username taken", domain.ErrUserAlreadyExists)
	}

	exists, err = s.userRepo.ExistsByEmail(ctx, input.Email)
	if err != nil {
		s.logger.Error().Err(err).Str("email", input.Email).Msg("failed to check email")
		return nil, fmt.Errorf("%w: %v", domain.ErrInternal, err)
	}
	if exists {
		return nil, fmt.Errorf("%w: email taken", domain.ErrUserAlreadyExists)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.bcryptCost)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to hash password")
		return nil, fmt.Errorf("%w: %v", domain.ErrInternal, err)
	}

	user := domain.NewUser(input.Username, input.Email, string(hash))
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrUserAlreadyExists) {
			return nil, err
		}
		s.logger.Error().Err(err).Str("username", input.Username).Msg("failed to create user")
		return nil, fmt.Errorf("%w: %v", domain.ErrInternal, err)
	}

	s.logger.Info().
		Int64("user_id", user.ID).
		Str("username", user.Username).
		Msg("user registered")

	return &RegisterOutput{User: user}, nil
}

// Authenticate verifies credentials and returns the matching user.
// Unknown email and wrong password both return ErrInvalidCredentials so a
// caller can't probe which emails are registered.
func (s *UserService) Authenticate(ctx context.Context, input AuthenticateInput) (*AuthenticateOutput, error) {
	user, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		s.logger.Error().Err(err).Msg("failed to look up user")
		return nil, fmt.Errorf("%w: %v", domain.ErrInternal, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	s.logger.Info().Int64("user_id", user.ID).Msg("user authenticated")

	return &AuthenticateOutput{User: user}, nil
}

// GetProfile returns a user's profile, served from cache when possible.
func (s *UserService) GetProfile(ctx context.Context, userID int64) (*domain.User, error) {
	key := profileCacheKey(userID)

	if data, err := s.cache.Get(ctx, key); err == nil {
		user := &domain.User{}
		if err := json.Unmarshal(data, user); err == nil {
			return user, nil
		}
		// Corrupt entry, fall through to the database.
		_ = s.cache.Delete(ctx, key)
	} else if !errors.Is(err, repository.ErrCacheMiss) {
		s.logger.Warn().Err(err).Msg("profile cache read failed")
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		s.logger.Error().Err(err).Int64("user_id", userID).Msg("failed to get user")
		return nil, fmt.Errorf("%w: %v", domain.ErrInternal, err)
	}

	if data, err := json.Marshal(user); err == nil {
		if err := s.cache.Set(ctx, key, data, profileCacheTTL); err != nil {
			s.logger.Warn().Err(err).Msg("profile cache write failed")
		}
	}

	return user, nil
}

// UpdateProfile applies partial profile changes and invalidates the cache.
func (s *UserService) UpdateProfile(ctx context.Context, input UpdateProfileInput) (*UpdateProfileOutput, error) {
	user, err := s.userRepo.GetByID(ctx, input.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		s.logger.Error().Err(err).Int64("user_id", input.UserID).Msg("failed to get user")
		return nil, fmt.Errorf("%w: %v", domain.ErrInternal, err)
	}

	if input.Username != nil && *input.Username != user.Username {
		if err := domain.ValidateUsername(*input.Username); err != nil {
			return nil, err
		}
		exists, err := s.userRepo.ExistsByUsername(ctx, *input.Username)
		if err != nil {
			s.logger.Error().Err(err).Msg("failed to check username")
			return nil, fmt.Errorf("%w: %v", domain.ErrInternal, err)
		}
		if exists {
			return nil, fmt.Errorf("%w: username taken", domain.ErrUserAlreadyExists)
		}
		user.Username = *input.Username
	}

	if input.Bio != nil {
		user.Bio = *input.Bio
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, domain.ErrUserAlreadyExists) || errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		s.logger.Error().Err(err).Int64("user_id", input.UserID).Msg("failed to update user")
		return nil, fmt.Errorf("%w: %v", domain.ErrInternal, err)
	}

	if err := s.cache.Delete(ctx, profileCacheKey(input.UserID)); err != nil {
		s.logger.Warn().Err(err).Msg("profile cache invalidation failed")
	}

	s.logger.Info().Int64("user_id", user.ID).Msg("profile updated")

	return &UpdateProfileOutput{User: user}, nil
}
