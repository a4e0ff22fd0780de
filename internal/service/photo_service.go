package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/prn-tf/lightbox/internal/domain"
	"github.com/prn-tf/lightbox/internal/repository"
	"github.com/prn-tf/lightbox/internal/storage"
)

const (
	// defaultPageSize applies when the client doesn't ask for a limit.
	defaultPageSize = 10

	// maxPageSize caps a single gallery page.
	maxPageSize = 100
)

// PhotoService handles photo upload, listing, likes, and deletion.
type PhotoService struct {
	photoRepo repository.PhotoRepository
	store     storage.Backend
	publicURL string
	logger    zerolog.Logger
}

// NewPhotoService creates a new PhotoService.
// publicURL is the externally visible base URL photos are served from.
func NewPhotoService(
	photoRepo repository.PhotoRepository,
	store storage.Backend,
	publicURL string,
	logger zerolog.Logger,
) *PhotoService {
	return &PhotoService{
		photoRepo: photoRepo,
		store:     store,
		publicURL: strings.TrimRight(publicURL, "/"),
		logger:    logger.With().Str("service", "photo").Logger(),
	}
}

// =============================================================================
// Input/Output Structs
// =============================================================================

// UploadInput contains the data needed to upload a photo.
type UploadInput struct {
	OwnerID  int64
	Filename string
	Tags     string
	File     io.Reader
	Size     int64
}

// UploadOutput contains the result of uploading a photo.
type UploadOutput struct {
	Photo *domain.Photo
}

// ListInput contains gallery pagination parameters.
// Page and Limit are taken as the client sent them; out-of-range values
// are clamped rather than rejected.
type ListInput struct {
	OwnerID int64
	Page    int
	Limit   int
}

// ListOutput contains one page of the owner's gallery.
type ListOutput struct {
	Photos []*domain.Photo
	Page   int
	Limit  int
}

// ToggleLikeInput identifies the photo and the acting user.
type ToggleLikeInput struct {
	PhotoID int64
	UserID  int64
}

// ToggleLikeOutput contains the like set after the toggle.
type ToggleLikeOutput struct {
	Likes []int64
}

// DeleteInput identifies the photo and the acting user.
type DeleteInput struct {
	PhotoID int64
	UserID  int64
}

// =============================================================================
// Service Methods
// =============================================================================

// Upload stores a photo binary and records its metadata.
func (s *PhotoService) Upload(ctx context.Context, input UploadInput) (*UploadOutput, error) {
	if input.File == nil {
		return nil, domain.ErrMissingFile
	}

	name := uuid.NewString() + strings.ToLower(filepath.Ext(input.Filename))

	if err := s.store.Store(ctx, name, input.File, input.Size); err != nil {
		s.logger.Error().Err(err).Str("name", name).Msg("failed to store photo binary")
		return nil, fmt.Errorf("%w: %v", domain.ErrInternal, err)
	}

	photo := domain.NewPhoto(input.OwnerID, name, s.publicURL+"/uploads/"+name, domain.ParseTags(input.Tags))

	if err := s.photoRepo.Create(ctx, photo); err != nil {
		// Don't leave an orphaned binary behind.
		if delErr := s.store.Delete(ctx, name); delErr != nil {
			s.logger.Warn().Err(delErr).Str("name", name).Msg("failed to clean up binary after create failure")
		}
		s.logger.Error().Err(err).Int64("owner_id", input.OwnerID).Msg("failed to create photo")
		return nil, fmt.Errorf("%w: %v", domain.ErrInternal, err)
	}

	s.logger.Info().
		Int64("photo_id", photo.ID).
		Int64("owner_id", input.OwnerID).
		Str("name", name).
		Msg("photo uploaded")

	return &UploadOutput{Photo: photo}, nil
}

// ListByOwner returns one page of the owner's gallery, newest first.
func (s *PhotoService) ListByOwner(ctx context.Context, input ListInput) (*ListOutput, error) {
	page := input.Page
	if page < 1 {
		page = 1
	}

	limit := input.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	photos, err := s.photoRepo.ListByOwner(ctx, input.OwnerID, repository.ListOptions{
		Offset: (page - 1) * limit,
		Limit:  limit,
	})
	if err != nil {
		s.logger.Error().Err(err).Int64("owner_id", input.OwnerID).Msg("failed to list photos")
		return nil, fmt.Errorf("%w: %v", domain.ErrInternal, err)
	}

	return &ListOutput{
		Photos: photos,
		Page:   page,
		Limit:  limit,
	}, nil
}

// ToggleLike flips the user's like on a photo and returns the new like set.
func (s *PhotoService) ToggleLike(ctx context.Context, input ToggleLikeInput) (*ToggleLikeOutput, error) {
	likes, err := s.photoRepo.ToggleLike(ctx, input.PhotoID, input.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrPhotoNotFound) {
			return nil, err
		}
		s.logger.Error().Err(err).Int64("photo_id", input.PhotoID).Msg("failed to toggle like")
		return nil, fmt.Errorf("%w: %v", domain.ErrInternal, err)
	}

	return &ToggleLikeOutput{Likes: likes}, nil
}

// Delete removes a photo owned by the acting user.
// A photo owned by someone else reports not-found, same as a missing one,
// so callers can't probe which photo IDs exist.
func (s *PhotoService) Delete(ctx context.Context, input DeleteInput) error {
	photo, err := s.photoRepo.GetByID(ctx, input.PhotoID)
	if err != nil {
		if errors.Is(err, domain.ErrPhotoNotFound) {
			return err
		}
		s.logger.Error().Err(err).Int64("photo_id", input.PhotoID).Msg("failed to get photo")
		return fmt.Errorf("%w: %v", domain.ErrInternal, err)
	}

	if !photo.IsOwnedBy(input.UserID) {
		return domain.ErrPhotoNotFound
	}

	if err := s.photoRepo.Delete(ctx, input.PhotoID); err != nil {
		if errors.Is(err, domain.ErrPhotoNotFound) {
			return err
		}
		s.logger.Error().Err(err).Int64("photo_id", input.PhotoID).Msg("failed to delete photo")
		return fmt.Errorf("%w: %v", domain.ErrInternal, err)
	}

	// Metadata is gone; binary reclamation is best effort.
	if err := s.store.Delete(ctx, photo.Filename); err != nil && !errors.Is(err, storage.ErrFileNotFound) {
		s.logger.Warn().Err(err).Str("name", photo.Filename).Msg("failed to reclaim photo binary")
	}

	s.logger.Info().
		Int64("photo_id", input.PhotoID).
		Int64("user_id", input.UserID).
		Msg("photo deleted")

	return nil
}

// Open streams a stored photo binary by its generated name.
func (s *PhotoService) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	rc, err := s.store.Retrieve(ctx, name)
	if err != nil {
		if errors.Is(err, storage.ErrFileNotFound) {
			return nil, domain.ErrPhotoNotFound
		}
		s.logger.Error().Err(err).Str("name", name).Msg("failed to open photo binary")
		return nil, fmt.Errorf("%w: %v", domain.ErrInternal, err)
	}
	return rc, nil
}
