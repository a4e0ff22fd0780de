package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/prn-tf/lightbox/internal/domain"
	"github.com/prn-tf/lightbox/internal/repository"
)

// photoRepository implements repository.PhotoRepository for PostgreSQL.
type photoRepository struct {
	db *DB
}

// NewPhotoRepository creates a new PostgreSQL photo repository.
func NewPhotoRepository(db *DB) repository.PhotoRepository {
	return &photoRepository{db: db}
}

// Create creates a new photo together with its tags.
func (r *photoRepository) Create(ctx context.Context, photo *domain.Photo) error {
	return r.db.WithTx(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO photos (owner_id, filename, url, created_at)
			VALUES ($1, $2, $3, $4)
			RETURNING id
		`,
			photo.OwnerID,
			photo.Filename,
			photo.URL,
			photo.CreatedAt,
		).Scan(&photo.ID)
		if err != nil {
			return fmt.Errorf("failed to create photo: %w", err)
		}

		for i, tag := range photo.Tags {
			if _, err := tx.Exec(ctx, `
				INSERT INTO photo_tags (photo_id, position, tag) VALUES ($1, $2, $3)
			`, photo.ID, i, tag); err != nil {
				return fmt.Errorf("failed to create photo tag: %w", err)
			}
		}

		return nil
	})
}

// GetByID retrieves a photo with its tags and likes.
func (r *photoRepository) GetByID(ctx context.Context, id int64) (*domain.Photo, error) {
	query := `
		SELECT id, owner_id, filename, url, created_at
		FROM photos
		WHERE id = $1
	`

	photo := &domain.Photo{}
	err := r.db.Pool.QueryRow(ctx, query, id).Scan(
		&photo.ID,
		&photo.OwnerID,
		&photo.Filename,
		&photo.URL,
		&photo.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPhotoNotFound
		}
		return nil, fmt.Errorf("failed to get photo: %w", err)
	}

	if photo.Tags, err = r.loadTags(ctx, photo.ID); err != nil {
		return nil, err
	}
	if photo.Likes, err = r.loadLikes(ctx, photo.ID); err != nil {
		return nil, err
	}

	return photo, nil
}

// ListByOwner returns the owner's photos sorted by creation time descending.
// The ID tiebreak keeps same-second uploads in upload order.
func (r *photoRepository) ListByOwner(ctx context.Context, ownerID int64, opts repository.ListOptions) ([]*domain.Photo, error) {
	query := `
		SELECT id, owner_id, filename, url, created_at
		FROM photos
		WHERE owner_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Pool.Query(ctx, query, ownerID, opts.Limit, opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list photos: %w", err)
	}
	defer rows.Close()

	photos := []*domain.Photo{}
	for rows.Next() {
		photo := &domain.Photo{}
		if err := rows.Scan(
			&photo.ID,
			&photo.OwnerID,
			&photo.Filename,
			&photo.URL,
			&photo.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan photo: %w", err)
		}
		photos = append(photos, photo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating photos: %w", err)
	}

	for _, photo := range photos {
		if photo.Tags, err = r.loadTags(ctx, photo.ID); err != nil {
			return nil, err
		}
		if photo.Likes, err = r.loadLikes(ctx, photo.ID); err != nil {
			return nil, err
		}
	}

	return photos, nil
}

// ToggleLike atomically flips the (photo, user) like membership.
// The insert is guarded by the photo_likes primary key: if the row is
// already present the insert is a no-op and the row is removed instead.
func (r *photoRepository) ToggleLike(ctx context.Context, photoID, userID int64) ([]int64, error) {
	var likes []int64

	err := r.db.WithTx(ctx, func(tx pgx.Tx) error {
		var exists bool
		err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM photos WHERE id = $1)`, photoID).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check photo existence: %w", err)
		}
		if !exists {
			return domain.ErrPhotoNotFound
		}

		tag, err := tx.Exec(ctx, `
			INSERT INTO photo_likes (photo_id, user_id, created_at)
			VALUES ($1, $2, $3)
			ON CONFLICT (photo_id, user_id) DO NOTHING
		`, photoID, userID, time.Now().UTC())
		if err != nil {
			return fmt.Errorf("failed to add like: %w", err)
		}

		if tag.RowsAffected() == 0 {
			// Already liked: toggle means remove.
			if _, err := tx.Exec(ctx, `
				DELETE FROM photo_likes WHERE photo_id = $1 AND user_id = $2
			`, photoID, userID); err != nil {
				return fmt.Errorf("failed to remove like: %w", err)
			}
		}

		rows, err := tx.Query(ctx, `
			SELECT user_id FROM photo_likes
			WHERE photo_id = $1
			ORDER BY created_at, user_id
		`, photoID)
		if err != nil {
			return fmt.Errorf("failed to load likes: %w", err)
		}
		defer rows.Close()

		likes = []int64{}
		for rows.Next() {
			var id int64
			if err := rows.Scan(&id); err != nil {
				return fmt.Errorf("failed to scan like: %w", err)
			}
			likes = append(likes, id)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}

	return likes, nil
}

// Delete removes a photo record. Tags and likes go with it via cascade.
func (r *photoRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM photos WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete photo: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrPhotoNotFound
	}

	return nil
}

func (r *photoRepository) loadTags(ctx context.Context, photoID int64) ([]string, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT tag FROM photo_tags WHERE photo_id = $1 ORDER BY position
	`, photoID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tags: %w", err)
	}
	defer rows.Close()

	tags := []string{}
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}

func (r *photoRepository) loadLikes(ctx context.Context, photoID int64) ([]int64, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT user_id FROM photo_likes WHERE photo_id = $1 ORDER BY created_at, user_id
	`, photoID)
	if err != nil {
		return nil, fmt.Errorf("failed to load likes: %w", err)
	}
	defer rows.Close()

	likes := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan like: %w", err)
		}
		likes = append(likes, id)
	}
	return likes, rows.Err()
}

// Ensure photoRepository implements repository.PhotoRepository.
var _ repository.PhotoRepository = (*photoRepository)(nil)
