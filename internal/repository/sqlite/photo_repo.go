package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/prn-tf/lightbox/internal/domain"
	"github.com/prn-tf/lightbox/internal/repository"
)

// photoRepository implements repository.PhotoRepository for SQLite.
type photoRepository struct {
	db *DB
}

// NewPhotoRepository creates a new SQLite photo repository.
func NewPhotoRepository(db *DB) repository.PhotoRepository {
	return &photoRepository{db: db}
}

// Create creates a new photo together with its tags.
func (r *photoRepository) Create(ctx context.Context, photo *domain.Photo) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `
			INSERT INTO photos (owner_id, filename, url, created_at)
			VALUES (?, ?, ?, ?)
		`,
			photo.OwnerID,
			photo.Filename,
			photo.URL,
			photo.CreatedAt.Format(time.RFC3339),
		)
		if err != nil {
			return fmt.Errorf("failed to create photo: %w", err)
		}

		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get last insert ID: %w", err)
		}
		photo.ID = id

		for i, tag := range photo.Tags {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO photo_tags (photo_id, position, tag) VALUES (?, ?, ?)
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
		WHERE id = ?
	`

	photo := &domain.Photo{}
	var createdAt string

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&photo.ID,
		&photo.OwnerID,
		&photo.Filename,
		&photo.URL,
		&createdAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrPhotoNotFound
		}
		return nil, fmt.Errorf("failed to get photo: %w", err)
	}
	photo.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)

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
		WHERE owner_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?
	`

	rows, err := r.db.QueryContext(ctx, query, ownerID, opts.Limit, opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list photos: %w", err)
	}
	defer rows.Close()

	photos := []*domain.Photo{}
	for rows.Next() {
		photo := &domain.Photo{}
		var createdAt string

		if err := rows.Scan(
			&photo.ID,
			&photo.OwnerID,
			&photo.Filename,
			&photo.URL,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan photo: %w", err)
		}
		photo.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
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

	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM photos WHERE id = ?`, photoID).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check photo existence: %w", err)
		}
		if exists == 0 {
			return domain.ErrPhotoNotFound
		}

		result, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO photo_likes (photo_id, user_id, created_at)
			VALUES (?, ?, ?)
		`, photoID, userID, time.Now().UTC().Format(time.RFC3339))
		if err != nil {
			return fmt.Errorf("failed to add like: %w", err)
		}

		inserted, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if inserted == 0 {
			// Already liked: toggle means remove.
			if _, err := tx.ExecContext(ctx, `
				DELETE FROM photo_likes WHERE photo_id = ? AND user_id = ?
			`, photoID, userID); err != nil {
				return fmt.Errorf("failed to remove like: %w", err)
			}
		}

		rows, err := tx.QueryContext(ctx, `
			SELECT user_id FROM photo_likes
			WHERE photo_id = ?
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
	result, err := r.db.ExecContext(ctx, `DELETE FROM photos WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete photo: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return domain.ErrPhotoNotFound
	}

	return nil
}

func (r *photoRepository) loadTags(ctx context.Context, photoID int64) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT tag FROM photo_tags WHERE photo_id = ? ORDER BY position
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
	rows, err := r.db.QueryContext(ctx, `
		SELECT user_id FROM photo_likes WHERE photo_id = ? ORDER BY created_at, user_id
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
