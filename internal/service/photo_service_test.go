package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/prn-tf/lightbox/internal/domain"
)

func newPhotoService(repo *MockPhotoRepository, store *MockBackend) *PhotoService {
	return NewPhotoService(repo, store, "http://localhost:8080", zerolog.Nop())
}

func uploadTestPhoto(t *testing.T, svc *PhotoService, ownerID int64, tags string) *domain.Photo {
	t.Helper()
	output, err := svc.Upload(context.Background(), UploadInput{
		OwnerID:  ownerID,
		Filename: "sunset.JPG",
		Tags:     tags,
		File:     strings.NewReader("fake image bytes"),
		Size:     16,
	})
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	return output.Photo
}

func TestPhotoService_Upload(t *testing.T) {
	repo := NewMockPhotoRepository()
	store := NewMockBackend()
	svc := newPhotoService(repo, store)

	photo := uploadTestPhoto(t, svc, 1, " nature, sunset ,, beach ")

	if photo.ID == 0 {
		t.Error("expected photo to be assigned an ID")
	}
	if photo.OwnerID != 1 {
		t.Errorf("expected owner 1, got %d", photo.OwnerID)
	}
	if !strings.HasSuffix(photo.Filename, ".jpg") {
		t.Errorf("expected lowercased extension, got %q", photo.Filename)
	}
	if photo.Filename == "sunset.jpg" {
		t.Error("stored name must not be the client filename")
	}
	if photo.URL != "http://localhost:8080/uploads/"+photo.Filename {
		t.Errorf("unexpected URL %q", photo.URL)
	}

	wantTags := []string{"nature", "sunset", "beach"}
	if len(photo.Tags) != len(wantTags) {
		t.Fatalf("expected tags %v, got %v", wantTags, photo.Tags)
	}
	for i, tag := range wantTags {
		if photo.Tags[i] != tag {
			t.Errorf("tag %d: expected %q, got %q", i, tag, photo.Tags[i])
		}
	}

	if exists, _ := store.Exists(context.Background(), photo.Filename); !exists {
		t.Error("expected binary to be stored")
	}
}

func TestPhotoService_UploadMissingFile(t *testing.T) {
	svc := newPhotoService(NewMockPhotoRepository(), NewMockBackend())

	_, err := svc.Upload(context.Background(), UploadInput{OwnerID: 1, Filename: "x.jpg"})
	if !errors.Is(err, domain.ErrMissingFile) {
		t.Errorf("expected ErrMissingFile, got %v", err)
	}
}

func TestPhotoService_UploadCleansUpOnCreateFailure(t *testing.T) {
	repo := NewMockPhotoRepository()
	store := NewMockBackend()
	svc := newPhotoService(repo, store)

	repo.createErr = errors.New("db down")

	_, err := svc.Upload(context.Background(), UploadInput{
		OwnerID:  1,
		Filename: "sunset.jpg",
		File:     strings.NewReader("data"),
		Size:     4,
	})
	if err == nil {
		t.Fatal("expected error")
	}

	if len(store.files) != 0 {
		t.Error("expected binary to be removed after metadata failure")
	}
}

func TestPhotoService_ListByOwner(t *testing.T) {
	repo := NewMockPhotoRepository()
	svc := newPhotoService(repo, NewMockBackend())

	for i := 0; i < 25; i++ {
		uploadTestPhoto(t, svc, 1, "")
	}
	uploadTestPhoto(t, svc, 2, "")

	tests := []struct {
		name      string
		input     ListInput
		wantCount int
		wantPage  int
		wantLimit int
	}{
		{"defaults", ListInput{OwnerID: 1}, 10, 1, 10},
		{"second page", ListInput{OwnerID: 1, Page: 2, Limit: 10}, 10, 2, 10},
		{"last partial page", ListInput{OwnerID: 1, Page: 3, Limit: 10}, 5, 3, 10},
		{"past the end", ListInput{OwnerID: 1, Page: 99, Limit: 10}, 0, 99, 10},
		{"negative page clamped", ListInput{OwnerID: 1, Page: -5, Limit: 10}, 10, 1, 10},
		{"zero limit gets default", ListInput{OwnerID: 1, Page: 1, Limit: 0}, 10, 1, 10},
		{"oversized limit capped", ListInput{OwnerID: 1, Page: 1, Limit: 1000}, 25, 1, 100},
		{"other owner is isolated", ListInput{OwnerID: 2}, 1, 1, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := svc.ListByOwner(context.Background(), tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(output.Photos) != tt.wantCount {
				t.Errorf("expected %d photos, got %d", tt.wantCount, len(output.Photos))
			}
			if output.Page != tt.wantPage {
				t.Errorf("expected page %d, got %d", tt.wantPage, output.Page)
			}
			if output.Limit != tt.wantLimit {
				t.Errorf("expected limit %d, got %d", tt.wantLimit, output.Limit)
			}
			if output.Photos == nil {
				t.Error("photos must never be nil")
			}
		})
	}
}

func TestPhotoService_ListByOwnerNewestFirst(t *testing.T) {
	repo := NewMockPhotoRepository()
	svc := newPhotoService(repo, NewMockBackend())

	first := uploadTestPhoto(t, svc, 1, "")
	second := uploadTestPhoto(t, svc, 1, "")

	output, err := svc.ListByOwner(context.Background(), ListInput{OwnerID: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(output.Photos) != 2 {
		t.Fatalf("expected 2 photos, got %d", len(output.Photos))
	}
	if output.Photos[0].ID != second.ID || output.Photos[1].ID != first.ID {
		t.Errorf("expected newest first, got IDs %d, %d", output.Photos[0].ID, output.Photos[1].ID)
	}
}

func TestPhotoService_ToggleLike(t *testing.T) {
	repo := NewMockPhotoRepository()
	svc := newPhotoService(repo, NewMockBackend())

	photo := uploadTestPhoto(t, svc, 1, "")

	output, err := svc.ToggleLike(context.Background(), ToggleLikeInput{PhotoID: photo.ID, UserID: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(output.Likes) != 1 || output.Likes[0] != 2 {
		t.Errorf("expected likes [2], got %v", output.Likes)
	}

	// Toggling again removes the like.
	output, err = svc.ToggleLike(context.Background(), ToggleLikeInput{PhotoID: photo.ID, UserID: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(output.Likes) != 0 {
		t.Errorf("expected empty likes, got %v", output.Likes)
	}
	if output.Likes == nil {
		t.Error("likes must never be nil")
	}

	t.Run("photo not found", func(t *testing.T) {
		_, err := svc.ToggleLike(context.Background(), ToggleLikeInput{PhotoID: 999, UserID: 2})
		if !errors.Is(err, domain.ErrPhotoNotFound) {
			t.Errorf("expected ErrPhotoNotFound, got %v", err)
		}
	})
}

func TestPhotoService_Delete(t *testing.T) {
	repo := NewMockPhotoRepository()
	store := NewMockBackend()
	svc := newPhotoService(repo, store)

	photo := uploadTestPhoto(t, svc, 1, "")

	t.Run("not the owner", func(t *testing.T) {
		err := svc.Delete(context.Background(), DeleteInput{PhotoID: photo.ID, UserID: 2})
		if !errors.Is(err, domain.ErrPhotoNotFound) {
			t.Errorf("expected ErrPhotoNotFound for non-owner, got %v", err)
		}
	})

	t.Run("missing photo", func(t *testing.T) {
		err := svc.Delete(context.Background(), DeleteInput{PhotoID: 999, UserID: 1})
		if !errors.Is(err, domain.ErrPhotoNotFound) {
			t.Errorf("expected ErrPhotoNotFound, got %v", err)
		}
	})

	t.Run("owner deletes", func(t *testing.T) {
		if err := svc.Delete(context.Background(), DeleteInput{PhotoID: photo.ID, UserID: 1}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := repo.GetByID(context.Background(), photo.ID); !errors.Is(err, domain.ErrPhotoNotFound) {
			t.Error("expected photo record to be gone")
		}
		if exists, _ := store.Exists(context.Background(), photo.Filename); exists {
			t.Error("expected binary to be reclaimed")
		}
	})
}

func TestPhotoService_Open(t *testing.T) {
	repo := NewMockPhotoRepository()
	store := NewMockBackend()
	svc := newPhotoService(repo, store)

	photo := uploadTestPhoto(t, svc, 1, "")

	rc, err := svc.Open(context.Background(), photo.Filename)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rc.Close()

	_, err = svc.Open(context.Background(), "missing.jpg")
	if !errors.Is(err, domain.ErrPhotoNotFound) {
		t.Errorf("expected ErrPhotoNotFound, got %v", err)
	}
}
