package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/prn-tf/lightbox/internal/domain"
)

func newUserService(repo *MockUserRepository, cache *MockCache) *UserService {
	return NewUserService(repo, cache, bcrypt.MinCost, zerolog.Nop())
}

func TestUserService_Register(t *testing.T) {
	tests := []struct {
		name      string
		input     RegisterInput
		wantErr   error
		setupRepo func(*MockUserRepository)
	}{
		{
			name: "success",
			input: RegisterInput{
				Username: "alice",
				Email:    "alice@example.com",
				Password: "Sup3rSecret!",
			},
			wantErr: nil,
		},
		{
			name: "username too short",
			input: RegisterInput{
				Username: "al",
				Email:    "alice@example.com",
				Password: "Sup3rSecret!",
			},
			wantErr: domain.ErrInvalidUsername,
		},
		{
			name: "bad email",
			input: RegisterInput{
				Username: "alice",
				Email:    "not-an-email",
				Password: "Sup3rSecret!",
			},
			wantErr: domain.ErrInvalidEmail,
		},
		{
			name: "weak password",
			input: RegisterInput{
				Username: "alice",
				Email:    "alice@example.com",
				Password: "password",
			},
			wantErr: domain.ErrInvalidPassword,
		},
		{
			name: "username taken",
			input: RegisterInput{
				Username: "alice",
				Email:    "new@example.com",
				Password: "Sup3rSecret!",
			},
			wantErr: domain.ErrUserAlreadyExists,
			setupRepo: func(m *MockUserRepository) {
				m.users[1] = &domain.User{ID: 1, Username: "alice", Email: "alice@example.com"}
			},
		},
		{
			name: "email taken",
			input: RegisterInput{
				Username: "bob",
				Email:    "alice@example.com",
				Password: "Sup3rSecret!",
			},
			wantErr: domain.ErrUserAlreadyExists,
			setupRepo: func(m *MockUserRepository) {
				m.users[1] = &domain.User{ID: 1, Username: "alice", Email: "alice@example.com"}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewMockUserRepository()
			if tt.setupRepo != nil {
				tt.setupRepo(repo)
			}

			svc := newUserService(repo, NewMockCache())
			output, err := svc.Register(context.Background(), tt.input)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected error %v, got %v", tt.wantErr, err)
				}
				return
			}

			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}

			if output.User.ID == 0 {
				t.Error("expected user to be assigned an ID")
			}
			if output.User.PasswordHash == tt.input.Password {
				t.Error("password must not be stored in plaintext")
			}
			if err := bcrypt.CompareHashAndPassword([]byte(output.User.PasswordHash), []byte(tt.input.Password)); err != nil {
				t.Errorf("stored hash doesn't match password: %v", err)
			}
		})
	}
}

func TestUserService_Authenticate(t *testing.T) {
	repo := NewMockUserRepository()
	svc := newUserService(repo, NewMockCache())

	_, err := svc.Register(context.Background(), RegisterInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "Sup3rSecret!",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	t.Run("success", func(t *testing.T) {
		output, err := svc.Authenticate(context.Background(), AuthenticateInput{
			Email:    "alice@example.com",
			Password: "Sup3rSecret!",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if output.User.Username != "alice" {
			t.Errorf("expected alice, got %s", output.User.Username)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Authenticate(context.Background(), AuthenticateInput{
			Email:    "alice@example.com",
			Password: "WrongPassw0rd!",
		})
		if !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Errorf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.Authenticate(context.Background(), AuthenticateInput{
			Email:    "nobody@example.com",
			Password: "Sup3rSecret!",
		})
		if !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Errorf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	// Wrong password and unknown email must be indistinguishable.
	t.Run("uniform error", func(t *testing.T) {
		_, errWrongPass := svc.Authenticate(context.Background(), AuthenticateInput{
			Email:    "alice@example.com",
			Password: "WrongPassw0rd!",
		})
		_, errUnknown := svc.Authenticate(context.Background(), AuthenticateInput{
			Email:    "nobody@example.com",
			Password: "Sup3rSecret!",
		})
		if errWrongPass.Error() != errUnknown.Error() {
			t.Errorf("error messages differ: %q vs %q", errWrongPass, errUnknown)
		}
	})
}

func TestUserService_GetProfile(t *testing.T) {
	repo := NewMockUserRepository()
	cache := NewMockCache()
	svc := newUserService(repo, cache)

	output, err := svc.Register(context.Background(), RegisterInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "Sup3rSecret!",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	user, err := svc.GetProfile(context.Background(), output.User.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.Username != "alice" {
		t.Errorf("expected alice, got %s", user.Username)
	}

	// Second read must hit the cache.
	if _, cached := cache.items[profileCacheKey(output.User.ID)]; !cached {
		t.Error("expected profile to be cached after first read")
	}
	repo.getErr = errors.New("db down")
	user, err = svc.GetProfile(context.Background(), output.User.ID)
	if err != nil {
		t.Fatalf("cached read failed: %v", err)
	}
	if user.Username != "alice" {
		t.Errorf("expected alice from cache, got %s", user.Username)
	}

	t.Run("not found", func(t *testing.T) {
		repo.getErr = nil
		_, err := svc.GetProfile(context.Background(), 999)
		if !errors.Is(err, domain.ErrUserNotFound) {
			t.Errorf("expected ErrUserNotFound, got %v", err)
		}
	})
}

func TestUserService_UpdateProfile(t *testing.T) {
	repo := NewMockUserRepository()
	cache := NewMockCache()
	svc := newUserService(repo, cache)

	output, err := svc.Register(context.Background(), RegisterInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "Sup3rSecret!",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	userID := output.User.ID

	// Prime the cache.
	if _, err := svc.GetProfile(context.Background(), userID); err != nil {
		t.Fatalf("get profile failed: %v", err)
	}

	newBio := "photographer"
	updated, err := svc.UpdateProfile(context.Background(), UpdateProfileInput{
		UserID: userID,
		Bio:    &newBio,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.User.Bio != "photographer" {
		t.Errorf("expected bio to change, got %q", updated.User.Bio)
	}
	if updated.User.Username != "alice" {
		t.Errorf("username must be untouched, got %q", updated.User.Username)
	}

	if _, cached := cache.items[profileCacheKey(userID)]; cached {
		t.Error("expected cache to be invalidated after update")
	}

	t.Run("username conflict", func(t *testing.T) {
		if _, err := svc.Register(context.Background(), RegisterInput{
			Username: "bob",
			Email:    "bob@example.com",
			Password: "Sup3rSecret!",
		}); err != nil {
			t.Fatalf("register failed: %v", err)
		}

		taken := "bob"
		_, err := svc.UpdateProfile(context.Background(), UpdateProfileInput{
			UserID:   userID,
			Username: &taken,
		})
		if !errors.Is(err, domain.ErrUserAlreadyExists) {
			t.Errorf("expected ErrUserAlreadyExists, got %v", err)
		}
	})
}
