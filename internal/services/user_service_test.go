package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/sealbox/sealbox/internal/models"
)

func userRowValues(id uuid.UUID, email, name string) []any {
	now := time.Now()
	return []any{id, email, "hashed", name, "", models.PrivacyPreferenceFriends,
		(*string)(nil), false, now, now}
}

func TestCreateUserLowercasesEmail(t *testing.T) {
	userID := uuid.New()

	queries := 0
	db := &fakeDB{
		QueryRowFunc: func(ctx context.Context, sql string, args ...any) Row {
			queries++
			if queries == 1 {
				if args[0] != "alice@example.com" {
					t.Errorf("expected lowercased email, got %v", args[0])
				}
				return rowFromValues(false)
			}
			if args[3] != true {
				t.Errorf("expected email_verified insert arg true, got %v", args[3])
			}
			return rowFromValues(userRowValues(userID, "alice@example.com", "Alice")...)
		},
	}
	service := NewUserService(db)

	user, err := service.Create(context.Background(), models.CreateUserParams{
		Email:         "  Alice@Example.COM ",
		PasswordHash:  "hashed",
		Name:          "Alice",
		EmailVerified: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.Email != "alice@example.com" {
		t.Errorf("expected normalized email, got %s", user.Email)
	}
	if user.Privacy != models.PrivacyPreferenceFriends {
		t.Errorf("expected friends-only default privacy, got %s", user.Privacy)
	}
}

func TestCreateUserEmailExists(t *testing.T) {
	db := &fakeDB{
		QueryRowFunc: func(ctx context.Context, sql string, args ...any) Row {
			return rowFromValues(true)
		},
	}
	service := NewUserService(db)

	_, err := service.Create(context.Background(), models.CreateUserParams{
		Email:        "taken@example.com",
		PasswordHash: "hashed",
		Name:         "Bob",
	})
	if !errors.Is(err, ErrEmailExists) {
		t.Fatalf("expected ErrEmailExists, got %v", err)
	}
}

func TestGetByIDNotFound(t *testing.T) {
	db := &fakeDB{
		QueryRowFunc: func(ctx context.Context, sql string, args ...any) Row {
			return rowWithError(pgx.ErrNoRows)
		},
	}
	service := NewUserService(db)

	_, err := service.GetByID(context.Background(), uuid.New())
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUpdateProfileEmailCollision(t *testing.T) {
	userID := uuid.New()

	queries := 0
	db := &fakeDB{
		QueryRowFunc: func(ctx context.Context, sql string, args ...any) Row {
			queries++
			if queries == 1 {
				return rowFromValues(userRowValues(userID, "old@example.com", "Alice")...)
			}
			// Someone else owns the new address.
			return rowFromValues(true)
		},
	}
	service := NewUserService(db)

	_, err := service.UpdateProfile(context.Background(), userID, models.UpdateProfileParams{
		Name:  "Alice",
		Email: "new@example.com",
	})
	if !errors.Is(err, ErrEmailTakenOther) {
		t.Fatalf("expected ErrEmailTakenOther, got %v", err)
	}
}

func TestUpdateProfileEmailChangeResetsVerification(t *testing.T) {
	userID := uuid.New()

	queries := 0
	db := &fakeDB{
		QueryRowFunc: func(ctx context.Context, sql string, args ...any) Row {
			queries++
			switch queries {
			case 1:
				return rowFromValues(userRowValues(userID, "old@example.com", "Alice")...)
			case 2:
				return rowFromValues(false)
			default:
				if !strings.Contains(sql, "UPDATE users") {
					t.Fatalf("expected update, got query: %s", sql)
				}
				// $6 carries the email-changed flag.
				if args[5] != true {
					t.Errorf("expected emailChanged to be true, got %v", args[5])
				}
				return rowFromValues(userRowValues(userID, "new@example.com", "Alice")...)
			}
		},
	}
	service := NewUserService(db)

	user, err := service.UpdateProfile(context.Background(), userID, models.UpdateProfileParams{
		Name:  "Alice",
		Email: "new@example.com",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.Email != "new@example.com" {
		t.Errorf("expected updated email, got %s", user.Email)
	}
	if queries != 3 {
		t.Errorf("expected 3 queries, got %d", queries)
	}
}

func TestUpdateProfileKeepsImageAndPassword(t *testing.T) {
	userID := uuid.New()
	existingImage := "profiles/old.jpg"

	queries := 0
	db := &fakeDB{
		QueryRowFunc: func(ctx context.Context, sql string, args ...any) Row {
			queries++
			if queries == 1 {
				values := userRowValues(userID, "alice@example.com", "Alice")
				values[6] = &existingImage
				return rowFromValues(values...)
			}
			if img, ok := args[3].(*string); !ok || img == nil || *img != existingImage {
				t.Errorf("expected existing profile image to be kept, got %v", args[3])
			}
			if args[4] != "hashed" {
				t.Errorf("expected existing password hash to be kept, got %v", args[4])
			}
			return rowFromValues(userRowValues(userID, "alice@example.com", "Alice")...)
		},
	}
	service := NewUserService(db)

	_, err := service.UpdateProfile(context.Background(), userID, models.UpdateProfileParams{
		Name:  "Alice",
		Email: "alice@example.com",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestUpdatePrivacyInvalid(t *testing.T) {
	service := NewUserService(&fakeDB{})

	err := service.UpdatePrivacy(context.Background(), uuid.New(), "everyone")
	if !errors.Is(err, ErrInvalidPrivacy) {
		t.Fatalf("expected ErrInvalidPrivacy, got %v", err)
	}
}

func TestUpdatePrivacy(t *testing.T) {
	db := &fakeDB{
		ExecFunc: func(ctx context.Context, sql string, args ...any) (CommandTag, error) {
			if args[0] != "public" {
				t.Errorf("expected privacy public, got %v", args[0])
			}
			return fakeCommandTag{rowsAffected: 1}, nil
		},
	}
	service := NewUserService(db)

	if err := service.UpdatePrivacy(context.Background(), uuid.New(), "public"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestMarkEmailVerifiedUnknownUser(t *testing.T) {
	db := &fakeDB{
		ExecFunc: func(ctx context.Context, sql string, args ...any) (CommandTag, error) {
			return fakeCommandTag{rowsAffected: 0}, nil
		},
	}
	service := NewUserService(db)

	err := service.MarkEmailVerified(context.Background(), uuid.New())
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
