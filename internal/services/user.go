package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/sealbox/sealbox/internal/models"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrEmailExists     = errors.New("email already registered")
	ErrInvalidPrivacy  = errors.New("invalid privacy preference")
	ErrEmailTakenOther = errors.New("email belongs to another account")
)

const userColumns = `id, email, password_hash, name, bio, privacy, profile_image, email_verified, created_at, updated_at`

type UserService struct {
	db DB
}

func NewUserService(db DB) *UserService {
	return &UserService{db: db}
}

// Create inserts a new account. Emails are stored lowercased and must be
// unique; new accounts get friends-only privacy. Signup creates the row
// only after the verification code checks out, so it passes EmailVerified
// true; the row is inserted verified in the same statement rather than
// flipped afterwards.
func (s *UserService) Create(ctx context.Context, params models.CreateUserParams) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(params.Email))

	var exists bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email,
	).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("checking email: %w", err)
	}
	if exists {
		return nil, ErrEmailExists
	}

	user := &models.User{}
	err = s.db.QueryRow(ctx,
		`INSERT INTO users (email, password_hash, name, privacy, email_verified)
		 VALUES ($1, $2, $3, 'friends', $4)
		 RETURNING `+userColumns,
		email, params.PasswordHash, params.Name, params.EmailVerified,
	).Scan(&user.ID, &user.Email, &user.PasswordHash, &user.Name, &user.Bio,
		&user.Privacy, &user.ProfileImage, &user.EmailVerified, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	return user, nil
}

func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`,
		strings.ToLower(strings.TrimSpace(email)))
}

// UpdateProfile applies the profile fields in one statement. A changed email
// must not collide with another account, and resets verification.
func (s *UserService) UpdateProfile(ctx context.Context, userID uuid.UUID, params models.UpdateProfileParams) (*models.User, error) {
	current, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(params.Email))
	emailChanged := email != current.Email
	if emailChanged {
		var taken bool
		err := s.db.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM users WHERE email = $1 AND id <> $2)`, email, userID,
		).Scan(&taken)
		if err != nil {
			return nil, fmt.Errorf("checking email: %w", err)
		}
		if taken {
			return nil, ErrEmailTakenOther
		}
	}

	profileImage := params.ProfileImage
	if profileImage == nil {
		profileImage = current.ProfileImage
	}
	passwordHash := current.PasswordHash
	if params.NewPasswordHash != nil {
		passwordHash = *params.NewPasswordHash
	}

	user := &models.User{}
	err = s.db.QueryRow(ctx,
		`UPDATE users
		 SET name = $1, email = $2, bio = $3, profile_image = $4, password_hash = $5,
		     email_verified = CASE WHEN $6 THEN FALSE ELSE email_verified END,
		     updated_at = NOW()
		 WHERE id = $7
		 RETURNING `+userColumns,
		params.Name, email, params.Bio, profileImage, passwordHash, emailChanged, userID,
	).Scan(&user.ID, &user.Email, &user.PasswordHash, &user.Name, &user.Bio,
		&user.Privacy, &user.ProfileImage, &user.EmailVerified, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("updating profile: %w", err)
	}

	return user, nil
}

func (s *UserService) UpdatePrivacy(ctx context.Context, userID uuid.UUID, privacy string) error {
	if !models.IsValidPrivacyPreference(privacy) {
		return ErrInvalidPrivacy
	}

	tag, err := s.db.Exec(ctx,
		`UPDATE users SET privacy = $1, updated_at = NOW() WHERE id = $2`,
		privacy, userID,
	)
	if err != nil {
		return fmt.Errorf("updating privacy: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (s *UserService) MarkEmailVerified(ctx context.Context, userID uuid.UUID) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE users SET email_verified = TRUE, updated_at = NOW() WHERE id = $1`,
		userID,
	)
	if err != nil {
		return fmt.Errorf("marking email verified: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (s *UserService) getOne(ctx context.Context, query string, arg any) (*models.User, error) {
	user := &models.User{}
	err := s.db.QueryRow(ctx, query, arg).Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.Name, &user.Bio,
		&user.Privacy, &user.ProfileImage, &user.EmailVerified, &user.CreatedAt, &user.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return user, nil
}
