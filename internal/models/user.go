package models

import (
	"time"

	"github.com/google/uuid"
)

type PrivacyPreference string

const (
	PrivacyPreferencePrivate PrivacyPreference = "private"
	PrivacyPreferenceFriends PrivacyPreference = "friends"
	PrivacyPreferencePublic  PrivacyPreference = "public"
)

// IsValidPrivacyPreference checks if a privacy preference string is valid.
func IsValidPrivacyPreference(p string) bool {
	switch PrivacyPreference(p) {
	case PrivacyPreferencePrivate, PrivacyPreferenceFriends, PrivacyPreferencePublic:
		return true
	}
	return false
}

type User struct {
	ID            uuid.UUID         `json:"id"`
	Email         string            `json:"email"`
	PasswordHash  string            `json:"-"`
	Name          string            `json:"name"`
	Bio           string            `json:"bio,omitempty"`
	Privacy       PrivacyPreference `json:"privacy"`
	ProfileImage  *string           `json:"profile_image,omitempty"`
	EmailVerified bool              `json:"email_verified"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

type CreateUserParams struct {
	Email         string
	PasswordHash  string
	Name          string
	EmailVerified bool
}

type UpdateProfileParams struct {
	Name            string
	Email           string
	Bio             string
	ProfileImage    *string
	NewPasswordHash *string
}

// BrowseUser is a directory entry for the friend-browsing page: another
// user annotated with the viewer's relationship to them.
type BrowseUser struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Bio          string    `json:"bio,omitempty"`
	ProfileImage *string   `json:"profile_image,omitempty"`
	IsFriend     bool      `json:"is_friend"`
	RequestSent  bool      `json:"request_sent"`
}

type Session struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
}
