package models

import (
	"time"

	"github.com/google/uuid"
)

type CapsulePrivacy string

const (
	CapsulePrivacyPrivate CapsulePrivacy = "private"
	CapsulePrivacyFriends CapsulePrivacy = "friends"
	CapsulePrivacyPublic  CapsulePrivacy = "public"
)

// IsValidCapsulePrivacy checks if a privacy string is valid.
func IsValidCapsulePrivacy(p string) bool {
	switch CapsulePrivacy(p) {
	case CapsulePrivacyPrivate, CapsulePrivacyFriends, CapsulePrivacyPublic:
		return true
	}
	return false
}

type CapsuleStatus string

const (
	// CapsuleStatusPending means at least one share has not been resolved yet.
	CapsuleStatusPending   CapsuleStatus = "pending"
	CapsuleStatusCompleted CapsuleStatus = "completed"
)

type ShareStatus string

const (
	ShareStatusPending  ShareStatus = "pending"
	ShareStatusAccepted ShareStatus = "accepted"
	ShareStatusDeclined ShareStatus = "declined"
)

// IsValidShareStatus checks if a share status string is valid.
func IsValidShareStatus(s string) bool {
	switch ShareStatus(s) {
	case ShareStatusPending, ShareStatusAccepted, ShareStatusDeclined:
		return true
	}
	return false
}

// HumanTimeLayout renders delivery timestamps the way the UI shows them,
// e.g. "March 9, 2027, 4:30 pm".
const HumanTimeLayout = "January 2, 2006, 3:04 pm"

type Capsule struct {
	ID          uuid.UUID      `json:"id"`
	UserID      uuid.UUID      `json:"user_id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Vision      string         `json:"vision,omitempty"`
	Design      string         `json:"design,omitempty"`
	Privacy     CapsulePrivacy `json:"privacy"`
	Status      CapsuleStatus  `json:"status"`
	DeliverAt   time.Time      `json:"deliver_at"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`

	Images []CapsuleImage `json:"images,omitempty"`
	Shares []CapsuleShare `json:"shares,omitempty"`
}

// CapsuleImage is one entry of a capsule's ordered image sequence with its
// caption. Order is explicit via Position.
type CapsuleImage struct {
	Position int    `json:"position"`
	Path     string `json:"path"`
	Comment  string `json:"comment,omitempty"`
}

// CapsuleShare links a capsule to an invited user.
type CapsuleShare struct {
	ID        uuid.UUID   `json:"id"`
	CapsuleID uuid.UUID   `json:"capsule_id"`
	UserID    uuid.UUID   `json:"user_id"`
	Status    ShareStatus `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
}

// ShareWithUser is a share joined with the invitee's details, for owner-facing
// capsule views.
type ShareWithUser struct {
	CapsuleShare
	UserName  string `json:"user_name"`
	UserEmail string `json:"user_email,omitempty"`
}

// CapsuleSummary is a capsule annotated with viewer-relative fields for
// listing endpoints.
type CapsuleSummary struct {
	Capsule
	OwnerName   string      `json:"owner_name"`
	IsOwner     bool        `json:"is_owner"`
	ShareStatus ShareStatus `json:"share_status"`
	DeliverHint string      `json:"deliver_hint"`
}

// SharedCapsule is a row of the shared-with-me inbox.
type SharedCapsule struct {
	ShareID   uuid.UUID   `json:"share_id"`
	CapsuleID uuid.UUID   `json:"capsule_id"`
	Title     string      `json:"title"`
	Vision    string      `json:"vision,omitempty"`
	OwnerID   uuid.UUID   `json:"owner_id"`
	SharedBy  string      `json:"shared_by"`
	Status    ShareStatus `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
}

type CreateCapsuleParams struct {
	UserID      uuid.UUID
	Title       string
	Description string
	Vision      string
	Design      string
	Privacy     CapsulePrivacy
	DeliverAt   time.Time
	Images      []NewImage
	SharedWith  []uuid.UUID
}

// NewImage is an uploaded image reference with its caption, prior to being
// assigned a position.
type NewImage struct {
	Path    string
	Comment string
}

// MonthStats is one month of capsule creation counts broken down by privacy.
type MonthStats struct {
	Month   string `json:"month"`
	Created int    `json:"created"`
	Private int    `json:"private"`
	Friends int    `json:"friends"`
	Public  int    `json:"public"`
}
