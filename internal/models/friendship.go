package models

import (
	"time"

	"github.com/google/uuid"
)

type FriendRequestStatus string

const (
	FriendRequestStatusPending  FriendRequestStatus = "pending"
	FriendRequestStatusAccepted FriendRequestStatus = "accepted"
)

// FriendRequest is a directional edge in the friend graph. A single row
// represents the whole relationship: two users are friends when an accepted
// row exists between them in either direction, so symmetry is a property of
// the queries rather than of mirrored rows.
type FriendRequest struct {
	ID        uuid.UUID           `json:"id"`
	UserID    uuid.UUID           `json:"user_id"`
	FriendID  uuid.UUID           `json:"friend_id"`
	Status    FriendRequestStatus `json:"status"`
	CreatedAt time.Time           `json:"created_at"`
}

// PendingRequest is an incoming friend request joined with the requester's
// public details, for the requests inbox.
type PendingRequest struct {
	FriendRequest
	RequesterName  string  `json:"requester_name"`
	RequesterImage *string `json:"requester_image,omitempty"`
}

// Friend is the other party of an accepted friendship.
type Friend struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	ProfileImage *string   `json:"profile_image,omitempty"`
}
