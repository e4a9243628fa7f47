package models

import (
	"time"

	"github.com/google/uuid"
)

type NotificationKind string

const (
	NotificationKindFriendRequest  NotificationKind = "friend_request"
	NotificationKindFriendAccepted NotificationKind = "friend_accepted"
	NotificationKindCapsuleShared  NotificationKind = "capsule_shared"
)

type Notification struct {
	ID        uuid.UUID        `json:"id"`
	UserID    uuid.UUID        `json:"user_id"`
	Kind      NotificationKind `json:"kind"`
	Message   string           `json:"message"`
	Read      bool             `json:"read"`
	CreatedAt time.Time        `json:"created_at"`
}
