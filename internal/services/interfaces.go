package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/sealbox/sealbox/internal/models"
)

// UserServiceInterface defines the contract for user operations.
type UserServiceInterface interface {
	Create(ctx context.Context, params models.CreateUserParams) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, params models.UpdateProfileParams) (*models.User, error)
	UpdatePrivacy(ctx context.Context, userID uuid.UUID, privacy string) error
	MarkEmailVerified(ctx context.Context, userID uuid.UUID) error
}

// AuthServiceInterface defines the contract for authentication operations.
type AuthServiceInterface interface {
	HashPassword(password string) (string, error)
	VerifyPassword(hash, password string) bool
	GenerateSessionToken() (token string, hash string, err error)
	CreateSession(ctx context.Context, userID uuid.UUID) (token string, err error)
	ValidateSession(ctx context.Context, token string) (*models.User, error)
	DeleteSession(ctx context.Context, token string) error
	DeleteAllUserSessions(ctx context.Context, userID uuid.UUID) error
}

// CapsuleServiceInterface defines the contract for capsule operations used by handlers.
type CapsuleServiceInterface interface {
	Create(ctx context.Context, params models.CreateCapsuleParams) (*models.Capsule, error)
	GetDetails(ctx context.Context, viewerID, capsuleID uuid.UUID) (*models.CapsuleSummary, error)
	ListVisible(ctx context.Context, viewerID uuid.UUID) ([]models.CapsuleSummary, error)
	ListForOwner(ctx context.Context, viewerID, ownerID uuid.UUID) ([]models.CapsuleSummary, error)
	ListShared(ctx context.Context, viewerID uuid.UUID) ([]models.SharedCapsule, error)
	AcceptShare(ctx context.Context, viewerID, capsuleID uuid.UUID, images []models.NewImage) error
	UpdateShareStatus(ctx context.Context, viewerID, shareID uuid.UUID, status models.ShareStatus) error
	UpdateImageComment(ctx context.Context, viewerID, capsuleID uuid.UUID, path, comment string) error
	CountByOwner(ctx context.Context, ownerID uuid.UUID) (int, error)
	MonthlyStats(ctx context.Context, ownerID uuid.UUID, year int) ([]models.MonthStats, error)
}

// FriendServiceInterface defines the contract for friendship operations.
type FriendServiceInterface interface {
	SendRequest(ctx context.Context, userID, friendID uuid.UUID) (*models.FriendRequest, error)
	AcceptRequest(ctx context.Context, userID, requestID uuid.UUID) (*models.FriendRequest, error)
	DeclineRequest(ctx context.Context, userID, requestID uuid.UUID) error
	RemoveFriend(ctx context.Context, userID, friendID uuid.UUID) error
	IsFriend(ctx context.Context, userID, otherUserID uuid.UUID) (bool, error)
	ListFriends(ctx context.Context, userID uuid.UUID) ([]models.Friend, error)
	ListPendingRequests(ctx context.Context, userID uuid.UUID) ([]models.PendingRequest, error)
	PendingRequestCount(ctx context.Context, userID uuid.UUID) (int, error)
	FriendCount(ctx context.Context, userID uuid.UUID) (int, error)
	BrowseUsers(ctx context.Context, viewerID uuid.UUID) ([]models.BrowseUser, error)
}

// FriendChecker is a lightweight interface for friendship checks used by the capsule service.
type FriendChecker interface {
	IsFriend(ctx context.Context, userID, otherUserID uuid.UUID) (bool, error)
}

// NotificationServiceInterface defines the contract for notification operations.
type NotificationServiceInterface interface {
	Create(ctx context.Context, userID uuid.UUID, kind models.NotificationKind, message string) (*models.Notification, error)
	List(ctx context.Context, userID uuid.UUID, limit int) ([]models.Notification, error)
	MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) error
	UnreadCount(ctx context.Context, userID uuid.UUID) (int, error)
}

// EmailServiceInterface defines the contract for email operations.
type EmailServiceInterface interface {
	SendVerificationCode(ctx context.Context, email, name string) (string, error)
	VerifyCode(ctx context.Context, email, code string) error
	SendCapsuleInvite(ctx context.Context, email, inviteeName, ownerName, capsuleTitle string) error
}
