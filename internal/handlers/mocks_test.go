package handlers

import (
	"context"

	"github.com/google/uuid"

	"github.com/sealbox/sealbox/internal/models"
)

type mockUserService struct {
	CreateFunc            func(ctx context.Context, params models.CreateUserParams) (*models.User, error)
	GetByIDFunc           func(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmailFunc        func(ctx context.Context, email string) (*models.User, error)
	UpdateProfileFunc     func(ctx context.Context, userID uuid.UUID, params models.UpdateProfileParams) (*models.User, error)
	UpdatePrivacyFunc     func(ctx context.Context, userID uuid.UUID, privacy string) error
	MarkEmailVerifiedFunc func(ctx context.Context, userID uuid.UUID) error
}

func (m *mockUserService) Create(ctx context.Context, params models.CreateUserParams) (*models.User, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, params)
	}
	return nil, nil
}

func (m *mockUserService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockUserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, nil
}

func (m *mockUserService) UpdateProfile(ctx context.Context, userID uuid.UUID, params models.UpdateProfileParams) (*models.User, error) {
	if m.UpdateProfileFunc != nil {
		return m.UpdateProfileFunc(ctx, userID, params)
	}
	return nil, nil
}

func (m *mockUserService) UpdatePrivacy(ctx context.Context, userID uuid.UUID, privacy string) error {
	if m.UpdatePrivacyFunc != nil {
		return m.UpdatePrivacyFunc(ctx, userID, privacy)
	}
	return nil
}

func (m *mockUserService) MarkEmailVerified(ctx context.Context, userID uuid.UUID) error {
	if m.MarkEmailVerifiedFunc != nil {
		return m.MarkEmailVerifiedFunc(ctx, userID)
	}
	return nil
}

type mockAuthService struct {
	HashPasswordFunc          func(password string) (string, error)
	VerifyPasswordFunc        func(hash, password string) bool
	GenerateSessionTokenFunc  func() (string, string, error)
	CreateSessionFunc         func(ctx context.Context, userID uuid.UUID) (string, error)
	ValidateSessionFunc       func(ctx context.Context, token string) (*models.User, error)
	DeleteSessionFunc         func(ctx context.Context, token string) error
	DeleteAllUserSessionsFunc func(ctx context.Context, userID uuid.UUID) error
}

func (m *mockAuthService) HashPassword(password string) (string, error) {
	if m.HashPasswordFunc != nil {
		return m.HashPasswordFunc(password)
	}
	return "hashed_" + password, nil
}

func (m *mockAuthService) VerifyPassword(hash, password string) bool {
	if m.VerifyPasswordFunc != nil {
		return m.VerifyPasswordFunc(hash, password)
	}
	return hash == "hashed_"+password
}

func (m *mockAuthService) GenerateSessionToken() (string, string, error) {
	if m.GenerateSessionTokenFunc != nil {
		return m.GenerateSessionTokenFunc()
	}
	return "token", "hash", nil
}

func (m *mockAuthService) CreateSession(ctx context.Context, userID uuid.UUID) (string, error) {
	if m.CreateSessionFunc != nil {
		return m.CreateSessionFunc(ctx, userID)
	}
	return "test_session_token", nil
}

func (m *mockAuthService) ValidateSession(ctx context.Context, token string) (*models.User, error) {
	if m.ValidateSessionFunc != nil {
		return m.ValidateSessionFunc(ctx, token)
	}
	return nil, nil
}

func (m *mockAuthService) DeleteSession(ctx context.Context, token string) error {
	if m.DeleteSessionFunc != nil {
		return m.DeleteSessionFunc(ctx, token)
	}
	return nil
}

func (m *mockAuthService) DeleteAllUserSessions(ctx context.Context, userID uuid.UUID) error {
	if m.DeleteAllUserSessionsFunc != nil {
		return m.DeleteAllUserSessionsFunc(ctx, userID)
	}
	return nil
}

type mockEmailService struct {
	SendVerificationCodeFunc func(ctx context.Context, email, name string) (string, error)
	VerifyCodeFunc           func(ctx context.Context, email, code string) error
	SendCapsuleInviteFunc    func(ctx context.Context, email, inviteeName, ownerName, capsuleTitle string) error
}

func (m *mockEmailService) SendVerificationCode(ctx context.Context, email, name string) (string, error) {
	if m.SendVerificationCodeFunc != nil {
		return m.SendVerificationCodeFunc(ctx, email, name)
	}
	return "ABC234", nil
}

func (m *mockEmailService) VerifyCode(ctx context.Context, email, code string) error {
	if m.VerifyCodeFunc != nil {
		return m.VerifyCodeFunc(ctx, email, code)
	}
	return nil
}

func (m *mockEmailService) SendCapsuleInvite(ctx context.Context, email, inviteeName, ownerName, capsuleTitle string) error {
	if m.SendCapsuleInviteFunc != nil {
		return m.SendCapsuleInviteFunc(ctx, email, inviteeName, ownerName, capsuleTitle)
	}
	return nil
}

type mockCapsuleService struct {
	CreateFunc             func(ctx context.Context, params models.CreateCapsuleParams) (*models.Capsule, error)
	GetDetailsFunc         func(ctx context.Context, viewerID, capsuleID uuid.UUID) (*models.CapsuleSummary, error)
	ListVisibleFunc        func(ctx context.Context, viewerID uuid.UUID) ([]models.CapsuleSummary, error)
	ListForOwnerFunc       func(ctx context.Context, viewerID, ownerID uuid.UUID) ([]models.CapsuleSummary, error)
	ListSharedFunc         func(ctx context.Context, viewerID uuid.UUID) ([]models.SharedCapsule, error)
	AcceptShareFunc        func(ctx context.Context, viewerID, capsuleID uuid.UUID, images []models.NewImage) error
	UpdateShareStatusFunc  func(ctx context.Context, viewerID, shareID uuid.UUID, status models.ShareStatus) error
	UpdateImageCommentFunc func(ctx context.Context, viewerID, capsuleID uuid.UUID, path, comment string) error
	CountByOwnerFunc       func(ctx context.Context, ownerID uuid.UUID) (int, error)
	MonthlyStatsFunc       func(ctx context.Context, ownerID uuid.UUID, year int) ([]models.MonthStats, error)
}

func (m *mockCapsuleService) Create(ctx context.Context, params models.CreateCapsuleParams) (*models.Capsule, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, params)
	}
	return nil, nil
}

func (m *mockCapsuleService) GetDetails(ctx context.Context, viewerID, capsuleID uuid.UUID) (*models.CapsuleSummary, error) {
	if m.GetDetailsFunc != nil {
		return m.GetDetailsFunc(ctx, viewerID, capsuleID)
	}
	return nil, nil
}

func (m *mockCapsuleService) ListVisible(ctx context.Context, viewerID uuid.UUID) ([]models.CapsuleSummary, error) {
	if m.ListVisibleFunc != nil {
		return m.ListVisibleFunc(ctx, viewerID)
	}
	return nil, nil
}

func (m *mockCapsuleService) ListForOwner(ctx context.Context, viewerID, ownerID uuid.UUID) ([]models.CapsuleSummary, error) {
	if m.ListForOwnerFunc != nil {
		return m.ListForOwnerFunc(ctx, viewerID, ownerID)
	}
	return nil, nil
}

func (m *mockCapsuleService) ListShared(ctx context.Context, viewerID uuid.UUID) ([]models.SharedCapsule, error) {
	if m.ListSharedFunc != nil {
		return m.ListSharedFunc(ctx, viewerID)
	}
	return nil, nil
}

func (m *mockCapsuleService) AcceptShare(ctx context.Context, viewerID, capsuleID uuid.UUID, images []models.NewImage) error {
	if m.AcceptShareFunc != nil {
		return m.AcceptShareFunc(ctx, viewerID, capsuleID, images)
	}
	return nil
}

func (m *mockCapsuleService) UpdateShareStatus(ctx context.Context, viewerID, shareID uuid.UUID, status models.ShareStatus) error {
	if m.UpdateShareStatusFunc != nil {
		return m.UpdateShareStatusFunc(ctx, viewerID, shareID, status)
	}
	return nil
}

func (m *mockCapsuleService) UpdateImageComment(ctx context.Context, viewerID, capsuleID uuid.UUID, path, comment string) error {
	if m.UpdateImageCommentFunc != nil {
		return m.UpdateImageCommentFunc(ctx, viewerID, capsuleID, path, comment)
	}
	return nil
}

func (m *mockCapsuleService) CountByOwner(ctx context.Context, ownerID uuid.UUID) (int, error) {
	if m.CountByOwnerFunc != nil {
		return m.CountByOwnerFunc(ctx, ownerID)
	}
	return 0, nil
}

func (m *mockCapsuleService) MonthlyStats(ctx context.Context, ownerID uuid.UUID, year int) ([]models.MonthStats, error) {
	if m.MonthlyStatsFunc != nil {
		return m.MonthlyStatsFunc(ctx, ownerID, year)
	}
	return nil, nil
}

type mockFriendService struct {
	SendRequestFunc         func(ctx context.Context, userID, friendID uuid.UUID) (*models.FriendRequest, error)
	AcceptRequestFunc       func(ctx context.Context, userID, requestID uuid.UUID) (*models.FriendRequest, error)
	DeclineRequestFunc      func(ctx context.Context, userID, requestID uuid.UUID) error
	RemoveFriendFunc        func(ctx context.Context, userID, friendID uuid.UUID) error
	IsFriendFunc            func(ctx context.Context, userID, otherUserID uuid.UUID) (bool, error)
	ListFriendsFunc         func(ctx context.Context, userID uuid.UUID) ([]models.Friend, error)
	ListPendingRequestsFunc func(ctx context.Context, userID uuid.UUID) ([]models.PendingRequest, error)
	PendingRequestCountFunc func(ctx context.Context, userID uuid.UUID) (int, error)
	FriendCountFunc         func(ctx context.Context, userID uuid.UUID) (int, error)
	BrowseUsersFunc         func(ctx context.Context, viewerID uuid.UUID) ([]models.BrowseUser, error)
}

func (m *mockFriendService) SendRequest(ctx context.Context, userID, friendID uuid.UUID) (*models.FriendRequest, error) {
	if m.SendRequestFunc != nil {
		return m.SendRequestFunc(ctx, userID, friendID)
	}
	return nil, nil
}

func (m *mockFriendService) AcceptRequest(ctx context.Context, userID, requestID uuid.UUID) (*models.FriendRequest, error) {
	if m.AcceptRequestFunc != nil {
		return m.AcceptRequestFunc(ctx, userID, requestID)
	}
	return nil, nil
}

func (m *mockFriendService) DeclineRequest(ctx context.Context, userID, requestID uuid.UUID) error {
	if m.DeclineRequestFunc != nil {
		return m.DeclineRequestFunc(ctx, userID, requestID)
	}
	return nil
}

func (m *mockFriendService) RemoveFriend(ctx context.Context, userID, friendID uuid.UUID) error {
	if m.RemoveFriendFunc != nil {
		return m.RemoveFriendFunc(ctx, userID, friendID)
	}
	return nil
}

func (m *mockFriendService) IsFriend(ctx context.Context, userID, otherUserID uuid.UUID) (bool, error) {
	if m.IsFriendFunc != nil {
		return m.IsFriendFunc(ctx, userID, otherUserID)
	}
	return false, nil
}

func (m *mockFriendService) ListFriends(ctx context.Context, userID uuid.UUID) ([]models.Friend, error) {
	if m.ListFriendsFunc != nil {
		return m.ListFriendsFunc(ctx, userID)
	}
	return nil, nil
}

func (m *mockFriendService) ListPendingRequests(ctx context.Context, userID uuid.UUID) ([]models.PendingRequest, error) {
	if m.ListPendingRequestsFunc != nil {
		return m.ListPendingRequestsFunc(ctx, userID)
	}
	return nil, nil
}

func (m *mockFriendService) PendingRequestCount(ctx context.Context, userID uuid.UUID) (int, error) {
	if m.PendingRequestCountFunc != nil {
		return m.PendingRequestCountFunc(ctx, userID)
	}
	return 0, nil
}

func (m *mockFriendService) FriendCount(ctx context.Context, userID uuid.UUID) (int, error) {
	if m.FriendCountFunc != nil {
		return m.FriendCountFunc(ctx, userID)
	}
	return 0, nil
}

func (m *mockFriendService) BrowseUsers(ctx context.Context, viewerID uuid.UUID) ([]models.BrowseUser, error) {
	if m.BrowseUsersFunc != nil {
		return m.BrowseUsersFunc(ctx, viewerID)
	}
	return nil, nil
}

type mockNotificationService struct {
	CreateFunc      func(ctx context.Context, userID uuid.UUID, kind models.NotificationKind, message string) (*models.Notification, error)
	ListFunc        func(ctx context.Context, userID uuid.UUID, limit int) ([]models.Notification, error)
	MarkReadFunc    func(ctx context.Context, userID, notificationID uuid.UUID) error
	MarkAllReadFunc func(ctx context.Context, userID uuid.UUID) error
	UnreadCountFunc func(ctx context.Context, userID uuid.UUID) (int, error)
}

func (m *mockNotificationService) Create(ctx context.Context, userID uuid.UUID, kind models.NotificationKind, message string) (*models.Notification, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, userID, kind, message)
	}
	return nil, nil
}

func (m *mockNotificationService) List(ctx context.Context, userID uuid.UUID, limit int) ([]models.Notification, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, userID, limit)
	}
	return nil, nil
}

func (m *mockNotificationService) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	if m.MarkReadFunc != nil {
		return m.MarkReadFunc(ctx, userID, notificationID)
	}
	return nil
}

func (m *mockNotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	if m.MarkAllReadFunc != nil {
		return m.MarkAllReadFunc(ctx, userID)
	}
	return nil
}

func (m *mockNotificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	if m.UnreadCountFunc != nil {
		return m.UnreadCountFunc(ctx, userID)
	}
	return 0, nil
}
