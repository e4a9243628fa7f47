package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/sealbox/sealbox/internal/models"
)

func TestCreateNotification(t *testing.T) {
	userID := uuid.New()

	db := &fakeDB{
		QueryRowFunc: func(ctx context.Context, sql string, args ...any) Row {
			return rowFromValues(uuid.New(), userID, models.NotificationKindFriendRequest,
				"Alice sent you a friend request", false, time.Now())
		},
	}
	service := NewNotificationService(db)

	n, err := service.Create(context.Background(), userID, models.NotificationKindFriendRequest, "Alice sent you a friend request")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n.Kind != models.NotificationKindFriendRequest {
		t.Errorf("expected friend_request kind, got %s", n.Kind)
	}
	if n.Read {
		t.Error("expected new notification to be unread")
	}
}

func TestListNotificationsClampsLimit(t *testing.T) {
	for _, limit := range []int{-1, 0, 101} {
		db := &fakeDB{
			QueryFunc: func(ctx context.Context, sql string, args ...any) (Rows, error) {
				if args[1] != 50 {
					t.Errorf("expected limit 50 for input %d, got %v", limit, args[1])
				}
				return &fakeRows{}, nil
			},
		}
		service := NewNotificationService(db)

		if _, err := service.List(context.Background(), uuid.New(), limit); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
}

func TestListNotificationsEmpty(t *testing.T) {
	db := &fakeDB{
		QueryFunc: func(ctx context.Context, sql string, args ...any) (Rows, error) {
			return &fakeRows{}, nil
		},
	}
	service := NewNotificationService(db)

	notifications, err := service.List(context.Background(), uuid.New(), 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if notifications == nil {
		t.Fatal("expected empty slice, got nil")
	}
}

func TestMarkReadScopedToUser(t *testing.T) {
	userID := uuid.New()
	notificationID := uuid.New()

	db := &fakeDB{
		ExecFunc: func(ctx context.Context, sql string, args ...any) (CommandTag, error) {
			if args[0] != notificationID || args[1] != userID {
				t.Errorf("expected notification and user ids, got %v", args)
			}
			return fakeCommandTag{rowsAffected: 1}, nil
		},
	}
	service := NewNotificationService(db)

	if err := service.MarkRead(context.Background(), userID, notificationID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestMarkReadNotFound(t *testing.T) {
	db := &fakeDB{
		ExecFunc: func(ctx context.Context, sql string, args ...any) (CommandTag, error) {
			return fakeCommandTag{rowsAffected: 0}, nil
		},
	}
	service := NewNotificationService(db)

	err := service.MarkRead(context.Background(), uuid.New(), uuid.New())
	if !errors.Is(err, ErrNotificationNotFound) {
		t.Fatalf("expected ErrNotificationNotFound, got %v", err)
	}
}

func TestUnreadCount(t *testing.T) {
	db := &fakeDB{
		QueryRowFunc: func(ctx context.Context, sql string, args ...any) Row {
			return rowFromValues(3)
		},
	}
	service := NewNotificationService(db)

	count, err := service.UnreadCount(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 3 {
		t.Errorf("expected 3 unread, got %d", count)
	}
}
