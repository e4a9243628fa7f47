package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/sealbox/sealbox/internal/models"
)

var (
	ErrFriendRequestNotFound   = errors.New("friend request not found")
	ErrFriendRequestPending    = errors.New("a friend request is already pending")
	ErrAlreadyFriends          = errors.New("you are already friends")
	ErrCannotFriendSelf        = errors.New("cannot send friend request to yourself")
	ErrNotRequestRecipient     = errors.New("only the recipient can accept or decline")
	ErrFriendRequestNotPending = errors.New("friend request is not pending")
	ErrFriendshipNotFound      = errors.New("friendship not found")
)

// FriendService owns the friendship relation. Friendships are stored as a
// single friend_requests row; both directions are always queried, so
// IsFriend(a, b) == IsFriend(b, a) by construction.
type FriendService struct {
	db DB
}

func NewFriendService(db DB) *FriendService {
	return &FriendService{db: db}
}

func (s *FriendService) SendRequest(ctx context.Context, userID, friendID uuid.UUID) (*models.FriendRequest, error) {
	if userID == friendID {
		return nil, ErrCannotFriendSelf
	}

	// An edge in either direction blocks a new request. The error names the
	// existing status so the caller can tell a pending request from an
	// established friendship.
	var status models.FriendRequestStatus
	err := s.db.QueryRow(ctx,
		`SELECT status FROM friend_requests
		 WHERE (user_id = $1 AND friend_id = $2)
		    OR (user_id = $2 AND friend_id = $1)`,
		userID, friendID,
	).Scan(&status)
	if err == nil {
		if status == models.FriendRequestStatusAccepted {
			return nil, ErrAlreadyFriends
		}
		return nil, ErrFriendRequestPending
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("checking existing friend request: %w", err)
	}

	request := &models.FriendRequest{}
	err = s.db.QueryRow(ctx,
		`INSERT INTO friend_requests (user_id, friend_id, status)
		 VALUES ($1, $2, 'pending')
		 RETURNING id, user_id, friend_id, status, created_at`,
		userID, friendID,
	).Scan(&request.ID, &request.UserID, &request.FriendID, &request.Status, &request.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("creating friend request: %w", err)
	}

	return request, nil
}

func (s *FriendService) AcceptRequest(ctx context.Context, userID, requestID uuid.UUID) (*models.FriendRequest, error) {
	request, err := s.getByID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	if request.FriendID != userID {
		return nil, ErrNotRequestRecipient
	}

	// Transition only from pending so a concurrent accept/decline of the
	// same request cannot both apply.
	tag, err := s.db.Exec(ctx,
		`UPDATE friend_requests SET status = 'accepted'
		 WHERE id = $1 AND status = 'pending'`,
		requestID,
	)
	if err != nil {
		return nil, fmt.Errorf("accepting friend request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrFriendRequestNotPending
	}

	request.Status = models.FriendRequestStatusAccepted
	return request, nil
}

// DeclineRequest removes the pending request entirely. No declined state is
// persisted, so the requester may resubmit immediately.
func (s *FriendService) DeclineRequest(ctx context.Context, userID, requestID uuid.UUID) error {
	request, err := s.getByID(ctx, requestID)
	if err != nil {
		return err
	}

	if request.FriendID != userID {
		return ErrNotRequestRecipient
	}

	tag, err := s.db.Exec(ctx,
		`DELETE FROM friend_requests WHERE id = $1 AND status = 'pending'`,
		requestID,
	)
	if err != nil {
		return fmt.Errorf("declining friend request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrFriendRequestNotPending
	}

	return nil
}

// RemoveFriend deletes the relation between the two users in both directions.
func (s *FriendService) RemoveFriend(ctx context.Context, userID, otherUserID uuid.UUID) error {
	tag, err := s.db.Exec(ctx,
		`DELETE FROM friend_requests
		 WHERE (user_id = $1 AND friend_id = $2)
		    OR (user_id = $2 AND friend_id = $1)`,
		userID, otherUserID,
	)
	if err != nil {
		return fmt.Errorf("removing friend: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrFriendshipNotFound
	}

	return nil
}

func (s *FriendService) IsFriend(ctx context.Context, userID, otherUserID uuid.UUID) (bool, error) {
	var isFriend bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS(
			SELECT 1 FROM friend_requests
			WHERE ((user_id = $1 AND friend_id = $2) OR (user_id = $2 AND friend_id = $1))
			  AND status = 'accepted'
		)`,
		userID, otherUserID,
	).Scan(&isFriend)
	if err != nil {
		return false, fmt.Errorf("checking friendship: %w", err)
	}
	return isFriend, nil
}

func (s *FriendService) ListFriends(ctx context.Context, userID uuid.UUID) ([]models.Friend, error) {
	rows, err := s.db.Query(ctx,
		`SELECT u.id, u.name, u.profile_image
		 FROM friend_requests fr
		 JOIN users u ON u.id = CASE WHEN fr.user_id = $1 THEN fr.friend_id ELSE fr.user_id END
		 WHERE (fr.user_id = $1 OR fr.friend_id = $1) AND fr.status = 'accepted'
		 ORDER BY u.name`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing friends: %w", err)
	}
	defer rows.Close()

	var friends []models.Friend
	for rows.Next() {
		var f models.Friend
		if err := rows.Scan(&f.ID, &f.Name, &f.ProfileImage); err != nil {
			return nil, fmt.Errorf("scanning friend: %w", err)
		}
		friends = append(friends, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing friends: %w", err)
	}

	if friends == nil {
		friends = []models.Friend{}
	}

	return friends, nil
}

func (s *FriendService) ListPendingRequests(ctx context.Context, userID uuid.UUID) ([]models.PendingRequest, error) {
	rows, err := s.db.Query(ctx,
		`SELECT fr.id, fr.user_id, fr.friend_id, fr.status, fr.created_at, u.name, u.profile_image
		 FROM friend_requests fr
		 JOIN users u ON fr.user_id = u.id
		 WHERE fr.friend_id = $1 AND fr.status = 'pending'
		 ORDER BY fr.created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing pending requests: %w", err)
	}
	defer rows.Close()

	var requests []models.PendingRequest
	for rows.Next() {
		var r models.PendingRequest
		if err := rows.Scan(&r.ID, &r.UserID, &r.FriendID, &r.Status, &r.CreatedAt, &r.RequesterName, &r.RequesterImage); err != nil {
			return nil, fmt.Errorf("scanning request: %w", err)
		}
		requests = append(requests, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing pending requests: %w", err)
	}

	if requests == nil {
		requests = []models.PendingRequest{}
	}

	return requests, nil
}

func (s *FriendService) PendingRequestCount(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	err := s.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM friend_requests WHERE friend_id = $1 AND status = 'pending'`,
		userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting pending requests: %w", err)
	}
	return count, nil
}

func (s *FriendService) FriendCount(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	err := s.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM friend_requests
		 WHERE (user_id = $1 OR friend_id = $1) AND status = 'accepted'`,
		userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting friends: %w", err)
	}
	return count, nil
}

// BrowseUsers lists every other user annotated with whether they are already
// a friend of the viewer and whether the viewer has a request pending to them.
func (s *FriendService) BrowseUsers(ctx context.Context, userID uuid.UUID) ([]models.BrowseUser, error) {
	rows, err := s.db.Query(ctx,
		`SELECT u.id, u.name, u.bio, u.profile_image,
		        EXISTS(
		          SELECT 1 FROM friend_requests fr
		          WHERE ((fr.user_id = $1 AND fr.friend_id = u.id)
		             OR (fr.user_id = u.id AND fr.friend_id = $1))
		            AND fr.status = 'accepted'
		        ),
		        EXISTS(
		          SELECT 1 FROM friend_requests fr
		          WHERE fr.user_id = $1 AND fr.friend_id = u.id AND fr.status = 'pending'
		        )
		 FROM users u
		 WHERE u.id != $1
		 ORDER BY u.name`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("browsing users: %w", err)
	}
	defer rows.Close()

	var users []models.BrowseUser
	for rows.Next() {
		var u models.BrowseUser
		if err := rows.Scan(&u.ID, &u.Name, &u.Bio, &u.ProfileImage, &u.IsFriend, &u.RequestSent); err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("browsing users: %w", err)
	}

	if users == nil {
		users = []models.BrowseUser{}
	}

	return users, nil
}

func (s *FriendService) getByID(ctx context.Context, requestID uuid.UUID) (*models.FriendRequest, error) {
	request := &models.FriendRequest{}
	err := s.db.QueryRow(ctx,
		`SELECT id, user_id, friend_id, status, created_at
		 FROM friend_requests WHERE id = $1`,
		requestID,
	).Scan(&request.ID, &request.UserID, &request.FriendID, &request.Status, &request.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrFriendRequestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting friend request: %w", err)
	}
	return request, nil
}
