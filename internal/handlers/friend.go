package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/google/uuid"

	"github.com/sealbox/sealbox/internal/models"
	"github.com/sealbox/sealbox/internal/services"
)

type FriendHandler struct {
	friendService       services.FriendServiceInterface
	userService         services.UserServiceInterface
	notificationService services.NotificationServiceInterface
}

func NewFriendHandler(
	friendService services.FriendServiceInterface,
	userService services.UserServiceInterface,
	notificationService services.NotificationServiceInterface,
) *FriendHandler {
	return &FriendHandler{
		friendService:       friendService,
		userService:         userService,
		notificationService: notificationService,
	}
}

// Browse lists other accounts with the viewer's relationship to each.
func (h *FriendHandler) Browse(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	users, err := h.friendService.BrowseUsers(r.Context(), user.ID)
	if err != nil {
		log.Printf("Error browsing users: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"users": users})
}

type SendRequestBody struct {
	UserID uuid.UUID `json:"user_id"`
}

func (h *FriendHandler) SendRequest(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var req SendRequestBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == uuid.Nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if _, err := h.userService.GetByID(r.Context(), req.UserID); err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		log.Printf("Error getting user: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	request, err := h.friendService.SendRequest(r.Context(), user.ID, req.UserID)
	switch {
	case errors.Is(err, services.ErrCannotFriendSelf):
		writeError(w, http.StatusBadRequest, "Cannot send a friend request to yourself")
		return
	case errors.Is(err, services.ErrAlreadyFriends):
		writeError(w, http.StatusConflict, "You are already friends with this user")
		return
	case errors.Is(err, services.ErrFriendRequestPending):
		writeError(w, http.StatusConflict, "A friend request is already pending")
		return
	case err != nil:
		log.Printf("Error sending friend request: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if _, err := h.notificationService.Create(r.Context(), req.UserID, models.NotificationKindFriendRequest,
		fmt.Sprintf("%s sent you a friend request", user.Name)); err != nil {
		log.Printf("Error creating notification: %v", err)
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{"request": request})
}

func (h *FriendHandler) AcceptRequest(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	requestID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request ID")
		return
	}

	request, err := h.friendService.AcceptRequest(r.Context(), user.ID, requestID)
	switch {
	case errors.Is(err, services.ErrFriendRequestNotFound):
		writeError(w, http.StatusNotFound, "Friend request not found")
		return
	case errors.Is(err, services.ErrNotRequestRecipient):
		writeError(w, http.StatusForbidden, "Only the recipient can accept a friend request")
		return
	case errors.Is(err, services.ErrFriendRequestNotPending):
		writeError(w, http.StatusConflict, "Friend request is no longer pending")
		return
	case err != nil:
		log.Printf("Error accepting friend request: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if _, err := h.notificationService.Create(r.Context(), request.UserID, models.NotificationKindFriendAccepted,
		fmt.Sprintf("%s accepted your friend request", user.Name)); err != nil {
		log.Printf("Error creating notification: %v", err)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"request": request})
}

func (h *FriendHandler) DeclineRequest(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	requestID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request ID")
		return
	}

	err = h.friendService.DeclineRequest(r.Context(), user.ID, requestID)
	switch {
	case errors.Is(err, services.ErrFriendRequestNotFound):
		writeError(w, http.StatusNotFound, "Friend request not found")
		return
	case errors.Is(err, services.ErrNotRequestRecipient):
		writeError(w, http.StatusForbidden, "Only the recipient can decline a friend request")
		return
	case errors.Is(err, services.ErrFriendRequestNotPending):
		writeError(w, http.StatusConflict, "Friend request is no longer pending")
		return
	case err != nil:
		log.Printf("Error declining friend request: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Friend request declined"})
}

func (h *FriendHandler) RemoveFriend(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	friendID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	err = h.friendService.RemoveFriend(r.Context(), user.ID, friendID)
	if errors.Is(err, services.ErrFriendshipNotFound) {
		writeError(w, http.StatusNotFound, "You are not friends with this user")
		return
	}
	if err != nil {
		log.Printf("Error removing friend: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Friend removed"})
}

func (h *FriendHandler) ListFriends(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	friends, err := h.friendService.ListFriends(r.Context(), user.ID)
	if err != nil {
		log.Printf("Error listing friends: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"friends": friends})
}

func (h *FriendHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	requests, err := h.friendService.ListPendingRequests(r.Context(), user.ID)
	if err != nil {
		log.Printf("Error listing pending requests: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"requests": requests})
}
