package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/mail"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sealbox/sealbox/internal/models"
	"github.com/sealbox/sealbox/internal/services"
	"github.com/sealbox/sealbox/internal/storage"
)

const maxProfileImageBytes = 5 << 20 // 5 MiB

type ProfileHandler struct {
	userService    services.UserServiceInterface
	authService    services.AuthServiceInterface
	friendService  services.FriendServiceInterface
	capsuleService services.CapsuleServiceInterface
	store          storage.ObjectStore
}

func NewProfileHandler(
	userService services.UserServiceInterface,
	authService services.AuthServiceInterface,
	friendService services.FriendServiceInterface,
	capsuleService services.CapsuleServiceInterface,
	store storage.ObjectStore,
) *ProfileHandler {
	return &ProfileHandler{
		userService:    userService,
		authService:    authService,
		friendService:  friendService,
		capsuleService: capsuleService,
		store:          store,
	}
}

type ProfileResponse struct {
	User          *models.User `json:"user"`
	CapsuleCount  int          `json:"capsule_count"`
	FriendCount   int          `json:"friend_count"`
	PendingCount  int          `json:"pending_request_count"`
	MemberForDays int          `json:"member_for_days"`
}

// Get returns the signed-in user's profile with headline counts.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	capsuleCount, err := h.capsuleService.CountByOwner(r.Context(), user.ID)
	if err != nil {
		log.Printf("Error counting capsules: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	friendCount, err := h.friendService.FriendCount(r.Context(), user.ID)
	if err != nil {
		log.Printf("Error counting friends: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	pendingCount, err := h.friendService.PendingRequestCount(r.Context(), user.ID)
	if err != nil {
		log.Printf("Error counting pending requests: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, ProfileResponse{
		User:          user,
		CapsuleCount:  capsuleCount,
		FriendCount:   friendCount,
		PendingCount:  pendingCount,
		MemberForDays: int(time.Since(user.CreatedAt).Hours() / 24),
	})
}

type UpdateProfileRequest struct {
	Name            string  `json:"name"`
	Email           string  `json:"email"`
	Bio             string  `json:"bio"`
	CurrentPassword string  `json:"current_password"`
	NewPassword     *string `json:"new_password,omitempty"`
}

// Update changes profile fields. The current password must check out before
// anything is touched.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if !h.authService.VerifyPassword(user.PasswordHash, req.CurrentPassword) {
		writeError(w, http.StatusUnauthorized, "Current password is incorrect")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if len(req.Name) < 2 || len(req.Name) > 100 {
		writeError(w, http.StatusBadRequest, "Name must be between 2 and 100 characters")
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if _, err := mail.ParseAddress(req.Email); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid email address")
		return
	}

	if len(req.Bio) > 500 {
		writeError(w, http.StatusBadRequest, "Bio must be at most 500 characters")
		return
	}

	params := models.UpdateProfileParams{
		Name:  req.Name,
		Email: req.Email,
		Bio:   req.Bio,
	}

	if req.NewPassword != nil {
		if err := validatePassword(*req.NewPassword); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		hash, err := h.authService.HashPassword(*req.NewPassword)
		if err != nil {
			log.Printf("Error hashing password: %v", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		params.NewPasswordHash = &hash
	}

	updated, err := h.userService.UpdateProfile(r.Context(), user.ID, params)
	if errors.Is(err, services.ErrEmailTakenOther) {
		writeError(w, http.StatusConflict, "Email belongs to another account")
		return
	}
	if err != nil {
		log.Printf("Error updating profile: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	// A password change logs out every other device
	if params.NewPasswordHash != nil {
		_ = h.authService.DeleteAllUserSessions(r.Context(), user.ID)
		token, err := h.authService.CreateSession(r.Context(), user.ID)
		if err != nil {
			log.Printf("Error creating session: %v", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookieName,
			Value:    token,
			Path:     "/",
			MaxAge:   cookieMaxAge,
			HttpOnly: true,
			SameSite: http.SameSiteStrictMode,
		})
	}

	writeJSON(w, http.StatusOK, AuthResponse{User: updated, Message: "Profile updated"})
}

type UpdatePrivacyRequest struct {
	Privacy string `json:"privacy"`
}

func (h *ProfileHandler) UpdatePrivacy(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var req UpdatePrivacyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	err := h.userService.UpdatePrivacy(r.Context(), user.ID, req.Privacy)
	if errors.Is(err, services.ErrInvalidPrivacy) {
		writeError(w, http.StatusBadRequest, "Privacy must be private, friends, or public")
		return
	}
	if err != nil {
		log.Printf("Error updating privacy: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	updated, err := h.userService.GetByID(r.Context(), user.ID)
	if err != nil {
		log.Printf("Error getting user: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, AuthResponse{User: updated, Message: "Privacy updated"})
}

// UploadImage stores a new profile picture and records its key.
func (h *ProfileHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxProfileImageBytes)
	if err := r.ParseMultipartForm(maxProfileImageBytes); err != nil {
		writeError(w, http.StatusBadRequest, "Image must be at most 5 MB")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Missing image file")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	ext, ok := imageExtension(contentType)
	if !ok {
		writeError(w, http.StatusBadRequest, "Image must be JPEG, PNG, or WebP")
		return
	}

	key := path.Join("profiles", user.ID.String(), uuid.NewString()+ext)
	if err := h.store.Upload(r.Context(), key, contentType, file); err != nil {
		log.Printf("Error uploading profile image: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to store image")
		return
	}

	updated, err := h.userService.UpdateProfile(r.Context(), user.ID, models.UpdateProfileParams{
		Name:         user.Name,
		Email:        user.Email,
		Bio:          user.Bio,
		ProfileImage: &key,
	})
	if err != nil {
		log.Printf("Error saving profile image: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, AuthResponse{User: updated, Message: "Profile image updated"})
}

// Stats returns the monthly capsule creation breakdown for one year.
func (h *ProfileHandler) Stats(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	year := time.Now().Year()
	if raw := r.URL.Query().Get("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 2000 || parsed > time.Now().Year() {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("Year must be between 2000 and %d", time.Now().Year()))
			return
		}
		year = parsed
	}

	stats, err := h.capsuleService.MonthlyStats(r.Context(), user.ID, year)
	if err != nil {
		log.Printf("Error loading stats: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"year": year, "months": stats})
}

func imageExtension(contentType string) (string, bool) {
	switch contentType {
	case "image/jpeg":
		return ".jpg", true
	case "image/png":
		return ".png", true
	case "image/webp":
		return ".webp", true
	default:
		return "", false
	}
}
