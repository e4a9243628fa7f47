package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sealbox/sealbox/internal/models"
	"github.com/sealbox/sealbox/internal/services"
	"github.com/sealbox/sealbox/internal/storage"
)

const (
	maxCapsuleImageBytes = 10 << 20 // 10 MiB
	maxImagesPerCapsule  = 12
)

type CapsuleHandler struct {
	capsuleService      services.CapsuleServiceInterface
	friendService       services.FriendServiceInterface
	userService         services.UserServiceInterface
	notificationService services.NotificationServiceInterface
	emailService        services.EmailServiceInterface
	store               storage.ObjectStore
}

func NewCapsuleHandler(
	capsuleService services.CapsuleServiceInterface,
	friendService services.FriendServiceInterface,
	userService services.UserServiceInterface,
	notificationService services.NotificationServiceInterface,
	emailService services.EmailServiceInterface,
	store storage.ObjectStore,
) *CapsuleHandler {
	return &CapsuleHandler{
		capsuleService:      capsuleService,
		friendService:       friendService,
		userService:         userService,
		notificationService: notificationService,
		emailService:        emailService,
		store:               store,
	}
}

type CapsuleImageInput struct {
	Path    string `json:"path"`
	Comment string `json:"comment"`
}

type CreateCapsuleRequest struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Vision      string              `json:"vision"`
	Design      string              `json:"design"`
	Privacy     string              `json:"privacy"`
	DeliverAt   time.Time           `json:"deliver_at"`
	Images      []CapsuleImageInput `json:"images"`
	SharedWith  []uuid.UUID         `json:"shared_with"`
}

func (h *CapsuleHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var req CreateCapsuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" || len(req.Title) > 200 {
		writeError(w, http.StatusBadRequest, "Title must be between 1 and 200 characters")
		return
	}

	if !models.IsValidCapsulePrivacy(req.Privacy) {
		writeError(w, http.StatusBadRequest, "Privacy must be private, friends, or public")
		return
	}

	if req.DeliverAt.Before(time.Now()) {
		writeError(w, http.StatusBadRequest, "Delivery date must be in the future")
		return
	}

	if len(req.Images) == 0 {
		writeError(w, http.StatusBadRequest, "A capsule needs at least one image")
		return
	}
	if len(req.Images) > maxImagesPerCapsule {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("A capsule can hold at most %d images", maxImagesPerCapsule))
		return
	}

	images := make([]models.NewImage, len(req.Images))
	for i, img := range req.Images {
		if img.Path == "" {
			writeError(w, http.StatusBadRequest, "Every image needs a path")
			return
		}
		images[i] = models.NewImage{Path: img.Path, Comment: img.Comment}
	}

	// Invitees must be friends of the owner
	seen := make(map[uuid.UUID]bool, len(req.SharedWith))
	sharedWith := make([]uuid.UUID, 0, len(req.SharedWith))
	for _, inviteeID := range req.SharedWith {
		if inviteeID == user.ID || seen[inviteeID] {
			continue
		}
		seen[inviteeID] = true

		isFriend, err := h.friendService.IsFriend(r.Context(), user.ID, inviteeID)
		if err != nil {
			log.Printf("Error checking friendship: %v", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		if !isFriend {
			writeError(w, http.StatusBadRequest, "Capsules can only be shared with friends")
			return
		}
		sharedWith = append(sharedWith, inviteeID)
	}

	capsule, err := h.capsuleService.Create(r.Context(), models.CreateCapsuleParams{
		UserID:      user.ID,
		Title:       req.Title,
		Description: req.Description,
		Vision:      req.Vision,
		Design:      req.Design,
		Privacy:     models.CapsulePrivacy(req.Privacy),
		DeliverAt:   req.DeliverAt,
		Images:      images,
		SharedWith:  sharedWith,
	})
	if err != nil {
		log.Printf("Error creating capsule: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.notifyInvitees(user, capsule, sharedWith)

	writeJSON(w, http.StatusCreated, map[string]interface{}{"capsule": capsule})
}

// notifyInvitees records in-app notifications and sends invite emails. Both
// are best effort; the capsule already exists.
func (h *CapsuleHandler) notifyInvitees(owner *models.User, capsule *models.Capsule, invitees []uuid.UUID) {
	for _, inviteeID := range invitees {
		if _, err := h.notificationService.Create(context.Background(), inviteeID, models.NotificationKindCapsuleShared,
			fmt.Sprintf("%s shared the capsule \"%s\" with you", owner.Name, capsule.Title)); err != nil {
			log.Printf("Error creating share notification: %v", err)
		}
	}

	if h.emailService == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		for _, inviteeID := range invitees {
			invitee, err := h.userService.GetByID(ctx, inviteeID)
			if err != nil {
				log.Printf("Error loading invitee: %v", err)
				continue
			}
			if err := h.emailService.SendCapsuleInvite(ctx, invitee.Email, invitee.Name, owner.Name, capsule.Title); err != nil {
				log.Printf("Error sending capsule invite: %v", err)
			}
		}
	}()
}

// List returns every capsule the viewer may see.
func (h *CapsuleHandler) List(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	capsules, err := h.capsuleService.ListVisible(r.Context(), user.ID)
	if err != nil {
		log.Printf("Error listing capsules: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"capsules": capsules})
}

// ListForUser returns one owner's capsules filtered to what the viewer may see.
func (h *CapsuleHandler) ListForUser(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	ownerID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	capsules, err := h.capsuleService.ListForOwner(r.Context(), user.ID, ownerID)
	if err != nil {
		log.Printf("Error listing capsules for owner: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"capsules": capsules})
}

// ListShared returns the capsules other users shared with the viewer.
func (h *CapsuleHandler) ListShared(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	shared, err := h.capsuleService.ListShared(r.Context(), user.ID)
	if err != nil {
		log.Printf("Error listing shared capsules: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"shared": shared})
}

func (h *CapsuleHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	capsuleID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid capsule ID")
		return
	}

	capsule, err := h.capsuleService.GetDetails(r.Context(), user.ID, capsuleID)
	if errors.Is(err, services.ErrCapsuleNotFound) {
		writeError(w, http.StatusNotFound, "Capsule not found")
		return
	}
	if err != nil {
		log.Printf("Error getting capsule: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"capsule": capsule})
}

type AcceptShareRequest struct {
	Images []CapsuleImageInput `json:"images"`
}

// AcceptShare lets an invitee add their images and confirm participation.
func (h *CapsuleHandler) AcceptShare(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	capsuleID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid capsule ID")
		return
	}

	var req AcceptShareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.Images) > maxImagesPerCapsule {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("At most %d images can be added", maxImagesPerCapsule))
		return
	}

	images := make([]models.NewImage, len(req.Images))
	for i, img := range req.Images {
		if img.Path == "" {
			writeError(w, http.StatusBadRequest, "Every image needs a path")
			return
		}
		images[i] = models.NewImage{Path: img.Path, Comment: img.Comment}
	}

	err = h.capsuleService.AcceptShare(r.Context(), user.ID, capsuleID, images)
	switch {
	case errors.Is(err, services.ErrShareNotFound):
		writeError(w, http.StatusNotFound, "Capsule share not found")
		return
	case errors.Is(err, services.ErrShareNotPending):
		writeError(w, http.StatusConflict, "This share was already resolved")
		return
	case err != nil:
		log.Printf("Error accepting share: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Share accepted"})
}

type UpdateShareStatusRequest struct {
	Status string `json:"status"`
}

func (h *CapsuleHandler) UpdateShareStatus(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	shareID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid share ID")
		return
	}

	var req UpdateShareStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !models.IsValidShareStatus(req.Status) {
		writeError(w, http.StatusBadRequest, "Status must be pending, accepted, or declined")
		return
	}

	err = h.capsuleService.UpdateShareStatus(r.Context(), user.ID, shareID, models.ShareStatus(req.Status))
	if errors.Is(err, services.ErrShareNotFound) {
		writeError(w, http.StatusNotFound, "Capsule share not found")
		return
	}
	if err != nil {
		log.Printf("Error updating share status: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Share status updated"})
}

type UpdateImageCommentRequest struct {
	Path    string `json:"path"`
	Comment string `json:"comment"`
}

func (h *CapsuleHandler) UpdateImageComment(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	capsuleID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid capsule ID")
		return
	}

	var req UpdateImageCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Path == "" {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.Comment) > 500 {
		writeError(w, http.StatusBadRequest, "Comment must be at most 500 characters")
		return
	}

	err = h.capsuleService.UpdateImageComment(r.Context(), user.ID, capsuleID, req.Path, req.Comment)
	switch {
	case errors.Is(err, services.ErrCapsuleNotFound):
		writeError(w, http.StatusNotFound, "Capsule not found")
		return
	case errors.Is(err, services.ErrNotCapsuleOwner):
		writeError(w, http.StatusForbidden, "Only the owner can edit image comments")
		return
	case errors.Is(err, services.ErrImageNotInCapsule):
		writeError(w, http.StatusNotFound, "Image not found in this capsule")
		return
	case err != nil:
		log.Printf("Error updating image comment: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Comment updated"})
}

// UploadImage stores a capsule image and returns its key for use in a
// subsequent create or accept call.
func (h *CapsuleHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxCapsuleImageBytes)
	if err := r.ParseMultipartForm(maxCapsuleImageBytes); err != nil {
		writeError(w, http.StatusBadRequest, "Image must be at most 10 MB")
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

	key := path.Join("capsules", user.ID.String(), uuid.NewString()+ext)
	if err := h.store.Upload(r.Context(), key, contentType, file); err != nil {
		log.Printf("Error uploading capsule image: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to store image")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"path": key})
}
