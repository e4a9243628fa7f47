package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/mail"
	"strings"
	"time"
	"unicode"

	"github.com/sealbox/sealbox/internal/models"
	"github.com/sealbox/sealbox/internal/services"
)

const (
	sessionCookieName = "session_token"
	cookieMaxAge      = 30 * 24 * 60 * 60 // 30 days in seconds
)

type AuthHandler struct {
	userService  services.UserServiceInterface
	authService  services.AuthServiceInterface
	emailService services.EmailServiceInterface
	secure       bool // Use secure cookies (HTTPS only)
}

func NewAuthHandler(userService services.UserServiceInterface, authService services.AuthServiceInterface, emailService services.EmailServiceInterface, secure bool) *AuthHandler {
	return &AuthHandler{
		userService:  userService,
		authService:  authService,
		emailService: emailService,
		secure:       secure,
	}
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type VerifyEmailRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Code     string `json:"code"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	User    *models.User `json:"user"`
	Message string       `json:"message,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// Register is the first half of signup: it validates the desired account
// details, mails a verification code, and stores nothing else. No user row
// and no session exist until VerifyEmail presents the code, so an
// unverified account can never hold credentials.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	email, name, err := validateRegistration(req.Email, req.Password, req.Name)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	existing, err := h.userService.GetByEmail(r.Context(), email)
	if err != nil && !errors.Is(err, services.ErrUserNotFound) {
		log.Printf("Error checking email: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if existing != nil {
		writeError(w, http.StatusConflict, "Email already registered")
		return
	}

	if _, err := h.emailService.SendVerificationCode(r.Context(), email, name); err != nil {
		log.Printf("Error sending verification code: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to send verification code")
		return
	}

	writeJSON(w, http.StatusOK, AuthResponse{Message: "Verification code sent to your email"})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))

	user, err := h.userService.GetByEmail(r.Context(), req.Email)
	if errors.Is(err, services.ErrUserNotFound) {
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if err != nil {
		log.Printf("Error getting user: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if !h.authService.VerifyPassword(user.PasswordHash, req.Password) {
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	token, err := h.authService.CreateSession(r.Context(), user.ID)
	if err != nil {
		log.Printf("Error creating session: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.setSessionCookie(w, token)
	writeJSON(w, http.StatusOK, AuthResponse{User: user})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(sessionCookieName)
	if err == nil && cookie.Value != "" {
		_ = h.authService.DeleteSession(r.Context(), cookie.Value)
	}

	h.clearSessionCookie(w)
	writeJSON(w, http.StatusOK, AuthResponse{Message: "Logged out successfully"})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	writeJSON(w, http.StatusOK, AuthResponse{User: user})
}

// VerifyEmail is the second half of signup: it re-validates the submitted
// details, burns the emailed code, and only then creates the account. The
// new user arrives already verified and signed in.
func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req VerifyEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	email, name, err := validateRegistration(req.Email, req.Password, req.Name)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if code == "" {
		writeError(w, http.StatusBadRequest, "Code is required")
		return
	}

	err = h.emailService.VerifyCode(r.Context(), email, code)
	if errors.Is(err, services.ErrVerificationCodeExpired) {
		writeError(w, http.StatusBadRequest, "Verification code has expired")
		return
	}
	if errors.Is(err, services.ErrVerificationCodeInvalid) {
		writeError(w, http.StatusBadRequest, "Invalid verification code")
		return
	}
	if err != nil {
		log.Printf("Error verifying code: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	passwordHash, err := h.authService.HashPassword(req.Password)
	if err != nil {
		if errors.Is(err, services.ErrPasswordTooLong) {
			writeError(w, http.StatusBadRequest, "Password is too long")
			return
		}
		log.Printf("Error hashing password: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	user, err := h.userService.Create(r.Context(), models.CreateUserParams{
		Email:         email,
		PasswordHash:  passwordHash,
		Name:          name,
		EmailVerified: true,
	})
	if errors.Is(err, services.ErrEmailExists) {
		writeError(w, http.StatusConflict, "Email already registered")
		return
	}
	if err != nil {
		log.Printf("Error creating user: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	token, err := h.authService.CreateSession(r.Context(), user.ID)
	if err != nil {
		log.Printf("Error creating session: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.setSessionCookie(w, token)
	writeJSON(w, http.StatusCreated, AuthResponse{User: user, Message: "Account created successfully"})
}

// ConfirmEmail checks a re-sent code for the signed-in account, used after
// a profile email change resets the verified flag.
func (h *AuthHandler) ConfirmEmail(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var req struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Code = strings.ToUpper(strings.TrimSpace(req.Code))
	if req.Code == "" {
		writeError(w, http.StatusBadRequest, "Code is required")
		return
	}

	err := h.emailService.VerifyCode(r.Context(), user.Email, req.Code)
	if errors.Is(err, services.ErrVerificationCodeExpired) {
		writeError(w, http.StatusBadRequest, "Verification code has expired")
		return
	}
	if errors.Is(err, services.ErrVerificationCodeInvalid) {
		writeError(w, http.StatusBadRequest, "Invalid verification code")
		return
	}
	if err != nil {
		log.Printf("Error verifying code: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if err := h.userService.MarkEmailVerified(r.Context(), user.ID); err != nil {
		log.Printf("Error marking email verified: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	updated, err := h.userService.GetByID(r.Context(), user.ID)
	if err != nil {
		log.Printf("Error getting user: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, AuthResponse{User: updated, Message: "Email verified successfully"})
}

// ResendVerification sends a fresh verification code.
func (h *AuthHandler) ResendVerification(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	if user.EmailVerified {
		writeError(w, http.StatusBadRequest, "Email is already verified")
		return
	}

	if _, err := h.emailService.SendVerificationCode(r.Context(), user.Email, user.Name); err != nil {
		log.Printf("Error sending verification code: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to send verification code")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Verification code sent"})
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   cookieMaxAge,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *AuthHandler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteStrictMode,
		Expires:  time.Unix(0, 0),
	})
}

// validateRegistration applies the shared signup rules and returns the
// normalized email and name. Both registration steps run it, so a payload
// tampered with between steps is rejected the same way.
func validateRegistration(email, password, name string) (string, string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return "", "", errors.New("Invalid email address")
	}

	if err := validatePassword(password); err != nil {
		return "", "", err
	}

	name = strings.TrimSpace(name)
	if len(name) < 2 || len(name) > 100 {
		return "", "", errors.New("Name must be between 2 and 100 characters")
	}

	return email, name, nil
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	if len([]byte(password)) > 72 {
		return errors.New("password must be at most 72 bytes")
	}

	var hasUpper, hasLower, hasDigit bool
	for _, c := range password {
		switch {
		case unicode.IsUpper(c):
			hasUpper = true
		case unicode.IsLower(c):
			hasLower = true
		case unicode.IsDigit(c):
			hasDigit = true
		}
	}
	if !hasUpper || !hasLower || !hasDigit {
		return errors.New("password must contain an uppercase letter, a lowercase letter, and a digit")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}
