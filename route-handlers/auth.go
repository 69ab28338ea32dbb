package routehandlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/coreybb/todo-api/auth"
	"github.com/coreybb/todo-api/datastore"
	"github.com/coreybb/todo-api/models"
	"github.com/coreybb/todo-api/webutil"
)

type AuthHandler struct {
	Users  *datastore.UserRepository
	Tokens *auth.TokenIssuer
}

func NewAuthHandler(users *datastore.UserRepository, tokens *auth.TokenIssuer) *AuthHandler {
	return &AuthHandler{Users: users, Tokens: tokens}
}

type registerRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"` // seconds
}

type updateProfileRequest struct {
	FullName *string `json:"full_name"`
	Email    *string `json:"email"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// HandleRegister creates a new account. No token is issued; the client logs
// in separately.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) error {
	var req registerRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		return webutil.ErrBadRequest("Invalid request payload: " + err.Error())
	}
	defer r.Body.Close()

	req.Email = normalizeEmail(req.Email)
	if err := validateFullName(req.FullName); err != nil {
		return webutil.ErrBadRequest(err.Error())
	}
	if err := validateEmail(req.Email); err != nil {
		return webutil.ErrBadRequest(err.Error())
	}
	if err := validateRegistrationPassword(req.Password); err != nil {
		return webutil.ErrBadRequest(err.Error())
	}

	// Lookup before insert keeps the common duplicate case a clean 400; the
	// unique index still backstops a concurrent insert.
	if _, err := h.Users.GetUserByEmail(r.Context(), req.Email); err == nil {
		return webutil.ErrBadRequest("Email already registered")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("failed to check existing email: %w", err)
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	newUser := models.User{
		ID:           uuid.NewString(),
		FullName:     req.FullName,
		Email:        req.Email,
		PasswordHash: passwordHash,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := h.Users.CreateUser(r.Context(), &newUser); err != nil {
		return fmt.Errorf("failed to create user %s: %w", newUser.Email, err)
	}

	webutil.RespondWithJSON(w, http.StatusCreated, newUser)
	return nil
}

// HandleLogin verifies credentials and issues a bearer token. Unknown email,
// wrong password and disabled account all yield 401 without distinguishing
// which check failed.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) error {
	var req loginRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		return webutil.ErrBadRequest("Invalid request payload: " + err.Error())
	}
	defer r.Body.Close()

	req.Email = normalizeEmail(req.Email)
	if req.Email == "" || req.Password == "" {
		return webutil.ErrBadRequest("Email and password are required")
	}

	user, err := h.Users.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return webutil.ErrUnauthorized("Incorrect email or password")
		}
		return fmt.Errorf("failed to look up user %s: %w", req.Email, err)
	}
	if !auth.CheckPassword(req.Password, user.PasswordHash) {
		return webutil.ErrUnauthorized("Incorrect email or password")
	}
	if !user.IsActive {
		return webutil.ErrUnauthorized("Account is disabled")
	}

	return h.respondWithToken(w, user.ID)
}

// HandleRefresh issues a fresh token for an already-authenticated caller.
// The old token stays valid until its own expiry; nothing is revoked.
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) error {
	user, ok := webutil.UserFrom(r.Context())
	if !ok {
		return webutil.ErrUnauthorized("")
	}
	return h.respondWithToken(w, user.ID)
}

func (h *AuthHandler) respondWithToken(w http.ResponseWriter, userID string) error {
	token, err := h.Tokens.Issue(userID)
	if err != nil {
		return fmt.Errorf("failed to issue token: %w", err)
	}
	webutil.RespondWithJSON(w, http.StatusOK, tokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int(h.Tokens.TTL().Seconds()),
	})
	return nil
}

// HandleGetMe returns the authenticated user's profile.
func (h *AuthHandler) HandleGetMe(w http.ResponseWriter, r *http.Request) error {
	user, ok := webutil.UserFrom(r.Context())
	if !ok {
		return webutil.ErrUnauthorized("")
	}
	webutil.RespondWithJSON(w, http.StatusOK, user)
	return nil
}

// HandleUpdateMe updates the provided profile fields. Changing the email
// re-checks uniqueness against other accounts.
func (h *AuthHandler) HandleUpdateMe(w http.ResponseWriter, r *http.Request) error {
	user, ok := webutil.UserFrom(r.Context())
	if !ok {
		return webutil.ErrUnauthorized("")
	}

	var req updateProfileRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		return webutil.ErrBadRequest("Invalid request payload: " + err.Error())
	}
	defer r.Body.Close()

	if req.FullName == nil && req.Email == nil {
		return webutil.ErrBadRequest("No fields provided for update")
	}

	fullName := user.FullName
	email := user.Email
	if req.FullName != nil {
		if err := validateFullName(*req.FullName); err != nil {
			return webutil.ErrBadRequest(err.Error())
		}
		fullName = *req.FullName
	}
	if req.Email != nil {
		newEmail := normalizeEmail(*req.Email)
		if err := validateEmail(newEmail); err != nil {
			return webutil.ErrBadRequest(err.Error())
		}
		if newEmail != user.Email {
			if _, err := h.Users.GetUserByEmail(r.Context(), newEmail); err == nil {
				return webutil.ErrBadRequest("Email already registered")
			} else if !errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("failed to check existing email: %w", err)
			}
		}
		email = newEmail
	}

	now := time.Now().UTC()
	if err := h.Users.UpdateProfile(r.Context(), user.ID, fullName, email, now); err != nil {
		return fmt.Errorf("failed to update profile for user %s: %w", user.ID, err)
	}

	updated := *user
	updated.FullName = fullName
	updated.Email = email
	updated.UpdatedAt = now
	webutil.RespondWithJSON(w, http.StatusOK, updated)
	return nil
}

// HandleChangePassword re-hashes and stores a new password after verifying
// the current one and the complexity policy.
func (h *AuthHandler) HandleChangePassword(w http.ResponseWriter, r *http.Request) error {
	user, ok := webutil.UserFrom(r.Context())
	if !ok {
		return webutil.ErrUnauthorized("")
	}

	var req changePasswordRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		return webutil.ErrBadRequest("Invalid request payload: " + err.Error())
	}
	defer r.Body.Close()

	if req.CurrentPassword == "" || req.NewPassword == "" {
		return webutil.ErrBadRequest("Both current_password and new_password are required")
	}
	if !auth.CheckPassword(req.CurrentPassword, user.PasswordHash) {
		return webutil.ErrBadRequest("Current password is incorrect")
	}
	if err := auth.ValidateNewPassword(req.NewPassword); err != nil {
		return webutil.ErrBadRequest(err.Error())
	}

	passwordHash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := h.Users.UpdatePassword(r.Context(), user.ID, passwordHash, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to update password for user %s: %w", user.ID, err)
	}

	webutil.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Password updated successfully"})
	return nil
}
