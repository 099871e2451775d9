// Package http provides the HTTP handlers and router of the task service.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/atinyakov/GophTasks/internal/middleware"
	"github.com/atinyakov/GophTasks/internal/models"
	"github.com/atinyakov/GophTasks/internal/repository"
	"github.com/atinyakov/GophTasks/internal/service"
)

// AuthService defines the interface for authentication operations
// required by the HTTP handlers.
type AuthService interface {
	// SignUp registers a new account.
	SignUp(ctx context.Context, username, password string) error
	// SignIn returns an access token for valid credentials.
	SignIn(ctx context.Context, username, password string) (string, error)
}

// AuthHandler handles HTTP requests for sign-up and sign-in.
type AuthHandler struct {
	// AuthService performs the underlying authentication operations.
	AuthService AuthService
}

// SignUp handles account registration.
// It expects a JSON body with non-empty "username" and "password" fields
// and answers 201 with an empty body, or 409 if the username is taken.
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req models.Credentials
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" || req.Password == "" {
		middleware.WriteError(w, http.StatusBadRequest, "invalid request")
		return
	}

	err := h.AuthService.SignUp(r.Context(), req.Username, req.Password)
	switch {
	case err == nil:
		w.WriteHeader(http.StatusCreated)
	case errors.Is(err, repository.ErrUserExists):
		middleware.WriteError(w, http.StatusConflict, "Username already exists")
	case errors.Is(err, service.ErrInvalidInput):
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
	default:
		middleware.WriteError(w, http.StatusInternalServerError, "internal error")
	}
}

// SignIn exchanges credentials for an access token.
// It answers {"accessToken": "..."} or 401 for unknown users and wrong
// passwords alike.
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req models.Credentials
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "invalid request")
		return
	}

	token, err := h.AuthService.SignIn(r.Context(), req.Username, req.Password)
	switch {
	case err == nil:
		middleware.WriteJSON(w, http.StatusOK, models.AuthResponse{AccessToken: token})
	case errors.Is(err, service.ErrInvalidCredentials):
		middleware.WriteError(w, http.StatusUnauthorized, "Invalid credentials")
	default:
		middleware.WriteError(w, http.StatusInternalServerError, "internal error")
	}
}
