package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/feedhub/feedhub-server/internal/apperror"
	"github.com/feedhub/feedhub-server/internal/logger"
	"github.com/feedhub/feedhub-server/internal/model"
)

// AuthService defines account signup and signin operations.
type AuthService interface {
	SignUp(ctx context.Context, name, email, password string) (model.User, error)
	SignIn(ctx context.Context, email, password string) (token string, userID uuid.UUID, err error)
}

// Auth handles REST endpoints for accounts.
type Auth struct {
	authService AuthService
	logger      *logger.Logger
}

// NewAuth creates a new Auth handler.
func NewAuth(authService AuthService, logger *logger.Logger) *Auth {
	return &Auth{
		authService: authService,
		logger:      logger,
	}
}

type signUpRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignUp creates a new account.
func (h *Auth) SignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, apperror.NewValidation("invalid request body"))
		return
	}

	user, err := h.authService.SignUp(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusCreated, map[string]any{
		"message": "sign up success",
		"userId":  user.ID.String(),
	})
}

// SignIn verifies credentials and returns a bearer token.
func (h *Auth) SignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, apperror.NewValidation("invalid request body"))
		return
	}

	token, userID, err := h.authService.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, map[string]any{
		"message": "sign in success",
		"token":   token,
		"userId":  userID.String(),
	})
}
