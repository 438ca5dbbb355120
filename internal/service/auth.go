package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"

	"github.com/feedhub/feedhub-server/internal/apperror"
	"github.com/feedhub/feedhub-server/internal/logger"
	"github.com/feedhub/feedhub-server/internal/model"
)

// Auth implements account signup and signin. Both transport adapters
// call into it, so credential validation lives here and nowhere else.
type Auth struct {
	userStore    model.UserStore
	hasher       model.PasswordHasher
	tokenManager model.TokenManager
	logger       *logger.Logger
}

// NewAuth creates a new Auth service instance.
func NewAuth(
	userStore model.UserStore,
	hasher model.PasswordHasher,
	tokenManager model.TokenManager,
	logger *logger.Logger,
) *Auth {
	return &Auth{
		userStore:    userStore,
		hasher:       hasher,
		tokenManager: tokenManager,
		logger:       logger,
	}
}

// defaultStatus is the informational status stamped on new accounts.
const defaultStatus = "I am new!"

// SignUp validates the input, hashes the password and persists a new
// user with an empty posts list. The plaintext password is never stored.
func (a *Auth) SignUp(ctx context.Context, name, email, password string) (model.User, error) {
	a.logger.Debug("Auth service: starting signup", "email", email)

	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	password = strings.TrimSpace(password)

	if err := validateCredentials(email, password); err != nil {
		return model.User{}, err
	}
	if name == "" {
		return model.User{}, apperror.NewValidation("name is required")
	}

	existing, err := a.userStore.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		a.logger.Error("Auth service: failed to get user by email",
			"email", email,
			"error", err.Error())
		return model.User{}, fmt.Errorf("failed to get user by email: %w", err)
	}
	if existing.ID != uuid.Nil {
		a.logger.Info("Auth service: email already taken", "email", email)
		return model.User{}, apperror.NewValidation("account already exists")
	}

	hashed, err := a.hasher.Hash(password)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user := model.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: hashed,
		Status:       defaultStatus,
		Posts:        []uuid.UUID{},
	}

	created, err := a.userStore.Create(ctx, user)
	if err != nil {
		a.logger.Error("Auth service: failed to create user",
			"email", email,
			"error", err.Error())
		return model.User{}, fmt.Errorf("failed to create user: %w", err)
	}

	a.logger.Info("Auth service: signup completed", "email", email, "user_id", created.ID)

	return created, nil
}

// SignIn verifies the credentials and issues a signed token embedding
// the user ID and email. Bad credentials always map to 401.
func (a *Auth) SignIn(ctx context.Context, email, password string) (token string, userID uuid.UUID, err error) {
	a.logger.Debug("Auth service: starting signin", "email", email)

	email = strings.TrimSpace(email)
	password = strings.TrimSpace(password)

	if err := validateCredentials(email, password); err != nil {
		return "", uuid.Nil, err
	}

	user, err := a.userStore.GetByEmail(ctx, email)
	if errors.Is(err, model.ErrNotFound) {
		return "", uuid.Nil, apperror.NewUnauthorized("no account with this email")
	}
	if err != nil {
		a.logger.Error("Auth service: failed to get user by email",
			"email", email,
			"error", err.Error())
		return "", uuid.Nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	if !a.hasher.Compare(password, user.PasswordHash) {
		a.logger.Info("Auth service: wrong password", "email", email)
		return "", uuid.Nil, apperror.NewUnauthorized("wrong password")
	}

	token, err = a.tokenManager.Generate(user.ID, user.Email)
	if err != nil {
		return "", uuid.Nil, fmt.Errorf("failed to generate token: %w", err)
	}

	a.logger.Info("Auth service: signin completed", "email", email, "user_id", user.ID)

	return token, user.ID, nil
}

func validateCredentials(email, password string) error {
	if email == "" {
		return apperror.NewValidation("email is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return apperror.NewValidation("email is not valid")
	}
	if len(password) < 5 {
		return apperror.NewValidation("password must be at least 5 characters")
	}
	return nil
}
