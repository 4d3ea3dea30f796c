package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/fileshare-server/internal/apperr"
	"github.com/dtroode/fileshare-server/internal/logger"
	"github.com/dtroode/fileshare-server/internal/model"
)

// Auth registers users and exchanges credentials for bearer tokens.
type Auth struct {
	userStore    model.UserStore
	hasher       model.PasswordHasher
	tokenManager model.TokenManager
	logger       *logger.Logger
}

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

// Register creates a user and returns it with a fresh bearer token.
// Emails are stored lowercase; username and email must both be free.
func (a *Auth) Register(ctx context.Context, username, email, password string) (model.User, string, error) {
	email = strings.ToLower(email)

	if _, err := a.userStore.GetByEmail(ctx, email); err == nil {
		return model.User{}, "", apperr.Validation("User already exists")
	} else if !errors.Is(err, model.ErrNotFound) {
		return model.User{}, "", fmt.Errorf("failed to get user by email: %w", err)
	}

	if _, err := a.userStore.GetByUsername(ctx, username); err == nil {
		return model.User{}, "", apperr.Validation("User already exists")
	} else if !errors.Is(err, model.ErrNotFound) {
		return model.User{}, "", fmt.Errorf("failed to get user by username: %w", err)
	}

	hash, err := a.hasher.Hash(password)
	if err != nil {
		return model.User{}, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := model.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	saved, err := a.userStore.Create(ctx, user)
	if err != nil {
		// Closes the race with a concurrent registration for the same
		// username or email.
		if errors.Is(err, model.ErrDuplicateUser) {
			return model.User{}, "", apperr.Validation("User already exists")
		}
		return model.User{}, "", fmt.Errorf("failed to create user: %w", err)
	}

	token, err := a.tokenManager.GenerateAccessToken(saved.ID)
	if err != nil {
		return model.User{}, "", fmt.Errorf("failed to generate access token: %w", err)
	}

	a.logger.Info("Auth service: user registered",
		"user_id", saved.ID,
		"username", saved.Username)

	return saved, token, nil
}

// Login verifies credentials and returns the user with a bearer token.
// Unknown emails and wrong passwords are indistinguishable to the
// caller.
func (a *Auth) Login(ctx context.Context, email, password string) (model.User, string, error) {
	email = strings.ToLower(email)

	user, err := a.userStore.GetByEmail(ctx, email)
	if errors.Is(err, model.ErrNotFound) {
		return model.User{}, "", apperr.Unauthenticated("Invalid credentials")
	}
	if err != nil {
		return model.User{}, "", fmt.Errorf("failed to get user by email: %w", err)
	}

	if !a.hasher.Verify(password, user.PasswordHash) {
		return model.User{}, "", apperr.Unauthenticated("Invalid credentials")
	}

	token, err := a.tokenManager.GenerateAccessToken(user.ID)
	if err != nil {
		return model.User{}, "", fmt.Errorf("failed to generate access token: %w", err)
	}

	a.logger.Info("Auth service: user logged in",
		"user_id", user.ID)

	return user, token, nil
}
