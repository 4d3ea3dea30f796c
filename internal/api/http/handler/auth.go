package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/mail"

	"github.com/dtroode/fileshare-server/internal/apperr"
	"github.com/dtroode/fileshare-server/internal/logger"
	"github.com/dtroode/fileshare-server/internal/model"
)

// AuthService defines business operations for registration and login.
type AuthService interface {
	Register(ctx context.Context, username, email, password string) (model.User, string, error)
	Login(ctx context.Context, email, password string) (model.User, string, error)
}

// Auth handles registration and login endpoints.
type Auth struct {
	authService AuthService
	logger      *logger.Logger
}

// NewAuth creates a new Auth handler.
func NewAuth(authService AuthService, logger *logger.Logger) *Auth {
	return &Auth{authService: authService, logger: logger}
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
	UserID  string `json:"userId"`
}

// Register creates a new account.
func (h *Auth) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.Validation("invalid request body"))
		return
	}

	if err := validateRegister(req); err != nil {
		writeError(w, err)
		return
	}

	user, token, err := h.authService.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		h.logger.Error("Auth handler: registration failed",
			"username", req.Username,
			"error", err.Error())
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, sessionResponse{
		Message: "User created",
		Token:   token,
		UserID:  user.ID.String(),
	})
}

// Login exchanges credentials for a bearer token.
func (h *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.Validation("invalid request body"))
		return
	}

	if req.Email == "" || req.Password == "" {
		writeError(w, apperr.Validation("email and password are required"))
		return
	}

	user, token, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, sessionResponse{
		Message: "Login successful",
		Token:   token,
		UserID:  user.ID.String(),
	})
}

func validateRegister(req registerRequest) error {
	if len(req.Username) < 3 {
		return apperr.Validation("username must be at least 3 characters")
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return apperr.Validation("invalid email")
	}
	if len(req.Password) < 6 {
		return apperr.Validation("password must be at least 6 characters")
	}
	return nil
}
