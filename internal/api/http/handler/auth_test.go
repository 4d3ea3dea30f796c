package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/fileshare-server/internal/apperr"
	"github.com/dtroode/fileshare-server/internal/model"
	"github.com/dtroode/fileshare-server/internal/testutil"
)

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestAuth_Register(t *testing.T) {
	userID := uuid.New()

	tests := []struct {
		name       string
		body       string
		mockSetup  func(*MockAuthService)
		wantStatus int
		wantMsg    string
	}{
		{
			name: "valid registration returns 201 with token",
			body: `{"username":"alice","email":"alice@example.com","password":"s3cret"}`,
			mockSetup: func(s *MockAuthService) {
				s.On("Register", mock.Anything, "alice", "alice@example.com", "s3cret").
					Return(model.User{ID: userID}, "jwt-token", nil)
			},
			wantStatus: http.StatusCreated,
			wantMsg:    "User created",
		},
		{
			name:       "malformed json is a 400",
			body:       `{not json`,
			mockSetup:  func(s *MockAuthService) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "short username is a 400",
			body:       `{"username":"al","email":"alice@example.com","password":"s3cret"}`,
			mockSetup:  func(s *MockAuthService) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "invalid email is a 400",
			body:       `{"username":"alice","email":"not-an-email","password":"s3cret"}`,
			mockSetup:  func(s *MockAuthService) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "short password is a 400",
			body:       `{"username":"alice","email":"alice@example.com","password":"abc"}`,
			mockSetup:  func(s *MockAuthService) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "duplicate user is a 400",
			body: `{"username":"alice","email":"alice@example.com","password":"s3cret"}`,
			mockSetup: func(s *MockAuthService) {
				s.On("Register", mock.Anything, "alice", "alice@example.com", "s3cret").
					Return(model.User{}, "", apperr.Validation("User already exists"))
			},
			wantStatus: http.StatusBadRequest,
			wantMsg:    "User already exists",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			authService := &MockAuthService{}
			tt.mockSetup(authService)
			h := NewAuth(authService, testutil.MakeNoopLogger())

			req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()

			h.Register(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, decodeBody(t, rec)["message"])
			}
			if tt.wantStatus == http.StatusCreated {
				body := decodeBody(t, rec)
				assert.Equal(t, "jwt-token", body["token"])
				assert.Equal(t, userID.String(), body["userId"])
			}
		})
	}
}

func TestAuth_Login(t *testing.T) {
	userID := uuid.New()

	t.Run("valid credentials return 200 with token", func(t *testing.T) {
		authService := &MockAuthService{}
		authService.On("Login", mock.Anything, "alice@example.com", "s3cret").
			Return(model.User{ID: userID}, "jwt-token", nil)
		h := NewAuth(authService, testutil.MakeNoopLogger())

		req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
			strings.NewReader(`{"email":"alice@example.com","password":"s3cret"}`))
		rec := httptest.NewRecorder()

		h.Login(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "Login successful", body["message"])
		assert.Equal(t, "jwt-token", body["token"])
	})

	t.Run("bad credentials return 401", func(t *testing.T) {
		authService := &MockAuthService{}
		authService.On("Login", mock.Anything, "alice@example.com", "wrong").
			Return(model.User{}, "", apperr.Unauthenticated("Invalid credentials"))
		h := NewAuth(authService, testutil.MakeNoopLogger())

		req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
			strings.NewReader(`{"email":"alice@example.com","password":"wrong"}`))
		rec := httptest.NewRecorder()

		h.Login(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Invalid credentials", decodeBody(t, rec)["message"])
	})

	t.Run("missing fields return 400", func(t *testing.T) {
		h := NewAuth(&MockAuthService{}, testutil.MakeNoopLogger())

		req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
			strings.NewReader(`{"email":"alice@example.com"}`))
		rec := httptest.NewRecorder()

		h.Login(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
