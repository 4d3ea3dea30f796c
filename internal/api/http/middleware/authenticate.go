package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/dtroode/fileshare-server/internal/logger"
	"github.com/dtroode/fileshare-server/internal/model"
)

// TokenVerifier resolves user IDs from bearer tokens.
type TokenVerifier interface {
	ParseAccessToken(token string) (uuid.UUID, error)
}

// Authenticate validates bearer tokens and injects the user ID into the
// request context.
type Authenticate struct {
	verifier       TokenVerifier
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewAuthenticate creates a new Authenticate middleware instance.
func NewAuthenticate(verifier TokenVerifier, contextManager model.ContextManager, logger *logger.Logger) *Authenticate {
	return &Authenticate{verifier: verifier, contextManager: contextManager, logger: logger}
}

// Require rejects requests without a valid bearer token with 401.
func (m *Authenticate) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := m.authenticate(r)
		if err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"message": err.Error()})
			return
		}
		next.ServeHTTP(w, r.WithContext(m.contextManager.SetUserIDToContext(r.Context(), userID)))
	})
}

// Optional attaches the user ID when a valid token is presented and
// passes the request through anonymously otherwise. Handlers decide
// whether anonymity is acceptable.
func (m *Authenticate) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := m.authenticate(r)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(m.contextManager.SetUserIDToContext(r.Context(), userID)))
	})
}

func (m *Authenticate) authenticate(r *http.Request) (uuid.UUID, error) {
	tokenString := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	if tokenString == "" {
		return uuid.Nil, errMissingToken
	}

	userID, err := m.verifier.ParseAccessToken(tokenString)
	if err != nil || userID == uuid.Nil {
		return uuid.Nil, errInvalidToken
	}

	return userID, nil
}

var (
	errMissingToken = &authError{"No token provided"}
	errInvalidToken = &authError{"Invalid token"}
)

type authError struct{ msg string }

func (e *authError) Error() string { return e.msg }
