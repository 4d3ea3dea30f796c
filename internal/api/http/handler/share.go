package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/dtroode/fileshare-server/internal/apperr"
	"github.com/dtroode/fileshare-server/internal/logger"
	"github.com/dtroode/fileshare-server/internal/model"
)

// AccessService defines the access-control engine operations the share
// endpoints consume.
type AccessService interface {
	CreateDirectShares(ctx context.Context, ownerID, fileID uuid.UUID, targetUserIDs []uuid.UUID, expiryDays int) ([]model.Share, []model.ShareTargetError, error)
	CreateLinkShare(ctx context.Context, ownerID, fileID uuid.UUID, expiryHours int) (model.Share, string, error)
	ResolveLinkShare(ctx context.Context, requestingUserID uuid.UUID, token string) (model.ResolvedShareLink, error)
	RevokeShare(ctx context.Context, userID, shareID uuid.UUID) error
}

// Share handles sharing endpoints.
type Share struct {
	accessService  AccessService
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewShare creates a new Share handler.
func NewShare(accessService AccessService, contextManager model.ContextManager, logger *logger.Logger) *Share {
	return &Share{
		accessService:  accessService,
		contextManager: contextManager,
		logger:         logger,
	}
}

type shareWithUsersRequest struct {
	FileID     string   `json:"fileId"`
	UserIDs    []string `json:"userIds"`
	ExpiryDays int      `json:"expiryDays"`
}

type generateLinkRequest struct {
	FileID      string `json:"fileId"`
	ExpiryHours int    `json:"expiryHours"`
}

type shareResponse struct {
	ID         string     `json:"id"`
	FileID     string     `json:"fileId"`
	SharedBy   string     `json:"sharedBy"`
	SharedWith string     `json:"sharedWith,omitempty"`
	ExpiresAt  *time.Time `json:"expiresAt"`
	CreatedAt  time.Time  `json:"createdAt"`
}

func toShareResponse(share model.Share) shareResponse {
	resp := shareResponse{
		ID:        share.ID.String(),
		FileID:    share.FileID.String(),
		SharedBy:  share.GrantedBy.String(),
		ExpiresAt: share.ExpiresAt,
		CreatedAt: share.CreatedAt,
	}
	if grant, ok := share.Grant.(model.DirectGrant); ok {
		resp.SharedWith = grant.SharedWith.String()
	}
	return resp
}

// ShareWithUsers grants direct access to a set of users.
func (h *Share) ShareWithUsers(w http.ResponseWriter, r *http.Request) {
	userID, err := h.requireUser(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req shareWithUsersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.Validation("invalid request body"))
		return
	}

	fileID, err := uuid.Parse(req.FileID)
	if err != nil {
		writeError(w, apperr.Validation("invalid fileId"))
		return
	}
	if len(req.UserIDs) == 0 {
		writeError(w, apperr.Validation("at least one user required"))
		return
	}
	targets := make([]uuid.UUID, 0, len(req.UserIDs))
	for _, raw := range req.UserIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeError(w, apperr.Validation("invalid user id"))
			return
		}
		targets = append(targets, id)
	}

	shares, failed, err := h.accessService.CreateDirectShares(r.Context(), userID, fileID, targets, req.ExpiryDays)
	if err != nil {
		writeError(w, err)
		return
	}

	shareResponses := make([]shareResponse, 0, len(shares))
	for _, share := range shares {
		shareResponses = append(shareResponses, toShareResponse(share))
	}

	body := map[string]any{
		"message": "File shared",
		"shares":  shareResponses,
	}
	if len(failed) > 0 {
		body["failed"] = failed
	}

	writeJSON(w, http.StatusCreated, body)
}

// GenerateLink mints a share-link token for the file.
func (h *Share) GenerateLink(w http.ResponseWriter, r *http.Request) {
	userID, err := h.requireUser(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req generateLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.Validation("invalid request body"))
		return
	}

	fileID, err := uuid.Parse(req.FileID)
	if err != nil {
		writeError(w, apperr.Validation("invalid fileId"))
		return
	}

	share, link, err := h.accessService.CreateLinkShare(r.Context(), userID, fileID, req.ExpiryHours)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message":   "Share link generated",
		"shareLink": link,
		"share":     toShareResponse(share),
	})
}

// ResolveLink exchanges a link token for the shared file. The caller
// must be authenticated; the identity is read from the optional-auth
// middleware and uuid.Nil marks an anonymous request.
func (h *Share) ResolveLink(w http.ResponseWriter, r *http.Request) {
	requesterID, _ := h.contextManager.GetUserIDFromContext(r.Context())

	token := mux.Vars(r)["shareLink"]

	resolved, err := h.accessService.ResolveLinkShare(r.Context(), requesterID, token)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"file":      toFileResponse(resolved.File),
		"sharedBy":  resolved.SharedBy,
		"sharedAt":  resolved.SharedAt,
		"expiresAt": resolved.ExpiresAt,
	})
}

// Revoke deletes a share the requester granted.
func (h *Share) Revoke(w http.ResponseWriter, r *http.Request) {
	userID, err := h.requireUser(r)
	if err != nil {
		writeError(w, err)
		return
	}

	shareID, err := pathUUID(r, "shareId")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.accessService.RevokeShare(r.Context(), userID, shareID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Share revoked"})
}

func (h *Share) requireUser(r *http.Request) (uuid.UUID, error) {
	userID, ok := h.contextManager.GetUserIDFromContext(r.Context())
	if !ok {
		return uuid.Nil, apperr.Unauthenticated("authentication required")
	}
	return userID, nil
}
