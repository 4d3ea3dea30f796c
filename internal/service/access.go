package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/fileshare-server/internal/apperr"
	"github.com/dtroode/fileshare-server/internal/logger"
	"github.com/dtroode/fileshare-server/internal/model"
)

const (
	// linkTokenBytes is the entropy of a share-link token. 16 random
	// bytes make guessing infeasible; the hex form is 32 characters.
	linkTokenBytes = 16
	// linkTokenRetries bounds regeneration when a freshly minted token
	// collides with the unique index.
	linkTokenRetries = 5
)

// Access decides whether a (user, file) pair may read and manages the
// lifecycle of share grants. It holds no state of its own; expiry is
// evaluated lazily against the injected clock on every read.
type Access struct {
	fileStore  model.FileStore
	shareStore model.ShareStore
	userStore  model.UserStore
	cache      model.FileCache
	linkBase   string
	logger     *logger.Logger
	now        func() time.Time
}

// NewAccess creates the access-control engine. cache may be nil;
// linkBase is the public URL prefix link tokens are embedded into.
func NewAccess(
	fileStore model.FileStore,
	shareStore model.ShareStore,
	userStore model.UserStore,
	cache model.FileCache,
	linkBase string,
	logger *logger.Logger,
) *Access {
	return &Access{
		fileStore:  fileStore,
		shareStore: shareStore,
		userStore:  userStore,
		cache:      cache,
		linkBase:   linkBase,
		logger:     logger,
		now:        time.Now,
	}
}

// Authorize decides whether userID may read fileID and returns the file
// on success. Denials carry the taxonomy kind: not-found when the file
// does not exist, forbidden otherwise. Owners are always allowed; other
// users need a direct grant with no expiry or one strictly in the
// future.
func (s *Access) Authorize(ctx context.Context, userID, fileID uuid.UUID) (model.File, error) {
	file, err := s.getFile(ctx, fileID)
	if errors.Is(err, model.ErrNotFound) {
		return model.File{}, apperr.NotFound("File not found")
	}
	if err != nil {
		return model.File{}, fmt.Errorf("failed to get file: %w", err)
	}

	if file.OwnerID == userID {
		return file, nil
	}

	ok, err := s.shareStore.HasDirectGrant(ctx, fileID, userID, s.now())
	if err != nil {
		return model.File{}, fmt.Errorf("failed to check direct grant: %w", err)
	}
	if !ok {
		return model.File{}, apperr.Forbidden("Access denied")
	}

	return file, nil
}

// CreateDirectShares grants access to each target user. The owner's own
// id is silently dropped from the target set; all remaining targets
// must exist before anything is created. Inserts are independent per
// target: a failed insert is reported in the second return value and
// does not roll back the others.
func (s *Access) CreateDirectShares(ctx context.Context, ownerID, fileID uuid.UUID, targetUserIDs []uuid.UUID, expiryDays int) ([]model.Share, []model.ShareTargetError, error) {
	file, err := s.ownedFile(ctx, ownerID, fileID)
	if err != nil {
		return nil, nil, err
	}

	targets := dedupeTargets(targetUserIDs, ownerID)
	if len(targets) == 0 {
		return nil, nil, apperr.Validation("no users to share with")
	}

	existing, err := s.userStore.ExistingIDs(ctx, targets)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to resolve target users: %w", err)
	}
	if len(existing) != len(targets) {
		known := make(map[uuid.UUID]bool, len(existing))
		for _, id := range existing {
			known[id] = true
		}
		for _, id := range targets {
			if !known[id] {
				return nil, nil, apperr.NewErrUserNotFound(id)
			}
		}
	}

	expiresAt := expiryFromDays(s.now(), expiryDays)

	var (
		shares []model.Share
		failed []model.ShareTargetError
	)
	for _, target := range targets {
		share := model.Share{
			ID:        uuid.New(),
			FileID:    file.ID,
			GrantedBy: ownerID,
			Grant:     model.DirectGrant{SharedWith: target},
			ExpiresAt: expiresAt,
			CreatedAt: s.now(),
		}
		saved, err := s.shareStore.Create(ctx, share)
		if err != nil {
			s.logger.Error("Access service: failed to create direct share",
				"file_id", file.ID,
				"target_user_id", target,
				"error", err.Error())
			failed = append(failed, model.ShareTargetError{UserID: target, Reason: "failed to create share"})
			continue
		}
		shares = append(shares, saved)
	}

	s.logger.Info("Access service: direct shares created",
		"file_id", file.ID,
		"granted_by", ownerID,
		"created", len(shares),
		"failed", len(failed))

	return shares, failed, nil
}

// CreateLinkShare mints an unguessable link token for the file and
// returns the share together with the resolvable public link. Token
// uniqueness is enforced by the store; a collision regenerates.
func (s *Access) CreateLinkShare(ctx context.Context, ownerID, fileID uuid.UUID, expiryHours int) (model.Share, string, error) {
	file, err := s.ownedFile(ctx, ownerID, fileID)
	if err != nil {
		return model.Share{}, "", err
	}

	expiresAt := expiryFromHours(s.now(), expiryHours)

	var saved model.Share
	for attempt := 0; ; attempt++ {
		token, err := newLinkToken()
		if err != nil {
			return model.Share{}, "", fmt.Errorf("failed to generate link token: %w", err)
		}

		share := model.Share{
			ID:        uuid.New(),
			FileID:    file.ID,
			GrantedBy: ownerID,
			Grant:     model.LinkGrant{Token: token},
			ExpiresAt: expiresAt,
			CreatedAt: s.now(),
		}
		saved, err = s.shareStore.Create(ctx, share)
		if err == nil {
			break
		}
		if errors.Is(err, model.ErrDuplicateLinkToken) && attempt < linkTokenRetries {
			s.logger.Warn("Access service: link token collision, regenerating",
				"file_id", file.ID,
				"attempt", attempt+1)
			continue
		}
		return model.Share{}, "", fmt.Errorf("failed to create link share: %w", err)
	}

	s.logger.Info("Access service: share link generated",
		"file_id", file.ID,
		"share_id", saved.ID,
		"granted_by", ownerID)

	return saved, s.PublicLink(saved), nil
}

// PublicLink renders the resolvable URL for a link share.
func (s *Access) PublicLink(share model.Share) string {
	grant, ok := share.Grant.(model.LinkGrant)
	if !ok {
		return ""
	}
	return fmt.Sprintf("%s/shared/%s", s.linkBase, grant.Token)
}

// ResolveLinkShare exchanges a link token for the file and its sharer's
// public profile. The token never bypasses authentication: an absent
// requester is rejected even for a valid token. Beyond "exists,
// unexpired, caller authenticated" no further authorization applies.
func (s *Access) ResolveLinkShare(ctx context.Context, requestingUserID uuid.UUID, token string) (model.ResolvedShareLink, error) {
	if requestingUserID == uuid.Nil {
		return model.ResolvedShareLink{}, apperr.Unauthenticated("authentication required")
	}

	share, err := s.shareStore.GetByLinkToken(ctx, token)
	if errors.Is(err, model.ErrNotFound) {
		return model.ResolvedShareLink{}, apperr.NotFound("Share link not found")
	}
	if err != nil {
		return model.ResolvedShareLink{}, fmt.Errorf("failed to get share by link token: %w", err)
	}

	if share.Expired(s.now()) {
		return model.ResolvedShareLink{}, apperr.Expired("Invalid or expired link")
	}

	file, err := s.getFile(ctx, share.FileID)
	if err != nil {
		return model.ResolvedShareLink{}, fmt.Errorf("failed to get shared file: %w", err)
	}

	owner, err := s.userStore.GetByID(ctx, file.OwnerID)
	if err != nil {
		return model.ResolvedShareLink{}, fmt.Errorf("failed to get file owner: %w", err)
	}

	return model.ResolvedShareLink{
		File:      file,
		SharedBy:  owner.Public(),
		SharedAt:  share.CreatedAt,
		ExpiresAt: share.ExpiresAt,
	}, nil
}

// RevokeShare permanently deletes the share. Only the granting user may
// revoke; revoking an already-deleted share reports not-found.
func (s *Access) RevokeShare(ctx context.Context, userID, shareID uuid.UUID) error {
	share, err := s.shareStore.GetByID(ctx, shareID)
	if errors.Is(err, model.ErrNotFound) {
		return apperr.NotFound("Share not found")
	}
	if err != nil {
		return fmt.Errorf("failed to get share: %w", err)
	}

	if share.GrantedBy != userID {
		return apperr.Forbidden("Not authorized")
	}

	if err := s.shareStore.Delete(ctx, shareID); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return apperr.NotFound("Share not found")
		}
		return fmt.Errorf("failed to delete share: %w", err)
	}

	s.logger.Info("Access service: share revoked",
		"share_id", shareID,
		"revoked_by", userID)

	return nil
}

// SharedWithMe lists files carrying an unexpired direct grant for the
// user, using the same expiry rule as Authorize.
func (s *Access) SharedWithMe(ctx context.Context, userID uuid.UUID) ([]model.File, error) {
	files, err := s.fileStore.GetSharedWith(ctx, userID, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to get files shared with user: %w", err)
	}
	return files, nil
}

// RevokeAllForFile removes every share referencing the file. The file
// registry calls this before removing the file itself so no dangling
// grants survive deletion.
func (s *Access) RevokeAllForFile(ctx context.Context, fileID uuid.UUID) error {
	if err := s.shareStore.DeleteByFileID(ctx, fileID); err != nil {
		return fmt.Errorf("failed to delete shares for file: %w", err)
	}
	return nil
}

// ownedFile fetches the file and requires userID to be its owner.
func (s *Access) ownedFile(ctx context.Context, userID, fileID uuid.UUID) (model.File, error) {
	file, err := s.getFile(ctx, fileID)
	if errors.Is(err, model.ErrNotFound) {
		return model.File{}, apperr.NotFound("File not found")
	}
	if err != nil {
		return model.File{}, fmt.Errorf("failed to get file: %w", err)
	}
	if file.OwnerID != userID {
		return model.File{}, apperr.Forbidden("Not authorized")
	}
	return file, nil
}

// getFile reads file metadata through the cache when one is configured.
// Cache failures degrade to the durable store.
func (s *Access) getFile(ctx context.Context, fileID uuid.UUID) (model.File, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, fileID)
		if err != nil {
			s.logger.Warn("Access service: file cache read failed",
				"file_id", fileID,
				"error", err.Error())
		} else if cached != nil {
			return *cached, nil
		}
	}

	file, err := s.fileStore.GetByID(ctx, fileID)
	if err != nil {
		return model.File{}, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, &file); err != nil {
			s.logger.Warn("Access service: file cache write failed",
				"file_id", fileID,
				"error", err.Error())
		}
	}

	return file, nil
}

func newLinkToken() (string, error) {
	b := make([]byte, linkTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// dedupeTargets drops duplicates and the owner's own id, preserving
// first-seen order.
func dedupeTargets(ids []uuid.UUID, ownerID uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(ids))
	var out []uuid.UUID
	for _, id := range ids {
		if id == ownerID || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func expiryFromDays(now time.Time, days int) *time.Time {
	if days <= 0 {
		return nil
	}
	t := now.Add(time.Duration(days) * 24 * time.Hour)
	return &t
}

func expiryFromHours(now time.Time, hours int) *time.Time {
	if hours <= 0 {
		return nil
	}
	t := now.Add(time.Duration(hours) * time.Hour)
	return &t
}
