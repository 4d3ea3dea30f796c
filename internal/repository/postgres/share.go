package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dtroode/fileshare-server/internal/model"
)

var _ model.ShareStore = (*ShareRepository)(nil)

type ShareRepository struct {
	db *Connection
}

func NewShareRepository(db *Connection) *ShareRepository {
	return &ShareRepository{
		db: db,
	}
}

const shareColumns = `id, file_id, granted_by, kind, shared_with, link_token, expires_at, created_at`

func (r *ShareRepository) Create(ctx context.Context, share model.Share) (model.Share, error) {
	var (
		sharedWith *uuid.UUID
		linkToken  *string
	)
	switch g := share.Grant.(type) {
	case model.DirectGrant:
		sharedWith = &g.SharedWith
	case model.LinkGrant:
		linkToken = &g.Token
	default:
		return model.Share{}, fmt.Errorf("unknown grant shape %T", share.Grant)
	}

	query := `INSERT INTO shares (id, file_id, granted_by, kind, shared_with, link_token, expires_at, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			  RETURNING ` + shareColumns

	saved, err := scanShare(r.db.QueryRow(ctx, query,
		share.ID, share.FileID, share.GrantedBy, string(share.Grant.Kind()),
		sharedWith, linkToken, share.ExpiresAt, share.CreatedAt,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return model.Share{}, model.ErrDuplicateLinkToken
		}
		return model.Share{}, fmt.Errorf("failed to create share: %w", err)
	}

	return saved, nil
}

func (r *ShareRepository) GetByID(ctx context.Context, id uuid.UUID) (model.Share, error) {
	query := `SELECT ` + shareColumns + ` FROM shares WHERE id = $1`

	share, err := scanShare(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Share{}, model.ErrNotFound
		}
		return model.Share{}, fmt.Errorf("failed to get share by id: %w", err)
	}

	return share, nil
}

func (r *ShareRepository) GetByLinkToken(ctx context.Context, token string) (model.Share, error) {
	query := `SELECT ` + shareColumns + ` FROM shares WHERE link_token = $1`

	share, err := scanShare(r.db.QueryRow(ctx, query, token))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Share{}, model.ErrNotFound
		}
		return model.Share{}, fmt.Errorf("failed to get share by link token: %w", err)
	}

	return share, nil
}

func (r *ShareRepository) HasDirectGrant(ctx context.Context, fileID, userID uuid.UUID, now time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM shares
			WHERE file_id = $1 AND kind = 'direct' AND shared_with = $2
			  AND (expires_at IS NULL OR expires_at > $3)
		)`

	var ok bool
	if err := r.db.QueryRow(ctx, query, fileID, userID, now).Scan(&ok); err != nil {
		return false, fmt.Errorf("failed to check direct grant: %w", err)
	}

	return ok, nil
}

func (r *ShareRepository) Delete(ctx context.Context, id uuid.UUID) error {
	const query = `DELETE FROM shares WHERE id = $1`
	cmd, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete share: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *ShareRepository) DeleteByFileID(ctx context.Context, fileID uuid.UUID) error {
	const query = `DELETE FROM shares WHERE file_id = $1`
	if _, err := r.db.Exec(ctx, query, fileID); err != nil {
		return fmt.Errorf("failed to delete shares by file id: %w", err)
	}
	return nil
}

func scanShare(row pgx.Row) (model.Share, error) {
	var (
		share      model.Share
		kind       string
		sharedWith *uuid.UUID
		linkToken  *string
	)
	err := row.Scan(
		&share.ID, &share.FileID, &share.GrantedBy, &kind,
		&sharedWith, &linkToken, &share.ExpiresAt, &share.CreatedAt,
	)
	if err != nil {
		return model.Share{}, err
	}

	switch model.ShareKind(kind) {
	case model.ShareKindDirect:
		if sharedWith == nil {
			return model.Share{}, fmt.Errorf("direct share %s has no target", share.ID)
		}
		share.Grant = model.DirectGrant{SharedWith: *sharedWith}
	case model.ShareKindLink:
		if linkToken == nil {
			return model.Share{}, fmt.Errorf("link share %s has no token", share.ID)
		}
		share.Grant = model.LinkGrant{Token: *linkToken}
	default:
		return model.Share{}, fmt.Errorf("unknown share kind %q", kind)
	}

	return share, nil
}
