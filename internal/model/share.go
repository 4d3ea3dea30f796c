package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ShareKind discriminates the two grant shapes.
type ShareKind string

const (
	// ShareKindDirect grants access to a single named user.
	ShareKindDirect ShareKind = "direct"
	// ShareKindLink grants access to any authenticated holder of the token.
	ShareKindLink ShareKind = "link"
)

// Grant is the variant part of a Share: exactly one of DirectGrant or
// LinkGrant, never both.
type Grant interface {
	Kind() ShareKind
}

// DirectGrant limits access to one target user.
type DirectGrant struct {
	SharedWith uuid.UUID
}

func (DirectGrant) Kind() ShareKind { return ShareKindDirect }

// LinkGrant keys access by an unguessable token.
type LinkGrant struct {
	Token string
}

func (LinkGrant) Kind() ShareKind { return ShareKindLink }

// Share grants access to a file. GrantedBy equals the file's owner at
// creation time; a nil ExpiresAt means the grant never expires.
type Share struct {
	ID        uuid.UUID
	FileID    uuid.UUID
	GrantedBy uuid.UUID
	Grant     Grant
	ExpiresAt *time.Time
	CreatedAt time.Time
}

// Expired reports whether the share is past its validity at now.
// A share expiring exactly at now is already expired.
func (s Share) Expired(now time.Time) bool {
	return s.ExpiresAt != nil && !s.ExpiresAt.After(now)
}

// ShareTargetError reports one failed target of a bulk direct share.
type ShareTargetError struct {
	UserID uuid.UUID `json:"userId"`
	Reason string    `json:"reason"`
}

// ResolvedShareLink is the result of presenting a valid link token.
type ResolvedShareLink struct {
	File      File
	SharedBy  PublicProfile
	SharedAt  time.Time
	ExpiresAt *time.Time
}

// ShareStore defines persistence operations for shares. Link-token
// uniqueness is enforced by the store, not by callers.
type ShareStore interface {
	Create(ctx context.Context, share Share) (Share, error)
	GetByID(ctx context.Context, id uuid.UUID) (Share, error)
	GetByLinkToken(ctx context.Context, token string) (Share, error)
	// HasDirectGrant reports whether fileID carries a direct grant for
	// userID that has no expiry or expires strictly after now.
	HasDirectGrant(ctx context.Context, fileID, userID uuid.UUID, now time.Time) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByFileID(ctx context.Context, fileID uuid.UUID) error
}
