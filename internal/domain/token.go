package domain

import (
	"time"

	"github.com/google/uuid"
)

// Refresh-token revocation reasons. Keeping the reason distinguishes a token
// consumed by rotation from one revoked at logout when auditing a lineage.
const (
	RevokeReasonRotated = "rotated"
	RevokeReasonLogout  = "logout"
)

// RefreshToken is the persisted side of a refresh credential. Only the SHA-256
// digest of the raw token is stored; a leaked row cannot be replayed.
type RefreshToken struct {
	TokenID      uuid.UUID
	UserID       uuid.UUID
	TokenHash    string
	IssuedAt     time.Time
	ExpiresAt    time.Time
	RevokedAt    *time.Time
	RevokeReason string
}

// Active reports whether the token may still be exchanged.
func (t RefreshToken) Active(now time.Time) bool {
	return t.RevokedAt == nil && t.ExpiresAt.After(now)
}
