package ports

import (
	"time"

	"github.com/google/uuid"
)

// AccessClaims is the payload of a short-lived, stateless access token.
type AccessClaims struct {
	UserID    uuid.UUID
	Email     string
	Role      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// RefreshClaims is the signed payload of a refresh token. TokenID matches the
// persisted row so the digest lookup and the signature describe the same lineage.
type RefreshClaims struct {
	UserID    uuid.UUID
	TokenID   uuid.UUID
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenSigner signs and validates both token kinds. Parse methods return
// domain.ErrTokenExpired / domain.ErrTokenMalformed so the application layer
// never touches jwt library errors.
type TokenSigner interface {
	SignAccess(claims AccessClaims) (string, error)
	SignRefresh(claims RefreshClaims) (string, error)
	ParseAccess(raw string) (AccessClaims, error)
	ParseRefresh(raw string) (RefreshClaims, error)
}

// PasswordHasher abstracts credential hashing.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}
