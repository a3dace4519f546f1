package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// LockoutState describes accumulated login failures for one identity key.
type LockoutState struct {
	FailedCount int
	LockedUntil *time.Time
}

// LockoutStore tracks failed login attempts and temporary lockouts.
// It lives in cache because the state is short-lived and latency-sensitive.
type LockoutStore interface {
	Get(ctx context.Context, key string) (LockoutState, error)
	RecordFailure(ctx context.Context, key string, now time.Time, threshold int, lockoutWindow time.Duration) (LockoutState, error)
	Clear(ctx context.Context, key string) error
}

// TokenRevocationStore is a write-through cache of revoked refresh-token ids.
// Postgres remains the source of truth; the cache keeps rotation replay checks
// cheap. A cache miss always falls back to the persisted row.
type TokenRevocationStore interface {
	MarkRevoked(ctx context.Context, tokenID uuid.UUID, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID uuid.UUID) (bool, error)
}
