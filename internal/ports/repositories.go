package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ZhiquAI/aigrading-license-service/internal/domain"
)

// RedeemTxParams captures one atomic redemption attempt.
// Now is injected so the adapter never reads the clock itself.
type RedeemTxParams struct {
	Code     string
	DeviceID string
	Now      time.Time
}

// RedeemTxResult reports what a redemption transaction actually did.
// QuotaAdded is zero on an idempotent replay of an existing binding.
type RedeemTxResult struct {
	Granted    bool
	QuotaAdded int
	Record     domain.ActivationRecord
}

// LicenseRepository owns activation_codes and activation_records.
// RedeemTx runs the device-count check and the record insert + quota upsert in
// one transaction under a row lock on the code, so two concurrent redemptions
// cannot both pass the max-devices check.
type LicenseRepository interface {
	CreateCode(ctx context.Context, code domain.ActivationCode) error
	GetCode(ctx context.Context, code string) (domain.ActivationCode, error)
	RedeemTx(ctx context.Context, params RedeemTxParams) (RedeemTxResult, error)
	GetActivation(ctx context.Context, code, deviceID string) (domain.ActivationRecord, error)
	ListActivations(ctx context.Context, code string) ([]domain.ActivationRecord, error)
	CountDevices(ctx context.Context, code string) (int, error)
}

// QuotaRepository owns mutation of device_quotas. ConsumeUnits and GrantUnits
// must each be a single conditional statement, never a read-then-write pair.
type QuotaRepository interface {
	Get(ctx context.Context, deviceID string) (domain.DeviceQuota, error)
	// ConsumeUnits decrements remaining and increments used only if
	// remaining >= units at the moment of the update. Returns false with no
	// error when the guard fails or the device was never activated.
	ConsumeUnits(ctx context.Context, deviceID string, units int, now time.Time) (bool, error)
	// GrantUnits adds units to both total and remaining atomically.
	GrantUnits(ctx context.Context, deviceID string, units int, now time.Time) error
}

// UsageRepository is the append-only audit trail for consumption.
type UsageRepository interface {
	Insert(ctx context.Context, record domain.UsageRecord) error
	ListByDevice(ctx context.Context, deviceID string, limit, offset int) ([]domain.UsageRecord, error)
}

// CreateUserParams captures registration inputs.
type CreateUserParams struct {
	Email        string
	PasswordHash string
	Role         string
	RegisteredAt time.Time
}

// UserRepository defines persistence operations for accounts.
type UserRepository interface {
	Create(ctx context.Context, params CreateUserParams) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	GetByID(ctx context.Context, userID uuid.UUID) (domain.User, error)
}

// RefreshTokenRepository owns refresh_tokens rows. RotateTx revokes the old
// row and inserts its replacement in the same transaction; the revoke is
// guarded on revoked_at IS NULL so a replayed rotation surfaces ErrTokenRevoked.
type RefreshTokenRepository interface {
	Create(ctx context.Context, token domain.RefreshToken) error
	GetByHash(ctx context.Context, tokenHash string) (domain.RefreshToken, error)
	RotateTx(ctx context.Context, oldTokenHash, reason string, replacement domain.RefreshToken, now time.Time) error
	// Revoke marks the matching non-revoked row revoked. Unknown or already
	// revoked hashes are a no-op success so callers cannot probe existence.
	Revoke(ctx context.Context, tokenHash, reason string, now time.Time) error
	// DeleteExpiredBefore garbage-collects long-dead rows off the hot path.
	DeleteExpiredBefore(ctx context.Context, cutoff time.Time, limit int) (int64, error)
}
