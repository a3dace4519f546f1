package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/ZhiquAI/aigrading-license-service/internal/domain"
)

type refreshTokenRepository struct {
	db *gorm.DB
}

func (r *refreshTokenRepository) Create(ctx context.Context, token domain.RefreshToken) error {
	rec := refreshTokenModel{
		TokenID:   token.TokenID,
		UserID:    token.UserID,
		TokenHash: token.TokenHash,
		IssuedAt:  token.IssuedAt,
		ExpiresAt: token.ExpiresAt,
	}
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrConflict
		}
		return err
	}
	return nil
}

func (r *refreshTokenRepository) GetByHash(ctx context.Context, tokenHash string) (domain.RefreshToken, error) {
	var rec refreshTokenModel
	if err := r.db.WithContext(ctx).Where("token_hash = ?", tokenHash).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.RefreshToken{}, domain.ErrNotFound
		}
		return domain.RefreshToken{}, err
	}
	return toDomainRefreshToken(rec), nil
}

// RotateTx revokes the old row and inserts its replacement atomically. The
// revoke is guarded on revoked_at IS NULL: when two rotations race on the
// same token, exactly one revokes and commits, the other observes zero rows
// and surfaces ErrTokenRevoked.
func (r *refreshTokenRepository) RotateTx(ctx context.Context, oldTokenHash, reason string, replacement domain.RefreshToken, now time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&refreshTokenModel{}).
			Where("token_hash = ?", oldTokenHash).
			Where("revoked_at IS NULL").
			Updates(map[string]any{
				"revoked_at":    now,
				"revoke_reason": reason,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrTokenRevoked
		}

		rec := refreshTokenModel{
			TokenID:   replacement.TokenID,
			UserID:    replacement.UserID,
			TokenHash: replacement.TokenHash,
			IssuedAt:  replacement.IssuedAt,
			ExpiresAt: replacement.ExpiresAt,
		}
		return tx.Create(&rec).Error
	})
}

// Revoke is deliberately a no-op success for unknown or already-revoked
// hashes so callers cannot probe token existence through logout.
func (r *refreshTokenRepository) Revoke(ctx context.Context, tokenHash, reason string, now time.Time) error {
	return r.db.WithContext(ctx).
		Model(&refreshTokenModel{}).
		Where("token_hash = ?", tokenHash).
		Where("revoked_at IS NULL").
		Updates(map[string]any{
			"revoked_at":    now,
			"revoke_reason": reason,
		}).Error
}

func (r *refreshTokenRepository) DeleteExpiredBefore(ctx context.Context, cutoff time.Time, limit int) (int64, error) {
	// Subquery keeps the delete bounded so GC batches never hold long locks.
	sub := r.db.WithContext(ctx).
		Model(&refreshTokenModel{}).
		Select("token_id").
		Where("expires_at < ?", cutoff).
		Limit(limit)
	res := r.db.WithContext(ctx).
		Where("token_id IN (?)", sub).
		Delete(&refreshTokenModel{})
	return res.RowsAffected, res.Error
}
