package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/ZhiquAI/aigrading-license-service/internal/domain"
)

type quotaRepository struct {
	db *gorm.DB
}

func (r *quotaRepository) Get(ctx context.Context, deviceID string) (domain.DeviceQuota, error) {
	var rec deviceQuotaModel
	if err := r.db.WithContext(ctx).Where("device_id = ?", deviceID).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.DeviceQuota{}, domain.ErrNotFound
		}
		return domain.DeviceQuota{}, err
	}
	return toDomainQuota(rec), nil
}

// ConsumeUnits is the one concurrency-critical write in the quota ledger.
// The guard predicate lives in the UPDATE itself, so racing callers on the
// same device serialize at the row and at most one wins the last unit. A
// read-then-write pair here would reintroduce the race.
func (r *quotaRepository) ConsumeUnits(ctx context.Context, deviceID string, units int, now time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&deviceQuotaModel{}).
		Where("device_id = ?", deviceID).
		Where("remaining >= ?", units).
		Where("expires_at IS NULL OR expires_at > ?", now).
		Updates(map[string]any{
			"remaining":  gorm.Expr("remaining - ?", units),
			"used":       gorm.Expr("used + ?", units),
			"updated_at": now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// GrantUnits applies an additive top-up under the same single-statement rule.
func (r *quotaRepository) GrantUnits(ctx context.Context, deviceID string, units int, now time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&deviceQuotaModel{}).
		Where("device_id = ?", deviceID).
		Updates(map[string]any{
			"remaining":  gorm.Expr("remaining + ?", units),
			"total":      gorm.Expr("total + ?", units),
			"updated_at": now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
