package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ZhiquAI/aigrading-license-service/internal/domain"
	"github.com/ZhiquAI/aigrading-license-service/internal/ports"
)

type licenseRepository struct {
	db *gorm.DB
}

func (r *licenseRepository) CreateCode(ctx context.Context, code domain.ActivationCode) error {
	rec := activationCodeModel{
		Code:       code.Code,
		PlanType:   string(code.PlanType),
		TotalQuota: code.TotalQuota,
		MaxDevices: code.MaxDevices,
		IsEnabled:  code.IsEnabled,
		ExpiresAt:  code.ExpiresAt,
		CreatedAt:  code.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrConflict
		}
		return err
	}
	return nil
}

func (r *licenseRepository) GetCode(ctx context.Context, code string) (domain.ActivationCode, error) {
	var rec activationCodeModel
	if err := r.db.WithContext(ctx).Where("code = ?", code).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ActivationCode{}, domain.ErrNotFound
		}
		return domain.ActivationCode{}, err
	}
	return toDomainCode(rec), nil
}

// RedeemTx serializes redemptions per code: the SELECT ... FOR UPDATE on the
// activation_codes row holds until commit, so the distinct-device count and
// the record insert observe a consistent binding set. The (code, device_id)
// unique constraint backs the same guarantee at the schema level.
func (r *licenseRepository) RedeemTx(ctx context.Context, params ports.RedeemTxParams) (ports.RedeemTxResult, error) {
	var result ports.RedeemTxResult

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var code activationCodeModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("code = ?", params.Code).Take(&code).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrCodeNotFound
			}
			return err
		}
		if err := toDomainCode(code).Redeemable(params.Now); err != nil {
			return err
		}

		var existing activationRecordModel
		err := tx.Where("code = ? AND device_id = ?", params.Code, params.DeviceID).
			Take(&existing).Error
		if err == nil {
			// Idempotent replay: the binding exists, no new quota is granted.
			result = ports.RedeemTxResult{
				Granted:    true,
				QuotaAdded: 0,
				Record:     toDomainActivation(existing),
			}
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		var bound int64
		if err := tx.Model(&activationRecordModel{}).
			Where("code = ?", params.Code).
			Distinct("device_id").
			Count(&bound).Error; err != nil {
			return err
		}
		if int(bound) >= code.MaxDevices {
			return domain.ErrDeviceLimitReached
		}

		record := activationRecordModel{
			Code:        params.Code,
			DeviceID:    params.DeviceID,
			QuotaAdded:  code.TotalQuota,
			ActivatedAt: params.Now,
		}
		if err := tx.Create(&record).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return domain.ErrConflict
			}
			return err
		}

		quota := deviceQuotaModel{
			DeviceID:  params.DeviceID,
			Remaining: code.TotalQuota,
			Total:     code.TotalQuota,
			Used:      0,
			CreatedAt: params.Now,
			UpdatedAt: params.Now,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "device_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"remaining":  gorm.Expr("device_quotas.remaining + ?", code.TotalQuota),
				"total":      gorm.Expr("device_quotas.total + ?", code.TotalQuota),
				"updated_at": params.Now,
			}),
		}).Create(&quota).Error; err != nil {
			return err
		}

		result = ports.RedeemTxResult{
			Granted:    true,
			QuotaAdded: code.TotalQuota,
			Record:     toDomainActivation(record),
		}
		return nil
	})
	if err != nil {
		return ports.RedeemTxResult{}, err
	}
	return result, nil
}

func (r *licenseRepository) GetActivation(ctx context.Context, code, deviceID string) (domain.ActivationRecord, error) {
	var rec activationRecordModel
	if err := r.db.WithContext(ctx).
		Where("code = ? AND device_id = ?", code, deviceID).
		Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ActivationRecord{}, domain.ErrNotFound
		}
		return domain.ActivationRecord{}, err
	}
	return toDomainActivation(rec), nil
}

func (r *licenseRepository) ListActivations(ctx context.Context, code string) ([]domain.ActivationRecord, error) {
	var rows []activationRecordModel
	if err := r.db.WithContext(ctx).
		Where("code = ?", code).
		Order("activated_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]domain.ActivationRecord, 0, len(rows))
	for _, item := range rows {
		result = append(result, toDomainActivation(item))
	}
	return result, nil
}

func (r *licenseRepository) CountDevices(ctx context.Context, code string) (int, error) {
	var bound int64
	if err := r.db.WithContext(ctx).Model(&activationRecordModel{}).
		Where("code = ?", code).
		Distinct("device_id").
		Count(&bound).Error; err != nil {
		return 0, err
	}
	return int(bound), nil
}
