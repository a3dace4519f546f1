package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/ZhiquAI/aigrading-license-service/internal/domain"
)

type usageRepository struct {
	db *gorm.DB
}

func (r *usageRepository) Insert(ctx context.Context, record domain.UsageRecord) error {
	rec := usageRecordModel{
		DeviceID:     record.DeviceID,
		Action:       record.Action,
		Units:        record.Units,
		QuestionType: record.QuestionType,
		ModelUsed:    record.ModelUsed,
		CreatedAt:    record.CreatedAt,
	}
	return r.db.WithContext(ctx).Create(&rec).Error
}

func (r *usageRepository) ListByDevice(ctx context.Context, deviceID string, limit, offset int) ([]domain.UsageRecord, error) {
	var rows []usageRecordModel
	query := r.db.WithContext(ctx).
		Where("device_id = ?", deviceID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset)
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]domain.UsageRecord, 0, len(rows))
	for _, item := range rows {
		result = append(result, toDomainUsage(item))
	}
	return result, nil
}
