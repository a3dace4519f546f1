package postgres

import "github.com/ZhiquAI/aigrading-license-service/internal/domain"

func toDomainUser(m userModel) domain.User {
	return domain.User{
		UserID:       m.UserID,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		Role:         m.Role,
		IsActive:     m.IsActive,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func toDomainCode(m activationCodeModel) domain.ActivationCode {
	return domain.ActivationCode{
		Code:       m.Code,
		PlanType:   domain.PlanType(m.PlanType),
		TotalQuota: m.TotalQuota,
		MaxDevices: m.MaxDevices,
		IsEnabled:  m.IsEnabled,
		ExpiresAt:  m.ExpiresAt,
		CreatedAt:  m.CreatedAt,
	}
}

func toDomainActivation(m activationRecordModel) domain.ActivationRecord {
	return domain.ActivationRecord{
		Code:        m.Code,
		DeviceID:    m.DeviceID,
		QuotaAdded:  m.QuotaAdded,
		ActivatedAt: m.ActivatedAt,
	}
}

func toDomainQuota(m deviceQuotaModel) domain.DeviceQuota {
	return domain.DeviceQuota{
		DeviceID:  m.DeviceID,
		Remaining: m.Remaining,
		Total:     m.Total,
		Used:      m.Used,
		ExpiresAt: m.ExpiresAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func toDomainUsage(m usageRecordModel) domain.UsageRecord {
	return domain.UsageRecord{
		ID:           m.ID,
		DeviceID:     m.DeviceID,
		Action:       m.Action,
		Units:        m.Units,
		QuestionType: m.QuestionType,
		ModelUsed:    m.ModelUsed,
		CreatedAt:    m.CreatedAt,
	}
}

func toDomainRefreshToken(m refreshTokenModel) domain.RefreshToken {
	return domain.RefreshToken{
		TokenID:      m.TokenID,
		UserID:       m.UserID,
		TokenHash:    m.TokenHash,
		IssuedAt:     m.IssuedAt,
		ExpiresAt:    m.ExpiresAt,
		RevokedAt:    m.RevokedAt,
		RevokeReason: m.RevokeReason,
	}
}
