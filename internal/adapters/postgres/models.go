package postgres

import (
	"time"

	"github.com/google/uuid"
)

type userModel struct {
	UserID       uuid.UUID `gorm:"column:user_id;type:uuid;default:gen_random_uuid();primaryKey"`
	Email        string    `gorm:"column:email"`
	PasswordHash string    `gorm:"column:password_hash"`
	Role         string    `gorm:"column:role"`
	IsActive     bool      `gorm:"column:is_active"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (userModel) TableName() string { return "users" }

type activationCodeModel struct {
	Code       string     `gorm:"column:code;primaryKey"`
	PlanType   string     `gorm:"column:plan_type"`
	TotalQuota int        `gorm:"column:total_quota"`
	MaxDevices int        `gorm:"column:max_devices"`
	IsEnabled  bool       `gorm:"column:is_enabled"`
	ExpiresAt  *time.Time `gorm:"column:expires_at"`
	CreatedAt  time.Time  `gorm:"column:created_at"`
}

func (activationCodeModel) TableName() string { return "activation_codes" }

type activationRecordModel struct {
	ID          int64     `gorm:"column:id;primaryKey"`
	Code        string    `gorm:"column:code"`
	DeviceID    string    `gorm:"column:device_id"`
	QuotaAdded  int       `gorm:"column:quota_added"`
	ActivatedAt time.Time `gorm:"column:activated_at"`
}

func (activationRecordModel) TableName() string { return "activation_records" }

type deviceQuotaModel struct {
	DeviceID  string     `gorm:"column:device_id;primaryKey"`
	Remaining int        `gorm:"column:remaining"`
	Total     int        `gorm:"column:total"`
	Used      int        `gorm:"column:used"`
	ExpiresAt *time.Time `gorm:"column:expires_at"`
	CreatedAt time.Time  `gorm:"column:created_at"`
	UpdatedAt time.Time  `gorm:"column:updated_at"`
}

func (deviceQuotaModel) TableName() string { return "device_quotas" }

type usageRecordModel struct {
	ID           int64     `gorm:"column:id;primaryKey"`
	DeviceID     string    `gorm:"column:device_id"`
	Action       string    `gorm:"column:action"`
	Units        int       `gorm:"column:units"`
	QuestionType string    `gorm:"column:question_type"`
	ModelUsed    string    `gorm:"column:model_used"`
	CreatedAt    time.Time `gorm:"column:created_at"`
}

func (usageRecordModel) TableName() string { return "usage_records" }

type refreshTokenModel struct {
	TokenID      uuid.UUID  `gorm:"column:token_id;type:uuid;primaryKey"`
	UserID       uuid.UUID  `gorm:"column:user_id"`
	TokenHash    string     `gorm:"column:token_hash"`
	IssuedAt     time.Time  `gorm:"column:issued_at"`
	ExpiresAt    time.Time  `gorm:"column:expires_at"`
	RevokedAt    *time.Time `gorm:"column:revoked_at"`
	RevokeReason string     `gorm:"column:revoke_reason"`
}

func (refreshTokenModel) TableName() string { return "refresh_tokens" }
