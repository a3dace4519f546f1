package application

import (
	"time"

	"github.com/google/uuid"

	"github.com/ZhiquAI/aigrading-license-service/internal/domain"
)

type RedeemRequest struct {
	Code     string `json:"code"`
	DeviceID string `json:"device_id"`
	// Seed lets anonymous clients derive a stable device id when they have none.
	Seed string `json:"seed,omitempty"`
}

type RedeemResponse struct {
	Granted    bool   `json:"granted"`
	QuotaAdded int    `json:"quota_added"`
	DeviceID   string `json:"device_id"`
	Remaining  int    `json:"remaining"`
	Total      int    `json:"total"`
}

type LicenseStatusResponse struct {
	Code        string     `json:"code"`
	PlanType    string     `json:"plan_type"`
	TotalQuota  int        `json:"total_quota"`
	MaxDevices  int        `json:"max_devices"`
	IsEnabled   bool       `json:"is_enabled"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	BoundCount  int        `json:"bound_count"`
	DeviceBound bool       `json:"device_bound"`
}

type QuotaCheckResponse struct {
	CanUse    bool   `json:"can_use"`
	Remaining int    `json:"remaining"`
	Total     int    `json:"total"`
	Used      int    `json:"used"`
	Reason    string `json:"reason,omitempty"`
}

type ConsumeRequest struct {
	DeviceID     string `json:"device_id"`
	Units        int    `json:"units"`
	Action       string `json:"action"`
	QuestionType string `json:"question_type,omitempty"`
	ModelUsed    string `json:"model_used,omitempty"`
}

type ConsumeResponse struct {
	Success   bool `json:"success"`
	Remaining int  `json:"remaining"`
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterResponse struct {
	UserID uuid.UUID `json:"user_id"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenPairResponse carries a freshly issued credential pair. The raw refresh
// token appears here exactly once and is never persisted.
type TokenPairResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

type CreateCodeRequest struct {
	Code       string     `json:"code,omitempty"`
	PlanType   string     `json:"plan_type"`
	TotalQuota int        `json:"total_quota"`
	MaxDevices int        `json:"max_devices"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
}

type CodeDetailResponse struct {
	Code        domain.ActivationCode     `json:"code"`
	Activations []domain.ActivationRecord `json:"activations"`
}

type UsageListItem struct {
	ID           int64     `json:"id"`
	Action       string    `json:"action"`
	Units        int       `json:"units"`
	QuestionType string    `json:"question_type,omitempty"`
	ModelUsed    string    `json:"model_used,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
