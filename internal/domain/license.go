package domain

import "time"

// PlanType classifies what an activation code entitles a device to.
type PlanType string

const (
	PlanTrial     PlanType = "trial"
	PlanBasic     PlanType = "basic"
	PlanPro       PlanType = "pro"
	PlanPermanent PlanType = "permanent"
)

// ValidPlanType reports whether the given plan is one of the known tiers.
func ValidPlanType(p PlanType) bool {
	switch p {
	case PlanTrial, PlanBasic, PlanPro, PlanPermanent:
		return true
	}
	return false
}

// ActivationCode is a redeemable license entitling up to MaxDevices distinct
// devices to a TotalQuota grant each.
type ActivationCode struct {
	Code       string
	PlanType   PlanType
	TotalQuota int
	MaxDevices int
	IsEnabled  bool
	ExpiresAt  *time.Time
	CreatedAt  time.Time
}

// Redeemable validates the code's kill-switch and expiry at a point in time.
// Device-slot availability is checked separately under the redemption lock.
func (c ActivationCode) Redeemable(now time.Time) error {
	if !c.IsEnabled {
		return ErrCodeDisabled
	}
	if c.ExpiresAt != nil && now.After(*c.ExpiresAt) {
		return ErrCodeExpired
	}
	return nil
}

// ActivationRecord is the append-only proof of one code x device redemption.
type ActivationRecord struct {
	Code        string
	DeviceID    string
	QuotaAdded  int
	ActivatedAt time.Time
}
