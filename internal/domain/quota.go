package domain

import "time"

// Quota check reasons returned to callers when CanUse is false.
const (
	QuotaReasonNotActivated = "not activated"
	QuotaReasonExpired      = "expired"
	QuotaReasonExhausted    = "exhausted"
)

// DeviceQuota is the per-device usage ledger. Remaining and Used are mutated
// only through single conditional statements so remaining+used==total holds
// at every observable point and remaining never goes negative.
type DeviceQuota struct {
	DeviceID  string
	Remaining int
	Total     int
	Used      int
	ExpiresAt *time.Time
	UpdatedAt time.Time
}

// Expired reports whether the quota's soft expiry has passed.
func (q DeviceQuota) Expired(now time.Time) bool {
	return q.ExpiresAt != nil && now.After(*q.ExpiresAt)
}

// UsageRecord is an append-only audit entry for one consumption.
// Writing it must never block or roll back the decrement it logs.
type UsageRecord struct {
	ID           int64
	DeviceID     string
	Action       string
	Units        int
	QuestionType string
	ModelUsed    string
	CreatedAt    time.Time
}
