package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ZhiquAI/aigrading-license-service/internal/domain"
)

// CheckQuota reports whether a device may consume. A missing, expired or
// exhausted ledger is a normal outcome carried in the response, not an error.
func (s *Service) CheckQuota(ctx context.Context, deviceID string) (QuotaCheckResponse, error) {
	deviceID = strings.TrimSpace(deviceID)
	if deviceID == "" {
		return QuotaCheckResponse{}, fmt.Errorf("%w: device id is required", domain.ErrInvalidInput)
	}

	quota, err := s.quotas.Get(ctx, deviceID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return QuotaCheckResponse{Reason: domain.QuotaReasonNotActivated}, nil
		}
		return QuotaCheckResponse{}, err
	}

	res := QuotaCheckResponse{
		Remaining: quota.Remaining,
		Total:     quota.Total,
		Used:      quota.Used,
	}
	switch {
	case quota.Expired(s.nowFn()):
		res.Reason = domain.QuotaReasonExpired
	case quota.Remaining <= 0:
		res.Reason = domain.QuotaReasonExhausted
	default:
		res.CanUse = true
	}
	return res, nil
}

// Consume spends quota units for one action. The decrement is a single
// conditional statement at the store: under concurrent callers racing on the
// same device at most one wins the last unit and remaining never goes
// negative. success=false is a normal envelope, never an error.
func (s *Service) Consume(ctx context.Context, req ConsumeRequest) (ConsumeResponse, error) {
	deviceID := strings.TrimSpace(req.DeviceID)
	if deviceID == "" {
		return ConsumeResponse{}, fmt.Errorf("%w: device id is required", domain.ErrInvalidInput)
	}
	units := req.Units
	if units <= 0 {
		units = 1
	}

	now := s.nowFn()
	ok, err := s.quotas.ConsumeUnits(ctx, deviceID, units, now)
	if err != nil {
		return ConsumeResponse{}, err
	}
	if !ok {
		// Insufficient quota or never activated; the caller distinguishes via CheckQuota.
		return ConsumeResponse{Success: false}, nil
	}

	action := strings.TrimSpace(req.Action)
	if action == "" {
		action = "grade_question"
	}
	s.recorder.Record(domain.UsageRecord{
		DeviceID:     deviceID,
		Action:       action,
		Units:        units,
		QuestionType: req.QuestionType,
		ModelUsed:    req.ModelUsed,
		CreatedAt:    now,
	})

	quota, err := s.quotas.Get(ctx, deviceID)
	if err != nil {
		// The decrement already happened; reporting remaining is best-effort.
		return ConsumeResponse{Success: true}, nil
	}
	return ConsumeResponse{Success: true, Remaining: quota.Remaining}, nil
}

// GrantBonus tops up an existing device ledger. The increment is atomic at
// the store for the same reason the decrement is.
func (s *Service) GrantBonus(ctx context.Context, deviceID string, units int) error {
	deviceID = strings.TrimSpace(deviceID)
	if deviceID == "" {
		return fmt.Errorf("%w: device id is required", domain.ErrInvalidInput)
	}
	if units <= 0 {
		return fmt.Errorf("%w: units must be positive", domain.ErrInvalidInput)
	}
	return s.quotas.GrantUnits(ctx, deviceID, units, s.nowFn())
}
