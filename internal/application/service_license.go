package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ZhiquAI/aigrading-license-service/internal/domain"
	"github.com/ZhiquAI/aigrading-license-service/internal/ports"
)

// Redeem binds a device to an activation code and grants its quota.
// Replaying a redemption for an already-bound device succeeds with
// quota_added=0; the per-code row lock inside RedeemTx serializes racing
// redemptions so the max-devices bound can never be exceeded.
func (s *Service) Redeem(ctx context.Context, req RedeemRequest) (RedeemResponse, error) {
	scope, err := domain.ResolveScope(req.Code, req.DeviceID, domain.RequireCode)
	if err != nil {
		return RedeemResponse{}, err
	}
	if scope.DeviceID == "" {
		if req.Seed == "" {
			return RedeemResponse{}, fmt.Errorf("%w: device id or seed is required", domain.ErrInvalidInput)
		}
		scope.DeviceID = domain.SynthesizeDeviceID(req.Seed)
	}

	result, err := s.licenses.RedeemTx(ctx, ports.RedeemTxParams{
		Code:     scope.Code,
		DeviceID: scope.DeviceID,
		Now:      s.nowFn(),
	})
	if err != nil {
		return RedeemResponse{}, err
	}

	if result.QuotaAdded > 0 {
		slog.Default().InfoContext(ctx, "activation code redeemed",
			"service", serviceName,
			"module", "application",
			"layer", "application",
			"operation", "redeem",
			"outcome", "success",
			"code", scope.Code,
			"quota_added", result.QuotaAdded,
		)
	}

	quota, err := s.quotas.Get(ctx, scope.DeviceID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return RedeemResponse{}, err
	}

	return RedeemResponse{
		Granted:    result.Granted,
		QuotaAdded: result.QuotaAdded,
		DeviceID:   scope.DeviceID,
		Remaining:  quota.Remaining,
		Total:      quota.Total,
	}, nil
}

// LicenseStatus returns code metadata plus the caller's binding state.
// Read-only: it never creates or mutates ledger rows.
func (s *Service) LicenseStatus(ctx context.Context, code, deviceID string) (LicenseStatusResponse, error) {
	scope, err := domain.ResolveScope(code, deviceID, domain.RequireCode)
	if err != nil {
		return LicenseStatusResponse{}, err
	}

	rec, err := s.licenses.GetCode(ctx, scope.Code)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return LicenseStatusResponse{}, domain.ErrCodeNotFound
		}
		return LicenseStatusResponse{}, err
	}

	bound, err := s.licenses.CountDevices(ctx, scope.Code)
	if err != nil {
		return LicenseStatusResponse{}, err
	}

	deviceBound := false
	if scope.DeviceID != "" {
		if _, err := s.licenses.GetActivation(ctx, scope.Code, scope.DeviceID); err == nil {
			deviceBound = true
		} else if !errors.Is(err, domain.ErrNotFound) {
			return LicenseStatusResponse{}, err
		}
	}

	return LicenseStatusResponse{
		Code:        rec.Code,
		PlanType:    string(rec.PlanType),
		TotalQuota:  rec.TotalQuota,
		MaxDevices:  rec.MaxDevices,
		IsEnabled:   rec.IsEnabled,
		ExpiresAt:   rec.ExpiresAt,
		BoundCount:  bound,
		DeviceBound: deviceBound,
	}, nil
}
