package application

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"

	"github.com/ZhiquAI/aigrading-license-service/internal/domain"
)

// codeAlphabet avoids 0/O and 1/I so human-typed codes survive transcription.
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// CreateCode mints a new activation code. When no code value is supplied a
// random XXXX-XXXX-XXXX-XXXX one is generated; either way the stored form is
// the normalized (separator-free) representation.
func (s *Service) CreateCode(ctx context.Context, req CreateCodeRequest) (domain.ActivationCode, error) {
	plan := domain.PlanType(strings.ToLower(strings.TrimSpace(req.PlanType)))
	if !domain.ValidPlanType(plan) {
		return domain.ActivationCode{}, fmt.Errorf("%w: unknown plan type %q", domain.ErrInvalidInput, req.PlanType)
	}
	if req.TotalQuota <= 0 {
		return domain.ActivationCode{}, fmt.Errorf("%w: total quota must be positive", domain.ErrInvalidInput)
	}
	if req.MaxDevices <= 0 {
		return domain.ActivationCode{}, fmt.Errorf("%w: max devices must be positive", domain.ErrInvalidInput)
	}

	code := domain.NormalizeCode(req.Code)
	if code == "" {
		code = generateCode()
	}

	rec := domain.ActivationCode{
		Code:       code,
		PlanType:   plan,
		TotalQuota: req.TotalQuota,
		MaxDevices: req.MaxDevices,
		IsEnabled:  true,
		ExpiresAt:  req.ExpiresAt,
		CreatedAt:  s.nowFn(),
	}
	if err := s.licenses.CreateCode(ctx, rec); err != nil {
		return domain.ActivationCode{}, err
	}
	return rec, nil
}

// CodeDetail returns a code with its device bindings for reporting.
func (s *Service) CodeDetail(ctx context.Context, code string) (CodeDetailResponse, error) {
	normalized := domain.NormalizeCode(code)
	if normalized == "" {
		return CodeDetailResponse{}, domain.ErrMissingActivationCode
	}
	rec, err := s.licenses.GetCode(ctx, normalized)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return CodeDetailResponse{}, domain.ErrCodeNotFound
		}
		return CodeDetailResponse{}, err
	}
	activations, err := s.licenses.ListActivations(ctx, normalized)
	if err != nil {
		return CodeDetailResponse{}, err
	}
	return CodeDetailResponse{Code: rec, Activations: activations}, nil
}

// DeviceUsage lists the audit trail for one device, newest first.
func (s *Service) DeviceUsage(ctx context.Context, deviceID string, limit, offset int) ([]UsageListItem, error) {
	deviceID = strings.TrimSpace(deviceID)
	if deviceID == "" {
		return nil, fmt.Errorf("%w: device id is required", domain.ErrInvalidInput)
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	records, err := s.usage.ListByDevice(ctx, deviceID, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]UsageListItem, 0, len(records))
	for _, rec := range records {
		items = append(items, UsageListItem{
			ID:           rec.ID,
			Action:       rec.Action,
			Units:        rec.Units,
			QuestionType: rec.QuestionType,
			ModelUsed:    rec.ModelUsed,
			CreatedAt:    rec.CreatedAt,
		})
	}
	return items, nil
}

// generateCode produces a 16-character code from the transcription-safe alphabet.
func generateCode() string {
	raw := make([]byte, 16)
	_, _ = rand.Read(raw)
	out := make([]byte, 16)
	for i, b := range raw {
		out[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(out)
}
