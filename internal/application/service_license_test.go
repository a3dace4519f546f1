package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/ZhiquAI/aigrading-license-service/internal/domain"
)

func TestRedeemGrantsQuotaAndNormalizesCode(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	env.seedCode("TEST-1111-2222-3333", domain.PlanBasic, 300, 3, nil)

	resp, err := env.svc.Redeem(context.Background(), RedeemRequest{
		Code:     "test 1111-2222_3333",
		DeviceID: "device-a",
	})
	if err != nil {
		t.Fatalf("redeem: %v", err)
	}
	if !resp.Granted || resp.QuotaAdded != 300 {
		t.Fatalf("expected fresh grant of 300, got granted=%v quota_added=%d", resp.Granted, resp.QuotaAdded)
	}
	if resp.Remaining != 300 || resp.Total != 300 {
		t.Fatalf("expected remaining=total=300, got remaining=%d total=%d", resp.Remaining, resp.Total)
	}
}

func TestRedeemReplayAddsNoQuota(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	env.seedCode("TEST11112222AAAA", domain.PlanBasic, 300, 3, nil)

	first, err := env.svc.Redeem(context.Background(), RedeemRequest{Code: "TEST11112222AAAA", DeviceID: "device-a"})
	if err != nil {
		t.Fatalf("first redeem: %v", err)
	}
	second, err := env.svc.Redeem(context.Background(), RedeemRequest{Code: "TEST11112222AAAA", DeviceID: "device-a"})
	if err != nil {
		t.Fatalf("replayed redeem: %v", err)
	}
	if !second.Granted || second.QuotaAdded != 0 {
		t.Fatalf("expected idempotent replay, got granted=%v quota_added=%d", second.Granted, second.QuotaAdded)
	}
	if second.Remaining != first.Remaining {
		t.Fatalf("replay changed remaining: %d -> %d", first.Remaining, second.Remaining)
	}
}

func TestRedeemSynthesizesDeviceIDFromSeed(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	env.seedCode("SEEDCODE11112222", domain.PlanTrial, 50, 1, nil)

	resp, err := env.svc.Redeem(context.Background(), RedeemRequest{Code: "SEEDCODE11112222", Seed: "1700000000-nonce"})
	if err != nil {
		t.Fatalf("redeem with seed: %v", err)
	}
	if resp.DeviceID != domain.SynthesizeDeviceID("1700000000-nonce") {
		t.Fatalf("unexpected synthesized device id %q", resp.DeviceID)
	}

	// Same seed resolves to the same ledger, so the replay adds nothing.
	again, err := env.svc.Redeem(context.Background(), RedeemRequest{Code: "SEEDCODE11112222", Seed: "1700000000-nonce"})
	if err != nil {
		t.Fatalf("replay with seed: %v", err)
	}
	if again.QuotaAdded != 0 {
		t.Fatalf("expected replay to add no quota, got %d", again.QuotaAdded)
	}
}

func TestRedeemRejectsMissingIdentity(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	env.seedCode("SOMECODE11112222", domain.PlanBasic, 100, 2, nil)

	if _, err := env.svc.Redeem(context.Background(), RedeemRequest{DeviceID: "device-a"}); !errors.Is(err, domain.ErrMissingActivationCode) {
		t.Fatalf("expected ErrMissingActivationCode, got %v", err)
	}
	if _, err := env.svc.Redeem(context.Background(), RedeemRequest{Code: "SOMECODE11112222"}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput without device or seed, got %v", err)
	}
}

func TestRedeemDisabledAndExpiredCodes(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	env.seedCode("DISABLEDCODE1111", domain.PlanBasic, 100, 2, nil)
	disabled := env.licenses.codes["DISABLEDCODE1111"]
	disabled.IsEnabled = false
	env.licenses.codes["DISABLEDCODE1111"] = disabled

	expiry := env.now.Add(-time.Hour)
	env.seedCode("EXPIREDCODE11111", domain.PlanBasic, 100, 2, &expiry)

	if _, err := env.svc.Redeem(context.Background(), RedeemRequest{Code: "DISABLEDCODE1111", DeviceID: "d"}); !errors.Is(err, domain.ErrCodeDisabled) {
		t.Fatalf("expected ErrCodeDisabled, got %v", err)
	}
	if _, err := env.svc.Redeem(context.Background(), RedeemRequest{Code: "EXPIREDCODE11111", DeviceID: "d"}); !errors.Is(err, domain.ErrCodeExpired) {
		t.Fatalf("expected ErrCodeExpired, got %v", err)
	}
	if _, err := env.svc.Redeem(context.Background(), RedeemRequest{Code: "MISSINGCODE11111", DeviceID: "d"}); !errors.Is(err, domain.ErrCodeNotFound) {
		t.Fatalf("expected ErrCodeNotFound, got %v", err)
	}
}

func TestRedeemEnforcesDeviceLimitUnderConcurrency(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	env.seedCode("LIMITEDCODE11111", domain.PlanPro, 500, 2, nil)

	const attempts = 8
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = env.svc.Redeem(context.Background(), RedeemRequest{
				Code:     "LIMITEDCODE11111",
				DeviceID: fmt.Sprintf("device-%d", i),
			})
		}(i)
	}
	wg.Wait()

	granted := 0
	limited := 0
	for _, err := range errs {
		switch {
		case err == nil:
			granted++
		case errors.Is(err, domain.ErrDeviceLimitReached):
			limited++
		default:
			t.Fatalf("unexpected redeem error: %v", err)
		}
	}
	if granted != 2 || limited != attempts-2 {
		t.Fatalf("expected exactly 2 grants, got granted=%d limited=%d", granted, limited)
	}
}

func TestLicenseStatusReportsBindingState(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	env.seedCode("STATUSCODE111111", domain.PlanPro, 500, 3, nil)
	if _, err := env.svc.Redeem(context.Background(), RedeemRequest{Code: "STATUSCODE111111", DeviceID: "device-a"}); err != nil {
		t.Fatalf("redeem: %v", err)
	}

	status, err := env.svc.LicenseStatus(context.Background(), "status-code-111111", "device-a")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status.BoundCount != 1 || !status.DeviceBound {
		t.Fatalf("expected bound device, got bound_count=%d device_bound=%v", status.BoundCount, status.DeviceBound)
	}

	other, err := env.svc.LicenseStatus(context.Background(), "STATUSCODE111111", "device-b")
	if err != nil {
		t.Fatalf("status other device: %v", err)
	}
	if other.DeviceBound {
		t.Fatal("unbound device reported as bound")
	}

	if _, err := env.svc.LicenseStatus(context.Background(), "UNKNOWNCODE11111", ""); !errors.Is(err, domain.ErrCodeNotFound) {
		t.Fatalf("expected ErrCodeNotFound, got %v", err)
	}
}
