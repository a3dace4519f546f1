package security

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ZhiquAI/aigrading-license-service/internal/domain"
	"github.com/ZhiquAI/aigrading-license-service/internal/ports"
)

func newTestSigner(t *testing.T) *HMACSigner {
	t.Helper()
	signer, err := NewHMACSigner("test-secret-0123456789", "license-test")
	if err != nil {
		t.Fatalf("new signer: %v", err)
	}
	return signer
}

func TestAccessTokenRoundTrip(t *testing.T) {
	t.Parallel()

	signer := newTestSigner(t)
	now := time.Now().UTC().Truncate(time.Second)
	want := ports.AccessClaims{
		UserID:    uuid.New(),
		Email:     "user@example.com",
		Role:      "USER",
		IssuedAt:  now,
		ExpiresAt: now.Add(time.Hour),
	}

	raw, err := signer.SignAccess(want)
	if err != nil {
		t.Fatalf("sign access: %v", err)
	}
	got, err := signer.ParseAccess(raw)
	if err != nil {
		t.Fatalf("parse access: %v", err)
	}
	if got.UserID != want.UserID || got.Email != want.Email || got.Role != want.Role {
		t.Fatalf("claims mismatch: got %+v want %+v", got, want)
	}
	if !got.ExpiresAt.Equal(want.ExpiresAt) {
		t.Fatalf("expiry mismatch: got %v want %v", got.ExpiresAt, want.ExpiresAt)
	}
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	t.Parallel()

	signer := newTestSigner(t)
	now := time.Now().UTC().Truncate(time.Second)
	want := ports.RefreshClaims{
		UserID:    uuid.New(),
		TokenID:   uuid.New(),
		IssuedAt:  now,
		ExpiresAt: now.Add(30 * 24 * time.Hour),
	}

	raw, err := signer.SignRefresh(want)
	if err != nil {
		t.Fatalf("sign refresh: %v", err)
	}
	got, err := signer.ParseRefresh(raw)
	if err != nil {
		t.Fatalf("parse refresh: %v", err)
	}
	if got.UserID != want.UserID || got.TokenID != want.TokenID {
		t.Fatalf("claims mismatch: got %+v want %+v", got, want)
	}
}

func TestTokenTypeConfusionRejected(t *testing.T) {
	t.Parallel()

	signer := newTestSigner(t)
	now := time.Now().UTC()

	refresh, err := signer.SignRefresh(ports.RefreshClaims{
		UserID:    uuid.New(),
		TokenID:   uuid.New(),
		IssuedAt:  now,
		ExpiresAt: now.Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("sign refresh: %v", err)
	}
	if _, err := signer.ParseAccess(refresh); !errors.Is(err, domain.ErrTokenMalformed) {
		t.Fatalf("refresh accepted as access: %v", err)
	}

	access, err := signer.SignAccess(ports.AccessClaims{
		UserID:    uuid.New(),
		IssuedAt:  now,
		ExpiresAt: now.Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("sign access: %v", err)
	}
	if _, err := signer.ParseRefresh(access); !errors.Is(err, domain.ErrTokenMalformed) {
		t.Fatalf("access accepted as refresh: %v", err)
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	t.Parallel()

	signer := newTestSigner(t)
	now := time.Now().UTC()

	raw, err := signer.SignAccess(ports.AccessClaims{
		UserID:    uuid.New(),
		IssuedAt:  now.Add(-2 * time.Hour),
		ExpiresAt: now.Add(-time.Hour),
	})
	if err != nil {
		t.Fatalf("sign access: %v", err)
	}
	if _, err := signer.ParseAccess(raw); !errors.Is(err, domain.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestForeignSignatureRejected(t *testing.T) {
	t.Parallel()

	signer := newTestSigner(t)
	other, err := NewHMACSigner("another-secret-entirely", "license-test")
	if err != nil {
		t.Fatalf("new signer: %v", err)
	}

	now := time.Now().UTC()
	raw, err := other.SignAccess(ports.AccessClaims{
		UserID:    uuid.New(),
		IssuedAt:  now,
		ExpiresAt: now.Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("sign access: %v", err)
	}
	if _, err := signer.ParseAccess(raw); !errors.Is(err, domain.ErrTokenMalformed) {
		t.Fatalf("expected ErrTokenMalformed for foreign signature, got %v", err)
	}
	if _, err := signer.ParseAccess("not-a-jwt"); !errors.Is(err, domain.ErrTokenMalformed) {
		t.Fatalf("expected ErrTokenMalformed for garbage, got %v", err)
	}
}
