package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ZhiquAI/aigrading-license-service/internal/domain"
	"github.com/ZhiquAI/aigrading-license-service/internal/ports"
)

// Register creates a local account. Kept minimal: the account exists so
// refresh-token lineages have an owner.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (RegisterResponse, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return RegisterResponse{}, err
	}
	if err := domain.ValidatePassword(req.Password); err != nil {
		return RegisterResponse{}, err
	}

	passwordHash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return RegisterResponse{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(ctx, ports.CreateUserParams{
		Email:        email,
		PasswordHash: passwordHash,
		Role:         s.cfg.DefaultRole,
		RegisteredAt: s.nowFn(),
	})
	if err != nil {
		return RegisterResponse{}, err
	}
	return RegisterResponse{UserID: user.UserID}, nil
}

// Login validates credentials and issues an access/refresh pair.
// Unknown account and wrong password produce the same error so login cannot
// be used to enumerate accounts.
func (s *Service) Login(ctx context.Context, req LoginRequest) (TokenPairResponse, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return TokenPairResponse{}, err
	}

	lockKey := "login:" + email
	lockState, err := s.lockouts.Get(ctx, lockKey)
	if err == nil && lockState.LockedUntil != nil && lockState.LockedUntil.After(s.nowFn()) {
		return TokenPairResponse{}, domain.ErrAccountLocked
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return TokenPairResponse{}, domain.ErrInvalidCredentials
	}
	if !user.IsActive {
		return TokenPairResponse{}, domain.ErrInvalidCredentials
	}

	if err := s.hasher.Compare(user.PasswordHash, req.Password); err != nil {
		now := s.nowFn()
		state, lockErr := s.lockouts.RecordFailure(ctx, lockKey, now, s.cfg.FailedLoginThreshold, s.cfg.LockoutDuration)
		if lockErr == nil && state.LockedUntil != nil && state.LockedUntil.After(now) {
			return TokenPairResponse{}, domain.ErrAccountLocked
		}
		return TokenPairResponse{}, domain.ErrInvalidCredentials
	}

	_ = s.lockouts.Clear(ctx, lockKey)

	return s.issuePair(ctx, user)
}

// Refresh rotates a refresh token: the old row is revoked and its replacement
// inserted in one transaction, so replaying the old token afterwards fails
// with ErrTokenRevoked even though its signature still verifies.
func (s *Service) Refresh(ctx context.Context, rawRefreshToken string) (TokenPairResponse, error) {
	claims, err := s.signer.ParseRefresh(rawRefreshToken)
	if err != nil {
		return TokenPairResponse{}, err
	}

	if revoked, _ := s.revoked.IsRevoked(ctx, claims.TokenID); revoked {
		return TokenPairResponse{}, domain.ErrTokenRevoked
	}

	oldHash := hashToken(rawRefreshToken)
	rec, err := s.tokens.GetByHash(ctx, oldHash)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Valid signature but no persisted lineage: treat as revoked
			// rather than leaking whether the row ever existed.
			return TokenPairResponse{}, domain.ErrTokenRevoked
		}
		return TokenPairResponse{}, err
	}
	now := s.nowFn()
	if rec.RevokedAt != nil {
		return TokenPairResponse{}, domain.ErrTokenRevoked
	}
	if !rec.ExpiresAt.After(now) {
		return TokenPairResponse{}, domain.ErrTokenExpired
	}

	user, err := s.users.GetByID(ctx, rec.UserID)
	if err != nil {
		return TokenPairResponse{}, domain.ErrUnauthorized
	}

	accessToken, replacement, rawReplacement, err := s.mintPair(user, now)
	if err != nil {
		return TokenPairResponse{}, err
	}

	if err := s.tokens.RotateTx(ctx, oldHash, domain.RevokeReasonRotated, replacement, now); err != nil {
		return TokenPairResponse{}, err
	}
	s.markRevokedCache(ctx, rec.TokenID, rec.ExpiresAt)

	return TokenPairResponse{
		AccessToken:  accessToken,
		RefreshToken: rawReplacement,
		ExpiresIn:    int64(s.cfg.AccessTokenTTL.Seconds()),
	}, nil
}

// Logout revokes the refresh token's lineage. Idempotent by design: a
// malformed, unknown or already-revoked token is a no-op success so the
// endpoint never reveals whether a token exists.
func (s *Service) Logout(ctx context.Context, rawRefreshToken string) error {
	claims, err := s.signer.ParseRefresh(rawRefreshToken)
	if err != nil {
		return nil
	}
	now := s.nowFn()
	if err := s.tokens.Revoke(ctx, hashToken(rawRefreshToken), domain.RevokeReasonLogout, now); err != nil {
		slog.Default().WarnContext(ctx, "logout revoke failed",
			"service", serviceName,
			"module", "application",
			"layer", "application",
			"operation", "logout",
			"outcome", "failure",
			"error", err,
		)
		return nil
	}
	s.markRevokedCache(ctx, claims.TokenID, claims.ExpiresAt)
	return nil
}

// VerifyAccess checks signature and expiry only. No store round-trip: the
// access hot path stays store-free by design.
func (s *Service) VerifyAccess(_ context.Context, rawAccessToken string) (ports.AccessClaims, error) {
	return s.signer.ParseAccess(rawAccessToken)
}

// issuePair mints and persists a fresh credential pair for a user.
func (s *Service) issuePair(ctx context.Context, user domain.User) (TokenPairResponse, error) {
	now := s.nowFn()
	accessToken, refreshRec, rawRefresh, err := s.mintPair(user, now)
	if err != nil {
		return TokenPairResponse{}, err
	}
	if err := s.tokens.Create(ctx, refreshRec); err != nil {
		return TokenPairResponse{}, fmt.Errorf("persist refresh token: %w", err)
	}
	return TokenPairResponse{
		AccessToken:  accessToken,
		RefreshToken: rawRefresh,
		ExpiresIn:    int64(s.cfg.AccessTokenTTL.Seconds()),
	}, nil
}

// mintPair signs both tokens and builds the refresh row holding only the
// digest of the raw refresh token.
func (s *Service) mintPair(user domain.User, now time.Time) (string, domain.RefreshToken, string, error) {
	accessToken, err := s.signer.SignAccess(ports.AccessClaims{
		UserID:    user.UserID,
		Email:     user.Email,
		Role:      user.Role,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.cfg.AccessTokenTTL),
	})
	if err != nil {
		return "", domain.RefreshToken{}, "", fmt.Errorf("sign access token: %w", err)
	}

	tokenID := uuid.New()
	expiresAt := now.Add(s.cfg.RefreshTokenTTL)
	rawRefresh, err := s.signer.SignRefresh(ports.RefreshClaims{
		UserID:    user.UserID,
		TokenID:   tokenID,
		IssuedAt:  now,
		ExpiresAt: expiresAt,
	})
	if err != nil {
		return "", domain.RefreshToken{}, "", fmt.Errorf("sign refresh token: %w", err)
	}

	rec := domain.RefreshToken{
		TokenID:   tokenID,
		UserID:    user.UserID,
		TokenHash: hashToken(rawRefresh),
		IssuedAt:  now,
		ExpiresAt: expiresAt,
	}
	return accessToken, rec, rawRefresh, nil
}

func (s *Service) markRevokedCache(ctx context.Context, tokenID uuid.UUID, expiresAt time.Time) {
	if err := s.revoked.MarkRevoked(ctx, tokenID, expiresAt); err != nil {
		slog.Default().WarnContext(ctx, "revocation cache write failed",
			"service", serviceName,
			"module", "application",
			"layer", "application",
			"operation", "mark_revoked",
			"outcome", "failure",
			"token_id", tokenID,
			"error", err,
		)
	}
}
