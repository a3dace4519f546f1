package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ZhiquAI/aigrading-license-service/internal/domain"
	"github.com/ZhiquAI/aigrading-license-service/internal/ports"
)

// memLicenseRepo mirrors the transactional semantics of the postgres adapter:
// one mutex plays the role of the per-code row lock, and the quota upsert
// happens inside the same critical section as the record insert.
type memLicenseRepo struct {
	mu          sync.Mutex
	codes       map[string]domain.ActivationCode
	activations map[string]map[string]domain.ActivationRecord
	quotas      *memQuotaRepo
}

func newMemLicenseRepo(quotas *memQuotaRepo) *memLicenseRepo {
	return &memLicenseRepo{
		codes:       map[string]domain.ActivationCode{},
		activations: map[string]map[string]domain.ActivationRecord{},
		quotas:      quotas,
	}
}

func (r *memLicenseRepo) CreateCode(_ context.Context, code domain.ActivationCode) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.codes[code.Code]; ok {
		return domain.ErrConflict
	}
	r.codes[code.Code] = code
	return nil
}

func (r *memLicenseRepo) GetCode(_ context.Context, code string) (domain.ActivationCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.codes[code]
	if !ok {
		return domain.ActivationCode{}, domain.ErrNotFound
	}
	return rec, nil
}

func (r *memLicenseRepo) RedeemTx(_ context.Context, params ports.RedeemTxParams) (ports.RedeemTxResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	code, ok := r.codes[params.Code]
	if !ok {
		return ports.RedeemTxResult{}, domain.ErrCodeNotFound
	}
	if err := code.Redeemable(params.Now); err != nil {
		return ports.RedeemTxResult{}, err
	}

	bindings := r.activations[params.Code]
	if existing, ok := bindings[params.DeviceID]; ok {
		return ports.RedeemTxResult{Granted: true, QuotaAdded: 0, Record: existing}, nil
	}
	if len(bindings) >= code.MaxDevices {
		return ports.RedeemTxResult{}, domain.ErrDeviceLimitReached
	}

	record := domain.ActivationRecord{
		Code:        params.Code,
		DeviceID:    params.DeviceID,
		QuotaAdded:  code.TotalQuota,
		ActivatedAt: params.Now,
	}
	if bindings == nil {
		bindings = map[string]domain.ActivationRecord{}
		r.activations[params.Code] = bindings
	}
	bindings[params.DeviceID] = record
	r.quotas.grant(params.DeviceID, code.TotalQuota, params.Now)

	return ports.RedeemTxResult{Granted: true, QuotaAdded: code.TotalQuota, Record: record}, nil
}

func (r *memLicenseRepo) GetActivation(_ context.Context, code, deviceID string) (domain.ActivationRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.activations[code][deviceID]
	if !ok {
		return domain.ActivationRecord{}, domain.ErrNotFound
	}
	return rec, nil
}

func (r *memLicenseRepo) ListActivations(_ context.Context, code string) ([]domain.ActivationRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.ActivationRecord, 0, len(r.activations[code]))
	for _, rec := range r.activations[code] {
		out = append(out, rec)
	}
	return out, nil
}

func (r *memLicenseRepo) CountDevices(_ context.Context, code string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.activations[code]), nil
}

// memQuotaRepo keeps the conditional-update contract: the guard and the
// mutation happen under one lock, exactly like the single SQL statement.
type memQuotaRepo struct {
	mu     sync.Mutex
	quotas map[string]domain.DeviceQuota
}

func newMemQuotaRepo() *memQuotaRepo {
	return &memQuotaRepo{quotas: map[string]domain.DeviceQuota{}}
}

func (r *memQuotaRepo) grant(deviceID string, units int, now time.Time) {
	q, ok := r.quotas[deviceID]
	if !ok {
		q = domain.DeviceQuota{DeviceID: deviceID}
	}
	q.Remaining += units
	q.Total += units
	q.UpdatedAt = now
	r.quotas[deviceID] = q
}

func (r *memQuotaRepo) Get(_ context.Context, deviceID string) (domain.DeviceQuota, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	q, ok := r.quotas[deviceID]
	if !ok {
		return domain.DeviceQuota{}, domain.ErrNotFound
	}
	return q, nil
}

func (r *memQuotaRepo) ConsumeUnits(_ context.Context, deviceID string, units int, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	q, ok := r.quotas[deviceID]
	if !ok {
		return false, nil
	}
	if q.Expired(now) || q.Remaining < units {
		return false, nil
	}
	q.Remaining -= units
	q.Used += units
	q.UpdatedAt = now
	r.quotas[deviceID] = q
	return true, nil
}

func (r *memQuotaRepo) GrantUnits(_ context.Context, deviceID string, units int, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.quotas[deviceID]; !ok {
		return domain.ErrNotFound
	}
	r.grant(deviceID, units, now)
	return nil
}

type memUsageRepo struct {
	mu      sync.Mutex
	nextID  int64
	records []domain.UsageRecord
}

func (r *memUsageRepo) Insert(_ context.Context, record domain.UsageRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	record.ID = r.nextID
	r.records = append(r.records, record)
	return nil
}

func (r *memUsageRepo) ListByDevice(_ context.Context, deviceID string, limit, offset int) ([]domain.UsageRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	matched := make([]domain.UsageRecord, 0)
	for i := len(r.records) - 1; i >= 0; i-- {
		if r.records[i].DeviceID == deviceID {
			matched = append(matched, r.records[i])
		}
	}
	if offset >= len(matched) {
		return nil, nil
	}
	matched = matched[offset:]
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

type memUserRepo struct {
	mu      sync.Mutex
	byEmail map[string]domain.User
	byID    map[uuid.UUID]domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{byEmail: map[string]domain.User{}, byID: map[uuid.UUID]domain.User{}}
}

func (r *memUserRepo) Create(_ context.Context, params ports.CreateUserParams) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byEmail[params.Email]; ok {
		return domain.User{}, domain.ErrConflict
	}
	user := domain.User{
		UserID:       uuid.New(),
		Email:        params.Email,
		PasswordHash: params.PasswordHash,
		Role:         params.Role,
		IsActive:     true,
		CreatedAt:    params.RegisteredAt,
		UpdatedAt:    params.RegisteredAt,
	}
	r.byEmail[params.Email] = user
	r.byID[user.UserID] = user
	return user, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.byEmail[email]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return user, nil
}

func (r *memUserRepo) GetByID(_ context.Context, userID uuid.UUID) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.byID[userID]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return user, nil
}

// memTokenRepo reproduces the rotate-guarded-on-not-revoked contract.
type memTokenRepo struct {
	mu     sync.Mutex
	byHash map[string]domain.RefreshToken
}

func newMemTokenRepo() *memTokenRepo {
	return &memTokenRepo{byHash: map[string]domain.RefreshToken{}}
}

func (r *memTokenRepo) Create(_ context.Context, token domain.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byHash[token.TokenHash]; ok {
		return domain.ErrConflict
	}
	r.byHash[token.TokenHash] = token
	return nil
}

func (r *memTokenRepo) GetByHash(_ context.Context, tokenHash string) (domain.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	token, ok := r.byHash[tokenHash]
	if !ok {
		return domain.RefreshToken{}, domain.ErrNotFound
	}
	return token, nil
}

func (r *memTokenRepo) RotateTx(_ context.Context, oldTokenHash, reason string, replacement domain.RefreshToken, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	old, ok := r.byHash[oldTokenHash]
	if !ok || old.RevokedAt != nil {
		return domain.ErrTokenRevoked
	}
	old.RevokedAt = &now
	old.RevokeReason = reason
	r.byHash[oldTokenHash] = old
	r.byHash[replacement.TokenHash] = replacement
	return nil
}

func (r *memTokenRepo) Revoke(_ context.Context, tokenHash, reason string, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	token, ok := r.byHash[tokenHash]
	if !ok || token.RevokedAt != nil {
		return nil
	}
	token.RevokedAt = &now
	token.RevokeReason = reason
	r.byHash[tokenHash] = token
	return nil
}

func (r *memTokenRepo) DeleteExpiredBefore(_ context.Context, cutoff time.Time, limit int) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var deleted int64
	for hash, token := range r.byHash {
		if int(deleted) >= limit {
			break
		}
		if token.ExpiresAt.Before(cutoff) {
			delete(r.byHash, hash)
			deleted++
		}
	}
	return deleted, nil
}

type memLockoutStore struct {
	mu     sync.Mutex
	states map[string]ports.LockoutState
}

func newMemLockoutStore() *memLockoutStore {
	return &memLockoutStore{states: map[string]ports.LockoutState{}}
}

func (s *memLockoutStore) Get(_ context.Context, key string) (ports.LockoutState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.states[key], nil
}

func (s *memLockoutStore) RecordFailure(_ context.Context, key string, now time.Time, threshold int, lockoutWindow time.Duration) (ports.LockoutState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state := s.states[key]
	state.FailedCount++
	if state.FailedCount >= threshold {
		until := now.Add(lockoutWindow)
		state.LockedUntil = &until
	}
	s.states[key] = state
	return state, nil
}

func (s *memLockoutStore) Clear(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, key)
	return nil
}

type memRevocationStore struct {
	mu      sync.Mutex
	revoked map[uuid.UUID]bool
}

func newMemRevocationStore() *memRevocationStore {
	return &memRevocationStore{revoked: map[uuid.UUID]bool{}}
}

func (s *memRevocationStore) MarkRevoked(_ context.Context, tokenID uuid.UUID, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[tokenID] = true
	return nil
}

func (s *memRevocationStore) IsRevoked(_ context.Context, tokenID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revoked[tokenID], nil
}

// syncRecorder persists inline so tests can assert on the audit trail without
// racing a background goroutine.
type syncRecorder struct {
	usage *memUsageRepo
}

func (r *syncRecorder) Record(record domain.UsageRecord) {
	_ = r.usage.Insert(context.Background(), record)
}

// plainHasher keeps token tests fast; bcrypt behavior is covered in the
// security package.
type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) {
	return "hashed:" + password, nil
}

func (plainHasher) Compare(hash, password string) error {
	if hash != "hashed:"+password {
		return fmt.Errorf("password mismatch")
	}
	return nil
}

// fakeSigner issues opaque tokens backed by in-memory claim maps. Expiry is
// checked against the wall clock the same way a real verifier would.
type fakeSigner struct {
	mu      sync.Mutex
	nowFn   func() time.Time
	nextID  int
	access  map[string]ports.AccessClaims
	refresh map[string]ports.RefreshClaims
}

func newFakeSigner() *fakeSigner {
	return &fakeSigner{
		nowFn:   time.Now,
		access:  map[string]ports.AccessClaims{},
		refresh: map[string]ports.RefreshClaims{},
	}
}

func (s *fakeSigner) SignAccess(claims ports.AccessClaims) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	token := fmt.Sprintf("access-%d", s.nextID)
	s.access[token] = claims
	return token, nil
}

func (s *fakeSigner) SignRefresh(claims ports.RefreshClaims) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	token := fmt.Sprintf("refresh-%d", s.nextID)
	s.refresh[token] = claims
	return token, nil
}

func (s *fakeSigner) ParseAccess(raw string) (ports.AccessClaims, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	claims, ok := s.access[raw]
	if !ok {
		return ports.AccessClaims{}, domain.ErrTokenMalformed
	}
	if s.nowFn().After(claims.ExpiresAt) {
		return ports.AccessClaims{}, domain.ErrTokenExpired
	}
	return claims, nil
}

func (s *fakeSigner) ParseRefresh(raw string) (ports.RefreshClaims, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	claims, ok := s.refresh[raw]
	if !ok {
		return ports.RefreshClaims{}, domain.ErrTokenMalformed
	}
	return claims, nil
}

// testEnv bundles a service with direct handles on its fakes.
type testEnv struct {
	svc      *Service
	licenses *memLicenseRepo
	quotas   *memQuotaRepo
	usage    *memUsageRepo
	users    *memUserRepo
	tokens   *memTokenRepo
	lockouts *memLockoutStore
	revoked  *memRevocationStore
	signer   *fakeSigner
	now      time.Time
}

func newTestEnv() *testEnv {
	quotas := newMemQuotaRepo()
	env := &testEnv{
		licenses: newMemLicenseRepo(quotas),
		quotas:   quotas,
		usage:    &memUsageRepo{},
		users:    newMemUserRepo(),
		tokens:   newMemTokenRepo(),
		lockouts: newMemLockoutStore(),
		revoked:  newMemRevocationStore(),
		signer:   newFakeSigner(),
		now:      time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	env.svc = NewService(Dependencies{
		Config: Config{
			DefaultRole:          "USER",
			AccessTokenTTL:       time.Hour,
			RefreshTokenTTL:      30 * 24 * time.Hour,
			FailedLoginThreshold: 3,
			LockoutDuration:      15 * time.Minute,
		},
		Licenses: env.licenses,
		Quotas:   env.quotas,
		Usage:    env.usage,
		Users:    env.users,
		Tokens:   env.tokens,
		Lockouts: env.lockouts,
		Revoked:  env.revoked,
		Recorder: &syncRecorder{usage: env.usage},
		Hasher:   plainHasher{},
		Signer:   env.signer,
	})
	env.svc.nowFn = func() time.Time { return env.now }
	env.signer.nowFn = func() time.Time { return env.now }
	return env
}

func (e *testEnv) seedCode(code string, plan domain.PlanType, totalQuota, maxDevices int, expiresAt *time.Time) {
	e.licenses.codes[domain.NormalizeCode(code)] = domain.ActivationCode{
		Code:       domain.NormalizeCode(code),
		PlanType:   plan,
		TotalQuota: totalQuota,
		MaxDevices: maxDevices,
		IsEnabled:  true,
		ExpiresAt:  expiresAt,
		CreatedAt:  e.now,
	}
}
