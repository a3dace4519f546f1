package application

import (
	"time"

	"github.com/ZhiquAI/aigrading-license-service/internal/ports"
)

// Config carries the application-level tunables resolved at bootstrap.
type Config struct {
	DefaultRole          string
	AccessTokenTTL       time.Duration
	RefreshTokenTTL      time.Duration
	FailedLoginThreshold int
	LockoutDuration      time.Duration
}

// Service implements the license, quota and token lifecycle use-cases.
// It holds no mutable state of its own: every correctness-critical invariant
// is enforced at the storage layer so multiple instances can run concurrently.
type Service struct {
	cfg      Config
	licenses ports.LicenseRepository
	quotas   ports.QuotaRepository
	usage    ports.UsageRepository
	users    ports.UserRepository
	tokens   ports.RefreshTokenRepository
	lockouts ports.LockoutStore
	revoked  ports.TokenRevocationStore
	recorder ports.UsageRecorder
	hasher   ports.PasswordHasher
	signer   ports.TokenSigner
	nowFn    func() time.Time
}

// Dependencies enumerates everything a Service needs, one field per port.
type Dependencies struct {
	Config   Config
	Licenses ports.LicenseRepository
	Quotas   ports.QuotaRepository
	Usage    ports.UsageRepository
	Users    ports.UserRepository
	Tokens   ports.RefreshTokenRepository
	Lockouts ports.LockoutStore
	Revoked  ports.TokenRevocationStore
	Recorder ports.UsageRecorder
	Hasher   ports.PasswordHasher
	Signer   ports.TokenSigner
}

func NewService(deps Dependencies) *Service {
	return &Service{
		cfg:      deps.Config,
		licenses: deps.Licenses,
		quotas:   deps.Quotas,
		usage:    deps.Usage,
		users:    deps.Users,
		tokens:   deps.Tokens,
		lockouts: deps.Lockouts,
		revoked:  deps.Revoked,
		recorder: deps.Recorder,
		hasher:   deps.Hasher,
		signer:   deps.Signer,
		nowFn:    func() time.Time { return time.Now().UTC() },
	}
}
