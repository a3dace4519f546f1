package postgres

import (
	"gorm.io/gorm"

	"github.com/ZhiquAI/aigrading-license-service/internal/ports"
)

// Repositories bundles every postgres-backed port implementation.
type Repositories struct {
	Licenses ports.LicenseRepository
	Quotas   ports.QuotaRepository
	Usage    ports.UsageRepository
	Users    ports.UserRepository
	Tokens   ports.RefreshTokenRepository
}

func NewRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Licenses: &licenseRepository{db: db},
		Quotas:   &quotaRepository{db: db},
		Usage:    &usageRepository{db: db},
		Users:    &userRepository{db: db},
		Tokens:   &refreshTokenRepository{db: db},
	}
}
