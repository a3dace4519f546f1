package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// User is a registered account that can hold refresh-token lineages.
type User struct {
	UserID       uuid.UUID
	Email        string
	PasswordHash string
	Role         string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ValidatePassword enforces the minimum credential policy at registration.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters", ErrInvalidInput)
	}
	return nil
}
