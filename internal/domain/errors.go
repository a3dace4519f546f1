package domain

import "errors"

var (
	// ErrNotFound is returned when the requested resource does not exist.
	// Keeping this sentinel in domain allows adapters to map it consistently to 404/NOT_FOUND.
	ErrNotFound = errors.New("resource not found")
	// ErrInvalidCredentials hides whether email or password failed.
	// The reason is to prevent account-enumeration side channels.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountLocked signals temporary lockout after repeated failed attempts.
	ErrAccountLocked = errors.New("account locked")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrInvalidInput  = errors.New("invalid input")
	ErrConflict      = errors.New("conflict")

	// ErrMissingScopeIdentity is returned when neither activation code nor device id is present.
	ErrMissingScopeIdentity = errors.New("missing scope identity")
	// ErrMissingActivationCode is returned when the caller requires a code and none was supplied.
	ErrMissingActivationCode = errors.New("missing activation code")

	ErrCodeNotFound = errors.New("activation code not found")
	ErrCodeDisabled = errors.New("activation code disabled")
	ErrCodeExpired  = errors.New("activation code expired")
	// ErrDeviceLimitReached rejects a redemption that would bind more devices
	// than the code allows. The check runs under a per-code row lock.
	ErrDeviceLimitReached = errors.New("device limit reached")

	// ErrTokenMalformed covers bad signatures and unparsable tokens.
	// It is distinct from revoked/expired so rotation replay stays diagnosable.
	ErrTokenMalformed = errors.New("token malformed")
	ErrTokenExpired   = errors.New("token expired")
	// ErrTokenRevoked takes precedence over a valid signature: the persisted
	// revocation state is what makes replay of a rotated token detectable.
	ErrTokenRevoked = errors.New("token revoked")
)
