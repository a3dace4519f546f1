package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Requirement declares what a caller needs resolved before ledger access.
type Requirement int

const (
	// RequireAny accepts either an activation code or a device id.
	RequireAny Requirement = iota
	// RequireCode is for license-status style queries that address the code itself.
	RequireCode
)

// ScopeIdentity is the resolved key downstream components use to locate
// ledger rows. Either field may be empty depending on the requirement.
type ScopeIdentity struct {
	Code     string
	DeviceID string
}

// NormalizeCode canonicalizes a human-typed activation code before any lookup:
// trimmed, uppercased, separators stripped. "ab12-cd34" and "AB12 CD34"
// address the same row.
func NormalizeCode(raw string) string {
	upper := strings.ToUpper(strings.TrimSpace(raw))
	var b strings.Builder
	b.Grow(len(upper))
	for _, r := range upper {
		if r == '-' || r == ' ' || r == '_' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ResolveScope validates and normalizes request-supplied identity inputs.
// It is pure: no lookups, no side effects.
func ResolveScope(code, deviceID string, req Requirement) (ScopeIdentity, error) {
	scope := ScopeIdentity{
		Code:     NormalizeCode(code),
		DeviceID: strings.TrimSpace(deviceID),
	}
	if req == RequireCode && scope.Code == "" {
		return ScopeIdentity{}, ErrMissingActivationCode
	}
	if scope.Code == "" && scope.DeviceID == "" {
		return ScopeIdentity{}, ErrMissingScopeIdentity
	}
	return scope, nil
}

// SynthesizeDeviceID derives a stable opaque device id from a caller-supplied
// seed (typically timestamp + nonce) for anonymous tracking. The result is
// deterministic for a given seed and must never be parsed downstream.
func SynthesizeDeviceID(seed string) string {
	sum := sha256.Sum256([]byte(seed))
	return "dev_" + hex.EncodeToString(sum[:16])
}
