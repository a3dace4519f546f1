package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/ZhiquAI/aigrading-license-service/internal/domain"
	"github.com/ZhiquAI/aigrading-license-service/internal/ports"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// HMACSigner implements HS256 signing for access and refresh tokens.
// The token_type claim prevents a refresh token from being presented where
// an access token is expected and vice versa.
type HMACSigner struct {
	secret []byte
	issuer string
}

// NewHMACSigner builds a signer from the configured shared secret.
func NewHMACSigner(secret, issuer string) (*HMACSigner, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is required")
	}
	if issuer == "" {
		issuer = "aigrading-license-service"
	}
	return &HMACSigner{secret: []byte(secret), issuer: issuer}, nil
}

type licenseJWTClaims struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email,omitempty"`
	Role      string `json:"role,omitempty"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

func (s *HMACSigner) SignAccess(claims ports.AccessClaims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, licenseJWTClaims{
		UserID:    claims.UserID.String(),
		Email:     claims.Email,
		Role:      claims.Role,
		TokenType: tokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(claims.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(claims.ExpiresAt),
		},
	})
	return token.SignedString(s.secret)
}

func (s *HMACSigner) SignRefresh(claims ports.RefreshClaims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, licenseJWTClaims{
		UserID:    claims.UserID.String(),
		TokenType: tokenTypeRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        claims.TokenID.String(),
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(claims.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(claims.ExpiresAt),
		},
	})
	return token.SignedString(s.secret)
}

func (s *HMACSigner) ParseAccess(raw string) (ports.AccessClaims, error) {
	claims, err := s.parse(raw, tokenTypeAccess)
	if err != nil {
		return ports.AccessClaims{}, err
	}
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return ports.AccessClaims{}, domain.ErrTokenMalformed
	}
	return ports.AccessClaims{
		UserID:    userID,
		Email:     claims.Email,
		Role:      claims.Role,
		IssuedAt:  claims.IssuedAt.Time.UTC(),
		ExpiresAt: claims.ExpiresAt.Time.UTC(),
	}, nil
}

func (s *HMACSigner) ParseRefresh(raw string) (ports.RefreshClaims, error) {
	claims, err := s.parse(raw, tokenTypeRefresh)
	if err != nil {
		return ports.RefreshClaims{}, err
	}
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return ports.RefreshClaims{}, domain.ErrTokenMalformed
	}
	tokenID, err := uuid.Parse(claims.ID)
	if err != nil {
		return ports.RefreshClaims{}, domain.ErrTokenMalformed
	}
	return ports.RefreshClaims{
		UserID:    userID,
		TokenID:   tokenID,
		IssuedAt:  claims.IssuedAt.Time.UTC(),
		ExpiresAt: claims.ExpiresAt.Time.UTC(),
	}, nil
}

func (s *HMACSigner) parse(raw, wantType string) (*licenseJWTClaims, error) {
	parsed, err := jwt.ParseWithClaims(raw, &licenseJWTClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %s", token.Method.Alg())
		}
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithLeeway(30*time.Second))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired
		}
		return nil, domain.ErrTokenMalformed
	}
	claims, ok := parsed.Claims.(*licenseJWTClaims)
	if !ok || !parsed.Valid {
		return nil, domain.ErrTokenMalformed
	}
	if claims.TokenType != wantType {
		return nil, domain.ErrTokenMalformed
	}
	if claims.IssuedAt == nil || claims.ExpiresAt == nil {
		return nil, domain.ErrTokenMalformed
	}
	return claims, nil
}
