// Package auth validates bearer tokens issued to POS terminals.
// Token issuance lives in the back office; this service only verifies
// signatures and maps claims onto the actor context.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	appctx "pannpos/internal/core/context"
)

// JWTConfig holds JWT configuration.
type JWTConfig struct {
	Secret         string
	Issuer         string
	AccessTokenTTL time.Duration
}

// DefaultJWTConfig returns default JWT configuration.
func DefaultJWTConfig(secret string) JWTConfig {
	return JWTConfig{
		Secret:         secret,
		Issuer:         "pannpos",
		AccessTokenTTL: 8 * time.Hour, // a full shift
	}
}

// Claims represents JWT claims.
type Claims struct {
	jwt.RegisteredClaims
	ActorID   string `json:"aid"`
	ActorType string `json:"atype"`
	Name      string `json:"name,omitempty"`
	Terminal  string `json:"term,omitempty"`
}

// JWTService handles JWT operations.
type JWTService struct {
	config JWTConfig
}

// NewJWTService creates a new JWT service.
func NewJWTService(config JWTConfig) *JWTService {
	return &JWTService{config: config}
}

// GenerateAccessToken issues a token for a cashier or customer session.
// Used by tests and provisioning tooling; production tokens come from
// the back office signing with the same secret.
func (s *JWTService) GenerateAccessToken(actor *appctx.ActorContext) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.config.AccessTokenTTL)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   actor.ActorID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		ActorID:   actor.ActorID,
		ActorType: string(actor.Type),
		Name:      actor.Name,
		Terminal:  actor.Terminal,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.config.Secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}

	return tokenString, expiresAt, nil
}

// ValidateToken validates JWT and returns the acting identity.
func (s *JWTService) ValidateToken(tokenString string) (*appctx.ActorContext, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	actorType := appctx.ActorType(claims.ActorType)
	switch actorType {
	case appctx.ActorTypeCashier, appctx.ActorTypeCustomer, appctx.ActorTypeSystem:
	default:
		return nil, fmt.Errorf("unknown actor type %q", claims.ActorType)
	}

	return &appctx.ActorContext{
		ActorID:  claims.ActorID,
		Type:     actorType,
		Name:     claims.Name,
		Terminal: claims.Terminal,
	}, nil
}
