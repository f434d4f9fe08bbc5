package auth

// Package auth issues and verifies operator API tokens. Tokens are HMAC
// signed JWTs carrying the operator's department scope; an empty
// department list means unrestricted access.

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dukanapp/dukan/internal/intake"
)

const issuer = "dukan"

var (
	ErrInvalidToken = errors.New("invalid operator token")
	ErrExpiredToken = errors.New("operator token expired")
)

type OperatorClaims struct {
	OperatorName string  `json:"name,omitempty"`
	Departments  []int64 `json:"departments,omitempty"`
	jwt.RegisteredClaims
}

// Scope converts the token's department claim into the engine's access
// scope.
func (c *OperatorClaims) Scope() intake.AccessScope {
	if len(c.Departments) == 0 {
		return intake.FullAccess()
	}
	return intake.ScopeFor(c.Departments...)
}

type TokenService struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenService(secret string, ttl time.Duration) *TokenService {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &TokenService{secret: []byte(secret), ttl: ttl}
}

// Issue mints a token for one operator. departments may be nil for full
// catalog access.
func (s *TokenService) Issue(operatorID, name string, departments []int64) (string, error) {
	now := time.Now()
	claims := OperatorClaims{
		OperatorName: name,
		Departments:  departments,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   operatorID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign operator token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token, rejecting anything not HMAC
// signed with our secret.
func (s *TokenService) Verify(tokenString string) (*OperatorClaims, error) {
	claims := &OperatorClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
