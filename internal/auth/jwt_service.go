package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"github.com/Yaesine/healthcare-appointment-system/internal/config"
	apperrors "github.com/Yaesine/healthcare-appointment-system/internal/errors"
)

// Claims represents the identity carried inside a signed token.
type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// JWTService issues and verifies signed bearer tokens. Tokens are never
// persisted; verification is signature plus expiry only.
type JWTService struct {
	secret   []byte
	lifetime time.Duration
}

// NewJWTService creates a new JWT service. It rejects secrets shorter than
// config.MinJWTSecretBytes so the caller fails at startup instead of signing
// with a weak key.
func NewJWTService(secret string, lifetime time.Duration) (*JWTService, error) {
	if len(secret) < config.MinJWTSecretBytes {
		return nil, fmt.Errorf("jwt secret must be at least %d bytes, got %d", config.MinJWTSecretBytes, len(secret))
	}
	return &JWTService{
		secret:   []byte(secret),
		lifetime: lifetime,
	}, nil
}

// Issue generates a signed token carrying the user's id and username,
// expiring after the configured lifetime.
func (s *JWTService) Issue(userID uuid.UUID, username string) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:   userID.String(),
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.lifetime)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify validates a token and returns its claims. Expired tokens yield
// ErrExpiredToken; anything else wrong with the token (bad signature,
// malformed structure, unexpected algorithm) yields ErrInvalidToken.
func (s *JWTService) Verify(raw string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(raw, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.ErrExpiredToken
		}
		return nil, apperrors.ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, apperrors.ErrInvalidToken
	}
	if _, err := uuid.Parse(claims.UserID); err != nil {
		return nil, apperrors.ErrInvalidToken
	}

	return claims, nil
}
