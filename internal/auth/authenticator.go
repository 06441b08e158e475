package auth

import (
	"strings"

	"github.com/google/uuid"

	apperrors "github.com/Yaesine/healthcare-appointment-system/internal/errors"
)

const bearerPrefix = "Bearer "

// Authenticator extracts and verifies the bearer credential of an inbound
// request. It is the single chokepoint through which protected operations
// obtain a trusted user identity; handlers never accept a user id from
// request data.
type Authenticator struct {
	jwt *JWTService
}

// NewAuthenticator creates an authenticator backed by the given JWT service.
func NewAuthenticator(jwt *JWTService) *Authenticator {
	return &Authenticator{jwt: jwt}
}

// Authenticate parses an Authorization header value and returns the verified
// identity. A missing header or non-Bearer scheme yields ErrMissingCredential;
// token failures propagate from JWTService.Verify.
func (a *Authenticator) Authenticate(rawHeader string) (*Identity, error) {
	if rawHeader == "" || !strings.HasPrefix(rawHeader, bearerPrefix) {
		return nil, apperrors.ErrMissingCredential
	}

	claims, err := a.jwt.Verify(strings.TrimPrefix(rawHeader, bearerPrefix))
	if err != nil {
		return nil, err
	}

	// UserID format already validated by Verify.
	uid, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, apperrors.ErrInvalidToken
	}

	return &Identity{UserID: uid, Username: claims.Username}, nil
}

// Identity is the trusted result of authenticating a request.
type Identity struct {
	UserID   uuid.UUID
	Username string
}
