package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Yaesine/healthcare-appointment-system/internal/auth"
	"github.com/Yaesine/healthcare-appointment-system/internal/errors"
)

const identityContextKey = "identity"

// Auth returns echo middleware that authenticates every request through the
// single Authenticator chokepoint and stores the verified identity in the
// request context. Handlers obtain the user id only from here.
func Auth(authenticator *auth.Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity, err := authenticator.Authenticate(c.Request().Header.Get(echo.HeaderAuthorization))
			if err != nil {
				httpErr := errors.MapErrorToHTTP(err)
				return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
			}

			c.Set(identityContextKey, identity)
			return next(c)
		}
	}
}

// UserID returns the authenticated user id set by Auth. The boolean is false
// when the request did not pass through the middleware.
func UserID(c echo.Context) (uuid.UUID, bool) {
	identity, ok := c.Get(identityContextKey).(*auth.Identity)
	if !ok {
		return uuid.Nil, false
	}
	return identity.UserID, true
}
