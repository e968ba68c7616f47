package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/quickkick/registration/internal/models"
	"github.com/quickkick/registration/internal/token"
)

const principalKey = "principal"

// Principal is the verified identity attached to a request. Requests
// without one are anonymous, not rejected; route policy decides.
type Principal struct {
	Subject string
	Roles   []string
}

func (p Principal) HasRole(role models.Role) bool {
	for _, r := range p.Roles {
		if r == string(role) {
			return true
		}
	}
	return false
}

func PrincipalFrom(c echo.Context) (Principal, bool) {
	p, ok := c.Get(principalKey).(Principal)
	return p, ok
}

type Authorizer struct {
	Codec *token.Codec
}

func NewAuthorizer(codec *token.Codec) *Authorizer {
	return &Authorizer{Codec: codec}
}

// Authenticate extracts and verifies the bearer token. Verification
// failures leave the request anonymous instead of aborting it, so public
// routes stay reachable with a stale token in the header.
func (a *Authorizer) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(echo.HeaderAuthorization)
		const prefix = "Bearer "
		if !strings.HasPrefix(header, prefix) {
			return next(c)
		}

		identity, err := a.Codec.Verify(strings.TrimPrefix(header, prefix))
		if err != nil {
			return next(c)
		}

		c.Set(principalKey, Principal{
			Subject: identity.Subject,
			Roles:   identity.Roles,
		})
		return next(c)
	}
}

func RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, ok := PrincipalFrom(c); !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
		}
		return next(c)
	}
}

func RequireRole(role models.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := PrincipalFrom(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}
			if !p.HasRole(role) {
				return echo.NewHTTPError(http.StatusForbidden, "access denied")
			}
			return next(c)
		}
	}
}
