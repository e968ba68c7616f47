package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/quickkick/registration/internal/config"
	"github.com/quickkick/registration/internal/middleware"
	"github.com/quickkick/registration/internal/models"
)

type Deps struct {
	AuthHandler *AuthHTTP
	Authorizer  *middleware.Authorizer
	Mode        config.GateMode
}

// Register wires the route policy: a small anonymous allow-list under
// /auth, everything else behind an authenticated principal. The admin
// gate profile additionally demands ROLE_ADMIN on every route.
func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	e.Use(d.Authorizer.Authenticate)

	if d.Mode == config.GateModeAdmin {
		admin := e.Group("/api/v1.0", middleware.RequireRole(models.RoleAdmin))
		admin.GET("/private/me", me)
		return
	}

	auth := e.Group("/api/v1.0/auth")
	auth.POST("/register-user", d.AuthHandler.RegisterUser)
	auth.POST("/register-administrator", d.AuthHandler.RegisterAdministrator)
	auth.GET("/confirm-account/:token", d.AuthHandler.ConfirmAccount)
	auth.POST("/confirm-account/:token", d.AuthHandler.ConfirmAccount)
	auth.POST("/authenticate", d.AuthHandler.Authenticate)
	auth.POST("/oauth2/callback", d.AuthHandler.OIDCCallback)

	private := e.Group("/api/v1.0/private", middleware.RequireAuth)
	private.GET("/me", me)
}

func me(c echo.Context) error {
	p, _ := middleware.PrincipalFrom(c)
	return c.JSON(http.StatusOK, echo.Map{
		"subject": p.Subject,
		"roles":   p.Roles,
	})
}
