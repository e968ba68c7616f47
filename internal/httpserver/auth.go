package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/quickkick/registration/internal/logging"
	"github.com/quickkick/registration/internal/service"
)

type AuthHTTP struct {
	Registration *service.RegistrationService
	Auth         *service.AuthService
}

type registerUserRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	PhoneNumber string `json:"phoneNumber"`
}

type registerAdministratorRequest struct {
	Email        string `json:"email"`
	Password     string `json:"password"`
	PhoneNumber  string `json:"phoneNumber"`
	BusinessName string `json:"businessName"`
	CUI          string `json:"cui"`
	IBAN         string `json:"iban"`
	Address      string `json:"address"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type oidcCallbackRequest struct {
	Email      string `json:"email"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
}

// domainError maps the error taxonomy onto HTTP statuses. Verification
// internals are never surfaced; unexpected failures stay generic.
func domainError(err error) *echo.HTTPError {
	var dup *service.DuplicateFieldError
	switch {
	case errors.As(err, &dup):
		return echo.NewHTTPError(http.StatusBadRequest, dup.Error())
	case errors.Is(err, service.ErrTokenNotFound):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrTokenExpired):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrAccountNotFound):
		return echo.NewHTTPError(http.StatusUnauthorized, service.ErrInvalidCredentials.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
}

func (h *AuthHTTP) RegisterUser(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "register_user")

	var req registerUserRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("register_user_bad_request", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	userID, err := h.Registration.RegisterUser(ctx, service.RegisterUserInput{
		Email:       req.Email,
		Password:    req.Password,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		return domainError(err)
	}

	return c.JSON(http.StatusCreated, echo.Map{"user_id": userID})
}

func (h *AuthHTTP) RegisterAdministrator(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "register_administrator")

	var req registerAdministratorRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("register_administrator_bad_request", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	adminID, err := h.Registration.RegisterAdministrator(ctx, service.RegisterAdministratorInput{
		Email:        req.Email,
		Password:     req.Password,
		PhoneNumber:  req.PhoneNumber,
		BusinessName: req.BusinessName,
		CUI:          req.CUI,
		IBAN:         req.IBAN,
		Address:      req.Address,
	})
	if err != nil {
		return domainError(err)
	}

	return c.JSON(http.StatusCreated, echo.Map{"administrator_id": adminID})
}

func (h *AuthHTTP) ConfirmAccount(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.Registration.ConfirmAccount(ctx, c.Param("token")); err != nil {
		return domainError(err)
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "account confirmed successfully"})
}

func (h *AuthHTTP) Authenticate(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "authenticate")

	var req loginRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("authenticate_bad_request", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	pair, err := h.Auth.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return domainError(err)
	}

	return c.JSON(http.StatusAccepted, echo.Map{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
	})
}

func (h *AuthHTTP) OIDCCallback(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "oidc_callback")

	var req oidcCallbackRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("oidc_callback_bad_request", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Email == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "email claim is required")
	}

	pair, err := h.Auth.HandleOIDCLogin(ctx, service.OIDCClaims{
		Email:      req.Email,
		GivenName:  req.GivenName,
		FamilyName: req.FamilyName,
	})
	if err != nil {
		return domainError(err)
	}

	return c.JSON(http.StatusAccepted, echo.Map{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
	})
}
