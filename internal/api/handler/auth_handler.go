package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/secureid/identity-api/internal/api/metrics"
	"github.com/secureid/identity-api/internal/api/middleware"
	"github.com/secureid/identity-api/internal/core/ports"
	"github.com/secureid/identity-api/pkg/clientip"
)

// AuthHandler exposes the unauthenticated credential flows.
type AuthHandler struct {
	authService   ports.AuthService
	sessionTTL    time.Duration
	secureCookies bool
}

func NewAuthHandler(authService ports.AuthService, sessionTTL time.Duration, secureCookies bool) *AuthHandler {
	return &AuthHandler{
		authService:   authService,
		sessionTTL:    sessionTTL,
		secureCookies: secureCookies,
	}
}

type registerRequest struct {
	Username string `json:"username" validate:"required,min=3"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type resetRequestBody struct {
	Email string `json:"email" validate:"required,email"`
}

type resetPasswordBody struct {
	Password string `json:"password" validate:"required,min=8"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// Register creates a new unverified account and sends the verification mail.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Registration details"
// @Success      201   {object}  messageResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	_, err := h.authService.Register(c.Request().Context(), ports.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Origin:   clientip.FromRequest(c.Request()),
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, messageResponse{
		Message: "User registered successfully. Please check your email to verify your account.",
	})
}

// Login authenticates by email and password and sets the session cookie.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  messageResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	tok, _, err := h.authService.Login(c.Request().Context(), req.Email, req.Password, clientip.FromRequest(c.Request()))
	if err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues("failure").Inc()
		return err
	}
	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()
	metrics.TokensIssuedTotal.Inc()

	c.SetCookie(h.sessionCookie(tok, h.sessionTTL))
	return c.JSON(http.StatusOK, messageResponse{Message: "Login successful"})
}

// VerifyEmail consumes a verification secret from the query string.
//
// @Summary      Verify email address
// @Tags         auth
// @Produce      json
// @Param        token  query     string  true  "Verification secret"
// @Success      200    {object}  messageResponse
// @Failure      404    {object}  errorResponse
// @Router       /auth/verify-email [get]
func (h *AuthHandler) VerifyEmail(c echo.Context) error {
	secret := c.QueryParam("token")
	if err := h.authService.VerifyEmail(c.Request().Context(), secret, clientip.FromRequest(c.Request())); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Email verified successfully"})
}

// RequestPasswordReset issues a reset secret and sends the reset mail.
//
// @Summary      Request a password reset
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      resetRequestBody  true  "Account email"
// @Success      200   {object}  messageResponse
// @Failure      404   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Router       /auth/request-password-reset [post]
func (h *AuthHandler) RequestPasswordReset(c echo.Context) error {
	var req resetRequestBody
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.authService.RequestPasswordReset(c.Request().Context(), req.Email, clientip.FromRequest(c.Request())); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Password reset link sent. Please check your email."})
}

// ResetPassword consumes a reset secret and applies the new password.
//
// @Summary      Reset password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        token  query     string             true  "Reset secret"
// @Param        body   body      resetPasswordBody  true  "New password"
// @Success      200    {object}  messageResponse
// @Failure      404    {object}  errorResponse
// @Router       /auth/reset-password [post]
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req resetPasswordBody
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	secret := c.QueryParam("token")
	if err := h.authService.ResetPassword(c.Request().Context(), secret, req.Password, clientip.FromRequest(c.Request())); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Password successfully reset"})
}

// Logout clears the session cookie. Tokens stay cryptographically valid until
// their natural expiry; there is no server-side revocation in this design.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Success      200  {object}  messageResponse
// @Router       /user/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	c.SetCookie(h.sessionCookie("", -time.Hour))
	return c.JSON(http.StatusOK, messageResponse{Message: "Logged out successfully"})
}

func (h *AuthHandler) sessionCookie(value string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    value,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteNoneMode,
	}
}
