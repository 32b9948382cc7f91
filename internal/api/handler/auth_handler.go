package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vetri-dj/ops-api/internal/api/metrics"
	"github.com/vetri-dj/ops-api/internal/api/session"
	"github.com/vetri-dj/ops-api/internal/core/domain"
	"github.com/vetri-dj/ops-api/internal/core/ports"
)

const (
	loginTeam     = "team"
	loginCustomer = "customer"
)

type AuthHandler struct {
	authService ports.AuthService
	sessions    *session.Codec
}

func NewAuthHandler(authService ports.AuthService, sessions *session.Codec) *AuthHandler {
	return &AuthHandler{authService: authService, sessions: sessions}
}

type otpRequest struct {
	Phone string `json:"phone" validate:"required,phone"`
}

type otpResponse struct {
	Message   string `json:"message"`
	ExpiresIn int    `json:"expiresIn"`
	DevCode   string `json:"devCode,omitempty"`
}

type loginRequest struct {
	Type       string `json:"type"       validate:"required,oneof=team customer"`
	Identifier string `json:"identifier" validate:"required_if=Type team"`
	Password   string `json:"password"   validate:"required_if=Type team"`
	Phone      string `json:"phone"      validate:"required_if=Type customer"`
	OTP        string `json:"otp"        validate:"required_if=Type customer"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword" validate:"required"`
}

type authResponse struct {
	User *domain.Identity `json:"user"`
}

// RequestOTP issues a one-time login code for a customer phone.
//
// @Summary      Request a customer login code
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      otpRequest  true  "Customer phone"
// @Success      200   {object}  otpResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Failure      503   {object}  errorResponse
// @Router       /api/auth/otp [post]
func (h *AuthHandler) RequestOTP(c echo.Context) error {
	var req otpRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	challenge, err := h.authService.RequestOTP(c.Request().Context(), req.Phone)
	if err != nil {
		return err
	}
	metrics.OTPIssuedTotal.Inc()

	return c.JSON(http.StatusOK, otpResponse{
		Message:   "OTP sent",
		ExpiresIn: int(challenge.ExpiresIn.Seconds()),
		DevCode:   challenge.DevCode,
	})
}

// Login authenticates a team member by password or a customer by one-time
// code, and sets the session cookie.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Team or customer credentials"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	var (
		identity *domain.Identity
		err      error
	)
	switch req.Type {
	case loginTeam:
		identity, err = h.authService.LoginTeam(ctx, req.Identifier, req.Password)
	case loginCustomer:
		identity, err = h.authService.LoginCustomer(ctx, req.Phone, req.OTP)
	}
	if err != nil {
		metrics.LoginsTotal.WithLabelValues(req.Type, "failure").Inc()
		return err
	}

	if err := h.setSession(c, identity); err != nil {
		return err
	}
	metrics.LoginsTotal.WithLabelValues(req.Type, "success").Inc()
	return c.JSON(http.StatusOK, authResponse{User: identity})
}

// Logout clears the session cookie. It succeeds with or without a session.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Success      200  {object}  messageResponse
// @Router       /api/auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	c.SetCookie(h.sessions.Clear())
	return c.JSON(http.StatusOK, messageResponse{Message: "logged out"})
}

// Me returns the principal asserted by the session.
//
// @Summary      Current session
// @Tags         auth
// @Produce      json
// @Success      200  {object}  domain.Principal
// @Failure      401  {object}  errorResponse
// @Router       /api/auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

// ChangePassword replaces the caller's password and re-issues the session so
// a completed rotation takes effect immediately.
//
// @Summary      Change password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      changePasswordRequest  true  "Current and new password"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /api/users/password [put]
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	actor, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req changePasswordRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	identity, err := h.authService.ChangePassword(c.Request().Context(), actor, req.CurrentPassword, req.NewPassword)
	if err != nil {
		return err
	}

	if err := h.setSession(c, identity); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, authResponse{User: identity})
}

func (h *AuthHandler) setSession(c echo.Context, identity *domain.Identity) error {
	cookie, err := h.sessions.Issue(identity.Principal())
	if err != nil {
		return err
	}
	c.SetCookie(cookie)
	return nil
}
