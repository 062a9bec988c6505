package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hapl/fieldsales/internal/api/metrics"
	"github.com/hapl/fieldsales/internal/core/domain"
	"github.com/hapl/fieldsales/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role" validate:"required"`
}

// Login authenticates a user for the selected role and issues tokens.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  Envelope{data=ports.LoginResult}
// @Failure      400   {object}  Envelope
// @Failure      500   {object}  Envelope
// @Router       /api/v1/auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return domain.Invalid("Invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	res, err := h.authService.Login(c.Request().Context(), ports.LoginInput{
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	metrics.LoginsTotal.WithLabelValues(loginResult(err)).Inc()
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, "Login successfully", res)
}

// Logout revokes the caller's session.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  Envelope
// @Failure      401  {object}  Envelope
// @Router       /api/v1/auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	if err := h.authService.Logout(c.Request().Context(), id); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Logout successfully", nil)
}

func loginResult(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domain.ErrInvalidCredentials), errors.Is(err, domain.ErrValidation):
		return "invalid_credentials"
	case errors.Is(err, domain.ErrInvalidRole):
		return "invalid_role"
	case errors.Is(err, domain.ErrProfileInactive):
		return "inactive"
	}
	return "error"
}
