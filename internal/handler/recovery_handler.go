package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"marketplace/internal/errors"
	"marketplace/internal/service"
)

// RecoveryHandler handles password recovery endpoints.
type RecoveryHandler struct {
	recoveryService service.PasswordRecoveryService
}

// NewRecoveryHandler creates a new recovery handler.
func NewRecoveryHandler(recoveryService service.PasswordRecoveryService) *RecoveryHandler {
	return &RecoveryHandler{recoveryService: recoveryService}
}

// RecoveryRequest asks for a recovery token to be mailed.
type RecoveryRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest exchanges a recovery token for a new password.
type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6"`
}

// RequestRecovery godoc
// @Summary Send a password recovery token by email
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RecoveryRequest true "Account email"
// @Success 202 {object} map[string]string
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /auth/recovery [post]
func (h *RecoveryHandler) RequestRecovery(c echo.Context) error {
	var req RecoveryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.recoveryService.RequestReset(c.Request().Context(), req.Email); err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusAccepted, map[string]string{
		"message": "recovery email sent",
	})
}

// ResetPassword godoc
// @Summary Reset a password with a recovery token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body ResetPasswordRequest true "Token and new password"
// @Success 200 {object} map[string]string
// @Failure 400 {object} errors.ErrorResponse
// @Router /auth/recovery/reset [post]
func (h *RecoveryHandler) ResetPassword(c echo.Context) error {
	var req ResetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.recoveryService.ResetPassword(c.Request().Context(), req.Token, req.NewPassword); err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, map[string]string{
		"message": "password updated",
	})
}
