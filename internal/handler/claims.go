package handler

import (
	"net/http"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"marketplace/internal/model"
)

// authenticatedUserID extracts the caller's user ID from the JWT that the
// auth middleware stored on the context.
func authenticatedUserID(c echo.Context) (uuid.UUID, error) {
	token, ok := c.Get("user").(*jwt.Token)
	if !ok {
		return uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}
	raw, _ := claims["user_id"].(string)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}
	return id, nil
}

// authenticatedRole extracts the caller's role claim, defaulting to the
// plain user role when absent.
func authenticatedRole(c echo.Context) model.Role {
	token, ok := c.Get("user").(*jwt.Token)
	if !ok {
		return model.RoleUser
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return model.RoleUser
	}
	raw, _ := claims["role"].(string)
	role := model.Role(raw)
	if !role.Valid() {
		return model.RoleUser
	}
	return role
}
