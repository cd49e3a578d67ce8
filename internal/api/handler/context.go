package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dairyledger/milk-collection/internal/api/middleware"
	"github.com/dairyledger/milk-collection/internal/core/domain"
)

// actorFromContext builds the caller identity injected by the Auth middleware.
// A missing user id means the middleware did not run: reject with 401.
func actorFromContext(c echo.Context) (domain.Actor, error) {
	id, _ := c.Get(middleware.ContextUserID).(string)
	if id == "" {
		return domain.Actor{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}

	username, _ := c.Get(middleware.ContextUsername).(string)
	raw, _ := c.Get(middleware.ContextRoles).([]string)
	roles := make([]domain.Role, 0, len(raw))
	for _, r := range raw {
		roles = append(roles, domain.ParseRole(r))
	}

	return domain.Actor{ID: id, Username: username, Roles: roles}, nil
}
