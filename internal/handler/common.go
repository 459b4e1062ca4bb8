package handler

import (
	"context"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/rmoreira/clinic-scheduler/internal/model"
)

const dbTimeout = 5 * time.Second

// reqCtx derives a bounded context for repository calls from the request.
func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), dbTimeout)
}

// pathID parses a numeric path parameter. ok is false when the value is
// missing or not a positive integer.
func pathID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

// principalID returns the authenticated user id stored by the JWT middleware.
func principalID(c echo.Context) uint64 {
	if v, ok := c.Get("user_id").(uint64); ok {
		return v
	}
	return 0
}

// principalRole returns the authenticated role stored by the JWT middleware.
func principalRole(c echo.Context) string {
	if v, ok := c.Get("role").(string); ok {
		return v
	}
	return ""
}

// isPatientPrincipal reports whether the caller holds the patient role; such
// callers are restricted to their own records by the handlers.
func isPatientPrincipal(c echo.Context) bool {
	return principalRole(c) == model.RolePaciente
}
