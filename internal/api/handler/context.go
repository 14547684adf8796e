package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/miapp/secure-notes/internal/api/middleware"
	"github.com/miapp/secure-notes/internal/core/domain"
)

// ctxOwner returns the user id injected by the Auth middleware. A missing
// or non-positive id means the middleware did not run; fail closed.
func ctxOwner(c echo.Context) (int64, error) {
	id, _ := c.Get(middleware.UserIDKey).(int64)
	if id <= 0 {
		return 0, domain.ErrUnauthorized
	}
	return id, nil
}
