package middleware

import (
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/miapp/secure-notes/internal/api/metrics"
	"github.com/miapp/secure-notes/internal/core/domain"
	"github.com/miapp/secure-notes/internal/core/ports"
	"github.com/miapp/secure-notes/internal/infrastructure/security"
)

// Context keys set by Auth.
const (
	UserIDKey = "user_id"
	EmailKey  = "email"
)

// SessionCookie carries the session token for browser clients.
const SessionCookie = "auth-token"

// Auth resolves the caller's identity from a bearer token (Authorization
// header first, then the session cookie). Every failure is the same
// domain.ErrUnauthorized; the concrete cause is only logged.
func Auth(tokens ports.TokenService, log zerolog.Logger) echo.MiddlewareFunc {
	return AuthWithClock(tokens, log, time.Now)
}

// AuthWithClock is Auth with an injectable time source.
func AuthWithClock(tokens ports.TokenService, log zerolog.Logger, now func() time.Time) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, err := tokens.Verify(bearerToken(c), now())
			if err != nil {
				reason := security.Reason(err)
				metrics.TokenVerificationsFailedTotal.WithLabelValues(reason).Inc()
				log.Debug().
					Str("reason", reason).
					Str("path", c.Path()).
					Msg("session token rejected")
				return domain.ErrUnauthorized
			}

			c.Set(UserIDKey, claims.UserID)
			c.Set(EmailKey, claims.Email)

			return next(c)
		}
	}
}

// bearerToken returns the token from "Authorization: Bearer <t>" or the
// session cookie, or "" when neither is present. A malformed Authorization
// header does not fall back to the cookie.
func bearerToken(c echo.Context) string {
	if header := c.Request().Header.Get(echo.HeaderAuthorization); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			return ""
		}
		return strings.TrimSpace(parts[1])
	}

	if cookie, err := c.Cookie(SessionCookie); err == nil {
		return cookie.Value
	}
	return ""
}
