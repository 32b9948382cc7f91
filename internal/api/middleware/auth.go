package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/vetri-dj/ops-api/internal/api/metrics"
	"github.com/vetri-dj/ops-api/internal/api/session"
	"github.com/vetri-dj/ops-api/internal/core/access"
	"github.com/vetri-dj/ops-api/internal/core/domain"
)

// PrincipalKey is the echo context key holding the decoded *domain.Principal.
const PrincipalKey = "principal"

// Session decodes the session cookie, when present and valid, and injects the
// Principal into context. It never rejects a request; enforcement is left to
// Require and Guard.
func Session(codec *session.Codec, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, err := codec.FromRequest(c.Request())
			if err == nil {
				c.Set(PrincipalKey, p)
			} else if _, cerr := c.Cookie(session.CookieName); cerr == nil {
				log.Debug().Str("path", c.Path()).Msg("ignoring unusable session cookie")
			}
			return next(c)
		}
	}
}

// PrincipalFrom returns the principal injected by Session, or nil.
func PrincipalFrom(c echo.Context) *domain.Principal {
	p, _ := c.Get(PrincipalKey).(*domain.Principal)
	return p
}

// Guard gates page navigations under the policy's surfaces. Denied requests
// are redirected and never reach next.
func Guard(policy *access.Policy, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Request().URL.Path
			decision := policy.Route(path, PrincipalFrom(c))
			if decision.Allow {
				return next(c)
			}

			reason := "forbidden"
			if decision.Redirect == access.LoginPath {
				reason = "unauthenticated"
			}
			metrics.AccessDeniedTotal.WithLabelValues(surfaceOf(path), reason).Inc()
			log.Debug().Str("path", path).Str("redirect", decision.Redirect).Msg("page navigation redirected")
			return c.Redirect(http.StatusFound, decision.Redirect)
		}
	}
}

// surfaceOf keeps the metric label bounded to the first path segment.
func surfaceOf(path string) string {
	trimmed := strings.TrimPrefix(path, "/")
	if i := strings.IndexByte(trimmed, '/'); i >= 0 {
		trimmed = trimmed[:i]
	}
	return "/" + trimmed
}
