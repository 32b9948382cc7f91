package middleware

import (
	"errors"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/vetri-dj/ops-api/internal/api/metrics"
	"github.com/vetri-dj/ops-api/internal/core/access"
	"github.com/vetri-dj/ops-api/internal/core/domain"
)

// Require enforces the policy rule for endpoint. The returned error is
// rendered by the central error handler; next never runs on denial.
func Require(policy *access.Policy, endpoint access.Endpoint, log zerolog.Logger) echo.MiddlewareFunc {
	if _, declared := policy.Rule(endpoint); !declared {
		log.Error().Str("endpoint", string(endpoint)).Msg("route bound to an endpoint with no access rule; it will deny everyone")
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p := PrincipalFrom(c)
			if err := policy.Authorize(endpoint, p); err != nil {
				metrics.AccessDeniedTotal.WithLabelValues(string(endpoint), denialReason(err)).Inc()
				ev := log.Info().Str("endpoint", string(endpoint))
				if p != nil {
					ev = ev.Str("identity_id", p.ID).Str("role", string(p.Role))
				}
				ev.Err(err).Msg("request denied")
				return err
			}
			return next(c)
		}
	}
}

func denialReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrAuthenticationRequired):
		return "unauthenticated"
	case errors.Is(err, domain.ErrPasswordRotationRequired):
		return "rotation_required"
	default:
		return "forbidden"
	}
}
