package handler

import (
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/vetri-dj/ops-api/internal/api/middleware"
	"github.com/vetri-dj/ops-api/internal/core/domain"
)

// ctxPrincipal returns the principal injected by the session middleware. The
// endpoint authorizer runs first, so a missing principal only happens on a
// route wired without it; fail closed.
func ctxPrincipal(c echo.Context) (domain.Principal, error) {
	p := middleware.PrincipalFrom(c)
	if p == nil {
		return domain.Principal{}, domain.ErrAuthenticationRequired
	}
	return *p, nil
}

// queryID reads the mandatory ?id= and ?version= parameters of a delete.
// version is only required when withVersion is set.
func queryID(c echo.Context, withVersion bool) (string, int64, error) {
	id := strings.TrimSpace(c.QueryParam("id"))
	if id == "" {
		return "", 0, domain.InvalidField("id", "is required")
	}
	if !withVersion {
		return id, 0, nil
	}
	version, err := strconv.ParseInt(c.QueryParam("version"), 10, 64)
	if err != nil || version < 1 {
		return "", 0, domain.InvalidField("version", "must be a positive integer")
	}
	return id, version, nil
}

var dateLayouts = []string{time.RFC3339, "2006-01-02"}

// parseDate accepts a full timestamp or a calendar date.
func parseDate(field, raw string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, domain.InvalidField(field, "must be a date (YYYY-MM-DD)")
}

// parseOptionalDate is parseDate for patch fields; nil stays nil.
func parseOptionalDate(field string, raw *string) (*time.Time, error) {
	if raw == nil {
		return nil, nil
	}
	t, err := parseDate(field, *raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
