package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, h echo.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/health/ready", nil), rec)
	require.NoError(t, h(c))
	return rec
}

func TestLiveness(t *testing.T) {
	rec := serve(t, NewHealthHandler(nil).Liveness)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadiness_AllHealthy(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	h := NewHealthHandler(map[string]Probe{
		"redis":   RedisProbe(rdb),
		"mongodb": func(context.Context) error { return nil },
	})
	rec := serve(t, h.Readiness)
	assert.Equal(t, http.StatusOK, rec.Code)

	var body readinessResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, "ok", body.Dependencies["redis"].Status)
}

func TestReadiness_Degraded(t *testing.T) {
	h := NewHealthHandler(map[string]Probe{
		"redis":   func(context.Context) error { return nil },
		"mongodb": func(context.Context) error { return errors.New("no reachable servers") },
	})
	rec := serve(t, h.Readiness)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body readinessResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "degraded", body.Status)
	assert.Equal(t, "no reachable servers", body.Dependencies["mongodb"].Error)
}
