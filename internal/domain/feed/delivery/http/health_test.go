package http

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	"github.com/Conte777/feedbot/internal/domain/feed/repository/memory"
)

func healthy(context.Context) error { return nil }

func failing(context.Context) error { return errors.New("connection refused") }

func serve(t *testing.T, handler *HealthHandler) (int, HealthResponse) {
	t.Helper()

	var ctx fasthttp.RequestCtx
	ctx.Request.Header.SetMethod(fasthttp.MethodGet)
	ctx.Request.SetRequestURI("/health")

	handler.Handle(&ctx)

	var response HealthResponse
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &response))
	assert.Equal(t, "application/json", string(ctx.Response.Header.ContentType()))
	return ctx.Response.StatusCode(), response
}

func TestHealthHandler_AllHealthy(t *testing.T) {
	store := memory.NewStore()
	handler := NewHealthHandler([]Check{{Name: "database", Probe: store.Ping}}, zerolog.Nop())

	code, response := serve(t, handler)
	assert.Equal(t, fasthttp.StatusOK, code)
	assert.Equal(t, HealthStatusHealthy, response.Status)
	require.Len(t, response.Components, 1)
	assert.Equal(t, "database", response.Components[0].Name)
	assert.True(t, response.Components[0].Healthy)
}

func TestHealthHandler_Degraded(t *testing.T) {
	handler := NewHealthHandler([]Check{
		{Name: "database", Probe: healthy},
		{Name: "cache", Probe: failing},
	}, zerolog.Nop())

	code, response := serve(t, handler)
	assert.Equal(t, fasthttp.StatusOK, code)
	assert.Equal(t, HealthStatusDegraded, response.Status)
	assert.Equal(t, "connection refused", response.Components[1].Message)
}

func TestHealthHandler_Unhealthy(t *testing.T) {
	handler := NewHealthHandler([]Check{{Name: "database", Probe: failing}}, zerolog.Nop())

	code, response := serve(t, handler)
	assert.Equal(t, fasthttp.StatusServiceUnavailable, code)
	assert.Equal(t, HealthStatusUnhealthy, response.Status)
	assert.False(t, response.Components[0].Healthy)
}
