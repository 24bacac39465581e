package server

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/valyala/fasthttp"
)

func serve(s *Server, method, path string) *fasthttp.RequestCtx {
	var ctx fasthttp.RequestCtx
	ctx.Request.Header.SetMethod(method)
	ctx.Request.SetRequestURI(path)
	s.Router.Handler(&ctx)
	return &ctx
}

func TestServer_Routes(t *testing.T) {
	s := NewServer("feedbot", "0", zerolog.Nop())
	s.RegisterMetrics()
	s.RegisterHealth(func(ctx *fasthttp.RequestCtx) {
		ctx.SetStatusCode(fasthttp.StatusOK)
		ctx.SetBodyString("ok")
	})

	health := serve(s, fasthttp.MethodGet, "/health")
	assert.Equal(t, fasthttp.StatusOK, health.Response.StatusCode())
	assert.Equal(t, "ok", string(health.Response.Body()))

	metrics := serve(s, fasthttp.MethodGet, "/metrics")
	assert.Equal(t, fasthttp.StatusOK, metrics.Response.StatusCode())
	assert.Contains(t, string(metrics.Response.Body()), "go_goroutines")

	missing := serve(s, fasthttp.MethodGet, "/nope")
	assert.Equal(t, fasthttp.StatusNotFound, missing.Response.StatusCode())
}
