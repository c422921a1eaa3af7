// Tourline - Live Tour Location Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tourline

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/tourline/internal/middleware"
)

// chiMiddleware adapts http.HandlerFunc middleware to Chi's func(http.Handler) http.Handler.
func chiMiddleware(mw func(http.HandlerFunc) http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return mw(next.ServeHTTP)
	}
}

// Router wires the handlers, the relay upgrade endpoint and middleware.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
	wsPath        string
	ws            http.HandlerFunc
}

// NewRouter creates a Router. ws handles WebSocket upgrades at wsPath.
func NewRouter(handler *Handler, mw *ChiMiddleware, wsPath string, ws http.HandlerFunc) *Router {
	if mw == nil {
		mw = NewChiMiddleware(nil)
	}
	if wsPath == "" {
		wsPath = "/ws"
	}
	return &Router{
		handler:       handler,
		chiMiddleware: mw,
		wsPath:        wsPath,
		ws:            ws,
	}
}

// Setup builds the HTTP handler.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware(middleware.RequestID))
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS())
	r.Use(chiMiddleware(middleware.PrometheusMetrics))

	r.NotFound(router.handler.NotFound)
	r.MethodNotAllowed(router.handler.MethodNotAllowed)

	r.With(router.chiMiddleware.RateLimitCustom(RateLimitHealth)).Get("/health", router.handler.Health)
	r.Handle("/metrics", promhttp.Handler())

	if router.ws != nil {
		r.With(router.chiMiddleware.RateLimitCustom(RateLimitWebSocket)).Get(router.wsPath, router.ws)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Get("/stats", router.handler.Stats)
	})

	return r
}
