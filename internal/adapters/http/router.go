package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ZhiquAI/aigrading-license-service/internal/application"
)

// ReadyFunc probes backing stores for the readiness endpoint.
type ReadyFunc func(ctx context.Context) error

// Handler is the HTTP adapter entrypoint for license/quota/token use-cases.
type Handler struct {
	service *application.Service
	ready   ReadyFunc
}

// NewHandler constructs an HTTP handler bound to the application service.
func NewHandler(service *application.Service, ready ReadyFunc) *Handler {
	if ready == nil {
		ready = func(context.Context) error { return nil }
	}
	return &Handler{service: service, ready: ready}
}

// NewRouter registers routes and the middleware stack.
// Centralizing routes here keeps auth and error behavior consistent across endpoints.
func NewRouter(handler *Handler, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(recoverMiddleware)
	r.Use(corsMiddleware(allowedOrigins))
	r.Use(loggingMiddleware)

	r.Get("/healthz", handler.healthz)
	r.Get("/readyz", handler.readyz)

	r.Route("/auth/v1", func(r chi.Router) {
		r.Post("/register", handler.register)
		r.Post("/login", handler.login)
		r.Post("/refresh", handler.refresh)
		r.Post("/logout", handler.logout)
	})

	r.Route("/license/v1", func(r chi.Router) {
		r.Post("/redeem", handler.redeem)
		r.Get("/status", handler.licenseStatus)
	})

	r.Route("/quota/v1", func(r chi.Router) {
		r.Get("/check", handler.quotaCheck)
		r.Post("/consume", handler.quotaConsume)
	})

	r.Route("/admin/v1", func(r chi.Router) {
		r.Use(handler.authMiddleware)
		r.Use(requireRole("ADMIN"))
		r.Post("/codes", handler.createCode)
		r.Get("/codes/{code}", handler.codeDetail)
		r.Get("/devices/{device_id}/usage", handler.deviceUsage)
		r.Post("/devices/{device_id}/bonus", handler.grantBonus)
	})

	return r
}
