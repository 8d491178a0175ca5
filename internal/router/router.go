// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains for the
// blog API. Routes are organized into public, auth and authoring groups
// with appropriate middleware stacks.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"tagpress/internal/handlers"
	"tagpress/internal/middleware"
	"tagpress/internal/session"
)

// Options are the settings of the middleware chain.
type Options struct {
	// SecureCookies marks the CSRF cookie Secure.
	SecureCookies bool

	// AuthLimiter throttles credential endpoints. Nil disables throttling.
	AuthLimiter *middleware.RateLimiter

	// AllowedOrigins enables CORS for the listed browser origins.
	AllowedOrigins []string
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(sessionStore *session.Store, auth *handlers.Auth, author *handlers.Author, public *handlers.Public, opts Options) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	if len(opts.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   opts.AllowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"Content-Type", middleware.CSRFHeaderName},
			ExposedHeaders:   []string{"Location", "X-Cache", "X-TOTP-Secret"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	// Health check: no session, no CSRF.
	r.Get("/health", healthHandler)

	r.Group(func(r chi.Router) {
		r.Use(middleware.LoadSession(sessionStore))
		r.Use(middleware.NewCSRF(opts.SecureCookies))

		r.Get("/", http.RedirectHandler("/blog/", http.StatusFound).ServeHTTP)

		r.Route("/auth", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(limit(opts.AuthLimiter))
				r.Post("/signup", auth.Signup)
				r.Post("/login", auth.Login)
			})
			r.Post("/logout", auth.Logout)

			// Requires a session but not a completed second factor.
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth)
				r.Get("/me", auth.Me)
				r.Get("/2fa/setup", auth.TwoFASetup)
				r.With(limit(opts.AuthLimiter)).Post("/2fa/verify", auth.TwoFAVerify)
			})
		})

		r.Route("/blog", func(r chi.Router) {
			r.Get("/", public.Index)
			r.Get("/tags", public.Tags)
			r.Get("/categories", public.Categories)
			r.Get("/search", public.Search)
			r.Get("/search/{q}", public.Search)
			r.Get("/category/{slug}", public.Category)
			r.Get("/tag/{slug}", public.Tag)
			r.Get("/{id}", public.Post)

			// Signed in, with the second factor done for staff. Role and
			// ownership checks happen in the blog service.
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth)
				r.Use(middleware.Require2FA)

				r.Post("/", author.CreatePost)
				r.Put("/{id}", author.UpdatePost)
				r.Delete("/{id}", author.DeletePost)
				r.Post("/{id}/comments", author.CreateComment)
				r.Put("/comments/{id}", author.UpdateComment)
				r.Delete("/comments/{id}", author.DeleteComment)
				r.Post("/categories", author.CreateCategory)
				r.Delete("/categories/{id}", author.DeleteCategory)
			})
		})
	})

	return r
}

// limit returns the limiter middleware, or a pass-through when rl is nil.
func limit(rl *middleware.RateLimiter) func(http.Handler) http.Handler {
	if rl == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return rl.Middleware
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
