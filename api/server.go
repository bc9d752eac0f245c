/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. RealIP:     Client address from X-Forwarded-For, trusted proxies only
  3. Logger:     zap request logging
  4. Recoverer:  Panic recovery (500 instead of crash)
  5. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /healthz                  Liveness
  /api/auth/login           Public, rate limited per IP
  /api/*                    Session required
  /api/requests/*, POST /api/employees   Admin only
  /*                        Static files (frontend), when configured

SEE ALSO:
  - handlers.go: Handler implementations
  - middleware.go: Session, admin and rate-limit middleware
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"
	"net/netip"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"
)

// RouterOptions tunes the outer surface of the router.
type RouterOptions struct {
	AllowedOrigins []string
	LoginRate      rate.Limit
	LoginBurst     int

	// TrustedProxies may set the client address through forwarding
	// headers. Empty means the socket address is always used.
	TrustedProxies []netip.Prefix

	// StaticDir serves a built frontend when set and present on disk.
	StaticDir string
}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	if len(opts.TrustedProxies) > 0 {
		r.Use(TrustedRealIP(opts.TrustedProxies))
	}
	r.Use(RequestLogger(h.Logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Get("/healthz", h.Health)

	loginBurst := opts.LoginBurst
	if loginBurst <= 0 {
		loginBurst = 1
	}
	loginRate := opts.LoginRate
	if loginRate <= 0 {
		loginRate = rate.Inf
	}

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.With(RateLimitByIP(loginRate, loginBurst)).Post("/auth/login", h.Login)

		r.Group(func(r chi.Router) {
			r.Use(RequireSession(h.Auth))

			r.Get("/auth/me", h.Me)

			// Employee routes
			r.Route("/employees", func(r chi.Router) {
				r.Get("/", h.ListEmployees)
				r.With(RequireAdmin).Post("/", h.CreateEmployee)
				r.Get("/{id}", h.GetEmployee)
				r.Post("/{id}/leave", h.AddLeave)
			})

			// Request approval routes
			r.Route("/requests", func(r chi.Router) {
				r.Use(RequireAdmin)
				r.Get("/pending", h.ListPendingRequests)
				r.Post("/{id}/approve", h.ApproveRequest)
				r.Post("/{id}/reject", h.RejectRequest)
			})
		})
	})

	if opts.StaticDir != "" {
		if _, err := os.Stat(opts.StaticDir); err == nil {
			serveStatic(r, opts.StaticDir)
		}
	}

	return r
}

// serveStatic mounts a single-page app: unknown paths fall back to index.html.
func serveStatic(r chi.Router, dir string) {
	fileServer := http.FileServer(http.Dir(dir))
	r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
		fullPath := filepath.Join(dir, filepath.Clean(r.URL.Path))
		if _, err := os.Stat(fullPath); os.IsNotExist(err) {
			http.ServeFile(w, r, filepath.Join(dir, "index.html"))
			return
		}
		fileServer.ServeHTTP(w, r)
	})
}
