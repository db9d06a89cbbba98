package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/prn-tf/meridian-backoffice/internal/metrics"
	"github.com/prn-tf/meridian-backoffice/internal/repository"
	"github.com/prn-tf/meridian-backoffice/internal/session"
)

// Router assembles the full HTTP surface.
type Router struct {
	auth      *AuthHandler
	product   *ProductHandler
	order     *OrderHandler
	twoFactor *TwoFactorHandler
	admin     *AdminHandler
	report    *ReportHandler

	sessions   *session.Manager
	cookieName string
	metrics    *metrics.Metrics
	health     repository.DatabaseHealth
	logger     zerolog.Logger
}

// RouterConfig contains the dependencies for the router.
type RouterConfig struct {
	Auth      *AuthHandler
	Product   *ProductHandler
	Order     *OrderHandler
	TwoFactor *TwoFactorHandler
	Admin     *AdminHandler
	Report    *ReportHandler

	Sessions   *session.Manager
	CookieName string
	Metrics    *metrics.Metrics
	Health     repository.DatabaseHealth
	Logger     zerolog.Logger
}

// NewRouter creates a new Router.
func NewRouter(cfg RouterConfig) *Router {
	return &Router{
		auth:       cfg.Auth,
		product:    cfg.Product,
		order:      cfg.Order,
		twoFactor:  cfg.TwoFactor,
		admin:      cfg.Admin,
		report:     cfg.Report,
		sessions:   cfg.Sessions,
		cookieName: cfg.CookieName,
		metrics:    cfg.Metrics,
		health:     cfg.Health,
		logger:     cfg.Logger.With().Str("component", "router").Logger(),
	}
}

// Handler returns the assembled chi router. Page-style routes redirect
// unauthenticated requests to /login; /api routes answer 401 JSON.
// Every mutating route behind a session also requires a CSRF token.
func (rt *Router) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(RequestLogger(rt.logger, rt.metrics))

	r.Get("/health", rt.handleHealth)

	// Public routes
	r.Post("/login", rt.auth.Login)
	r.Post("/register", rt.auth.Register)

	// Page-style routes
	r.Group(func(r chi.Router) {
		r.Use(RequireSessionPage(rt.sessions, rt.cookieName))
		r.Use(VerifyCSRF(rt.sessions, rt.metrics))

		r.Get("/csrf", rt.auth.CSRFToken)
		r.Post("/logout", rt.auth.Logout)

		r.Route("/products", func(r chi.Router) {
			r.Get("/", rt.product.List)
			r.Get("/categories", rt.product.Categories)
			r.Post("/", rt.product.CreateForm)
			r.Get("/{id}", rt.product.Get)
			r.Get("/{id}/image", rt.product.Image)
			r.Post("/{id}", rt.product.UpdateForm)
			r.Post("/{id}/delete", rt.product.Delete)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", rt.order.List)
			r.Get("/stats", rt.order.Stats)
			r.Get("/{id}", rt.order.Get)
			r.Post("/{id}/status", rt.order.UpdateStatus)
			r.Post("/{id}/delete", rt.order.Delete)
		})

		r.Route("/settings", func(r chi.Router) {
			r.Post("/profile", rt.auth.UpdateProfile)
			r.Post("/password", rt.auth.ChangePassword)
			r.Post("/twofactor/setup", rt.twoFactor.Setup)
			r.Post("/twofactor/enable", rt.twoFactor.Enable)
			r.Post("/twofactor/disable", rt.twoFactor.Disable)
			r.Post("/twofactor/regenerate", rt.twoFactor.Regenerate)
		})

		r.Route("/reports", func(r chi.Router) {
			r.Get("/inventory", rt.report.Inventory)
			r.Get("/low-stock", rt.report.LowStock)
			r.Get("/top-value", rt.report.TopValue)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Get("/users", rt.admin.ListUsers)
			r.Post("/users", rt.admin.CreateUser)
			r.Post("/users/{id}/delete", rt.admin.DeleteUser)
			r.Get("/auth-logs", rt.admin.AuthLogs)
		})
	})

	// JSON API routes
	r.Route("/api", func(r chi.Router) {
		r.Use(RequireSessionAPI(rt.sessions, rt.cookieName))
		r.Use(VerifyCSRF(rt.sessions, rt.metrics))

		r.Route("/products", func(r chi.Router) {
			r.Get("/", rt.product.List)
			r.Get("/categories", rt.product.Categories)
			r.Post("/", rt.product.CreateAPI)
			r.Get("/{id}", rt.product.Get)
			r.Put("/{id}", rt.product.UpdateAPI)
			r.Delete("/{id}", rt.product.Delete)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", rt.order.List)
			r.Get("/stats", rt.order.Stats)
			r.Get("/{id}", rt.order.Get)
			r.Put("/{id}/status", rt.order.UpdateStatus)
			r.Delete("/{id}", rt.order.Delete)
		})
	})

	return r
}

// handleHealth reports process and database health.
func (rt *Router) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	code := http.StatusOK

	if rt.health != nil {
		if err := rt.health.Health(r.Context()); err != nil {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
	}

	writeJSON(w, code, map[string]string{"status": status})
}
