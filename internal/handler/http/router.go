package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/trendzone/storefront/internal/domain"
	"github.com/trendzone/storefront/internal/service"
	"github.com/trendzone/storefront/pkg/health"
	"github.com/trendzone/storefront/pkg/middleware"
)

// RouterConfig carries the handler wiring for NewRouter.
type RouterConfig struct {
	Users         *service.UserService
	Admins        *service.AdminService
	Orders        *service.OrderService
	Catalog       *service.CatalogService
	Carts         *service.CartService
	Content       *service.ContentService
	UserSessions  *service.SessionManager
	AdminSessions *service.SessionManager
	Health        *health.Handler
	Logger        *slog.Logger
	CORS          middleware.CORSConfig
	SecureCookies bool
	PprofCIDRs    []string
}

// NewRouter creates a chi router with all storefront routes registered.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.RequestLogging(cfg.Logger))
	r.Use(middleware.Tracing("storefront"))
	r.Use(middleware.RequestLogger(cfg.Logger))
	r.Use(middleware.PrometheusMetrics("storefront"))
	r.Use(middleware.CORS(cfg.CORS))

	r.Get("/health/live", cfg.Health.LivenessHandler())
	r.Get("/health/ready", cfg.Health.ReadinessHandler())
	r.Get("/metrics", promhttp.Handler().ServeHTTP)
	middleware.RegisterPprof(r, cfg.PprofCIDRs, cfg.Logger)

	userAuth := middleware.Auth(userAccessCookie, sessionValidator(cfg.UserSessions))
	adminAuth := middleware.Auth(adminAccessCookie, sessionValidator(cfg.AdminSessions))
	userOnly := middleware.RequireKind(string(domain.PrincipalUser))
	adminOnly := middleware.RequireKind(string(domain.PrincipalAdmin))

	authHandler := NewAuthHandler(cfg.Users, cfg.UserSessions, cfg.SecureCookies, cfg.Logger)
	adminAuthHandler := NewAdminAuthHandler(cfg.Admins, cfg.AdminSessions, cfg.SecureCookies, cfg.Logger)
	adminHandler := NewAdminHandler(cfg.Admins, cfg.Logger)
	orderHandler := NewOrderHandler(cfg.Orders, cfg.Catalog, cfg.Logger)
	adminOrderHandler := NewAdminOrderHandler(cfg.Orders, cfg.Logger)
	productHandler := NewProductHandler(cfg.Catalog, cfg.Logger)
	cartHandler := NewCartHandler(cfg.Carts, cfg.Logger)
	contentHandler := NewContentHandler(cfg.Content, cfg.Logger)

	r.Route("/api/v1", func(r chi.Router) {
		// Public storefront surface. Short cache window keeps the catalog
		// cheap to browse without staling admin edits for long.
		r.Group(func(r chi.Router) {
			r.Use(middleware.CacheControl(60))

			r.Get("/products", productHandler.List)
			r.Get("/products/{id}", productHandler.Get)
			r.Get("/banners", contentHandler.ListActiveBanners)
		})

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.Refresh)
			r.Post("/logout", authHandler.Logout)
		})

		r.Route("/users/me", func(r chi.Router) {
			r.Use(userAuth, userOnly)

			r.Get("/", authHandler.GetProfile)
			r.Put("/", authHandler.UpdateProfile)
			r.Post("/password", authHandler.ChangePassword)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Use(userAuth, userOnly)

			r.Get("/", cartHandler.Get)
			r.Delete("/", cartHandler.Clear)
			r.Post("/items", cartHandler.AddItem)
			r.Put("/items/{productID}", cartHandler.UpdateItem)
			r.Delete("/items/{productID}", cartHandler.RemoveItem)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Use(userAuth, userOnly)

			r.Post("/", orderHandler.Create)
			r.Get("/", orderHandler.List)
			r.Get("/{id}", orderHandler.Get)
			r.Get("/{id}/history", orderHandler.History)
			r.Post("/{id}/cancel", orderHandler.Cancel)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Route("/auth", func(r chi.Router) {
				r.Post("/login", adminAuthHandler.Login)
				r.Post("/refresh", adminAuthHandler.Refresh)
				r.Post("/logout", adminAuthHandler.Logout)

				r.Group(func(r chi.Router) {
					r.Use(adminAuth, adminOnly)
					r.Get("/me", adminAuthHandler.Me)
				})
			})

			r.Group(func(r chi.Router) {
				r.Use(adminAuth, adminOnly)

				r.Route("/orders", func(r chi.Router) {
					r.Use(requirePermission(cfg.Admins, "orders"))

					r.Get("/", adminOrderHandler.List)
					r.Get("/{id}", adminOrderHandler.Get)
					r.Put("/{id}/status", adminOrderHandler.UpdateStatus)
					r.Get("/{id}/history", adminOrderHandler.History)
				})

				r.Route("/products", func(r chi.Router) {
					r.Use(requirePermission(cfg.Admins, "products"))

					r.Post("/", productHandler.Create)
					r.Put("/{id}", productHandler.Update)
					r.Delete("/{id}", productHandler.Delete)
				})

				r.Route("/banners", func(r chi.Router) {
					r.Use(requirePermission(cfg.Admins, "content"))

					r.Get("/", contentHandler.ListBanners)
					r.Post("/", contentHandler.CreateBanner)
					r.Put("/{id}", contentHandler.UpdateBanner)
					r.Delete("/{id}", contentHandler.DeleteBanner)
				})

				r.Route("/users", func(r chi.Router) {
					r.Use(requirePermission(cfg.Admins, "admins"))

					r.Get("/", adminHandler.ListUsers)
					r.Get("/{id}", adminHandler.GetUser)
					r.Put("/{id}/active", adminHandler.SetUserActive)
				})

				r.Route("/admins", func(r chi.Router) {
					r.Use(requirePermission(cfg.Admins, "admins"))

					r.Get("/", adminHandler.ListAdmins)
					r.Post("/", adminHandler.CreateAdmin)
					r.Get("/{id}", adminHandler.GetAdmin)
					r.Put("/{id}/active", adminHandler.SetAdminActive)
				})
			})
		})
	})

	return r
}

// sessionValidator bridges a session manager's Authenticate into the generic
// auth middleware.
func sessionValidator(sessions *service.SessionManager) middleware.TokenValidator {
	return func(ctx context.Context, token string) (*middleware.Claims, error) {
		claims, err := sessions.Authenticate(ctx, token)
		if err != nil {
			return nil, err
		}
		return &middleware.Claims{
			PrincipalID: claims.Subject,
			Kind:        string(claims.Kind),
		}, nil
	}
}
