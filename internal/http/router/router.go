package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/brightcart/storefront-backend/internal/authz"
	"github.com/brightcart/storefront-backend/internal/health"
	"github.com/brightcart/storefront-backend/internal/http/handler"
	"github.com/brightcart/storefront-backend/internal/http/middleware"
	"github.com/brightcart/storefront-backend/internal/http/response"
	"github.com/brightcart/storefront-backend/internal/security"
	"github.com/brightcart/storefront-backend/internal/session"
)

// APIRateLimiterFunc and AuthRateLimiterFunc are distinct types so the
// DI layer can provide each limiter independently.
type (
	APIRateLimiterFunc  func(http.Handler) http.Handler
	AuthRateLimiterFunc func(http.Handler) http.Handler
)

type Dependencies struct {
	AuthHandler       *handler.AuthHandler
	ProductHandler    *handler.ProductHandler
	OrderHandler      *handler.OrderHandler
	AdminHandler      *handler.AdminHandler
	NavigationHandler *handler.NavigationHandler
	WebhookHandler    *handler.WebhookHandler

	Sessions *session.Manager
	Tokens   *security.TokenManager
	Checker  *authz.Checker

	CORSOrigins      []string
	APIRateLimitRPM  int
	AuthRateLimitRPM int
	// Optional overrides, e.g. redis-backed limiters in multi-instance
	// deployments.
	APIRateLimiter  APIRateLimiterFunc
	AuthRateLimiter AuthRateLimiterFunc

	Readiness      *health.ProbeRunner
	EnableOTelHTTP bool
}

func NewRouter(dep Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.StructuredRequestLogger)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CORS(dep.CORSOrigins))
	r.Use(middleware.BodyLimit(1 << 20))

	apiLimiter := dep.APIRateLimiter
	if apiLimiter == nil {
		apiLimiter = middleware.NewRateLimiter(dep.APIRateLimitRPM, time.Minute, "api").Middleware()
	}
	authLimiter := dep.AuthRateLimiter
	if authLimiter == nil {
		authLimiter = middleware.NewRateLimiter(dep.AuthRateLimitRPM, time.Minute, "auth").Middleware()
	}
	r.Use(apiLimiter)

	authn := middleware.AuthMiddleware(dep.Sessions, dep.Tokens)
	permit := func(resource, action string) func(http.Handler) http.Handler {
		return middleware.RequirePermission(dep.Checker, resource, action)
	}

	r.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		ready, results := dep.Readiness.Ready(r.Context())
		status := http.StatusOK
		label := "ready"
		if !ready {
			status = http.StatusServiceUnavailable
			label = "unready"
		}
		response.JSON(w, r, status, map[string]any{"status": label, "checks": results})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(authLimiter).Post("/register", dep.AuthHandler.Register)
			r.With(authLimiter).Post("/login", dep.AuthHandler.Login)
			r.With(authn).Post("/logout", dep.AuthHandler.Logout)
			r.With(authn).Get("/me", dep.AuthHandler.Me)
		})

		// The payment provider authenticates via HMAC signature, not a
		// session, so the webhook stays outside the auth group.
		r.Post("/webhooks/payment", dep.WebhookHandler.Payment)

		r.Route("/products", func(r chi.Router) {
			r.Use(authn)
			r.With(permit(authz.ResourceProducts, authz.ActionRead)).Get("/", dep.ProductHandler.List)
			r.With(permit(authz.ResourceProducts, authz.ActionRead)).Get("/{id}", dep.ProductHandler.GetByID)
			r.With(permit(authz.ResourceProducts, authz.ActionCreate)).Post("/", dep.ProductHandler.Create)
			r.With(permit(authz.ResourceProducts, authz.ActionUpdate)).Put("/{id}", dep.ProductHandler.Update)
			r.With(permit(authz.ResourceProducts, authz.ActionUpdate), middleware.BodyLimit(6<<20)).Post("/{id}/image", dep.ProductHandler.UploadImage)
			r.With(permit(authz.ResourceProducts, authz.ActionDelete)).Delete("/{id}", dep.ProductHandler.Delete)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Use(authn)
			r.With(permit(authz.ResourceOrders, authz.ActionCreate)).Post("/", dep.OrderHandler.Checkout)
			r.With(permit(authz.ResourceOrders, authz.ActionRead)).Get("/", dep.OrderHandler.ListMine)
			r.With(permit(authz.ResourceOrders, authz.ActionRead)).Get("/{id}", dep.OrderHandler.GetByID)
			r.With(permit(authz.ResourceOrders, authz.ActionRead)).Post("/{id}/cancel", dep.OrderHandler.Cancel)
		})

		r.With(authn).Get("/navigation", dep.NavigationHandler.Items)

		r.Route("/admin", func(r chi.Router) {
			r.Use(authn)
			r.Use(middleware.RequireRole(authz.RoleManager))
			r.With(permit(authz.ResourceOrders, authz.ActionUpdate)).Get("/orders", dep.OrderHandler.ListAll)
			r.With(permit(authz.ResourceOrders, authz.ActionUpdate)).Post("/orders/{id}/fulfill", dep.OrderHandler.Fulfill)
			r.With(permit(authz.ResourceOrders, authz.ActionUpdate)).Post("/orders/{id}/cancel", dep.OrderHandler.Cancel)
			r.With(permit(authz.ResourceReports, authz.ActionRead)).Get("/reports/sales", dep.AdminHandler.SalesReport)
			r.With(permit(authz.ResourceUsers, authz.ActionRead)).Get("/users", dep.AdminHandler.ListUsers)
			r.With(permit(authz.ResourceUsers, authz.ActionManage)).Put("/users/{id}/role", dep.AdminHandler.UpdateUserRole)
		})
	})

	var h http.Handler = r
	if dep.EnableOTelHTTP {
		h = otelhttp.NewHandler(r, "http.server")
	}
	return h
}
