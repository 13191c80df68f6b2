package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/willmisback/frontier-quote-backend/api/controllers"
	admincontrollers "github.com/willmisback/frontier-quote-backend/api/controllers/admin"
	proxycontrollers "github.com/willmisback/frontier-quote-backend/api/controllers/proxy"
	"github.com/willmisback/frontier-quote-backend/api/middleware"
	"github.com/willmisback/frontier-quote-backend/internal/analytics"
	"github.com/willmisback/frontier-quote-backend/internal/flows"
	"github.com/willmisback/frontier-quote-backend/internal/quotes"
	"github.com/willmisback/frontier-quote-backend/internal/shops"
	"github.com/willmisback/frontier-quote-backend/pkg/config"
	"github.com/willmisback/frontier-quote-backend/pkg/logger"
	"github.com/willmisback/frontier-quote-backend/pkg/metrics"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	m *metrics.Metrics,
	readyDeps map[string]controllers.Pinger,
	rateLimiter middleware.RateLimiter,
	shopService shops.Service,
	quoteService quotes.Service,
	analyticsService analytics.Service,
	flowService flows.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readyDeps))
	})

	if m != nil {
		r.Method(http.MethodGet, "/metrics", m.Handler())
	}

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	// App-proxy endpoints. Shopify forwards storefront requests here with
	// the signed query string; nothing past the signature middleware runs
	// on an unverified request.
	r.Route("/proxy", func(r chi.Router) {
		r.Use(middleware.ProxyCORS())
		r.Use(middleware.ProxyRateLimit(rateLimiter, cfg.Proxy, logg, m))

		r.With(middleware.VerifyProxySignature(cfg.Shopify.SharedSecret, logg, m, true)).
			Get("/settings", proxycontrollers.Settings(shopService, logg, m))
		r.With(middleware.VerifyProxySignature(cfg.Shopify.SharedSecret, logg, m, false)).
			Post("/quote", proxycontrollers.Quote(quoteService, logg, m))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.CORS())
		r.Use(middleware.ShopContext(logg))

		r.Get("/ping", controllers.AdminPing())
		r.Get("/dashboard", admincontrollers.Dashboard(analyticsService, logg))

		r.Route("/settings", func(r chi.Router) {
			r.Get("/", admincontrollers.GetSettings(shopService, logg))
			r.Put("/", admincontrollers.UpdateSettings(shopService, logg))
			r.Post("/onboarding", admincontrollers.UpdateOnboarding(shopService, logg))
		})

		r.Get("/notifications/flow", admincontrollers.DownloadFlow(flowService, logg))
	})

	return r
}
