package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/willmisback/frontier-quote-backend/api/responses"
	"github.com/willmisback/frontier-quote-backend/pkg/config"
	"github.com/willmisback/frontier-quote-backend/pkg/logger"
	"github.com/willmisback/frontier-quote-backend/pkg/metrics"
)

// RateLimiter is the slice of the redis client the limiter middleware
// needs.
type RateLimiter interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// ProxyRateLimit applies a per-shop fixed window to the proxied
// storefront endpoints. A limiter outage lets traffic through: the
// limit protects the Admin API quota, it is not a security boundary.
func ProxyRateLimit(limiter RateLimiter, cfg config.ProxyConfig, logg *logger.Logger, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter == nil || cfg.RateLimitPerShop <= 0 {
				next.ServeHTTP(w, r)
				return
			}

			shop := r.URL.Query().Get("shop")
			if shop == "" {
				shop = "unknown"
			}

			allowed, count, err := limiter.FixedWindowAllow(r.Context(), "proxy:"+shop, int64(cfg.RateLimitPerShop), cfg.RateLimitWindow)
			if err != nil {
				if logg != nil {
					logg.Warn(r.Context(), "rate limiter unavailable, allowing request")
				}
				next.ServeHTTP(w, r)
				return
			}

			if !allowed {
				if logg != nil {
					ctx := logg.WithFields(r.Context(), map[string]any{"shop": shop, "count": count})
					logg.Warn(ctx, "proxy rate limit exceeded")
				}
				if m != nil {
					m.ProxyRejected.WithLabelValues("rate_limited").Inc()
				}
				responses.WriteJSON(w, http.StatusTooManyRequests, map[string]any{
					"error":   "Too Many Requests",
					"message": "Rate limit exceeded, retry later",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
