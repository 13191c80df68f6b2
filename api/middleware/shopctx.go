package middleware

import (
	"context"
	"net/http"

	"github.com/willmisback/frontier-quote-backend/api/responses"
	"github.com/willmisback/frontier-quote-backend/internal/shops"
	pkgerrors "github.com/willmisback/frontier-quote-backend/pkg/errors"
	"github.com/willmisback/frontier-quote-backend/pkg/logger"
)

// shopDomainHeader is set by the OAuth/session layer fronting the admin
// API. That layer is outside this service; the header is trusted here.
const shopDomainHeader = "X-Shop-Domain"

type shopCtxKey struct{}

// ShopContext requires the authenticated shop header on admin routes
// and threads the normalized domain through the request context.
func ShopContext(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			shopDomain := shops.NormalizeShopDomain(r.Header.Get(shopDomainHeader))
			if shopDomain == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "shop identity required"))
				return
			}

			ctx := context.WithValue(r.Context(), shopCtxKey{}, shopDomain)
			if logg != nil {
				ctx = logg.WithShop(ctx, shopDomain)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ShopFromContext returns the shop domain set by ShopContext.
func ShopFromContext(ctx context.Context) string {
	if shop, ok := ctx.Value(shopCtxKey{}).(string); ok {
		return shop
	}
	return ""
}
