package admin

import (
	"net/http"

	"github.com/willmisback/frontier-quote-backend/api/middleware"
	"github.com/willmisback/frontier-quote-backend/api/responses"
	"github.com/willmisback/frontier-quote-backend/internal/analytics"
	"github.com/willmisback/frontier-quote-backend/pkg/logger"
)

// Dashboard handles GET /api/v1/dashboard: quote request analytics for
// the embedded admin home screen.
func Dashboard(svc analytics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shopDomain := middleware.ShopFromContext(r.Context())

		summary, err := svc.Summary(r.Context(), shopDomain)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}
