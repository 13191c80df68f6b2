package admin

import (
	"fmt"
	"net/http"

	"github.com/willmisback/frontier-quote-backend/api/middleware"
	"github.com/willmisback/frontier-quote-backend/api/responses"
	"github.com/willmisback/frontier-quote-backend/internal/flows"
	"github.com/willmisback/frontier-quote-backend/pkg/logger"
)

// DownloadFlow handles GET /api/v1/notifications/flow: the importable
// Shopify Flow workflow, served as a file download.
func DownloadFlow(svc flows.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shopDomain := middleware.ShopFromContext(r.Context())

		filename, content, err := svc.Render(r.Context(), shopDomain)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(content); err != nil && logg != nil {
			logg.Error(r.Context(), "failed to write flow download", err)
		}
	}
}
