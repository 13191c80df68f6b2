package middleware

import (
	"net/http"

	"github.com/willmisback/frontier-quote-backend/api/responses"
	"github.com/willmisback/frontier-quote-backend/pkg/appproxy"
	"github.com/willmisback/frontier-quote-backend/pkg/logger"
	"github.com/willmisback/frontier-quote-backend/pkg/metrics"
)

// VerifyProxySignature rejects any proxied storefront request whose
// query parameters do not carry a valid app-proxy signature. It fails
// closed when the shared secret is unset. withDecisionField adds the
// shouldShowQuote:false hint the settings endpoint has always included
// in its 401 body.
func VerifyProxySignature(sharedSecret string, logg *logger.Logger, m *metrics.Metrics, withDecisionField bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if appproxy.Verify(r.URL.Query(), sharedSecret) {
				next.ServeHTTP(w, r)
				return
			}

			if logg != nil {
				ctx := logg.WithFields(r.Context(), map[string]any{
					"shop":          r.URL.Query().Get("shop"),
					"has_signature": r.URL.Query().Get(appproxy.SignatureParam) != "",
					"has_secret":    sharedSecret != "",
				})
				logg.Warn(ctx, "proxy signature verification failed")
			}
			if m != nil {
				m.ProxyRejected.WithLabelValues("bad_signature").Inc()
			}

			body := map[string]any{
				"error":   "Unauthorized",
				"message": "Request signature verification failed",
			}
			if withDecisionField {
				body["shouldShowQuote"] = false
			}
			responses.WriteJSON(w, http.StatusUnauthorized, body)
		})
	}
}
