// Package proxy serves the app-proxy endpoints the storefront script
// calls. Response shapes here predate the admin envelope and are
// consumed by deployed theme extensions as-is, so they are written
// verbatim rather than through the responses envelope helpers.
package proxy

import (
	"net/http"
	"strconv"

	"github.com/willmisback/frontier-quote-backend/api/responses"
	"github.com/willmisback/frontier-quote-backend/internal/regions"
	"github.com/willmisback/frontier-quote-backend/internal/shops"
	"github.com/willmisback/frontier-quote-backend/pkg/logger"
	"github.com/willmisback/frontier-quote-backend/pkg/metrics"
)

const settingsEndpoint = "settings"

// Settings handles GET /settings: the region routing decision for one
// visitor country.
func Settings(shopSvc shops.Service, logg *logger.Logger, m *metrics.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		shopDomain := query.Get("shop")

		countryParam := query.Get("country_code")
		if countryParam == "" {
			countryParam = query.Get("country")
		}

		countryCode, err := regions.NormalizeCountryCode(countryParam)
		if err != nil {
			writeProxyResponse(m, w, settingsEndpoint, http.StatusBadRequest, map[string]any{
				"error":           "Invalid country code",
				"shouldShowQuote": false,
			})
			return
		}
		if shopDomain == "" {
			writeProxyResponse(m, w, settingsEndpoint, http.StatusBadRequest, map[string]any{
				"error":           "Shop domain is required",
				"shouldShowQuote": false,
			})
			return
		}

		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithShop(ctx, shopDomain)
		}

		settings, err := shopSvc.SettingsForProxy(ctx, shopDomain)
		if err != nil {
			if logg != nil {
				logg.Error(ctx, "settings lookup failed", err)
			}
			// Fail gracefully: the storefront shows normal checkout.
			writeProxyResponse(m, w, settingsEndpoint, http.StatusInternalServerError, map[string]any{
				"shouldShowQuote": false,
				"error":           "Internal server error",
			})
			return
		}

		decision := regions.Decide(settings, countryCode)
		if m != nil {
			m.RegionDecisions.WithLabelValues(string(decision.Reason), strconv.FormatBool(decision.ShouldShowQuote)).Inc()
		}

		body := map[string]any{"shouldShowQuote": decision.ShouldShowQuote}
		if settings != nil {
			body["popupFields"] = settings.PopupFields
			if decision.Reason == regions.ReasonDefault {
				body["countryCode"] = decision.CountryCode
				body["_debug"] = map[string]any{
					"shopDomain":  settings.ShopDomain,
					"countryCode": decision.CountryCode,
					"inWhitelist": false,
					"inBlacklist": false,
				}
			}
		}
		writeProxyResponse(m, w, settingsEndpoint, http.StatusOK, body)
	}
}

func writeProxyResponse(m *metrics.Metrics, w http.ResponseWriter, endpoint string, status int, body any) {
	if m != nil {
		m.ProxyRequests.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()
	}
	responses.WriteJSON(w, status, body)
}
