// Package admin serves the embedded dashboard API. Every handler reads
// the shop identity from the request context and responds through the
// standard envelope.
package admin

import (
	"net/http"

	"github.com/willmisback/frontier-quote-backend/api/middleware"
	"github.com/willmisback/frontier-quote-backend/api/responses"
	"github.com/willmisback/frontier-quote-backend/api/validators"
	"github.com/willmisback/frontier-quote-backend/internal/shops"
	"github.com/willmisback/frontier-quote-backend/pkg/db/models"
	"github.com/willmisback/frontier-quote-backend/pkg/logger"
)

// SettingsView is the dashboard-facing settings shape. Stored JSON
// columns are parsed before they leave the API.
type SettingsView struct {
	RegionMode         string                       `json:"region_mode"`
	WhitelistCountries []string                     `json:"whitelist_countries"`
	BlacklistCountries []string                     `json:"blacklist_countries"`
	PopupFields        map[string]shops.FieldConfig `json:"popup_fields"`
	DraftOrderTags     *string                      `json:"draft_order_tags"`
	HidePrices         bool                         `json:"hide_prices"`

	SetupSuccessBannerDismissed bool `json:"setup_success_banner_dismissed"`
	OnboardingComplete          bool `json:"onboarding_complete"`
}

func settingsView(r *http.Request, logg *logger.Logger, stored *models.Settings) SettingsView {
	ctx := r.Context()
	return SettingsView{
		RegionMode:                  stored.RegionMode,
		WhitelistCountries:          shops.ParseCountryList(ctx, logg, "whitelist_countries", stored.WhitelistCountries),
		BlacklistCountries:          shops.ParseCountryList(ctx, logg, "blacklist_countries", stored.BlacklistCountries),
		PopupFields:                 shops.ParsePopupFields(ctx, logg, stored.PopupFields),
		DraftOrderTags:              stored.DraftOrderTags,
		HidePrices:                  stored.HidePrices,
		SetupSuccessBannerDismissed: stored.SetupSuccessBannerDismissed,
		OnboardingComplete:          stored.OnboardingComplete,
	}
}

// GetSettings handles GET /api/v1/settings.
func GetSettings(shopSvc shops.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shopDomain := middleware.ShopFromContext(r.Context())

		stored, err := shopSvc.GetSettings(r.Context(), shopDomain)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, settingsView(r, logg, stored))
	}
}

// UpdateSettings handles PUT /api/v1/settings.
func UpdateSettings(shopSvc shops.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shopDomain := middleware.ShopFromContext(r.Context())

		var input shops.SettingsUpdate
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		stored, err := shopSvc.UpdateSettings(r.Context(), shopDomain, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, settingsView(r, logg, stored))
	}
}

// UpdateOnboarding handles POST /api/v1/settings/onboarding.
func UpdateOnboarding(shopSvc shops.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shopDomain := middleware.ShopFromContext(r.Context())

		var input shops.OnboardingUpdate
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		stored, err := shopSvc.UpdateOnboarding(r.Context(), shopDomain, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, settingsView(r, logg, stored))
	}
}
