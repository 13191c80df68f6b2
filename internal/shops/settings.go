package shops

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"

	"github.com/willmisback/frontier-quote-backend/pkg/db/models"
	"github.com/willmisback/frontier-quote-backend/pkg/logger"
)

// FieldConfig controls one field of the storefront quote popup.
type FieldConfig struct {
	Enabled  bool `json:"enabled"`
	Required bool `json:"required"`
}

// ShopSettings is the parsed, proxy-facing view of a shop's stored
// configuration. Country codes are uppercased; popup fields have the
// name/email invariant applied.
type ShopSettings struct {
	ShopID             uuid.UUID              `json:"shop_id"`
	ShopDomain         string                 `json:"shop_domain"`
	WhitelistCountries []string               `json:"whitelist_countries"`
	BlacklistCountries []string               `json:"blacklist_countries"`
	PopupFields        map[string]FieldConfig `json:"popup_fields"`
	DraftOrderTags     string                 `json:"draft_order_tags"`
	HidePrices         bool                   `json:"hide_prices"`
}

// defaultPopupFields mirrors what the dashboard seeds for a new shop.
func defaultPopupFields() map[string]FieldConfig {
	return map[string]FieldConfig{
		"name":    {Enabled: true, Required: true},
		"email":   {Enabled: true, Required: true},
		"phone":   {Enabled: false, Required: false},
		"company": {Enabled: false, Required: false},
		"notes":   {Enabled: false, Required: false},
	}
}

// NormalizeShopDomain lowercases the domain and expands a bare shop name
// to its myshopify.com form.
func NormalizeShopDomain(domain string) string {
	domain = strings.ToLower(strings.TrimSpace(domain))
	if domain == "" {
		return ""
	}
	if !strings.Contains(domain, ".") {
		domain += ".myshopify.com"
	}
	return domain
}

func normalizeCountry(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ParseCountryList decodes a stored JSON array of country codes,
// uppercasing each entry. Malformed input degrades to an empty list; the
// storefront then falls through to the default routing behavior.
func ParseCountryList(ctx context.Context, logg *logger.Logger, field, raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	var entries []string
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		if logg != nil {
			logg.Warn(logg.WithFields(ctx, map[string]any{"field": field, "raw": raw}), "settings country list is not valid JSON, ignoring")
		}
		return nil
	}

	out := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry = normalizeCountry(entry); entry != "" {
			out = append(out, entry)
		}
	}
	return out
}

// ParsePopupFields decodes the stored popup field config and enforces
// that name and email stay enabled and required no matter what was
// persisted.
func ParsePopupFields(ctx context.Context, logg *logger.Logger, raw string) map[string]FieldConfig {
	fields := defaultPopupFields()

	raw = strings.TrimSpace(raw)
	if raw != "" && raw != "{}" {
		var stored map[string]FieldConfig
		if err := json.Unmarshal([]byte(raw), &stored); err != nil {
			if logg != nil {
				logg.Warn(logg.WithField(ctx, "raw", raw), "settings popup fields are not valid JSON, using defaults")
			}
		} else {
			for name, cfg := range stored {
				fields[name] = cfg
			}
		}
	}

	fields["name"] = FieldConfig{Enabled: true, Required: true}
	fields["email"] = FieldConfig{Enabled: true, Required: true}
	return fields
}

// FromModel builds the parsed settings view from the persisted row.
func FromModel(ctx context.Context, logg *logger.Logger, shop *models.Shop) *ShopSettings {
	if shop == nil || shop.Settings == nil {
		return nil
	}

	stored := shop.Settings
	tags := ""
	if stored.DraftOrderTags != nil {
		tags = *stored.DraftOrderTags
	}

	return &ShopSettings{
		ShopID:             shop.ID,
		ShopDomain:         shop.ShopDomain,
		WhitelistCountries: ParseCountryList(ctx, logg, "whitelist_countries", stored.WhitelistCountries),
		BlacklistCountries: ParseCountryList(ctx, logg, "blacklist_countries", stored.BlacklistCountries),
		PopupFields:        ParsePopupFields(ctx, logg, stored.PopupFields),
		DraftOrderTags:     tags,
		HidePrices:         stored.HidePrices,
	}
}
