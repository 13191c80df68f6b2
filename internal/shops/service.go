package shops

import (
	"context"
	"encoding/json"
	"time"

	"github.com/willmisback/frontier-quote-backend/pkg/db/models"
	pkgerrors "github.com/willmisback/frontier-quote-backend/pkg/errors"
	"github.com/willmisback/frontier-quote-backend/pkg/logger"
)

// Cache is the minimal surface the settings read-through cache needs.
// pkg/redis.Client satisfies it; a nil cache disables caching.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	SettingsKey(shopDomain string) string
}

// Service defines shop settings lookups and dashboard mutations.
type Service interface {
	// SettingsForProxy resolves parsed settings for the app-proxy path.
	// Unknown shops return (nil, nil): the storefront falls back to the
	// normal checkout.
	SettingsForProxy(ctx context.Context, shopDomain string) (*ShopSettings, error)

	GetSettings(ctx context.Context, shopDomain string) (*models.Settings, error)
	UpdateSettings(ctx context.Context, shopDomain string, input SettingsUpdate) (*models.Settings, error)
	UpdateOnboarding(ctx context.Context, shopDomain string, input OnboardingUpdate) (*models.Settings, error)
}

// SettingsUpdate carries the dashboard settings form.
type SettingsUpdate struct {
	RegionMode         string                 `json:"region_mode"`
	WhitelistCountries []string               `json:"whitelist_countries"`
	BlacklistCountries []string               `json:"blacklist_countries"`
	PopupFields        map[string]FieldConfig `json:"popup_fields"`
	DraftOrderTags     *string                `json:"draft_order_tags"`
	HidePrices         bool                   `json:"hide_prices"`
}

// OnboardingUpdate toggles dashboard-only flags.
type OnboardingUpdate struct {
	SetupSuccessBannerDismissed *bool `json:"setup_success_banner_dismissed"`
	OnboardingComplete          *bool `json:"onboarding_complete"`
}

type service struct {
	repo     Repository
	cache    Cache
	cacheTTL time.Duration
	logg     *logger.Logger
}

// NewService wires shop settings dependencies.
func NewService(repo Repository, cache Cache, cacheTTL time.Duration, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "shops repository required")
	}
	return &service{repo: repo, cache: cache, cacheTTL: cacheTTL, logg: logg}, nil
}

func (s *service) SettingsForProxy(ctx context.Context, shopDomain string) (*ShopSettings, error) {
	shopDomain = NormalizeShopDomain(shopDomain)
	if shopDomain == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shop domain is required")
	}

	if cached := s.fromCache(ctx, shopDomain); cached != nil {
		return cached, nil
	}

	shop, err := s.repo.GetByDomain(ctx, shopDomain)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load shop settings")
	}
	if shop == nil || shop.Settings == nil {
		return nil, nil
	}

	parsed := FromModel(ctx, s.logg, shop)
	s.toCache(ctx, shopDomain, parsed)
	return parsed, nil
}

func (s *service) GetSettings(ctx context.Context, shopDomain string) (*models.Settings, error) {
	shopDomain = NormalizeShopDomain(shopDomain)
	if shopDomain == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shop domain is required")
	}

	shop, err := s.repo.GetOrCreateByDomain(ctx, shopDomain)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load shop")
	}
	return shop.Settings, nil
}

func (s *service) UpdateSettings(ctx context.Context, shopDomain string, input SettingsUpdate) (*models.Settings, error) {
	shopDomain = NormalizeShopDomain(shopDomain)
	if shopDomain == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shop domain is required")
	}

	shop, err := s.repo.GetOrCreateByDomain(ctx, shopDomain)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load shop")
	}

	settings := shop.Settings

	if input.RegionMode != "" {
		settings.RegionMode = input.RegionMode
	}
	settings.WhitelistCountries = encodeCountryList(input.WhitelistCountries)
	settings.BlacklistCountries = encodeCountryList(input.BlacklistCountries)
	settings.PopupFields = encodePopupFields(input.PopupFields)
	settings.DraftOrderTags = input.DraftOrderTags
	settings.HidePrices = input.HidePrices

	if err := s.repo.SaveSettings(ctx, settings); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save settings")
	}

	s.invalidate(ctx, shopDomain)
	return settings, nil
}

func (s *service) UpdateOnboarding(ctx context.Context, shopDomain string, input OnboardingUpdate) (*models.Settings, error) {
	shopDomain = NormalizeShopDomain(shopDomain)
	if shopDomain == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shop domain is required")
	}

	shop, err := s.repo.GetOrCreateByDomain(ctx, shopDomain)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load shop")
	}

	settings := shop.Settings
	if input.SetupSuccessBannerDismissed != nil {
		settings.SetupSuccessBannerDismissed = *input.SetupSuccessBannerDismissed
	}
	if input.OnboardingComplete != nil {
		settings.OnboardingComplete = *input.OnboardingComplete
	}

	if err := s.repo.SaveSettings(ctx, settings); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save onboarding flags")
	}
	return settings, nil
}

func (s *service) fromCache(ctx context.Context, shopDomain string) *ShopSettings {
	if s.cache == nil {
		return nil
	}
	raw, err := s.cache.Get(ctx, s.cache.SettingsKey(shopDomain))
	if err != nil || raw == "" {
		return nil
	}
	var parsed ShopSettings
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		if s.logg != nil {
			s.logg.Warn(s.logg.WithShop(ctx, shopDomain), "cached settings are corrupt, refetching")
		}
		return nil
	}
	return &parsed
}

func (s *service) toCache(ctx context.Context, shopDomain string, parsed *ShopSettings) {
	if s.cache == nil || parsed == nil {
		return
	}
	encoded, err := json.Marshal(parsed)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, s.cache.SettingsKey(shopDomain), string(encoded), s.cacheTTL); err != nil && s.logg != nil {
		s.logg.Warn(s.logg.WithShop(ctx, shopDomain), "failed to cache settings")
	}
}

func (s *service) invalidate(ctx context.Context, shopDomain string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, s.cache.SettingsKey(shopDomain)); err != nil && s.logg != nil {
		s.logg.Warn(s.logg.WithShop(ctx, shopDomain), "failed to invalidate settings cache")
	}
}

func encodeCountryList(countries []string) string {
	normalized := make([]string, 0, len(countries))
	for _, country := range countries {
		if c := normalizeCountry(country); c != "" {
			normalized = append(normalized, c)
		}
	}
	encoded, _ := json.Marshal(normalized)
	return string(encoded)
}

func encodePopupFields(fields map[string]FieldConfig) string {
	merged := defaultPopupFields()
	for name, cfg := range fields {
		merged[name] = cfg
	}
	merged["name"] = FieldConfig{Enabled: true, Required: true}
	merged["email"] = FieldConfig{Enabled: true, Required: true}
	encoded, _ := json.Marshal(merged)
	return string(encoded)
}
