package admin

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/willmisback/frontier-quote-backend/api/middleware"
	"github.com/willmisback/frontier-quote-backend/internal/analytics"
	"github.com/willmisback/frontier-quote-backend/internal/flows"
	"github.com/willmisback/frontier-quote-backend/internal/shops"
	"github.com/willmisback/frontier-quote-backend/pkg/db/models"
	pkgerrors "github.com/willmisback/frontier-quote-backend/pkg/errors"
	"github.com/willmisback/frontier-quote-backend/pkg/logger"
)

type stubShopService struct {
	gotShop     string
	gotSettings shops.SettingsUpdate
	gotFlags    shops.OnboardingUpdate
	settings    *models.Settings
	proxyView   *shops.ShopSettings
	err         error
}

func (s *stubShopService) SettingsForProxy(ctx context.Context, shopDomain string) (*shops.ShopSettings, error) {
	s.gotShop = shopDomain
	return s.proxyView, s.err
}

func (s *stubShopService) GetSettings(ctx context.Context, shopDomain string) (*models.Settings, error) {
	s.gotShop = shopDomain
	return s.settings, s.err
}

func (s *stubShopService) UpdateSettings(ctx context.Context, shopDomain string, input shops.SettingsUpdate) (*models.Settings, error) {
	s.gotShop = shopDomain
	s.gotSettings = input
	return s.settings, s.err
}

func (s *stubShopService) UpdateOnboarding(ctx context.Context, shopDomain string, input shops.OnboardingUpdate) (*models.Settings, error) {
	s.gotShop = shopDomain
	s.gotFlags = input
	return s.settings, s.err
}

type stubAnalytics struct {
	gotShop string
	summary *analytics.Summary
	err     error
}

func (s *stubAnalytics) Summary(ctx context.Context, shopDomain string) (*analytics.Summary, error) {
	s.gotShop = shopDomain
	return s.summary, s.err
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled})
}

func shopRequest(method, target, body string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Shop-Domain", "acme.myshopify.com")
	return req
}

// through runs the handler behind the shop-context middleware the router
// mounts in front of every admin route.
func through(logg *logger.Logger, handler http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	middleware.ShopContext(logg)(handler).ServeHTTP(rec, req)
	return rec
}

func envelopeData(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var envelope struct {
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope.Data
}

func storedSettings() *models.Settings {
	tags := "Wholesale, Quote"
	return &models.Settings{
		RegionMode:         "allow",
		WhitelistCountries: `["US","CA"]`,
		BlacklistCountries: `["DE"]`,
		PopupFields:        `{"phone":{"enabled":true,"required":false}}`,
		DraftOrderTags:     &tags,
		HidePrices:         true,
	}
}

func TestGetSettingsParsesStoredColumns(t *testing.T) {
	svc := &stubShopService{settings: storedSettings()}
	rec := through(testLogger(), GetSettings(svc, testLogger()), shopRequest(http.MethodGet, "/api/v1/settings", ""))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "acme.myshopify.com", svc.gotShop)

	data := envelopeData(t, rec)
	assert.Equal(t, []any{"US", "CA"}, data["whitelist_countries"])
	assert.Equal(t, []any{"DE"}, data["blacklist_countries"])
	assert.Equal(t, true, data["hide_prices"])

	fields := data["popup_fields"].(map[string]any)
	phone := fields["phone"].(map[string]any)
	assert.Equal(t, true, phone["enabled"])
	email := fields["email"].(map[string]any)
	assert.Equal(t, true, email["required"])
}

func TestGetSettingsRequiresShopHeader(t *testing.T) {
	svc := &stubShopService{settings: storedSettings()}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/settings", nil)
	rec := through(testLogger(), GetSettings(svc, testLogger()), req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, svc.gotShop)
}

func TestUpdateSettingsDecodesAndForwards(t *testing.T) {
	svc := &stubShopService{settings: storedSettings()}
	body := `{
		"region_mode": "allow",
		"whitelist_countries": ["us"],
		"blacklist_countries": [],
		"popup_fields": {"notes": {"enabled": true, "required": false}},
		"hide_prices": false
	}`
	rec := through(testLogger(), UpdateSettings(svc, testLogger()), shopRequest(http.MethodPut, "/api/v1/settings", body))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"us"}, svc.gotSettings.WhitelistCountries)
	require.Contains(t, svc.gotSettings.PopupFields, "notes")
	assert.True(t, svc.gotSettings.PopupFields["notes"].Enabled)
}

func TestUpdateSettingsRejectsUnknownFields(t *testing.T) {
	svc := &stubShopService{settings: storedSettings()}
	rec := through(testLogger(), UpdateSettings(svc, testLogger()), shopRequest(http.MethodPut, "/api/v1/settings", `{"nope": 1}`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, svc.gotShop)
}

func TestUpdateSettingsPropagatesServiceError(t *testing.T) {
	svc := &stubShopService{err: pkgerrors.New(pkgerrors.CodeDependency, "database unavailable")}
	rec := through(testLogger(), UpdateSettings(svc, testLogger()), shopRequest(http.MethodPut, "/api/v1/settings", `{"hide_prices": true}`))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestUpdateOnboardingTogglesFlags(t *testing.T) {
	svc := &stubShopService{settings: storedSettings()}
	body := `{"setup_success_banner_dismissed": true}`
	rec := through(testLogger(), UpdateOnboarding(svc, testLogger()), shopRequest(http.MethodPost, "/api/v1/settings/onboarding", body))

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, svc.gotFlags.SetupSuccessBannerDismissed)
	assert.True(t, *svc.gotFlags.SetupSuccessBannerDismissed)
	assert.Nil(t, svc.gotFlags.OnboardingComplete)
}

func TestDashboardReturnsSummary(t *testing.T) {
	svc := &stubAnalytics{summary: &analytics.Summary{
		TotalRequests:  12,
		RequestsLast30: 4,
		TopCountries:   []analytics.CountryCount{{CountryCode: "DE", Count: 7}},
		Recent:         []models.QuoteRequest{},
	}}
	rec := through(testLogger(), Dashboard(svc, testLogger()), shopRequest(http.MethodGet, "/api/v1/dashboard", ""))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "acme.myshopify.com", svc.gotShop)

	data := envelopeData(t, rec)
	assert.Equal(t, float64(12), data["total_requests"])
	top := data["top_countries"].([]any)
	require.Len(t, top, 1)
	assert.Equal(t, "DE", top[0].(map[string]any)["country_code"])
}

func TestDownloadFlowServesAttachment(t *testing.T) {
	shopSvc, err := shops.NewService(&flowShopRepo{}, nil, 0, testLogger())
	require.NoError(t, err)
	flowSvc, err := flows.NewService(shopSvc, testLogger())
	require.NoError(t, err)

	rec := through(testLogger(), DownloadFlow(flowSvc, testLogger()), shopRequest(http.MethodGet, "/api/v1/notifications/flow", ""))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), flows.Filename)

	var template flows.Template
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &template))
	assert.Equal(t, "shopify/draft_order/created", template.Trigger)
}

// flowShopRepo is the minimal shops.Repository behind the flow download
// test: an unknown shop, so the template binds the default tags.
type flowShopRepo struct{}

func (r *flowShopRepo) GetByDomain(ctx context.Context, shopDomain string) (*models.Shop, error) {
	return nil, nil
}

func (r *flowShopRepo) GetOrCreateByDomain(ctx context.Context, shopDomain string) (*models.Shop, error) {
	return nil, nil
}

func (r *flowShopRepo) SaveSettings(ctx context.Context, settings *models.Settings) error {
	return nil
}

func (r *flowShopRepo) CreateQuoteRequest(ctx context.Context, record *models.QuoteRequest) error {
	return nil
}
