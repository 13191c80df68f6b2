package proxy

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/willmisback/frontier-quote-backend/internal/quotes"
	"github.com/willmisback/frontier-quote-backend/internal/shops"
	"github.com/willmisback/frontier-quote-backend/pkg/db/models"
	pkgerrors "github.com/willmisback/frontier-quote-backend/pkg/errors"
	"github.com/willmisback/frontier-quote-backend/pkg/logger"
	"github.com/willmisback/frontier-quote-backend/pkg/metrics"
	"github.com/willmisback/frontier-quote-backend/pkg/shopify"
)

type stubShopService struct {
	settings *shops.ShopSettings
	err      error
}

func (s *stubShopService) SettingsForProxy(ctx context.Context, shopDomain string) (*shops.ShopSettings, error) {
	return s.settings, s.err
}

func (s *stubShopService) GetSettings(ctx context.Context, shopDomain string) (*models.Settings, error) {
	return nil, nil
}

func (s *stubShopService) UpdateSettings(ctx context.Context, shopDomain string, input shops.SettingsUpdate) (*models.Settings, error) {
	return nil, nil
}

func (s *stubShopService) UpdateOnboarding(ctx context.Context, shopDomain string, input shops.OnboardingUpdate) (*models.Settings, error) {
	return nil, nil
}

type stubIntake struct {
	gotShop string
	gotRaw  quotes.RawPayload
	result  *quotes.IntakeResult
	err     error
}

func (s *stubIntake) Intake(ctx context.Context, shopDomain string, raw quotes.RawPayload) (*quotes.IntakeResult, error) {
	s.gotShop = shopDomain
	s.gotRaw = raw
	return s.result, s.err
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled})
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestSettingsBlacklistedCountryShowsQuote(t *testing.T) {
	handler := Settings(&stubShopService{settings: &shops.ShopSettings{
		ShopDomain:         "acme.myshopify.com",
		BlacklistCountries: []string{"DE"},
	}}, testLogger(), metrics.New())

	req := httptest.NewRequest(http.MethodGet, "/settings?country_code=de&shop=acme.myshopify.com", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["shouldShowQuote"])
}

func TestSettingsWhitelistWins(t *testing.T) {
	handler := Settings(&stubShopService{settings: &shops.ShopSettings{
		WhitelistCountries: []string{"DE"},
		BlacklistCountries: []string{"DE"},
	}}, testLogger(), metrics.New())

	req := httptest.NewRequest(http.MethodGet, "/settings?country_code=DE&shop=acme", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decodeBody(t, rec)["shouldShowQuote"])
}

func TestSettingsUnknownShopDefaultsToCheckout(t *testing.T) {
	handler := Settings(&stubShopService{settings: nil}, testLogger(), metrics.New())

	req := httptest.NewRequest(http.MethodGet, "/settings?country_code=DE&shop=nobody", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, false, body["shouldShowQuote"])
	assert.NotContains(t, body, "_debug")
}

func TestSettingsDefaultDecisionIncludesDebug(t *testing.T) {
	handler := Settings(&stubShopService{settings: &shops.ShopSettings{
		ShopDomain:         "acme.myshopify.com",
		WhitelistCountries: []string{"US"},
	}}, testLogger(), metrics.New())

	req := httptest.NewRequest(http.MethodGet, "/settings?country_code=jp&shop=acme", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, false, body["shouldShowQuote"])
	assert.Equal(t, "JP", body["countryCode"])
	require.Contains(t, body, "_debug")
}

func TestSettingsRejectsBadCountry(t *testing.T) {
	handler := Settings(&stubShopService{}, testLogger(), metrics.New())

	for _, target := range []string{
		"/settings?shop=acme",
		"/settings?country_code=USA&shop=acme",
	} {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		rec := httptest.NewRecorder()
		handler(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
		body := decodeBody(t, rec)
		assert.Equal(t, "Invalid country code", body["error"])
		assert.Equal(t, false, body["shouldShowQuote"])
	}
}

func TestSettingsRequiresShop(t *testing.T) {
	handler := Settings(&stubShopService{}, testLogger(), metrics.New())

	req := httptest.NewRequest(http.MethodGet, "/settings?country_code=DE", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Shop domain is required", decodeBody(t, rec)["error"])
}

func TestSettingsAcceptsLegacyCountryParam(t *testing.T) {
	handler := Settings(&stubShopService{settings: &shops.ShopSettings{
		BlacklistCountries: []string{"FR"},
	}}, testLogger(), metrics.New())

	req := httptest.NewRequest(http.MethodGet, "/settings?country=fr&shop=acme", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decodeBody(t, rec)["shouldShowQuote"])
}

func TestQuoteFormSubmissionSucceeds(t *testing.T) {
	intake := &stubIntake{result: &quotes.IntakeResult{DraftOrder: &shopify.DraftOrderSummary{
		ID:         "gid://shopify/DraftOrder/1",
		Name:       "#D1",
		InvoiceURL: "https://acme.myshopify.com/invoice/1",
	}}}
	handler := Quote(intake, testLogger(), metrics.New())

	form := url.Values{}
	form.Set("quote[email]", "a@b.com")
	form.Set("quote[cart_line_items]", `[{"variantId":"v1","quantity":"2"}]`)

	req := httptest.NewRequest(http.MethodPost, "/quote?shop=acme.myshopify.com", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Quote request submitted successfully", body["message"])
	draftOrder := body["draftOrder"].(map[string]any)
	assert.Equal(t, "#D1", draftOrder["name"])

	assert.Equal(t, "acme.myshopify.com", intake.gotShop)
	assert.Equal(t, "a@b.com", intake.gotRaw["quote[email]"])
}

func TestQuoteJSONSubmissionFlattensValues(t *testing.T) {
	intake := &stubIntake{result: &quotes.IntakeResult{DraftOrder: &shopify.DraftOrderSummary{ID: "x"}}}
	handler := Quote(intake, testLogger(), metrics.New())

	payload := `{"email":"a@b.com","cart_line_items":[{"variantId":"v1","quantity":2}]}`
	req := httptest.NewRequest(http.MethodPost, "/quote?shop=acme", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "a@b.com", intake.gotRaw["email"])
	assert.JSONEq(t, `[{"variantId":"v1","quantity":2}]`, intake.gotRaw["cart_line_items"])
}

func TestQuoteValidationFailure(t *testing.T) {
	intake := &stubIntake{err: pkgerrors.New(pkgerrors.CodeValidation, "Email is required")}
	handler := Quote(intake, testLogger(), metrics.New())

	req := httptest.NewRequest(http.MethodPost, "/quote?shop=acme", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Bad Request", body["error"])
	assert.Equal(t, "Email is required", body["message"])
}

func TestQuoteUserErrorsReturn400WithDetails(t *testing.T) {
	intake := &stubIntake{result: &quotes.IntakeResult{UserErrors: []shopify.UserError{
		{Field: []string{"input", "lineItems"}, Message: "variant does not exist"},
		{Message: "email is invalid"},
	}}}
	handler := Quote(intake, testLogger(), metrics.New())

	req := httptest.NewRequest(http.MethodPost, "/quote?shop=acme", strings.NewReader(`{"email":"a@b.com"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Failed to create draft order", body["error"])
	assert.Equal(t, "variant does not exist, email is invalid", body["message"])
	require.Len(t, body["userErrors"], 2)
}

func TestQuoteTransportFailureReturns500(t *testing.T) {
	intake := &stubIntake{err: pkgerrors.Wrap(pkgerrors.CodeDependency, errors.New("connection refused"), "call shopify admin api")}
	handler := Quote(intake, testLogger(), metrics.New())

	req := httptest.NewRequest(http.MethodPost, "/quote?shop=acme", strings.NewReader(`{"email":"a@b.com"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Failed to create draft order", body["error"])
}

func TestQuoteEmptyResultReturns500(t *testing.T) {
	intake := &stubIntake{result: &quotes.IntakeResult{}}
	handler := Quote(intake, testLogger(), metrics.New())

	req := httptest.NewRequest(http.MethodPost, "/quote?shop=acme", strings.NewReader(`{"email":"a@b.com"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Failed to create draft order", body["error"])
}

func TestQuoteUnsupportedContentType(t *testing.T) {
	handler := Quote(&stubIntake{}, testLogger(), metrics.New())

	req := httptest.NewRequest(http.MethodPost, "/quote?shop=acme", strings.NewReader("<xml/>"))
	req.Header.Set("Content-Type", "text/xml")
	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Unsupported content type", decodeBody(t, rec)["message"])
}

func TestQuoteRequiresShopParam(t *testing.T) {
	handler := Quote(&stubIntake{}, testLogger(), metrics.New())

	req := httptest.NewRequest(http.MethodPost, "/quote", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Shop parameter is required", decodeBody(t, rec)["message"])
}
