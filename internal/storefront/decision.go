package storefront

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/willmisback/frontier-quote-backend/internal/shops"
	"github.com/willmisback/frontier-quote-backend/pkg/logger"
)

// Decision mirrors the proxy settings endpoint response.
type Decision struct {
	ShouldShowQuote bool                         `json:"shouldShowQuote"`
	CountryCode     string                       `json:"countryCode"`
	PopupFields     map[string]shops.FieldConfig `json:"popupFields"`
}

// DecisionClient fetches the routing decision from the app-proxy
// settings endpoint. Any failure degrades to "show normal checkout":
// this subsystem must never block a shopper from checking out.
type DecisionClient struct {
	httpClient *http.Client
	baseURL    string
	logg       *logger.Logger
}

// NewDecisionClient points at the proxy base, e.g.
// "https://shop.example/apps/frontier-quote".
func NewDecisionClient(httpClient *http.Client, baseURL string, logg *logger.Logger) *DecisionClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &DecisionClient{httpClient: httpClient, baseURL: baseURL, logg: logg}
}

// Fetch asks whether the quote flow should replace checkout for this
// country. It fails closed: network errors, non-OK statuses, and
// malformed bodies all come back as a false decision.
func (c *DecisionClient) Fetch(ctx context.Context, shopDomain, countryCode string) Decision {
	query := url.Values{}
	query.Set("country_code", countryCode)
	query.Set("shop", shopDomain)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/settings?"+query.Encode(), nil)
	if err != nil {
		return Decision{}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.warn(ctx, "decision fetch failed")
		return Decision{}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.warn(ctx, "decision endpoint returned non-ok status")
		return Decision{}
	}

	var decision Decision
	if err := json.NewDecoder(resp.Body).Decode(&decision); err != nil {
		c.warn(ctx, "decision response is not valid JSON")
		return Decision{}
	}
	return decision
}

func (c *DecisionClient) warn(ctx context.Context, msg string) {
	if c.logg != nil {
		c.logg.Warn(ctx, msg)
	}
}
