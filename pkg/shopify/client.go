// Package shopify wraps the Shopify Admin GraphQL API with centralized
// auth, logging, and error mapping.
package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/willmisback/frontier-quote-backend/pkg/config"
	pkgerrors "github.com/willmisback/frontier-quote-backend/pkg/errors"
	"github.com/willmisback/frontier-quote-backend/pkg/logger"
)

var (
	errLoggerRequired  = errors.New("shopify logger is required")
	errShopRequired    = errors.New("shop domain is required")
	errTokenMissing    = errors.New("no admin token configured for shop")
	errVersionRequired = errors.New("shopify api version is required")
)

// Client executes Admin GraphQL operations for any shop the app has an
// offline token for.
type Client struct {
	httpClient *http.Client
	apiVersion string
	baseURL    string
	cfg        config.ShopifyConfig
	logger     *logger.Logger
}

// NewClient initializes the Admin API wrapper.
func NewClient(ctx context.Context, cfg config.ShopifyConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	version := strings.TrimSpace(cfg.APIVersion)
	if version == "" {
		return nil, errVersionRequired
	}

	c := &Client{
		httpClient: &http.Client{Timeout: cfg.AdminTimeout},
		apiVersion: version,
		baseURL:    strings.TrimRight(cfg.AdminBaseURL, "/"),
		cfg:        cfg,
		logger:     logg,
	}

	logg.Info(ctx, "shopify admin client initialized")
	return c, nil
}

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphqlError struct {
	Message string `json:"message"`
}

type graphqlEnvelope struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphqlError  `json:"errors"`
}

// Execute runs one GraphQL operation against a shop's Admin API and
// decodes the data payload into out. Top-level GraphQL errors and
// non-2xx responses are reported as dependency failures.
func (c *Client) Execute(ctx context.Context, shopDomain, query string, variables map[string]any, out any) error {
	shopDomain = strings.TrimSpace(strings.ToLower(shopDomain))
	if shopDomain == "" {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, errShopRequired, "shopify execute")
	}
	token := c.cfg.TokenFor(shopDomain)
	if token == "" {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, errTokenMissing, fmt.Sprintf("shopify execute for %s", shopDomain))
	}

	body, err := json.Marshal(graphqlRequest{Query: query, Variables: variables})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode graphql request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(shopDomain), bytes.NewReader(body))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build graphql request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Shopify-Access-Token", token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error(c.logger.WithShop(ctx, shopDomain), "shopify admin request failed", err)
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "call shopify admin api")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read shopify admin response")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn(c.logger.WithFields(ctx, map[string]any{
			"shop":   shopDomain,
			"status": resp.StatusCode,
		}), "shopify admin api returned non-2xx status")
		return pkgerrors.New(codeForStatus(resp.StatusCode), fmt.Sprintf("shopify admin api status %d", resp.StatusCode))
	}

	var envelope graphqlEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode shopify admin response")
	}
	if len(envelope.Errors) > 0 {
		messages := make([]string, 0, len(envelope.Errors))
		for _, gqlErr := range envelope.Errors {
			messages = append(messages, gqlErr.Message)
		}
		return pkgerrors.New(pkgerrors.CodeDependency, "shopify graphql errors: "+strings.Join(messages, "; "))
	}

	if out != nil {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode graphql data")
		}
	}
	return nil
}

func (c *Client) endpoint(shopDomain string) string {
	base := c.baseURL
	if base == "" {
		base = "https://" + shopDomain
	}
	return fmt.Sprintf("%s/admin/api/%s/graphql.json", base, c.apiVersion)
}

func codeForStatus(status int) pkgerrors.Code {
	switch status {
	case http.StatusUnauthorized:
		return pkgerrors.CodeUnauthorized
	case http.StatusForbidden:
		return pkgerrors.CodeForbidden
	case http.StatusNotFound:
		return pkgerrors.CodeNotFound
	case http.StatusTooManyRequests:
		return pkgerrors.CodeRateLimit
	default:
		return pkgerrors.CodeDependency
	}
}
