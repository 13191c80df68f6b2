// Package storefront is the server-side SDK behind the theme extension:
// visitor country detection, the routing decision fetch, and the
// coalescing rescan worker that drives checkout-button replacement.
package storefront

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/multierr"

	"github.com/willmisback/frontier-quote-backend/pkg/config"
	"github.com/willmisback/frontier-quote-backend/pkg/logger"
)

// Source resolves the visitor's country from one signal. An empty
// string with a nil error means the source has no answer and the chain
// moves on.
type Source interface {
	Name() string
	Detect(ctx context.Context) (string, error)
}

// StaticSource returns a fixed value: the test override parameter, the
// page dataset attribute, or the ambient script variable.
type StaticSource struct {
	SourceName string
	Value      string
}

func (s StaticSource) Name() string { return s.SourceName }

func (s StaticSource) Detect(ctx context.Context) (string, error) {
	return s.Value, nil
}

// browsingContext is the slice of the storefront suggestion payload the
// detector reads.
type browsingContext struct {
	DetectedValues struct {
		Country struct {
			Handle string `json:"handle"`
		} `json:"country"`
	} `json:"detected_values"`
}

// ShopifySource asks the storefront's own browsing-context endpoint for
// the detected country.
type ShopifySource struct {
	Client  *http.Client
	BaseURL string
}

func (s ShopifySource) Name() string { return "storefront_endpoint" }

func (s ShopifySource) Detect(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.BaseURL+"/browsing_context_suggestions.json", nil)
	if err != nil {
		return "", err
	}

	resp, err := s.client().Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", nil
	}

	var payload browsingContext
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", err
	}
	return strings.ToUpper(payload.DetectedValues.Country.Handle), nil
}

func (s ShopifySource) client() *http.Client {
	if s.Client != nil {
		return s.Client
	}
	return http.DefaultClient
}

// IPGeoSource is the last-resort lookup against a third-party IP
// geolocation service, cached per visitor IP so repeat visits within
// the TTL never leave the process.
type IPGeoSource struct {
	cfg    config.GeoConfig
	client *http.Client
	cache  *gocache.Cache
	ip     string
}

// NewIPGeoSource builds the fallback source for one visitor IP.
func NewIPGeoSource(cfg config.GeoConfig, cache *gocache.Cache, visitorIP string) *IPGeoSource {
	return &IPGeoSource{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		cache:  cache,
		ip:     visitorIP,
	}
}

// NewGeoCache returns the process-wide cache for IP lookups.
func NewGeoCache(ttl time.Duration) *gocache.Cache {
	return gocache.New(ttl, 2*ttl)
}

func (s *IPGeoSource) Name() string { return "ip_geolocation" }

func (s *IPGeoSource) Detect(ctx context.Context) (string, error) {
	if s.cache != nil && s.ip != "" {
		if cached, ok := s.cache.Get(s.ip); ok {
			if country, ok := cached.(string); ok {
				return country, nil
			}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.LookupURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", nil
	}

	var payload struct {
		CountryCode string `json:"country_code"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", err
	}

	country := strings.ToUpper(strings.TrimSpace(payload.CountryCode))
	if country != "" && s.cache != nil && s.ip != "" {
		s.cache.Set(s.ip, country, s.cfg.CacheTTL)
	}
	return country, nil
}

// DetectCountry walks the sources in priority order and returns the
// first usable two-letter code. Source failures are logged and skipped;
// an exhausted chain returns empty, which callers treat as "show the
// normal checkout". The accumulated source errors come back alongside
// the empty result so callers can surface them.
func DetectCountry(ctx context.Context, logg *logger.Logger, sources ...Source) (string, error) {
	var errs error
	for _, source := range sources {
		country, err := source.Detect(ctx)
		if err != nil {
			if logg != nil {
				logg.Warn(logg.WithField(ctx, "source", source.Name()), "country detection source failed")
			}
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", source.Name(), err))
			continue
		}
		country = strings.ToUpper(strings.TrimSpace(country))
		if len(country) == 2 {
			return country, nil
		}
	}
	return "", errs
}
