package quotes

import (
	"context"
	"time"

	pkgerrors "github.com/willmisback/frontier-quote-backend/pkg/errors"
	"github.com/willmisback/frontier-quote-backend/internal/shops"
	"github.com/willmisback/frontier-quote-backend/pkg/db/models"
	"github.com/willmisback/frontier-quote-backend/pkg/logger"
	"github.com/willmisback/frontier-quote-backend/pkg/metrics"
	"github.com/willmisback/frontier-quote-backend/pkg/shopify"
)

const (
	outcomeCreated    = "created"
	outcomeUserError  = "user_error"
	outcomeUpstream   = "upstream_error"
	outcomeValidation = "validation_error"
)

// Submitter creates a draft order from a normalized payload.
// internal/draftorders provides the production implementation.
type Submitter interface {
	Submit(ctx context.Context, shopDomain string, payload *Payload, tags []string) (*shopify.DraftOrderSummary, []shopify.UserError, error)
}

// IntakeResult is the outcome of one quote submission. Exactly one of
// DraftOrder and UserErrors is set on a non-error return.
type IntakeResult struct {
	DraftOrder *shopify.DraftOrderSummary
	UserErrors []shopify.UserError
}

// Service handles storefront quote submissions end to end.
type Service interface {
	Intake(ctx context.Context, shopDomain string, raw RawPayload) (*IntakeResult, error)
}

type service struct {
	shops     shops.Service
	repo      shops.Repository
	submitter Submitter
	metrics   *metrics.Metrics
	logg      *logger.Logger
}

// NewService wires the quote intake pipeline.
func NewService(shopSvc shops.Service, repo shops.Repository, submitter Submitter, m *metrics.Metrics, logg *logger.Logger) (Service, error) {
	if shopSvc == nil || repo == nil || submitter == nil || logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "quote intake dependencies required")
	}
	return &service{shops: shopSvc, repo: repo, submitter: submitter, metrics: m, logg: logg}, nil
}

// Intake normalizes the submission, resolves the shop's draft order
// tags, creates the draft order, and records the request for the
// dashboard. Recording failures are logged but never fail a submission
// that already created a draft order.
func (s *service) Intake(ctx context.Context, shopDomain string, raw RawPayload) (*IntakeResult, error) {
	shopDomain = shops.NormalizeShopDomain(shopDomain)
	if shopDomain == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Shop parameter is required")
	}
	ctx = s.logg.WithShop(ctx, shopDomain)

	payload, err := Normalize(ctx, s.logg, raw)
	if err != nil {
		s.count(outcomeValidation)
		return nil, err
	}

	settings, err := s.shops.SettingsForProxy(ctx, shopDomain)
	if err != nil {
		s.count(outcomeUpstream)
		return nil, err
	}
	tags := settings.ResolveTags(ctx, s.logg)

	started := time.Now()
	summary, userErrors, err := s.submitter.Submit(ctx, shopDomain, payload, tags)
	s.observeLatency(err, userErrors, time.Since(started))
	if err != nil {
		s.count(outcomeUpstream)
		return nil, err
	}
	if len(userErrors) > 0 {
		s.count(outcomeUserError)
		return &IntakeResult{UserErrors: userErrors}, nil
	}

	s.count(outcomeCreated)
	s.record(ctx, shopDomain, payload, tags, summary)
	return &IntakeResult{DraftOrder: summary}, nil
}

func (s *service) record(ctx context.Context, shopDomain string, payload *Payload, tags []string, summary *shopify.DraftOrderSummary) {
	shop, err := s.repo.GetOrCreateByDomain(ctx, shopDomain)
	if err != nil {
		s.logg.Error(ctx, "failed to load shop for quote record", err)
		return
	}

	record := &models.QuoteRequest{
		ShopID:         shop.ID,
		Email:          payload.Email,
		CountryCode:    payload.ShippingCountry,
		LineItemCount:  len(payload.LineItems),
		CartTotal:      payload.CartTotal,
		Tags:           tags,
		DraftOrderID:   summary.ID,
		DraftOrderName: summary.Name,
		InvoiceURL:     summary.InvoiceURL,
	}
	if err := s.repo.CreateQuoteRequest(ctx, record); err != nil {
		s.logg.Error(ctx, "failed to record quote request", err)
	}
}

func (s *service) count(outcome string) {
	if s.metrics != nil {
		s.metrics.QuoteRequests.WithLabelValues(outcome).Inc()
	}
}

func (s *service) observeLatency(err error, userErrors []shopify.UserError, elapsed time.Duration) {
	if s.metrics == nil {
		return
	}
	outcome := outcomeCreated
	switch {
	case err != nil:
		outcome = outcomeUpstream
	case len(userErrors) > 0:
		outcome = outcomeUserError
	}
	s.metrics.DraftOrderLatency.WithLabelValues(outcome).Observe(elapsed.Seconds())
}
