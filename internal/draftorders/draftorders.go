// Package draftorders submits normalized quote requests to a shop's
// Admin API as draft orders.
package draftorders

import (
	"context"

	pkgerrors "github.com/willmisback/frontier-quote-backend/pkg/errors"
	"github.com/willmisback/frontier-quote-backend/internal/quotes"
	"github.com/willmisback/frontier-quote-backend/pkg/logger"
	"github.com/willmisback/frontier-quote-backend/pkg/shopify"
)

// AdminAPI is the slice of the Shopify client the submitter needs.
type AdminAPI interface {
	CreateDraftOrder(ctx context.Context, shopDomain string, input shopify.DraftOrderInput) (*shopify.DraftOrderSummary, []shopify.UserError, error)
}

// Service creates draft orders from quote payloads.
type Service interface {
	Submit(ctx context.Context, shopDomain string, payload *quotes.Payload, tags []string) (*shopify.DraftOrderSummary, []shopify.UserError, error)
}

type service struct {
	admin AdminAPI
	logg  *logger.Logger
}

// NewService wires the draft order submitter.
func NewService(admin AdminAPI, logg *logger.Logger) (Service, error) {
	if admin == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "admin api client required")
	}
	return &service{admin: admin, logg: logg}, nil
}

// BuildInput maps a payload onto the draftOrderCreate input. The
// shipping address is attached only when it would carry at least one
// field; the customer name, when present, is split into first and last
// name on that address.
func BuildInput(payload *quotes.Payload, tags []string) shopify.DraftOrderInput {
	input := shopify.DraftOrderInput{
		Email: payload.Email,
		Note:  payload.Notes,
		Tags:  tags,
	}

	for _, item := range payload.LineItems {
		input.LineItems = append(input.LineItems, shopify.DraftOrderLineItemInput{
			VariantID: item.VariantID,
			Quantity:  item.Quantity,
		})
	}

	// Phone and company are accepted from the storefront but the
	// mutation has never sent them.
	if payload.HasShippingAddress() || payload.Name != "" {
		address := &shopify.MailingAddressInput{
			Address1: payload.ShippingAddress1,
			Address2: payload.ShippingAddress2,
			City:     payload.ShippingCity,
			Province: payload.ShippingProvince,
			Country:  payload.ShippingCountry,
			Zip:      payload.ShippingZip,
		}
		address.FirstName, address.LastName = payload.SplitName()
		input.ShippingAddress = address
	}

	return input
}

// Submit sends the draft order mutation. The three outcomes map onto
// the return values directly: a transport or GraphQL failure is err, a
// semantic rejection is a non-empty userErrors slice, and success is a
// non-nil summary. Every call creates a new draft order; there is no
// idempotency key, so retries must be deduped by the caller.
func (s *service) Submit(ctx context.Context, shopDomain string, payload *quotes.Payload, tags []string) (*shopify.DraftOrderSummary, []shopify.UserError, error) {
	if payload == nil {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "quote payload required")
	}

	input := BuildInput(payload, tags)
	if s.logg != nil {
		s.logg.Info(s.logg.WithFields(ctx, map[string]any{
			"shop":         shopDomain,
			"line_items":   len(input.LineItems),
			"has_shipping": input.ShippingAddress != nil,
			"tag_count":    len(input.Tags),
		}), "submitting draft order")
	}

	return s.admin.CreateDraftOrder(ctx, shopDomain, input)
}
