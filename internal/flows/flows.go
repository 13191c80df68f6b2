// Package flows renders the importable Shopify Flow workflow that
// notifies merchants by email when a quote draft order is created.
package flows

import (
	"context"
	"encoding/json"

	pkgerrors "github.com/willmisback/frontier-quote-backend/pkg/errors"
	"github.com/willmisback/frontier-quote-backend/internal/shops"
	"github.com/willmisback/frontier-quote-backend/pkg/logger"
)

// Filename is the download name the dashboard instructs merchants to
// import into Shopify Flow.
const Filename = "frontier-quote-notifications.flow"

// DefaultRecipient is the placeholder address the merchant replaces in
// the Flow editor after importing.
const DefaultRecipient = "test@example.com"

// Step is one node in the workflow graph.
type Step struct {
	ID         string         `json:"id"`
	Kind       string         `json:"kind"`
	Name       string         `json:"name"`
	Properties map[string]any `json:"properties,omitempty"`
	Next       []string       `json:"next,omitempty"`
}

// Template is the workflow document the dashboard serves for download.
type Template struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Trigger     string `json:"trigger"`
	Steps       []Step `json:"steps"`
}

// Build assembles the draft-order-created workflow: a tag condition
// matching the shop's configured draft order tags, then an internal
// email action to the placeholder recipient.
func Build(tags []string) Template {
	return Template{
		Name:        "Quote request notifications",
		Description: "Emails your team when a storefront quote request creates a draft order.",
		Trigger:     "shopify/draft_order/created",
		Steps: []Step{
			{
				ID:   "check-quote-tags",
				Kind: "condition",
				Name: "Draft order has a quote tag",
				Properties: map[string]any{
					"field":    "draftOrder.tags",
					"operator": "contains_any",
					"values":   tags,
				},
				Next: []string{"send-internal-email"},
			},
			{
				ID:   "send-internal-email",
				Kind: "action/send_internal_email",
				Name: "Send internal email",
				Properties: map[string]any{
					"recipient": DefaultRecipient,
					"subject":   "New quote request: {{ draftOrder.name }}",
					"body": "A customer submitted a quote request.\n\n" +
						"Draft order: {{ draftOrder.name }}\n" +
						"Customer: {{ draftOrder.email }}\n" +
						"Invoice: {{ draftOrder.invoiceUrl }}",
				},
			},
		},
	}
}

// Service renders the workflow file for a shop.
type Service interface {
	Render(ctx context.Context, shopDomain string) (string, []byte, error)
}

type service struct {
	shops shops.Service
	logg  *logger.Logger
}

// NewService wires the flow template renderer.
func NewService(shopSvc shops.Service, logg *logger.Logger) (Service, error) {
	if shopSvc == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "shops service required")
	}
	return &service{shops: shopSvc, logg: logg}, nil
}

// Render produces the filename and JSON document, with the tag
// condition bound to the shop's resolved draft order tags.
func (s *service) Render(ctx context.Context, shopDomain string) (string, []byte, error) {
	settings, err := s.shops.SettingsForProxy(ctx, shopDomain)
	if err != nil {
		return "", nil, err
	}
	tags := settings.ResolveTags(ctx, s.logg)

	content, err := json.MarshalIndent(Build(tags), "", "  ")
	if err != nil {
		return "", nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode flow template")
	}
	return Filename, content, nil
}
