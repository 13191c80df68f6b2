package shopify

import (
	"context"
	"strings"

	pkgerrors "github.com/willmisback/frontier-quote-backend/pkg/errors"
)

const draftOrderCreateMutation = `
mutation draftOrderCreate($input: DraftOrderInput!) {
  draftOrderCreate(input: $input) {
    draftOrder {
      id
      name
      invoiceUrl
    }
    userErrors {
      field
      message
    }
  }
}`

// MailingAddressInput is the subset of the Admin API shipping address
// input this app sends.
type MailingAddressInput struct {
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Address1  string `json:"address1,omitempty"`
	Address2  string `json:"address2,omitempty"`
	City      string `json:"city,omitempty"`
	Province  string `json:"province,omitempty"`
	Country   string `json:"country,omitempty"`
	Zip       string `json:"zip,omitempty"`
}

// DraftOrderLineItemInput is one variant/quantity pair on the mutation.
type DraftOrderLineItemInput struct {
	VariantID string `json:"variantId"`
	Quantity  int    `json:"quantity"`
}

// DraftOrderInput is the draftOrderCreate input object. ShippingAddress
// and Tags are omitted from the wire payload entirely when empty.
type DraftOrderInput struct {
	Email           string                    `json:"email"`
	ShippingAddress *MailingAddressInput      `json:"shippingAddress,omitempty"`
	LineItems       []DraftOrderLineItemInput `json:"lineItems"`
	Tags            []string                  `json:"tags,omitempty"`
	Note            string                    `json:"note"`
}

// UserError is a field-level rejection from the Admin API.
type UserError struct {
	Field   []string `json:"field"`
	Message string   `json:"message"`
}

// DraftOrderSummary is the slice of the created draft order the caller
// needs.
type DraftOrderSummary struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	InvoiceURL string `json:"invoiceUrl"`
}

// JoinUserErrors flattens userErrors into a single display message.
func JoinUserErrors(userErrors []UserError) string {
	parts := make([]string, 0, len(userErrors))
	for _, ue := range userErrors {
		msg := ue.Message
		if len(ue.Field) > 0 {
			msg = strings.Join(ue.Field, ".") + ": " + msg
		}
		parts = append(parts, msg)
	}
	return strings.Join(parts, "; ")
}

// CreateDraftOrder sends draftOrderCreate to the shop's Admin API.
// A transport or GraphQL-level failure comes back as err; a semantic
// rejection comes back as a non-empty userErrors slice with a nil
// summary. Exactly one of the three outcomes holds.
func (c *Client) CreateDraftOrder(ctx context.Context, shopDomain string, input DraftOrderInput) (*DraftOrderSummary, []UserError, error) {
	var data struct {
		DraftOrderCreate struct {
			DraftOrder *DraftOrderSummary `json:"draftOrder"`
			UserErrors []UserError        `json:"userErrors"`
		} `json:"draftOrderCreate"`
	}

	variables := map[string]any{"input": input}
	if err := c.Execute(ctx, shopDomain, draftOrderCreateMutation, variables, &data); err != nil {
		return nil, nil, err
	}

	result := data.DraftOrderCreate
	if len(result.UserErrors) > 0 {
		c.logger.Warn(c.logger.WithFields(ctx, map[string]any{
			"shop":        shopDomain,
			"user_errors": JoinUserErrors(result.UserErrors),
		}), "draft order rejected by admin api")
		return nil, result.UserErrors, nil
	}

	// A null draftOrder without userErrors is a malformed upstream
	// response, not a success.
	if result.DraftOrder == nil {
		return nil, nil, pkgerrors.New(pkgerrors.CodeDependency, "admin api returned no draft order and no user errors")
	}

	c.logger.Info(c.logger.WithFields(ctx, map[string]any{
		"shop":           shopDomain,
		"draft_order_id": result.DraftOrder.ID,
	}), "draft order created")
	return result.DraftOrder, nil, nil
}
