// Package quotes turns loosely shaped storefront quote submissions into
// canonical order data and records them.
package quotes

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/willmisback/frontier-quote-backend/pkg/errors"
	"github.com/willmisback/frontier-quote-backend/pkg/logger"
)

// RawPayload is the flattened request body: form fields directly, or
// JSON fields with non-string values re-encoded as JSON text.
type RawPayload map[string]string

// LineItem is one variant/quantity pair from the cart snapshot.
type LineItem struct {
	VariantID string `json:"variantId"`
	Quantity  int    `json:"quantity"`
}

// Payload is the canonical quote request built from a submission.
type Payload struct {
	Email     string
	Name      string
	FirstName string
	LastName  string
	Phone     string
	Company   string
	Notes     string

	ShippingAddress1 string
	ShippingAddress2 string
	ShippingCity     string
	ShippingProvince string
	ShippingCountry  string
	ShippingZip      string

	CartTotal decimal.Decimal
	LineItems []LineItem
}

// HasShippingAddress reports whether any shipping field was supplied.
func (p *Payload) HasShippingAddress() bool {
	return p.ShippingAddress1 != "" || p.ShippingAddress2 != "" ||
		p.ShippingCity != "" || p.ShippingProvince != "" ||
		p.ShippingCountry != "" || p.ShippingZip != ""
}

// SplitName divides the display name into first name and remainder, the
// shape the Admin API shipping address expects.
func (p *Payload) SplitName() (string, string) {
	parts := strings.Fields(p.Name)
	if len(parts) == 0 {
		return "", ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}

// fieldRule resolves one logical field from its historical wire keys,
// first non-empty candidate wins. Two naming schemes are in the wild: a
// bracket-prefixed form scheme (quote[email]) and a flat JSON scheme,
// plus short aliases for the shipping fields.
type fieldRule struct {
	field string
	keys  []string
}

var fieldRules = []fieldRule{
	{"email", []string{"quote[email]", "email"}},
	{"name", []string{"quote[name]", "name"}},
	{"first_name", []string{"quote[first_name]", "first_name"}},
	{"last_name", []string{"quote[last_name]", "last_name"}},
	{"phone", []string{"quote[phone]", "phone"}},
	{"company", []string{"quote[company]", "company"}},
	{"notes", []string{"quote[notes]", "notes"}},
	{"shipping_address1", []string{"quote[shipping_address1]", "shipping_address1", "quote[address1]", "address1"}},
	{"shipping_address2", []string{"quote[shipping_address2]", "shipping_address2", "quote[address2]", "address2"}},
	{"shipping_city", []string{"quote[shipping_city]", "shipping_city", "quote[city]", "city"}},
	{"shipping_province", []string{"quote[shipping_province]", "shipping_province", "quote[province]", "province"}},
	{"shipping_country", []string{"quote[shipping_country]", "shipping_country", "quote[country]", "country"}},
	{"shipping_zip", []string{"quote[shipping_zip]", "shipping_zip", "quote[zip]", "zip"}},
	{"cart_line_items", []string{"quote[cart_line_items]", "cart_line_items"}},
	{"cart_total", []string{"quote[cart_total]", "cart_total"}},
}

func resolveFields(raw RawPayload) map[string]string {
	resolved := make(map[string]string, len(fieldRules))
	for _, rule := range fieldRules {
		for _, key := range rule.keys {
			if value := raw[key]; value != "" {
				resolved[rule.field] = value
				break
			}
		}
	}
	return resolved
}

// Normalize builds a canonical Payload from a raw submission. It fails
// with a validation error when email is missing or when no usable line
// item survives parsing.
func Normalize(ctx context.Context, logg *logger.Logger, raw RawPayload) (*Payload, error) {
	fields := resolveFields(raw)

	payload := &Payload{
		Email:            fields["email"],
		Name:             fields["name"],
		FirstName:        fields["first_name"],
		LastName:         fields["last_name"],
		Phone:            fields["phone"],
		Company:          fields["company"],
		Notes:            fields["notes"],
		ShippingAddress1: fields["shipping_address1"],
		ShippingAddress2: fields["shipping_address2"],
		ShippingCity:     fields["shipping_city"],
		ShippingProvince: fields["shipping_province"],
		ShippingCountry:  fields["shipping_country"],
		ShippingZip:      fields["shipping_zip"],
	}

	if payload.Name == "" && (payload.FirstName != "" || payload.LastName != "") {
		payload.Name = strings.TrimSpace(payload.FirstName + " " + payload.LastName)
	}

	if rawTotal := fields["cart_total"]; rawTotal != "" {
		total, err := decimal.NewFromString(strings.TrimSpace(rawTotal))
		if err == nil {
			payload.CartTotal = total
		} else if logg != nil {
			logg.Warn(logg.WithField(ctx, "cart_total", rawTotal), "cart total is not a number, ignoring")
		}
	}

	payload.LineItems = parseLineItems(ctx, logg, fields["cart_line_items"])

	if payload.Email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Email is required")
	}
	if len(payload.LineItems) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Cart line items are required")
	}
	return payload, nil
}

// rawLineItem tolerates string or numeric quantities in the cart JSON.
type rawLineItem struct {
	VariantID string          `json:"variantId"`
	Quantity  json.RawMessage `json:"quantity"`
}

// parseLineItems decodes the cart snapshot. Malformed JSON degrades to
// an empty list with a log line; the caller turns that into a
// validation failure.
func parseLineItems(ctx context.Context, logg *logger.Logger, raw string) []LineItem {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	var entries []rawLineItem
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		if logg != nil {
			logg.Warn(logg.WithField(ctx, "error", err.Error()), "cart line items are not valid JSON, ignoring")
		}
		return nil
	}

	items := make([]LineItem, 0, len(entries))
	for _, entry := range entries {
		quantity, ok := coerceQuantity(entry.Quantity)
		if entry.VariantID == "" || !ok {
			continue
		}
		items = append(items, LineItem{VariantID: entry.VariantID, Quantity: quantity})
	}
	return items
}

// coerceQuantity maps a JSON quantity value to a positive integer,
// defaulting to 1 when the value cannot be parsed. It reports false
// only for absent or zero-valued quantities, which drop the entry.
func coerceQuantity(raw json.RawMessage) (int, bool) {
	if len(raw) == 0 {
		return 0, false
	}

	var number float64
	if err := json.Unmarshal(raw, &number); err == nil {
		if number == 0 {
			return 0, false
		}
		quantity := int(number)
		if quantity < 1 {
			quantity = 1
		}
		return quantity, true
	}

	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return 0, false
	}
	if text == "" {
		return 0, false
	}
	quantity, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || quantity < 1 {
		return 1, true
	}
	return quantity, true
}
