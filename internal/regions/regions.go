// Package regions decides whether a storefront visitor should be routed
// to the quote flow or the regular checkout based on the shop's country
// rules.
package regions

import (
	"strings"

	pkgerrors "github.com/willmisback/frontier-quote-backend/pkg/errors"
	"github.com/willmisback/frontier-quote-backend/internal/shops"
)

// Reason names which rule produced a decision.
type Reason string

const (
	ReasonWhitelisted Reason = "whitelisted"
	ReasonBlacklisted Reason = "blacklisted"
	ReasonUnknownShop Reason = "unknown_shop"
	ReasonDefault     Reason = "default"
)

// Decision is the routing outcome for one visitor country.
type Decision struct {
	ShouldShowQuote bool   `json:"should_show_quote"`
	CountryCode     string `json:"country_code"`
	Reason          Reason `json:"reason"`
}

// NormalizeCountryCode validates and uppercases a two-letter ISO country
// code. Anything that is not exactly two characters is rejected before
// any list lookup happens.
func NormalizeCountryCode(raw string) (string, error) {
	code := strings.TrimSpace(raw)
	if len(code) != 2 {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "country must be a 2-letter code")
	}
	return strings.ToUpper(code), nil
}

// Decide applies the shop's routing rules to a normalized country code.
// Whitelist entries win over blacklist entries: a whitelisted country
// always sees the regular checkout even if it also appears in the
// blacklist. A nil settings value means the shop is not installed or
// has never been configured, and the visitor falls through to checkout.
func Decide(settings *shops.ShopSettings, countryCode string) Decision {
	decision := Decision{CountryCode: countryCode, Reason: ReasonDefault}

	if settings == nil {
		decision.Reason = ReasonUnknownShop
		return decision
	}

	if containsCountry(settings.WhitelistCountries, countryCode) {
		decision.Reason = ReasonWhitelisted
		return decision
	}

	if containsCountry(settings.BlacklistCountries, countryCode) {
		decision.ShouldShowQuote = true
		decision.Reason = ReasonBlacklisted
		return decision
	}

	return decision
}

func containsCountry(list []string, code string) bool {
	for _, entry := range list {
		if entry == code {
			return true
		}
	}
	return false
}
