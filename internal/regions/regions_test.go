package regions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/willmisback/frontier-quote-backend/internal/shops"
)

func TestNormalizeCountryCode(t *testing.T) {
	code, err := NormalizeCountryCode("us")
	require.NoError(t, err)
	assert.Equal(t, "US", code)

	code, err = NormalizeCountryCode(" de ")
	require.NoError(t, err)
	assert.Equal(t, "DE", code)
}

func TestNormalizeCountryCodeRejectsBadLengths(t *testing.T) {
	for _, raw := range []string{"", "U", "USA", "united states"} {
		_, err := NormalizeCountryCode(raw)
		assert.Error(t, err, "raw=%q", raw)
	}
}

func TestDecideUnknownShopDefaultsToCheckout(t *testing.T) {
	decision := Decide(nil, "DE")
	assert.False(t, decision.ShouldShowQuote)
	assert.Equal(t, ReasonUnknownShop, decision.Reason)
}

func TestDecideBlacklistedCountryShowsQuote(t *testing.T) {
	settings := &shops.ShopSettings{BlacklistCountries: []string{"DE", "FR"}}
	decision := Decide(settings, "DE")
	assert.True(t, decision.ShouldShowQuote)
	assert.Equal(t, ReasonBlacklisted, decision.Reason)
	assert.Equal(t, "DE", decision.CountryCode)
}

func TestDecideWhitelistWinsOverBlacklist(t *testing.T) {
	settings := &shops.ShopSettings{
		WhitelistCountries: []string{"DE"},
		BlacklistCountries: []string{"DE"},
	}
	decision := Decide(settings, "DE")
	assert.False(t, decision.ShouldShowQuote)
	assert.Equal(t, ReasonWhitelisted, decision.Reason)
}

func TestDecideUnlistedCountryDefaultsToCheckout(t *testing.T) {
	settings := &shops.ShopSettings{
		WhitelistCountries: []string{"US"},
		BlacklistCountries: []string{"DE"},
	}
	decision := Decide(settings, "JP")
	assert.False(t, decision.ShouldShowQuote)
	assert.Equal(t, ReasonDefault, decision.Reason)
}

func TestDecideEmptyListsDefaultToCheckout(t *testing.T) {
	decision := Decide(&shops.ShopSettings{}, "US")
	assert.False(t, decision.ShouldShowQuote)
	assert.Equal(t, ReasonDefault, decision.Reason)
}
