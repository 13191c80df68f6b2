// Package appproxy validates that storefront requests forwarded through
// Shopify's app proxy genuinely originated from Shopify. The proxy appends
// a signature query parameter computed over the remaining parameters with
// the app's shared secret.
package appproxy

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
)

// SignatureParam is the query parameter Shopify appends to proxied requests.
const SignatureParam = "signature"

// Verify reports whether the supplied query parameters carry a valid
// Shopify app-proxy signature. It fails closed when the shared secret is
// unset or the signature parameter is missing.
//
// The signed payload is the remaining parameters sorted by key and
// concatenated as key=value pairs with no separator. Shopify never sends
// repeated keys on proxy requests; if one shows up anyway we sign the
// first occurrence only.
func Verify(params url.Values, sharedSecret string) bool {
	if sharedSecret == "" {
		return false
	}

	signature := params.Get(SignatureParam)
	if signature == "" {
		return false
	}

	expected := ComputeSignature(params, sharedSecret)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// ComputeSignature returns the hex-encoded HMAC-SHA256 of the canonical
// parameter string, excluding the signature parameter itself.
func ComputeSignature(params url.Values, sharedSecret string) string {
	keys := make([]string, 0, len(params))
	for key := range params {
		if key == SignatureParam {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var payload strings.Builder
	for _, key := range keys {
		payload.WriteString(key)
		payload.WriteString("=")
		payload.WriteString(params.Get(key))
	}

	mac := hmac.New(sha256.New, []byte(sharedSecret))
	mac.Write([]byte(payload.String()))
	return hex.EncodeToString(mac.Sum(nil))
}
