package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS returns the policy for the embedded admin dashboard, which calls
// the API from inside the Shopify admin iframe.
func CORS() func(http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins: []string{"https://admin.shopify.com", "https://*.myshopify.com", "http://localhost:3000"},
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Shop-Domain", "X-Requested-With"},
		MaxAge:         300,
	}).Handler
}

// ProxyCORS matches what the proxied storefront endpoints have always
// sent: the storefront script runs on arbitrary merchant domains.
func ProxyCORS() func(http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	}).Handler
}
