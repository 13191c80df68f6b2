package controllers

import (
	"net/http"

	"github.com/willmisback/frontier-quote-backend/api/middleware"
	"github.com/willmisback/frontier-quote-backend/api/responses"
)

func PublicPing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{"scope": "public", "status": "ok"})
	}
}

func AdminPing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload := map[string]string{"scope": "admin", "status": "ok"}
		if shop := middleware.ShopFromContext(r.Context()); shop != "" {
			payload["shop"] = shop
		}
		responses.WriteSuccess(w, payload)
	}
}
