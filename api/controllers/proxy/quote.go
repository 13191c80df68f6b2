package proxy

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/willmisback/frontier-quote-backend/internal/quotes"
	pkgerrors "github.com/willmisback/frontier-quote-backend/pkg/errors"
	"github.com/willmisback/frontier-quote-backend/pkg/logger"
	"github.com/willmisback/frontier-quote-backend/pkg/metrics"
)

const quoteEndpoint = "quote"

const maxQuoteBody = 1 << 20

// Quote handles POST /quote: the storefront quote submission. The body
// is either form-encoded with bracket-prefixed fields or flat JSON.
func Quote(intake quotes.Service, logg *logger.Logger, m *metrics.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shopDomain := r.URL.Query().Get("shop")
		if shopDomain == "" {
			writeProxyResponse(m, w, quoteEndpoint, http.StatusBadRequest, map[string]any{
				"error":   "Bad Request",
				"message": "Shop parameter is required",
			})
			return
		}

		raw, ok := decodePayload(w, r, m)
		if !ok {
			return
		}

		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithShop(ctx, shopDomain)
		}

		result, err := intake.Intake(ctx, shopDomain, raw)
		if err != nil {
			writeQuoteError(m, w, err)
			return
		}

		if result == nil || (result.DraftOrder == nil && len(result.UserErrors) == 0) {
			writeQuoteError(m, w, pkgerrors.New(pkgerrors.CodeDependency, "draft order missing from upstream response"))
			return
		}

		if len(result.UserErrors) > 0 {
			messages := make([]string, 0, len(result.UserErrors))
			for _, ue := range result.UserErrors {
				messages = append(messages, ue.Message)
			}
			writeProxyResponse(m, w, quoteEndpoint, http.StatusBadRequest, map[string]any{
				"success":    false,
				"error":      "Failed to create draft order",
				"message":    strings.Join(messages, ", "),
				"userErrors": result.UserErrors,
			})
			return
		}

		writeProxyResponse(m, w, quoteEndpoint, http.StatusOK, map[string]any{
			"success":   true,
			"message":   "Quote request submitted successfully",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"draftOrder": map[string]string{
				"id":         result.DraftOrder.ID,
				"name":       result.DraftOrder.Name,
				"invoiceUrl": result.DraftOrder.InvoiceURL,
			},
		})
	}
}

// decodePayload flattens either accepted body encoding into the raw
// field map the normalizer resolves.
func decodePayload(w http.ResponseWriter, r *http.Request, m *metrics.Metrics) (quotes.RawPayload, bool) {
	contentType := r.Header.Get("Content-Type")
	r.Body = http.MaxBytesReader(w, r.Body, maxQuoteBody)

	switch {
	case strings.Contains(contentType, "application/json"):
		var body map[string]json.RawMessage
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeProxyResponse(m, w, quoteEndpoint, http.StatusBadRequest, map[string]any{
				"error":   "Bad Request",
				"message": "Invalid JSON body",
			})
			return nil, false
		}
		raw := make(quotes.RawPayload, len(body))
		for key, value := range body {
			raw[key] = flattenJSONValue(value)
		}
		return raw, true

	case strings.Contains(contentType, "application/x-www-form-urlencoded"):
		if err := r.ParseForm(); err != nil {
			writeProxyResponse(m, w, quoteEndpoint, http.StatusBadRequest, map[string]any{
				"error":   "Bad Request",
				"message": "Invalid form body",
			})
			return nil, false
		}
		raw := make(quotes.RawPayload, len(r.PostForm))
		for key, values := range r.PostForm {
			if len(values) > 0 {
				raw[key] = values[0]
			}
		}
		return raw, true

	default:
		writeProxyResponse(m, w, quoteEndpoint, http.StatusBadRequest, map[string]any{
			"error":   "Bad Request",
			"message": "Unsupported content type",
		})
		return nil, false
	}
}

// flattenJSONValue keeps strings as-is and re-encodes anything else,
// so a JSON array sent for cart_line_items survives as its JSON text.
func flattenJSONValue(value json.RawMessage) string {
	var text string
	if err := json.Unmarshal(value, &text); err == nil {
		return text
	}
	return string(value)
}

func writeQuoteError(m *metrics.Metrics, w http.ResponseWriter, err error) {
	typed := pkgerrors.As(err)
	if typed != nil && typed.Code() == pkgerrors.CodeValidation {
		writeProxyResponse(m, w, quoteEndpoint, http.StatusBadRequest, map[string]any{
			"error":   "Bad Request",
			"message": typed.Message(),
		})
		return
	}

	// Transport and upstream failures are a 500 on this endpoint; the
	// full error stays in the server logs.
	writeProxyResponse(m, w, quoteEndpoint, http.StatusInternalServerError, map[string]any{
		"success": false,
		"error":   "Failed to create draft order",
		"message": publicUpstreamMessage(err),
	})
}

func publicUpstreamMessage(err error) string {
	if typed := pkgerrors.As(err); typed != nil {
		return typed.Message()
	}
	return "upstream error"
}
