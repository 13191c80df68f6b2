package shopify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/willmisback/frontier-quote-backend/pkg/config"
	pkgerrors "github.com/willmisback/frontier-quote-backend/pkg/errors"
	"github.com/willmisback/frontier-quote-backend/pkg/logger"
)

func testClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := config.ShopifyConfig{
		APIVersion:    "2024-10",
		AdminTimeout:  5 * time.Second,
		AdminBaseURL:  server.URL,
		OfflineTokens: "acme.myshopify.com=shpat_test",
	}
	logg := logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled})
	client, err := NewClient(context.Background(), cfg, logg)
	require.NoError(t, err)
	return client, server
}

func TestCreateDraftOrderSuccess(t *testing.T) {
	var gotToken string
	var gotBody graphqlRequest

	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("X-Shopify-Access-Token")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		assert.Equal(t, "/admin/api/2024-10/graphql.json", r.URL.Path)

		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{
				"draftOrderCreate": map[string]any{
					"draftOrder": map[string]any{
						"id":         "gid://shopify/DraftOrder/99",
						"name":       "#D99",
						"invoiceUrl": "https://acme.myshopify.com/invoice/99",
					},
					"userErrors": []any{},
				},
			},
		})
	}))

	summary, userErrors, err := client.CreateDraftOrder(context.Background(), "acme.myshopify.com", DraftOrderInput{
		Email:     "a@b.com",
		LineItems: []DraftOrderLineItemInput{{VariantID: "gid://shopify/ProductVariant/1", Quantity: 2}},
		Tags:      []string{"International-Quote"},
	})
	require.NoError(t, err)
	assert.Empty(t, userErrors)
	require.NotNil(t, summary)
	assert.Equal(t, "gid://shopify/DraftOrder/99", summary.ID)
	assert.Equal(t, "#D99", summary.Name)
	assert.Equal(t, "https://acme.myshopify.com/invoice/99", summary.InvoiceURL)

	assert.Equal(t, "shpat_test", gotToken)
	assert.Contains(t, gotBody.Query, "draftOrderCreate")
}

func TestCreateDraftOrderUserErrors(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{
				"draftOrderCreate": map[string]any{
					"draftOrder": nil,
					"userErrors": []map[string]any{
						{"field": []string{"input", "lineItems"}, "message": "variant does not exist"},
					},
				},
			},
		})
	}))

	summary, userErrors, err := client.CreateDraftOrder(context.Background(), "acme.myshopify.com", DraftOrderInput{Email: "a@b.com"})
	require.NoError(t, err)
	assert.Nil(t, summary)
	require.Len(t, userErrors, 1)
	assert.Equal(t, "variant does not exist", userErrors[0].Message)
	assert.Equal(t, "input.lineItems: variant does not exist", JoinUserErrors(userErrors))
}

func TestCreateDraftOrderNullWithoutUserErrors(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{
				"draftOrderCreate": map[string]any{
					"draftOrder": nil,
					"userErrors": []any{},
				},
			},
		})
	}))

	summary, userErrors, err := client.CreateDraftOrder(context.Background(), "acme.myshopify.com", DraftOrderInput{Email: "a@b.com"})
	require.Error(t, err)
	assert.Nil(t, summary)
	assert.Empty(t, userErrors)
	domainErr := pkgerrors.As(err)
	require.NotNil(t, domainErr)
	assert.Equal(t, pkgerrors.CodeDependency, domainErr.Code())
}

func TestCreateDraftOrderTransportFailure(t *testing.T) {
	client, server := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	_, _, err := client.CreateDraftOrder(context.Background(), "acme.myshopify.com", DraftOrderInput{Email: "a@b.com"})
	require.Error(t, err)
	domainErr := pkgerrors.As(err)
	require.NotNil(t, domainErr)
	assert.Equal(t, pkgerrors.CodeDependency, domainErr.Code())
}

func TestCreateDraftOrderGraphQLErrors(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"errors": []map[string]any{{"message": "Throttled"}},
		})
	}))

	_, _, err := client.CreateDraftOrder(context.Background(), "acme.myshopify.com", DraftOrderInput{Email: "a@b.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Throttled")
}

func TestExecuteRejectsUnknownShop(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected without a token")
	}))

	err := client.Execute(context.Background(), "other.myshopify.com", "{ shop { name } }", nil, nil)
	require.Error(t, err)
	domainErr := pkgerrors.As(err)
	require.NotNil(t, domainErr)
	assert.Equal(t, pkgerrors.CodeDependency, domainErr.Code())
}

func TestExecuteMapsUnauthorizedStatus(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	err := client.Execute(context.Background(), "acme.myshopify.com", "{ shop { name } }", nil, nil)
	require.Error(t, err)
	domainErr := pkgerrors.As(err)
	require.NotNil(t, domainErr)
	assert.Equal(t, pkgerrors.CodeUnauthorized, domainErr.Code())
}
