package flows

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/willmisback/frontier-quote-backend/internal/shops"
	"github.com/willmisback/frontier-quote-backend/pkg/db/models"
	"github.com/willmisback/frontier-quote-backend/pkg/logger"
)

type stubShopService struct {
	settings *shops.ShopSettings
	err      error
}

func (s *stubShopService) SettingsForProxy(ctx context.Context, shopDomain string) (*shops.ShopSettings, error) {
	return s.settings, s.err
}

func (s *stubShopService) GetSettings(ctx context.Context, shopDomain string) (*models.Settings, error) {
	return nil, nil
}

func (s *stubShopService) UpdateSettings(ctx context.Context, shopDomain string, input shops.SettingsUpdate) (*models.Settings, error) {
	return nil, nil
}

func (s *stubShopService) UpdateOnboarding(ctx context.Context, shopDomain string, input shops.OnboardingUpdate) (*models.Settings, error) {
	return nil, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled})
}

func TestBuildBindsTagsToCondition(t *testing.T) {
	template := Build([]string{"Wholesale", "Net-30"})
	assert.Equal(t, "shopify/draft_order/created", template.Trigger)
	require.Len(t, template.Steps, 2)
	assert.Equal(t, []string{"Wholesale", "Net-30"}, template.Steps[0].Properties["values"])
	assert.Equal(t, []string{"send-internal-email"}, template.Steps[0].Next)
	assert.Equal(t, DefaultRecipient, template.Steps[1].Properties["recipient"])
}

func TestRenderUsesShopTags(t *testing.T) {
	svc, err := NewService(&stubShopService{settings: &shops.ShopSettings{DraftOrderTags: "Wholesale"}}, testLogger())
	require.NoError(t, err)

	filename, content, err := svc.Render(context.Background(), "acme.myshopify.com")
	require.NoError(t, err)
	assert.Equal(t, Filename, filename)

	var decoded Template
	require.NoError(t, json.Unmarshal(content, &decoded))
	condition := decoded.Steps[0].Properties["values"]
	assert.Equal(t, []any{"Wholesale"}, condition)
}

func TestRenderUnknownShopFallsBackToDefaultTag(t *testing.T) {
	svc, err := NewService(&stubShopService{settings: nil}, testLogger())
	require.NoError(t, err)

	_, content, err := svc.Render(context.Background(), "nobody.myshopify.com")
	require.NoError(t, err)

	var decoded Template
	require.NoError(t, json.Unmarshal(content, &decoded))
	assert.Equal(t, []any{"International-Quote"}, decoded.Steps[0].Properties["values"])
}
