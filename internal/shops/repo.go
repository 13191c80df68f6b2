package shops

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/willmisback/frontier-quote-backend/pkg/db/models"
)

// Repository exposes persistence helpers for shops and their settings.
type Repository interface {
	GetByDomain(ctx context.Context, shopDomain string) (*models.Shop, error)
	GetOrCreateByDomain(ctx context.Context, shopDomain string) (*models.Shop, error)
	SaveSettings(ctx context.Context, settings *models.Settings) error
	CreateQuoteRequest(ctx context.Context, record *models.QuoteRequest) error
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a shops repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

// GetByDomain loads a shop with its settings. A missing shop returns
// (nil, nil); the proxy path treats that as a soft default, not an error.
func (r *repositoryImpl) GetByDomain(ctx context.Context, shopDomain string) (*models.Shop, error) {
	var shop models.Shop
	err := r.db.WithContext(ctx).
		Preload("Settings").
		Where("shop_domain = ?", shopDomain).
		First(&shop).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &shop, nil
}

func (r *repositoryImpl) GetOrCreateByDomain(ctx context.Context, shopDomain string) (*models.Shop, error) {
	shop, err := r.GetByDomain(ctx, shopDomain)
	if err != nil {
		return nil, err
	}
	if shop != nil && shop.Settings != nil {
		return shop, nil
	}

	if shop == nil {
		shop = &models.Shop{ShopDomain: shopDomain}
		if err := r.db.WithContext(ctx).Create(shop).Error; err != nil {
			return nil, err
		}
	}

	if shop.Settings == nil {
		settings := &models.Settings{ShopID: shop.ID}
		if err := r.db.WithContext(ctx).Create(settings).Error; err != nil {
			return nil, err
		}
		shop.Settings = settings
	}

	return shop, nil
}

func (r *repositoryImpl) SaveSettings(ctx context.Context, settings *models.Settings) error {
	if settings == nil || settings.ShopID == uuid.Nil {
		return errors.New("settings with shop id required")
	}
	settings.UpdatedAt = time.Now().UTC()
	return r.db.WithContext(ctx).Save(settings).Error
}

func (r *repositoryImpl) CreateQuoteRequest(ctx context.Context, record *models.QuoteRequest) error {
	return r.db.WithContext(ctx).Create(record).Error
}
