// Package analytics computes the dashboard summary from recorded quote
// requests.
package analytics

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	pkgerrors "github.com/willmisback/frontier-quote-backend/pkg/errors"
	"github.com/willmisback/frontier-quote-backend/internal/shops"
	"github.com/willmisback/frontier-quote-backend/pkg/db/models"
)

const (
	recentWindow = 30 * 24 * time.Hour
	topCountries = 5
	recentLimit  = 10
)

// CountryCount is one row of the top-countries breakdown.
type CountryCount struct {
	CountryCode string `json:"country_code"`
	Count       int64  `json:"count"`
}

// Summary is the dashboard analytics payload.
type Summary struct {
	TotalRequests  int64                 `json:"total_requests"`
	RequestsLast30 int64                 `json:"requests_last_30_days"`
	TotalCartValue decimal.Decimal       `json:"total_cart_value"`
	TopCountries   []CountryCount        `json:"top_countries"`
	Recent         []models.QuoteRequest `json:"recent_requests"`
}

// Repository runs the aggregate queries behind the summary.
type Repository interface {
	Summarize(ctx context.Context, shopID uuid.UUID) (*Summary, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns the analytics repository.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) Summarize(ctx context.Context, shopID uuid.UUID) (*Summary, error) {
	summary := &Summary{
		TopCountries: []CountryCount{},
		Recent:       []models.QuoteRequest{},
	}
	base := r.db.WithContext(ctx).Model(&models.QuoteRequest{}).Where("shop_id = ?", shopID)

	if err := base.Session(&gorm.Session{}).Count(&summary.TotalRequests).Error; err != nil {
		return nil, err
	}

	cutoff := time.Now().UTC().Add(-recentWindow)
	if err := base.Session(&gorm.Session{}).
		Where("created_at >= ?", cutoff).
		Count(&summary.RequestsLast30).Error; err != nil {
		return nil, err
	}

	var total decimal.NullDecimal
	if err := base.Session(&gorm.Session{}).
		Select("SUM(cart_total)").
		Scan(&total).Error; err != nil {
		return nil, err
	}
	if total.Valid {
		summary.TotalCartValue = total.Decimal
	}

	if err := base.Session(&gorm.Session{}).
		Select("country_code, COUNT(*) AS count").
		Where("country_code <> ''").
		Group("country_code").
		Order("count DESC").
		Limit(topCountries).
		Scan(&summary.TopCountries).Error; err != nil {
		return nil, err
	}

	if err := r.db.WithContext(ctx).
		Where("shop_id = ?", shopID).
		Order("created_at DESC").
		Limit(recentLimit).
		Find(&summary.Recent).Error; err != nil {
		return nil, err
	}

	return summary, nil
}

// Service resolves a shop domain and produces its summary.
type Service interface {
	Summary(ctx context.Context, shopDomain string) (*Summary, error)
}

type service struct {
	shops shops.Repository
	repo  Repository
}

// NewService wires the analytics dependencies.
func NewService(shopRepo shops.Repository, repo Repository) (Service, error) {
	if shopRepo == nil || repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "analytics dependencies required")
	}
	return &service{shops: shopRepo, repo: repo}, nil
}

func (s *service) Summary(ctx context.Context, shopDomain string) (*Summary, error) {
	shopDomain = shops.NormalizeShopDomain(shopDomain)
	if shopDomain == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shop domain is required")
	}

	shop, err := s.shops.GetByDomain(ctx, shopDomain)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load shop")
	}
	if shop == nil {
		// A shop with no rows yet still gets an empty summary.
		return &Summary{TopCountries: []CountryCount{}, Recent: []models.QuoteRequest{}}, nil
	}

	summary, err := s.repo.Summarize(ctx, shop.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "summarize quote requests")
	}
	return summary, nil
}
