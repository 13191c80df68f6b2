package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// QuoteRequest records one accepted quote submission. Rows feed the
// dashboard; the draft order itself lives in Shopify.
type QuoteRequest struct {
	ID     uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ShopID uuid.UUID `gorm:"type:uuid;not null;index"`

	Email       string `gorm:"type:text;not null"`
	CountryCode string `gorm:"type:text"`

	LineItemCount int             `gorm:"not null"`
	CartTotal     decimal.Decimal `gorm:"type:numeric(12,2)"`
	Tags          pq.StringArray  `gorm:"type:text[]"`

	DraftOrderID   string `gorm:"type:text;not null"`
	DraftOrderName string `gorm:"type:text"`
	InvoiceURL     string `gorm:"type:text"`

	CreatedAt time.Time `gorm:"type:timestamptz;default:now();index"`
}

func (QuoteRequest) TableName() string { return "quote_requests" }
