package models

import (
	"time"

	"github.com/google/uuid"
)

// Shop is one installed merchant store, keyed by its myshopify domain.
type Shop struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ShopDomain string    `gorm:"type:text;not null;uniqueIndex"`
	CreatedAt  time.Time `gorm:"type:timestamptz;default:now()"`
	UpdatedAt  time.Time `gorm:"type:timestamptz;default:now()"`

	Settings *Settings `gorm:"foreignKey:ShopID"`
}

func (Shop) TableName() string { return "shops" }
