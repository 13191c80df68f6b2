package models

import (
	"time"

	"github.com/google/uuid"
)

// Settings stores the per-shop quote configuration.
//
// whitelist_countries, blacklist_countries and popup_fields are JSON
// serialized into text columns. The format predates this service (the
// dashboard has always written JSON strings) and the proxy path keeps
// accepting it for backward compatibility; parsing lives in
// internal/shops.
type Settings struct {
	ID     uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ShopID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`

	// RegionMode is a legacy field kept for older dashboard builds; the
	// whitelist/blacklist pair below is authoritative.
	RegionMode string `gorm:"type:text;not null;default:allow"`
	Regions    string `gorm:"type:text;not null;default:'[]'"`

	WhitelistCountries string  `gorm:"type:text;not null;default:'[]'"`
	BlacklistCountries string  `gorm:"type:text;not null;default:'[]'"`
	PopupFields        string  `gorm:"type:text;not null;default:'{}'"`
	DraftOrderTags     *string `gorm:"type:text"`
	HidePrices         bool    `gorm:"not null;default:false"`

	SetupSuccessBannerDismissed bool `gorm:"not null;default:false"`
	OnboardingComplete          bool `gorm:"not null;default:false"`

	CreatedAt time.Time `gorm:"type:timestamptz;default:now()"`
	UpdatedAt time.Time `gorm:"type:timestamptz;default:now()"`
}

func (Settings) TableName() string { return "settings" }
