package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Offer is a merchant-published deal. Moderation/expiry state is never stored;
// it is derived from the flags below plus the caller's clock.
type Offer struct {
	ID                 uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	MerchantID         uuid.UUID        `gorm:"column:merchant_id;type:uuid;not null;index"`
	Category           string           `gorm:"column:category;not null;index"`
	Title              string           `gorm:"column:title;not null"`
	Description        string           `gorm:"column:description"`
	ImageURL           *string          `gorm:"column:image_url"`
	OriginalPrice      *decimal.Decimal `gorm:"column:original_price;type:numeric(12,2)"`
	DiscountedPrice    decimal.Decimal  `gorm:"column:discounted_price;type:numeric(12,2);not null"`
	DiscountPercentage *int             `gorm:"column:discount_percentage"`
	StartDate          time.Time        `gorm:"column:start_date;not null"`
	EndDate            *time.Time       `gorm:"column:end_date"`
	IsApproved         bool             `gorm:"column:is_approved;not null;default:false"`
	IsActive           bool             `gorm:"column:is_active;not null;default:true"`
	IsFeatured         bool             `gorm:"column:is_featured;not null;default:false"`
	RejectedAt         *time.Time       `gorm:"column:rejected_at"`
	CreatedAt          time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
