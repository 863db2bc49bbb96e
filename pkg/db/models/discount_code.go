package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/offerhubhq/offerhub-backend/pkg/enums"
)

// DiscountCode is a redeemable token. Code strings are stored normalized
// (upper-cased, trimmed) so lookups are case-insensitive. UsageCount and
// TotalSavings are mutated only by the redemption recorder's conditional
// update; UsageCount never exceeds MaxUses when MaxUses is set.
type DiscountCode struct {
	ID                uuid.UUID          `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	MerchantID        uuid.UUID          `gorm:"column:merchant_id;type:uuid;not null;index"`
	OfferID           *uuid.UUID         `gorm:"column:offer_id;type:uuid;index"`
	Code              string             `gorm:"column:code;not null;uniqueIndex"`
	DiscountType      enums.DiscountType `gorm:"column:discount_type;type:discount_type;not null"`
	DiscountValue     decimal.Decimal    `gorm:"column:discount_value;type:numeric(12,2);not null"`
	MinimumOrderValue decimal.Decimal    `gorm:"column:minimum_order_value;type:numeric(12,2);not null;default:0"`
	MaxUses           *int               `gorm:"column:max_uses"`
	UsageCount        int                `gorm:"column:usage_count;not null;default:0"`
	TotalSavings      decimal.Decimal    `gorm:"column:total_savings;type:numeric(14,2);not null;default:0"`
	StartDate         time.Time          `gorm:"column:start_date;not null"`
	EndDate           *time.Time         `gorm:"column:end_date"`
	IsActive          bool               `gorm:"column:is_active;not null;default:true"`
	CreatedAt         time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
