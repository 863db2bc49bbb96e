package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Redemption is the audit record written alongside each successful counter
// update. Append-only.
type Redemption struct {
	ID             uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	CodeID         uuid.UUID       `gorm:"column:code_id;type:uuid;not null;index"`
	OfferID        *uuid.UUID      `gorm:"column:offer_id;type:uuid"`
	MerchantID     uuid.UUID       `gorm:"column:merchant_id;type:uuid;not null;index"`
	OrderValue     decimal.Decimal `gorm:"column:order_value;type:numeric(12,2);not null"`
	DiscountAmount decimal.Decimal `gorm:"column:discount_amount;type:numeric(12,2);not null"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime"`
}
