package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/offerhubhq/offerhub-backend/pkg/enums"
)

// SubscriptionPlan captures a purchasable tier. A nil OfferLimit means the
// plan places no cap on live offers.
type SubscriptionPlan struct {
	ID            uuid.UUID           `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name          string              `gorm:"column:name;not null;uniqueIndex"`
	OfferLimit    *int                `gorm:"column:offer_limit"`
	BillingPeriod enums.BillingPeriod `gorm:"column:billing_period;type:billing_period;not null"`
	Price         decimal.Decimal     `gorm:"column:price;type:numeric(12,2);not null"`
	Features      pq.StringArray      `gorm:"column:features;type:text[];default:ARRAY[]::text[]"`
	IsDefault     bool                `gorm:"column:is_default;not null;default:false"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
