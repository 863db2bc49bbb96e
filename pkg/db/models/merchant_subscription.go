package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/offerhubhq/offerhub-backend/pkg/enums"
)

// MerchantSubscription binds a merchant to a plan for a billing window.
// Records are never edited after creation except to flip Status to cancelled;
// upgrades create a fresh row so the billing trail survives.
type MerchantSubscription struct {
	ID         uuid.UUID                `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	MerchantID uuid.UUID                `gorm:"column:merchant_id;type:uuid;not null;index"`
	PlanID     uuid.UUID                `gorm:"column:plan_id;type:uuid;not null"`
	Status     enums.SubscriptionStatus `gorm:"column:status;type:subscription_status;not null;default:'active'"`
	StartDate  time.Time                `gorm:"column:start_date;not null"`
	EndDate    *time.Time               `gorm:"column:end_date"`
	CanceledAt *time.Time               `gorm:"column:canceled_at"`
	CreatedAt  time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time                `gorm:"column:updated_at;autoUpdateTime"`

	Plan *SubscriptionPlan `gorm:"foreignKey:PlanID"`
}
