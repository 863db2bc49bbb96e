package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/offerhubhq/offerhub-backend/pkg/enums"
)

// Merchant owns offers, discount codes, and a subscription.
type Merchant struct {
	ID           uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Email        string           `gorm:"column:email;not null;uniqueIndex"`
	PasswordHash string           `gorm:"column:password_hash;not null"`
	BusinessName string           `gorm:"column:business_name;not null"`
	Role         enums.MemberRole `gorm:"column:role;type:member_role;not null;default:'merchant'"`
	CreatedAt    time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
