package subscriptions

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	baserepo "github.com/offerhubhq/offerhub-backend/internal/repo"
	"github.com/offerhubhq/offerhub-backend/pkg/db/models"
	"github.com/offerhubhq/offerhub-backend/pkg/enums"
)

// Repository handles plan and subscription persistence.
type Repository interface {
	CreatePlan(ctx context.Context, plan *models.SubscriptionPlan) error
	UpdatePlan(ctx context.Context, plan *models.SubscriptionPlan) error
	FindPlanByID(ctx context.Context, id uuid.UUID) (*models.SubscriptionPlan, error)
	FindDefaultPlan(ctx context.Context) (*models.SubscriptionPlan, error)
	ListPlans(ctx context.Context) ([]models.SubscriptionPlan, error)

	FindActiveByMerchant(ctx context.Context, merchantID uuid.UUID) (*models.MerchantSubscription, error)
	ListByMerchant(ctx context.Context, merchantID uuid.UUID) ([]models.MerchantSubscription, error)
	CreateWithTx(tx *gorm.DB, sub *models.MerchantSubscription) error
	CancelActiveWithTx(tx *gorm.DB, merchantID uuid.UUID, at time.Time) (int64, error)
}

type repository struct {
	baserepo.Base
}

// NewRepository returns a subscription repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: baserepo.NewBase(db)}
}

func (r *repository) CreatePlan(ctx context.Context, plan *models.SubscriptionPlan) error {
	return r.DB(ctx).Create(plan).Error
}

func (r *repository) UpdatePlan(ctx context.Context, plan *models.SubscriptionPlan) error {
	return r.DB(ctx).Save(plan).Error
}

func (r *repository) FindPlanByID(ctx context.Context, id uuid.UUID) (*models.SubscriptionPlan, error) {
	var plan models.SubscriptionPlan
	err := r.DB(ctx).First(&plan, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *repository) FindDefaultPlan(ctx context.Context) (*models.SubscriptionPlan, error) {
	var plan models.SubscriptionPlan
	err := r.DB(ctx).First(&plan, "is_default = ?", true).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *repository) ListPlans(ctx context.Context) ([]models.SubscriptionPlan, error) {
	var plans []models.SubscriptionPlan
	err := r.DB(ctx).Order("price ASC").Find(&plans).Error
	return plans, err
}

// FindActiveByMerchant returns the merchant's stored-active subscription with
// its plan preloaded, or nil when none exists. Callers still derive the
// effective status; a stored-active row may have lapsed past its end date.
func (r *repository) FindActiveByMerchant(ctx context.Context, merchantID uuid.UUID) (*models.MerchantSubscription, error) {
	var sub models.MerchantSubscription
	err := r.DB(ctx).
		Preload("Plan").
		Where("merchant_id = ? AND status = ?", merchantID, enums.SubscriptionStatusActive).
		Order("created_at DESC").
		First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *repository) ListByMerchant(ctx context.Context, merchantID uuid.UUID) ([]models.MerchantSubscription, error) {
	var subs []models.MerchantSubscription
	err := r.DB(ctx).
		Preload("Plan").
		Where("merchant_id = ?", merchantID).
		Order("created_at DESC").
		Find(&subs).Error
	return subs, err
}

func (r *repository) CreateWithTx(tx *gorm.DB, sub *models.MerchantSubscription) error {
	return tx.Create(sub).Error
}

// CancelActiveWithTx flips any stored-active rows for the merchant to
// cancelled and reports how many were touched.
func (r *repository) CancelActiveWithTx(tx *gorm.DB, merchantID uuid.UUID, at time.Time) (int64, error) {
	res := tx.Model(&models.MerchantSubscription{}).
		Where("merchant_id = ? AND status = ?", merchantID, enums.SubscriptionStatusActive).
		Updates(map[string]any{
			"status":      enums.SubscriptionStatusCancelled,
			"canceled_at": at,
		})
	return res.RowsAffected, res.Error
}
