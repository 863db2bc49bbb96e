package subscriptions

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/offerhubhq/offerhub-backend/pkg/db/models"
	"github.com/offerhubhq/offerhub-backend/pkg/enums"
	pkgerrors "github.com/offerhubhq/offerhub-backend/pkg/errors"
)

type publishedCounter interface {
	CountPublished(ctx context.Context, merchantID uuid.UUID, now time.Time) (int64, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Decision is the outcome of a quota check. A nil Limit means the merchant's
// plan places no cap on live offers.
type Decision struct {
	Allowed bool
	Current int64
	Limit   *int
}

// Service defines the plan and subscription surface.
type Service interface {
	CheckOfferQuota(ctx context.Context, merchantID uuid.UUID) (Decision, error)
	Current(ctx context.Context, merchantID uuid.UUID) (*models.MerchantSubscription, error)
	Purchase(ctx context.Context, merchantID uuid.UUID, planID uuid.UUID) (*models.MerchantSubscription, error)
	Cancel(ctx context.Context, merchantID uuid.UUID) error

	ListPlans(ctx context.Context) ([]models.SubscriptionPlan, error)
	CreatePlan(ctx context.Context, input CreatePlanInput) (*models.SubscriptionPlan, error)
	UpdatePlan(ctx context.Context, planID uuid.UUID, input UpdatePlanInput) (*models.SubscriptionPlan, error)
}

// ServiceParams groups dependencies for the subscription service.
type ServiceParams struct {
	Repo               Repository
	Offers             publishedCounter
	TransactionRunner  txRunner
	FreeTierOfferLimit int
	Now                func() time.Time
}

// CreatePlanInput captures the data required to define a plan.
type CreatePlanInput struct {
	Name          string
	OfferLimit    *int
	BillingPeriod enums.BillingPeriod
	Price         decimal.Decimal
	Features      []string
	IsDefault     bool
}

// UpdatePlanInput carries partial plan changes. Nil fields are left untouched.
type UpdatePlanInput struct {
	Name       *string
	OfferLimit *int
	ClearLimit bool
	Price      *decimal.Decimal
	Features   []string
	IsDefault  *bool
}

type service struct {
	repo      Repository
	offers    publishedCounter
	txRunner  txRunner
	freeLimit int
	now       func() time.Time
}

// NewService builds a subscription service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("subscription repo required")
	}
	if params.Offers == nil {
		return nil, fmt.Errorf("offer counter required")
	}
	if params.TransactionRunner == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.FreeTierOfferLimit < 0 {
		return nil, fmt.Errorf("free tier offer limit must not be negative")
	}
	now := params.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &service{
		repo:      params.Repo,
		offers:    params.Offers,
		txRunner:  params.TransactionRunner,
		freeLimit: params.FreeTierOfferLimit,
		now:       now,
	}, nil
}

// CheckOfferQuota resolves the merchant's effective offer limit and compares
// it against their live offer count. Merchants without an active subscription
// fall back to the free tier limit.
func (s *service) CheckOfferQuota(ctx context.Context, merchantID uuid.UUID) (Decision, error) {
	if merchantID == uuid.Nil {
		return Decision{}, pkgerrors.New(pkgerrors.CodeValidation, "merchant id is required")
	}

	now := s.now()
	limit, err := s.effectiveLimit(ctx, merchantID, now)
	if err != nil {
		return Decision{}, err
	}

	current, err := s.offers.CountPublished(ctx, merchantID, now)
	if err != nil {
		return Decision{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count published offers")
	}

	decision := Decision{Current: current, Limit: limit}
	decision.Allowed = limit == nil || current < int64(*limit)
	return decision, nil
}

// Current returns the merchant's latest subscription with its status derived
// at call time, or nil when the merchant has never subscribed. The stored row
// is not touched; reads are side-effect free.
func (s *service) Current(ctx context.Context, merchantID uuid.UUID) (*models.MerchantSubscription, error) {
	if merchantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "merchant id is required")
	}

	sub, err := s.repo.FindActiveByMerchant(ctx, merchantID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup subscription")
	}
	if sub == nil {
		return nil, nil
	}
	sub.Status = DeriveStatus(sub, s.now())
	return sub, nil
}

// Purchase starts a subscription on the given plan. Any existing active
// subscription is cancelled in the same transaction so the merchant never
// holds two at once; the old row stays in the billing trail.
func (s *service) Purchase(ctx context.Context, merchantID uuid.UUID, planID uuid.UUID) (*models.MerchantSubscription, error) {
	if merchantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "merchant id is required")
	}
	if planID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "plan id is required")
	}

	plan, err := s.repo.FindPlanByID(ctx, planID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup plan")
	}
	if plan == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "plan not found")
	}

	now := s.now()
	end := periodEnd(now, plan.BillingPeriod)
	sub := &models.MerchantSubscription{
		MerchantID: merchantID,
		PlanID:     plan.ID,
		Status:     enums.SubscriptionStatusActive,
		StartDate:  now,
		EndDate:    &end,
	}

	err = s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		if _, err := s.repo.CancelActiveWithTx(tx, merchantID, now); err != nil {
			return err
		}
		return s.repo.CreateWithTx(tx, sub)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist subscription")
	}

	sub.Plan = plan
	return sub, nil
}

// Cancel terminates the merchant's active subscription.
func (s *service) Cancel(ctx context.Context, merchantID uuid.UUID) error {
	if merchantID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "merchant id is required")
	}

	now := s.now()
	var affected int64
	err := s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		n, err := s.repo.CancelActiveWithTx(tx, merchantID, now)
		if err != nil {
			return err
		}
		affected = n
		return nil
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist cancellation")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "no active subscription")
	}
	return nil
}

// ListPlans returns all plans ordered by price.
func (s *service) ListPlans(ctx context.Context) ([]models.SubscriptionPlan, error) {
	plans, err := s.repo.ListPlans(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list plans")
	}
	return plans, nil
}

// CreatePlan defines a new purchasable plan.
func (s *service) CreatePlan(ctx context.Context, input CreatePlanInput) (*models.SubscriptionPlan, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "plan name is required")
	}
	if !input.BillingPeriod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid billing period")
	}
	if input.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
	}
	if input.OfferLimit != nil && *input.OfferLimit < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "offer limit must not be negative")
	}

	plan := &models.SubscriptionPlan{
		Name:          name,
		OfferLimit:    input.OfferLimit,
		BillingPeriod: input.BillingPeriod,
		Price:         input.Price,
		Features:      input.Features,
		IsDefault:     input.IsDefault,
	}
	if err := s.repo.CreatePlan(ctx, plan); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist plan")
	}
	return plan, nil
}

// UpdatePlan applies partial changes to an existing plan. Changing a plan
// never rewrites subscriptions already sold against it.
func (s *service) UpdatePlan(ctx context.Context, planID uuid.UUID, input UpdatePlanInput) (*models.SubscriptionPlan, error) {
	if planID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "plan id is required")
	}

	plan, err := s.repo.FindPlanByID(ctx, planID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup plan")
	}
	if plan == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "plan not found")
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "plan name is required")
		}
		plan.Name = name
	}
	if input.ClearLimit {
		plan.OfferLimit = nil
	} else if input.OfferLimit != nil {
		if *input.OfferLimit < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "offer limit must not be negative")
		}
		plan.OfferLimit = input.OfferLimit
	}
	if input.Price != nil {
		if input.Price.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
		}
		plan.Price = *input.Price
	}
	if input.Features != nil {
		plan.Features = input.Features
	}
	if input.IsDefault != nil {
		plan.IsDefault = *input.IsDefault
	}

	if err := s.repo.UpdatePlan(ctx, plan); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist plan")
	}
	return plan, nil
}

// effectiveLimit resolves the offer cap in force for a merchant right now.
func (s *service) effectiveLimit(ctx context.Context, merchantID uuid.UUID, now time.Time) (*int, error) {
	sub, err := s.repo.FindActiveByMerchant(ctx, merchantID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup subscription")
	}
	if sub == nil || DeriveStatus(sub, now) != enums.SubscriptionStatusActive {
		free := s.freeLimit
		return &free, nil
	}
	if sub.Plan == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "subscription plan not loaded")
	}
	return sub.Plan.OfferLimit, nil
}

func periodEnd(start time.Time, period enums.BillingPeriod) time.Time {
	if period == enums.BillingPeriodYearly {
		return start.AddDate(1, 0, 0)
	}
	return start.AddDate(0, 1, 0)
}
