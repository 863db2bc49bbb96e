package discounts

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/offerhubhq/offerhub-backend/pkg/db"
	"github.com/offerhubhq/offerhub-backend/pkg/db/models"
	"github.com/offerhubhq/offerhub-backend/pkg/enums"
	pkgerrors "github.com/offerhubhq/offerhub-backend/pkg/errors"
)

type offerFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Offer, error)
}

type validationObserver interface {
	ObserveValidation(outcome string)
}

// Service defines the discount code surface.
type Service interface {
	Validate(ctx context.Context, rawCode string, orderValue decimal.Decimal) (*ValidationResult, error)
	Create(ctx context.Context, merchantID uuid.UUID, input CreateCodeInput) (*models.DiscountCode, error)
	Update(ctx context.Context, merchantID, codeID uuid.UUID, input UpdateCodeInput) (*models.DiscountCode, error)
	GetForMerchant(ctx context.Context, merchantID, codeID uuid.UUID) (*models.DiscountCode, error)
	ListByMerchant(ctx context.Context, merchantID uuid.UUID) ([]models.DiscountCode, error)
	Deactivate(ctx context.Context, merchantID, codeID uuid.UUID) (*models.DiscountCode, error)
}

// ServiceParams groups dependencies for the discount service.
type ServiceParams struct {
	Repo    Repository
	Offers  offerFinder
	Cache   Cache
	Metrics validationObserver
	Now     func() time.Time
}

// ValidationResult reports whether a code applies to an order and, when it
// does, the computed discount amount.
type ValidationResult struct {
	Valid  bool
	Reason enums.RejectionReason
	Amount decimal.Decimal
	Code   *models.DiscountCode
}

// CreateCodeInput captures the data required to mint a discount code.
type CreateCodeInput struct {
	Code              string
	OfferID           *uuid.UUID
	DiscountType      enums.DiscountType
	DiscountValue     decimal.Decimal
	MinimumOrderValue decimal.Decimal
	MaxUses           *int
	StartDate         time.Time
	EndDate           *time.Time
}

// UpdateCodeInput carries partial code changes. The code string, type, and
// value are immutable after creation; merchants mint a new code instead.
type UpdateCodeInput struct {
	MinimumOrderValue *decimal.Decimal
	MaxUses           *int
	ClearMaxUses      bool
	EndDate           *time.Time
	ClearEndDate      bool
	IsActive          *bool
}

type service struct {
	repo    Repository
	offers  offerFinder
	cache   Cache
	metrics validationObserver
	now     func() time.Time
}

// NewService builds a discount service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("discount repo required")
	}
	if params.Offers == nil {
		return nil, fmt.Errorf("offer finder required")
	}
	cache := params.Cache
	if cache == nil {
		cache = NopCache{}
	}
	now := params.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &service{
		repo:    params.Repo,
		offers:  params.Offers,
		cache:   cache,
		metrics: params.Metrics,
		now:     now,
	}, nil
}

// Validate runs the full check sequence for a code against an order value.
// A failing check is not a transport error; the result carries the typed
// rejection reason so checkout can surface it to the shopper.
func (s *service) Validate(ctx context.Context, rawCode string, orderValue decimal.Decimal) (*ValidationResult, error) {
	if orderValue.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order value must not be negative")
	}

	normalized := NormalizeCode(rawCode)
	if normalized == "" {
		return s.rejection(enums.RejectionCodeNotFound), nil
	}

	code, err := s.lookup(ctx, normalized)
	if err != nil {
		return nil, err
	}

	var offer *models.Offer
	if code != nil && code.OfferID != nil {
		offer, err = s.offers.FindByID(ctx, *code.OfferID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup offer for code")
		}
	}

	eval := Evaluate(code, offer, orderValue, s.now())
	if !eval.Valid {
		return s.rejection(eval.Reason), nil
	}

	s.observe("accepted")
	return &ValidationResult{Valid: true, Amount: eval.Amount, Code: code}, nil
}

// Create mints a new code for the merchant. The code string is stored
// normalized; collisions with existing codes surface as conflicts.
func (s *service) Create(ctx context.Context, merchantID uuid.UUID, input CreateCodeInput) (*models.DiscountCode, error) {
	if merchantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "merchant id is required")
	}
	normalized := NormalizeCode(input.Code)
	if err := input.validate(normalized); err != nil {
		return nil, err
	}

	if input.OfferID != nil {
		offer, err := s.offers.FindByID(ctx, *input.OfferID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup offer for code")
		}
		if offer == nil {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "offer not found")
		}
		if offer.MerchantID != merchantID {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "offer belongs to another merchant")
		}
	}

	code := &models.DiscountCode{
		MerchantID:        merchantID,
		OfferID:           input.OfferID,
		Code:              normalized,
		DiscountType:      input.DiscountType,
		DiscountValue:     input.DiscountValue,
		MinimumOrderValue: input.MinimumOrderValue,
		MaxUses:           input.MaxUses,
		StartDate:         input.StartDate,
		EndDate:           input.EndDate,
		IsActive:          true,
	}
	if err := s.repo.Create(ctx, code); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "code already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist code")
	}
	return code, nil
}

// Update applies partial changes to a merchant's own code and drops any
// cached copy so checkout sees the change immediately.
func (s *service) Update(ctx context.Context, merchantID, codeID uuid.UUID, input UpdateCodeInput) (*models.DiscountCode, error) {
	code, err := s.loadOwned(ctx, merchantID, codeID)
	if err != nil {
		return nil, err
	}

	if input.MinimumOrderValue != nil {
		if input.MinimumOrderValue.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "minimum order value must not be negative")
		}
		code.MinimumOrderValue = *input.MinimumOrderValue
	}
	if input.ClearMaxUses {
		code.MaxUses = nil
	} else if input.MaxUses != nil {
		if *input.MaxUses < code.UsageCount {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "max uses cannot be below current usage count")
		}
		code.MaxUses = input.MaxUses
	}
	if input.ClearEndDate {
		code.EndDate = nil
	} else if input.EndDate != nil {
		code.EndDate = input.EndDate
	}
	if code.EndDate != nil && !code.EndDate.After(code.StartDate) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "end date must be after start date")
	}
	if input.IsActive != nil {
		code.IsActive = *input.IsActive
	}

	if err := s.repo.Update(ctx, code); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist code")
	}
	s.cache.InvalidateCode(ctx, code.Code)
	return code, nil
}

// GetForMerchant returns one of the merchant's own codes.
func (s *service) GetForMerchant(ctx context.Context, merchantID, codeID uuid.UUID) (*models.DiscountCode, error) {
	return s.loadOwned(ctx, merchantID, codeID)
}

// ListByMerchant returns the merchant's codes, newest first.
func (s *service) ListByMerchant(ctx context.Context, merchantID uuid.UUID) ([]models.DiscountCode, error) {
	if merchantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "merchant id is required")
	}
	codes, err := s.repo.ListByMerchant(ctx, merchantID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list codes")
	}
	return codes, nil
}

// Deactivate turns a code off. Codes are never hard-deleted; redemption rows
// reference them for the audit trail.
func (s *service) Deactivate(ctx context.Context, merchantID, codeID uuid.UUID) (*models.DiscountCode, error) {
	code, err := s.loadOwned(ctx, merchantID, codeID)
	if err != nil {
		return nil, err
	}
	if !code.IsActive {
		return code, nil
	}
	code.IsActive = false
	if err := s.repo.Update(ctx, code); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist code")
	}
	s.cache.InvalidateCode(ctx, code.Code)
	return code, nil
}

func (s *service) lookup(ctx context.Context, normalized string) (*models.DiscountCode, error) {
	if cached, ok := s.cache.GetCode(ctx, normalized); ok {
		return cached, nil
	}
	code, err := s.repo.FindByCode(ctx, normalized)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup code")
	}
	if code != nil {
		s.cache.SetCode(ctx, code)
	}
	return code, nil
}

func (s *service) loadOwned(ctx context.Context, merchantID, codeID uuid.UUID) (*models.DiscountCode, error) {
	if merchantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "merchant id is required")
	}
	if codeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "code id is required")
	}
	code, err := s.repo.FindByID(ctx, codeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup code")
	}
	if code == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "code not found")
	}
	if code.MerchantID != merchantID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "code belongs to another merchant")
	}
	return code, nil
}

func (s *service) rejection(reason enums.RejectionReason) *ValidationResult {
	s.observe(reason.String())
	return &ValidationResult{Reason: reason, Amount: decimal.Zero}
}

func (s *service) observe(outcome string) {
	if s.metrics != nil {
		s.metrics.ObserveValidation(outcome)
	}
}

func (in CreateCodeInput) validate(normalized string) error {
	if normalized == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "code is required")
	}
	if strings.ContainsAny(normalized, " \t") {
		return pkgerrors.New(pkgerrors.CodeValidation, "code must not contain whitespace")
	}
	if !in.DiscountType.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid discount type")
	}
	if !in.DiscountValue.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "discount value must be positive")
	}
	if in.DiscountType == enums.DiscountTypePercentage && in.DiscountValue.GreaterThan(hundred) {
		return pkgerrors.New(pkgerrors.CodeValidation, "percentage discount cannot exceed 100")
	}
	if in.MinimumOrderValue.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "minimum order value must not be negative")
	}
	if in.MaxUses != nil && *in.MaxUses < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "max uses must be at least 1")
	}
	if in.StartDate.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "start date is required")
	}
	if in.EndDate != nil && !in.EndDate.After(in.StartDate) {
		return pkgerrors.New(pkgerrors.CodeValidation, "end date must be after start date")
	}
	return nil
}
