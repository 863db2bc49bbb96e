package offers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/offerhubhq/offerhub-backend/internal/subscriptions"
	"github.com/offerhubhq/offerhub-backend/pkg/db/models"
	"github.com/offerhubhq/offerhub-backend/pkg/enums"
	pkgerrors "github.com/offerhubhq/offerhub-backend/pkg/errors"
	"github.com/offerhubhq/offerhub-backend/pkg/pagination"
)

type quotaChecker interface {
	CheckOfferQuota(ctx context.Context, merchantID uuid.UUID) (subscriptions.Decision, error)
}

// Service defines the offer lifecycle surface.
type Service interface {
	Create(ctx context.Context, merchantID uuid.UUID, input CreateOfferInput) (*models.Offer, error)
	Update(ctx context.Context, merchantID, offerID uuid.UUID, input UpdateOfferInput) (*models.Offer, error)
	GetForMerchant(ctx context.Context, merchantID, offerID uuid.UUID) (*models.Offer, error)
	ListByMerchant(ctx context.Context, merchantID uuid.UUID, params pagination.Params) ([]models.Offer, *pagination.Cursor, error)
	ListPublic(ctx context.Context, params pagination.Params) ([]models.Offer, *pagination.Cursor, error)
	ListByState(ctx context.Context, state enums.OfferState, params pagination.Params) ([]models.Offer, *pagination.Cursor, error)
	SetActive(ctx context.Context, merchantID, offerID uuid.UUID, active bool) (*models.Offer, error)

	Approve(ctx context.Context, offerID uuid.UUID) (*models.Offer, error)
	Reject(ctx context.Context, offerID uuid.UUID) (*models.Offer, error)

	StateOf(offer *models.Offer) enums.OfferState
}

// ServiceParams groups dependencies for the offer service.
type ServiceParams struct {
	Repo  Repository
	Quota quotaChecker
	Now   func() time.Time
}

// CreateOfferInput captures the data required to publish an offer.
type CreateOfferInput struct {
	Category           string
	Title              string
	Description        string
	ImageURL           *string
	OriginalPrice      *decimal.Decimal
	DiscountedPrice    decimal.Decimal
	DiscountPercentage *int
	StartDate          time.Time
	EndDate            *time.Time
	IsFeatured         bool
}

// UpdateOfferInput carries partial offer changes. Nil fields are left
// untouched. Moderation flags are not editable here.
type UpdateOfferInput struct {
	Category           *string
	Title              *string
	Description        *string
	ImageURL           *string
	OriginalPrice      *decimal.Decimal
	DiscountedPrice    *decimal.Decimal
	DiscountPercentage *int
	StartDate          *time.Time
	EndDate            *time.Time
	ClearEndDate       bool
	IsFeatured         *bool
}

type service struct {
	repo  Repository
	quota quotaChecker
	now   func() time.Time
}

// NewService builds an offer service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("offer repo required")
	}
	if params.Quota == nil {
		return nil, fmt.Errorf("quota checker required")
	}
	now := params.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &service{repo: params.Repo, quota: params.Quota, now: now}, nil
}

// Create publishes a new offer in pending state, subject to the merchant's
// plan quota.
func (s *service) Create(ctx context.Context, merchantID uuid.UUID, input CreateOfferInput) (*models.Offer, error) {
	if merchantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "merchant id is required")
	}
	if err := input.validate(); err != nil {
		return nil, err
	}

	decision, err := s.quota.CheckOfferQuota(ctx, merchantID)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return nil, pkgerrors.New(pkgerrors.CodeQuotaExceeded, "offer limit reached for current plan").
			WithDetails(map[string]any{
				"current": decision.Current,
				"limit":   decision.Limit,
			})
	}

	offer := &models.Offer{
		MerchantID:         merchantID,
		Category:           strings.TrimSpace(input.Category),
		Title:              strings.TrimSpace(input.Title),
		Description:        strings.TrimSpace(input.Description),
		ImageURL:           input.ImageURL,
		OriginalPrice:      input.OriginalPrice,
		DiscountedPrice:    input.DiscountedPrice,
		DiscountPercentage: input.DiscountPercentage,
		StartDate:          input.StartDate,
		EndDate:            input.EndDate,
		IsActive:           true,
		IsFeatured:         input.IsFeatured,
	}
	if err := s.repo.Create(ctx, offer); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist offer")
	}
	return offer, nil
}

// Update applies partial edits to a merchant's own offer.
func (s *service) Update(ctx context.Context, merchantID, offerID uuid.UUID, input UpdateOfferInput) (*models.Offer, error) {
	offer, err := s.loadOwned(ctx, merchantID, offerID)
	if err != nil {
		return nil, err
	}

	if input.Category != nil {
		category := strings.TrimSpace(*input.Category)
		if category == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "category is required")
		}
		offer.Category = category
	}
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "title is required")
		}
		offer.Title = title
	}
	if input.Description != nil {
		offer.Description = strings.TrimSpace(*input.Description)
	}
	if input.ImageURL != nil {
		offer.ImageURL = input.ImageURL
	}
	if input.OriginalPrice != nil {
		offer.OriginalPrice = input.OriginalPrice
	}
	if input.DiscountedPrice != nil {
		if input.DiscountedPrice.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "discounted price must not be negative")
		}
		offer.DiscountedPrice = *input.DiscountedPrice
	}
	if input.DiscountPercentage != nil {
		if *input.DiscountPercentage < 1 || *input.DiscountPercentage > 100 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "discount percentage must be between 1 and 100")
		}
		offer.DiscountPercentage = input.DiscountPercentage
	}
	if input.StartDate != nil {
		offer.StartDate = *input.StartDate
	}
	if input.ClearEndDate {
		offer.EndDate = nil
	} else if input.EndDate != nil {
		offer.EndDate = input.EndDate
	}
	if offer.EndDate != nil && !offer.EndDate.After(offer.StartDate) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "end date must be after start date")
	}
	if input.IsFeatured != nil {
		offer.IsFeatured = *input.IsFeatured
	}

	if err := s.repo.Update(ctx, offer); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist offer")
	}
	return offer, nil
}

// GetForMerchant returns one of the merchant's own offers.
func (s *service) GetForMerchant(ctx context.Context, merchantID, offerID uuid.UUID) (*models.Offer, error) {
	return s.loadOwned(ctx, merchantID, offerID)
}

// ListByMerchant returns the merchant's offers, newest first.
func (s *service) ListByMerchant(ctx context.Context, merchantID uuid.UUID, params pagination.Params) ([]models.Offer, *pagination.Cursor, error) {
	if merchantID == uuid.Nil {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "merchant id is required")
	}
	rows, next, err := s.repo.ListByMerchant(ctx, merchantID, params)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list offers")
	}
	return rows, next, nil
}

// ListPublic returns live offers visible to shoppers: approved, active, and
// inside their date window at call time.
func (s *service) ListPublic(ctx context.Context, params pagination.Params) ([]models.Offer, *pagination.Cursor, error) {
	rows, next, err := s.repo.ListPublic(ctx, s.now(), params)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list public offers")
	}
	return rows, next, nil
}

// ListByState returns offers in the given derived state, for the admin
// moderation queue.
func (s *service) ListByState(ctx context.Context, state enums.OfferState, params pagination.Params) ([]models.Offer, *pagination.Cursor, error) {
	if !state.IsValid() {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid offer state")
	}
	rows, next, err := s.repo.ListByState(ctx, state, s.now(), params)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list offers by state")
	}
	return rows, next, nil
}

// SetActive toggles merchant-side visibility. Rejected offers cannot be
// reactivated; toggling an expired offer is allowed but never restores
// redeemability.
func (s *service) SetActive(ctx context.Context, merchantID, offerID uuid.UUID, active bool) (*models.Offer, error) {
	offer, err := s.loadOwned(ctx, merchantID, offerID)
	if err != nil {
		return nil, err
	}

	if state := DeriveState(offer, s.now()); state == enums.OfferStateRejected {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "rejected offers cannot be toggled").
			WithDetails(map[string]any{"state": state})
	}

	if offer.IsActive == active {
		return offer, nil
	}
	offer.IsActive = active
	if err := s.repo.Update(ctx, offer); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist offer")
	}
	return offer, nil
}

// Approve moves a pending offer to approved. Approving an already approved
// offer is a no-op success; any other state is a conflict.
func (s *service) Approve(ctx context.Context, offerID uuid.UUID) (*models.Offer, error) {
	offer, err := s.load(ctx, offerID)
	if err != nil {
		return nil, err
	}

	switch state := DeriveState(offer, s.now()); state {
	case enums.OfferStateApproved:
		return offer, nil
	case enums.OfferStatePending:
	default:
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "offer cannot be approved").
			WithDetails(map[string]any{"state": state})
	}

	offer.IsApproved = true
	if err := s.repo.Update(ctx, offer); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist offer")
	}
	return offer, nil
}

// Reject moves a pending offer to rejected. Rejection is terminal.
func (s *service) Reject(ctx context.Context, offerID uuid.UUID) (*models.Offer, error) {
	offer, err := s.load(ctx, offerID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if state := DeriveState(offer, now); state != enums.OfferStatePending {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "only pending offers can be rejected").
			WithDetails(map[string]any{"state": state})
	}

	offer.RejectedAt = &now
	if err := s.repo.Update(ctx, offer); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist offer")
	}
	return offer, nil
}

// StateOf derives the offer's state at call time, for response shaping.
func (s *service) StateOf(offer *models.Offer) enums.OfferState {
	return DeriveState(offer, s.now())
}

func (s *service) load(ctx context.Context, offerID uuid.UUID) (*models.Offer, error) {
	if offerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "offer id is required")
	}
	offer, err := s.repo.FindByID(ctx, offerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup offer")
	}
	if offer == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "offer not found")
	}
	return offer, nil
}

func (s *service) loadOwned(ctx context.Context, merchantID, offerID uuid.UUID) (*models.Offer, error) {
	if merchantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "merchant id is required")
	}
	offer, err := s.load(ctx, offerID)
	if err != nil {
		return nil, err
	}
	if offer.MerchantID != merchantID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "offer belongs to another merchant")
	}
	return offer, nil
}

func (in CreateOfferInput) validate() error {
	if strings.TrimSpace(in.Category) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "category is required")
	}
	if strings.TrimSpace(in.Title) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}
	if in.DiscountedPrice.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "discounted price must not be negative")
	}
	if in.OriginalPrice != nil && in.OriginalPrice.LessThan(in.DiscountedPrice) {
		return pkgerrors.New(pkgerrors.CodeValidation, "original price must not be below discounted price")
	}
	if in.DiscountPercentage != nil && (*in.DiscountPercentage < 1 || *in.DiscountPercentage > 100) {
		return pkgerrors.New(pkgerrors.CodeValidation, "discount percentage must be between 1 and 100")
	}
	if in.StartDate.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "start date is required")
	}
	if in.EndDate != nil && !in.EndDate.After(in.StartDate) {
		return pkgerrors.New(pkgerrors.CodeValidation, "end date must be after start date")
	}
	return nil
}
