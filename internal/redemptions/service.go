package redemptions

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/offerhubhq/offerhub-backend/internal/discounts"
	"github.com/offerhubhq/offerhub-backend/pkg/db/models"
	"github.com/offerhubhq/offerhub-backend/pkg/enums"
	pkgerrors "github.com/offerhubhq/offerhub-backend/pkg/errors"
)

type codeValidator interface {
	Validate(ctx context.Context, rawCode string, orderValue decimal.Decimal) (*discounts.ValidationResult, error)
}

type codeCache interface {
	InvalidateCode(ctx context.Context, normalized string)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type redemptionObserver interface {
	ObserveRedemption(result string)
}

// Service records discount redemptions at checkout.
type Service interface {
	Redeem(ctx context.Context, rawCode string, orderValue decimal.Decimal) (*Result, error)
}

// ServiceParams groups dependencies for the redemption service.
type ServiceParams struct {
	Repo              Repository
	Validator         codeValidator
	Cache             codeCache
	TransactionRunner txRunner
	Metrics           redemptionObserver
}

// Result reports the outcome of a redeem attempt. A rejected code is a
// normal outcome, not an error; Reason carries the typed cause.
type Result struct {
	Valid      bool
	Reason     enums.RejectionReason
	Amount     decimal.Decimal
	Redemption *models.Redemption
}

type service struct {
	repo      Repository
	validator codeValidator
	cache     codeCache
	txRunner  txRunner
	metrics   redemptionObserver
}

// NewService builds a redemption service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("redemption repo required")
	}
	if params.Validator == nil {
		return nil, fmt.Errorf("code validator required")
	}
	if params.TransactionRunner == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		repo:      params.Repo,
		validator: params.Validator,
		cache:     params.Cache,
		txRunner:  params.TransactionRunner,
		metrics:   params.Metrics,
	}, nil
}

// Redeem validates the code against the order and, when it passes, records
// the redemption: one conditional counter update plus an audit row in the
// same transaction. Losing a concurrent race for the last use surfaces as a
// conflict; the caller re-validates and retries or gives up.
func (s *service) Redeem(ctx context.Context, rawCode string, orderValue decimal.Decimal) (*Result, error) {
	validation, err := s.validator.Validate(ctx, rawCode, orderValue)
	if err != nil {
		return nil, err
	}
	if !validation.Valid {
		return &Result{Reason: validation.Reason, Amount: decimal.Zero}, nil
	}

	code := validation.Code
	redemption := &models.Redemption{
		CodeID:         code.ID,
		OfferID:        code.OfferID,
		MerchantID:     code.MerchantID,
		OrderValue:     orderValue,
		DiscountAmount: validation.Amount,
	}

	err = s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		affected, err := s.repo.ApplyWithTx(tx, code.ID, validation.Amount)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "apply redemption")
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, "code was exhausted or deactivated, re-validate").
				WithDetails(map[string]any{"code": code.Code})
		}
		return s.repo.RecordWithTx(tx, redemption)
	})
	if err != nil {
		if appErr := pkgerrors.As(err); appErr != nil && appErr.Code() == pkgerrors.CodeConflict {
			s.observe("conflict")
			s.invalidate(ctx, code.Code)
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist redemption")
	}

	s.observe("ok")
	s.invalidate(ctx, code.Code)
	return &Result{Valid: true, Amount: validation.Amount, Redemption: redemption}, nil
}

func (s *service) observe(result string) {
	if s.metrics != nil {
		s.metrics.ObserveRedemption(result)
	}
}

func (s *service) invalidate(ctx context.Context, normalized string) {
	if s.cache != nil {
		s.cache.InvalidateCode(ctx, normalized)
	}
}
