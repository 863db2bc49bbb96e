package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/offerhubhq/offerhub-backend/api/middleware"
	"github.com/offerhubhq/offerhub-backend/api/responses"
	"github.com/offerhubhq/offerhub-backend/api/validators"
	"github.com/offerhubhq/offerhub-backend/internal/discounts"
	"github.com/offerhubhq/offerhub-backend/pkg/db/models"
	"github.com/offerhubhq/offerhub-backend/pkg/enums"
	pkgerrors "github.com/offerhubhq/offerhub-backend/pkg/errors"
	"github.com/offerhubhq/offerhub-backend/pkg/logger"
)

type codeCreateRequest struct {
	Code              string           `json:"code" validate:"required"`
	OfferID           *string          `json:"offer_id"`
	DiscountType      string           `json:"discount_type" validate:"required,oneof=fixed percentage"`
	DiscountValue     decimal.Decimal  `json:"discount_value" validate:"required"`
	MinimumOrderValue *decimal.Decimal `json:"minimum_order_value"`
	MaxUses           *int             `json:"max_uses"`
	StartDate         time.Time        `json:"start_date" validate:"required"`
	EndDate           *time.Time       `json:"end_date"`
}

func (r codeCreateRequest) toInput() (discounts.CreateCodeInput, error) {
	discountType, err := enums.ParseDiscountType(strings.TrimSpace(r.DiscountType))
	if err != nil {
		return discounts.CreateCodeInput{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid discount type")
	}

	var offerID *uuid.UUID
	if r.OfferID != nil {
		parsed, err := uuid.Parse(strings.TrimSpace(*r.OfferID))
		if err != nil {
			return discounts.CreateCodeInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid offer_id")
		}
		offerID = &parsed
	}

	minimum := decimal.Zero
	if r.MinimumOrderValue != nil {
		minimum = *r.MinimumOrderValue
	}

	return discounts.CreateCodeInput{
		Code:              r.Code,
		OfferID:           offerID,
		DiscountType:      discountType,
		DiscountValue:     r.DiscountValue,
		MinimumOrderValue: minimum,
		MaxUses:           r.MaxUses,
		StartDate:         r.StartDate,
		EndDate:           r.EndDate,
	}, nil
}

// DiscountCodeCreate mints a discount code for the authenticated merchant.
func DiscountCodeCreate(svc discounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "discount service unavailable"))
			return
		}

		merchantID := middleware.MerchantIDFromContext(r.Context())
		if merchantID == uuid.Nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "merchant context missing"))
			return
		}

		var payload codeCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := svc.Create(r.Context(), merchantID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, codeToResponse(created))
	}
}

// DiscountCodeList returns every code owned by the authenticated merchant.
func DiscountCodeList(svc discounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "discount service unavailable"))
			return
		}

		merchantID := middleware.MerchantIDFromContext(r.Context())
		if merchantID == uuid.Nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "merchant context missing"))
			return
		}

		list, err := svc.ListByMerchant(r.Context(), merchantID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items := make([]codeResponse, 0, len(list))
		for i := range list {
			items = append(items, codeToResponse(&list[i]))
		}
		responses.WriteSuccess(w, map[string]any{"items": items})
	}
}

// DiscountCodeDetail returns a single code owned by the authenticated merchant.
func DiscountCodeDetail(svc discounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "discount service unavailable"))
			return
		}

		merchantID := middleware.MerchantIDFromContext(r.Context())
		if merchantID == uuid.Nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "merchant context missing"))
			return
		}

		codeID, err := validators.PathUUID(r, "codeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		code, err := svc.GetForMerchant(r.Context(), merchantID, codeID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, codeToResponse(code))
	}
}

type codeUpdateRequest struct {
	MinimumOrderValue *decimal.Decimal `json:"minimum_order_value"`
	MaxUses           *int             `json:"max_uses"`
	ClearMaxUses      bool             `json:"clear_max_uses"`
	EndDate           *time.Time       `json:"end_date"`
	ClearEndDate      bool             `json:"clear_end_date"`
	IsActive          *bool            `json:"is_active"`
}

func (r codeUpdateRequest) toInput() discounts.UpdateCodeInput {
	return discounts.UpdateCodeInput{
		MinimumOrderValue: r.MinimumOrderValue,
		MaxUses:           r.MaxUses,
		ClearMaxUses:      r.ClearMaxUses,
		EndDate:           r.EndDate,
		ClearEndDate:      r.ClearEndDate,
		IsActive:          r.IsActive,
	}
}

// DiscountCodeUpdate applies partial edits to an owned code. The code string,
// type, and value never change after creation.
func DiscountCodeUpdate(svc discounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "discount service unavailable"))
			return
		}

		merchantID := middleware.MerchantIDFromContext(r.Context())
		if merchantID == uuid.Nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "merchant context missing"))
			return
		}

		codeID, err := validators.PathUUID(r, "codeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload codeUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.Update(r.Context(), merchantID, codeID, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, codeToResponse(updated))
	}
}

type codeActiveRequest struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

// DiscountCodeSetActive toggles an owned code's active flag. Deactivating an
// already inactive code is a no-op.
func DiscountCodeSetActive(svc discounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "discount service unavailable"))
			return
		}

		merchantID := middleware.MerchantIDFromContext(r.Context())
		if merchantID == uuid.Nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "merchant context missing"))
			return
		}

		codeID, err := validators.PathUUID(r, "codeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload codeActiveRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var updated *models.DiscountCode
		if *payload.IsActive {
			updated, err = svc.Update(r.Context(), merchantID, codeID, discounts.UpdateCodeInput{IsActive: payload.IsActive})
		} else {
			updated, err = svc.Deactivate(r.Context(), merchantID, codeID)
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, codeToResponse(updated))
	}
}

type codeResponse struct {
	ID                uuid.UUID          `json:"id"`
	MerchantID        uuid.UUID          `json:"merchant_id"`
	OfferID           *uuid.UUID         `json:"offer_id,omitempty"`
	Code              string             `json:"code"`
	DiscountType      enums.DiscountType `json:"discount_type"`
	DiscountValue     decimal.Decimal    `json:"discount_value"`
	MinimumOrderValue decimal.Decimal    `json:"minimum_order_value"`
	MaxUses           *int               `json:"max_uses,omitempty"`
	UsageCount        int                `json:"usage_count"`
	TotalSavings      decimal.Decimal    `json:"total_savings"`
	StartDate         time.Time          `json:"start_date"`
	EndDate           *time.Time         `json:"end_date,omitempty"`
	IsActive          bool               `json:"is_active"`
	CreatedAt         time.Time          `json:"created_at"`
}

func codeToResponse(code *models.DiscountCode) codeResponse {
	return codeResponse{
		ID:                code.ID,
		MerchantID:        code.MerchantID,
		OfferID:           code.OfferID,
		Code:              code.Code,
		DiscountType:      code.DiscountType,
		DiscountValue:     code.DiscountValue,
		MinimumOrderValue: code.MinimumOrderValue,
		MaxUses:           code.MaxUses,
		UsageCount:        code.UsageCount,
		TotalSavings:      code.TotalSavings,
		StartDate:         code.StartDate,
		EndDate:           code.EndDate,
		IsActive:          code.IsActive,
		CreatedAt:         code.CreatedAt,
	}
}
