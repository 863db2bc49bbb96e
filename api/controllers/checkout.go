package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/offerhubhq/offerhub-backend/api/responses"
	"github.com/offerhubhq/offerhub-backend/api/validators"
	"github.com/offerhubhq/offerhub-backend/internal/discounts"
	"github.com/offerhubhq/offerhub-backend/internal/redemptions"
	pkgerrors "github.com/offerhubhq/offerhub-backend/pkg/errors"
	"github.com/offerhubhq/offerhub-backend/pkg/logger"
)

type checkoutRequest struct {
	Code       string          `json:"code" validate:"required"`
	OrderValue decimal.Decimal `json:"order_value" validate:"required"`
}

// CheckoutValidate dry-runs a discount code against an order value. A
// rejected code is a 200 with valid=false, not an error.
func CheckoutValidate(svc discounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "discount service unavailable"))
			return
		}

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Validate(r.Context(), payload.Code, payload.OrderValue)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, validationToResponse(result))
	}
}

// CheckoutRedeem validates and consumes one use of a discount code. A lost
// race against a concurrent redeemer surfaces as a conflict error.
func CheckoutRedeem(svc redemptions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "redemption service unavailable"))
			return
		}

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Redeem(r.Context(), payload.Code, payload.OrderValue)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, redeemToResponse(result))
	}
}

type validationResponse struct {
	Valid          bool            `json:"valid"`
	Reason         string          `json:"reason,omitempty"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	Code           string          `json:"code,omitempty"`
}

func validationToResponse(result *discounts.ValidationResult) validationResponse {
	resp := validationResponse{
		Valid:          result.Valid,
		DiscountAmount: result.Amount,
	}
	if !result.Valid {
		resp.Reason = result.Reason.String()
	}
	if result.Code != nil {
		resp.Code = result.Code.Code
	}
	return resp
}

type redeemResponse struct {
	Valid          bool            `json:"valid"`
	Reason         string          `json:"reason,omitempty"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	RedemptionID   *uuid.UUID      `json:"redemption_id,omitempty"`
}

func redeemToResponse(result *redemptions.Result) redeemResponse {
	resp := redeemResponse{
		Valid:          result.Valid,
		DiscountAmount: result.Amount,
	}
	if !result.Valid {
		resp.Reason = result.Reason.String()
	}
	if result.Redemption != nil {
		resp.RedemptionID = &result.Redemption.ID
	}
	return resp
}
