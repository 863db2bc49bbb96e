package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/offerhubhq/offerhub-backend/api/middleware"
	"github.com/offerhubhq/offerhub-backend/api/responses"
	"github.com/offerhubhq/offerhub-backend/api/validators"
	"github.com/offerhubhq/offerhub-backend/internal/subscriptions"
	"github.com/offerhubhq/offerhub-backend/pkg/db/models"
	"github.com/offerhubhq/offerhub-backend/pkg/enums"
	pkgerrors "github.com/offerhubhq/offerhub-backend/pkg/errors"
	"github.com/offerhubhq/offerhub-backend/pkg/logger"
)

// SubscriptionCurrent returns the authenticated merchant's subscription, or
// a null subscription when the merchant is on the free tier.
func SubscriptionCurrent(svc subscriptions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "subscription service unavailable"))
			return
		}

		merchantID := middleware.MerchantIDFromContext(r.Context())
		if merchantID == uuid.Nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "merchant context missing"))
			return
		}

		sub, err := svc.Current(r.Context(), merchantID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if sub == nil {
			responses.WriteSuccess(w, map[string]any{"subscription": nil})
			return
		}
		responses.WriteSuccess(w, map[string]any{"subscription": subscriptionToResponse(sub)})
	}
}

type purchaseRequest struct {
	PlanID string `json:"plan_id" validate:"required,uuid"`
}

// SubscriptionPurchase puts the merchant on a plan. Any prior active
// subscription is cancelled in the same transaction.
func SubscriptionPurchase(svc subscriptions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "subscription service unavailable"))
			return
		}

		merchantID := middleware.MerchantIDFromContext(r.Context())
		if merchantID == uuid.Nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "merchant context missing"))
			return
		}

		var payload purchaseRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		planID, err := uuid.Parse(payload.PlanID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid plan_id"))
			return
		}

		sub, err := svc.Purchase(r.Context(), merchantID, planID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, subscriptionToResponse(sub))
	}
}

// SubscriptionCancel cancels the merchant's active subscription, dropping
// them back to the free tier.
func SubscriptionCancel(svc subscriptions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "subscription service unavailable"))
			return
		}

		merchantID := middleware.MerchantIDFromContext(r.Context())
		if merchantID == uuid.Nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "merchant context missing"))
			return
		}

		if err := svc.Cancel(r.Context(), merchantID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "cancelled"})
	}
}

// MerchantQuota reports how many live offers the merchant has against their
// plan's limit.
func MerchantQuota(svc subscriptions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "subscription service unavailable"))
			return
		}

		merchantID := middleware.MerchantIDFromContext(r.Context())
		if merchantID == uuid.Nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "merchant context missing"))
			return
		}

		decision, err := svc.CheckOfferQuota(r.Context(), merchantID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, quotaResponse{
			Current: decision.Current,
			Limit:   decision.Limit,
			Allowed: decision.Allowed,
		})
	}
}

type quotaResponse struct {
	Current int64 `json:"current"`
	Limit   *int  `json:"limit"`
	Allowed bool  `json:"allowed"`
}

type subscriptionResponse struct {
	ID         uuid.UUID                `json:"id"`
	MerchantID uuid.UUID                `json:"merchant_id"`
	PlanID     uuid.UUID                `json:"plan_id"`
	Status     enums.SubscriptionStatus `json:"status"`
	StartDate  time.Time                `json:"start_date"`
	EndDate    *time.Time               `json:"end_date,omitempty"`
	CanceledAt *time.Time               `json:"canceled_at,omitempty"`
	Plan       *planResponse            `json:"plan,omitempty"`
}

func subscriptionToResponse(sub *models.MerchantSubscription) subscriptionResponse {
	resp := subscriptionResponse{
		ID:         sub.ID,
		MerchantID: sub.MerchantID,
		PlanID:     sub.PlanID,
		Status:     sub.Status,
		StartDate:  sub.StartDate,
		EndDate:    sub.EndDate,
		CanceledAt: sub.CanceledAt,
	}
	if sub.Plan != nil {
		plan := planToResponse(sub.Plan)
		resp.Plan = &plan
	}
	return resp
}
