package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/offerhubhq/offerhub-backend/api/responses"
	"github.com/offerhubhq/offerhub-backend/api/validators"
	"github.com/offerhubhq/offerhub-backend/internal/subscriptions"
	"github.com/offerhubhq/offerhub-backend/pkg/db/models"
	"github.com/offerhubhq/offerhub-backend/pkg/enums"
	pkgerrors "github.com/offerhubhq/offerhub-backend/pkg/errors"
	"github.com/offerhubhq/offerhub-backend/pkg/logger"
)

// PlanList returns every purchasable plan, cheapest first. Public so the
// pricing page can render without auth.
func PlanList(svc subscriptions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "subscription service unavailable"))
			return
		}

		plans, err := svc.ListPlans(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items := make([]planResponse, 0, len(plans))
		for i := range plans {
			items = append(items, planToResponse(&plans[i]))
		}
		responses.WriteSuccess(w, map[string]any{"items": items})
	}
}

type planCreateRequest struct {
	Name          string          `json:"name" validate:"required"`
	OfferLimit    *int            `json:"offer_limit"`
	BillingPeriod string          `json:"billing_period" validate:"required,oneof=monthly yearly"`
	Price         decimal.Decimal `json:"price" validate:"required"`
	Features      []string        `json:"features"`
	IsDefault     bool            `json:"is_default"`
}

func (r planCreateRequest) toInput() (subscriptions.CreatePlanInput, error) {
	period, err := enums.ParseBillingPeriod(strings.TrimSpace(r.BillingPeriod))
	if err != nil {
		return subscriptions.CreatePlanInput{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid billing period")
	}

	return subscriptions.CreatePlanInput{
		Name:          strings.TrimSpace(r.Name),
		OfferLimit:    r.OfferLimit,
		BillingPeriod: period,
		Price:         r.Price,
		Features:      r.Features,
		IsDefault:     r.IsDefault,
	}, nil
}

// PlanCreate defines a new purchasable plan.
func PlanCreate(svc subscriptions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "subscription service unavailable"))
			return
		}

		var payload planCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := svc.CreatePlan(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, planToResponse(created))
	}
}

type planUpdateRequest struct {
	Name       *string          `json:"name"`
	OfferLimit *int             `json:"offer_limit"`
	ClearLimit bool             `json:"clear_offer_limit"`
	Price      *decimal.Decimal `json:"price"`
	Features   []string         `json:"features"`
	IsDefault  *bool            `json:"is_default"`
}

func (r planUpdateRequest) toInput() subscriptions.UpdatePlanInput {
	return subscriptions.UpdatePlanInput{
		Name:       r.Name,
		OfferLimit: r.OfferLimit,
		ClearLimit: r.ClearLimit,
		Price:      r.Price,
		Features:   r.Features,
		IsDefault:  r.IsDefault,
	}
}

// PlanUpdate applies partial edits to a plan. Existing subscriptions keep
// the plan row they point at, so limit changes take effect immediately.
func PlanUpdate(svc subscriptions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "subscription service unavailable"))
			return
		}

		planID, err := validators.PathUUID(r, "planId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload planUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.UpdatePlan(r.Context(), planID, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, planToResponse(updated))
	}
}

type planResponse struct {
	ID            uuid.UUID           `json:"id"`
	Name          string              `json:"name"`
	OfferLimit    *int                `json:"offer_limit"`
	BillingPeriod enums.BillingPeriod `json:"billing_period"`
	Price         decimal.Decimal     `json:"price"`
	Features      []string            `json:"features"`
	IsDefault     bool                `json:"is_default"`
}

func planToResponse(plan *models.SubscriptionPlan) planResponse {
	return planResponse{
		ID:            plan.ID,
		Name:          plan.Name,
		OfferLimit:    plan.OfferLimit,
		BillingPeriod: plan.BillingPeriod,
		Price:         plan.Price,
		Features:      []string(plan.Features),
		IsDefault:     plan.IsDefault,
	}
}
