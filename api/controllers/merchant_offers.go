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
	"github.com/offerhubhq/offerhub-backend/internal/offers"
	pkgerrors "github.com/offerhubhq/offerhub-backend/pkg/errors"
	"github.com/offerhubhq/offerhub-backend/pkg/logger"
)

type offerCreateRequest struct {
	Category           string           `json:"category" validate:"required"`
	Title              string           `json:"title" validate:"required"`
	Description        string           `json:"description"`
	ImageURL           *string          `json:"image_url"`
	OriginalPrice      *decimal.Decimal `json:"original_price"`
	DiscountedPrice    decimal.Decimal  `json:"discounted_price" validate:"required"`
	DiscountPercentage *int             `json:"discount_percentage"`
	StartDate          time.Time        `json:"start_date" validate:"required"`
	EndDate            *time.Time       `json:"end_date"`
	IsFeatured         bool             `json:"is_featured"`
}

func (r offerCreateRequest) toInput() offers.CreateOfferInput {
	return offers.CreateOfferInput{
		Category:           strings.TrimSpace(r.Category),
		Title:              strings.TrimSpace(r.Title),
		Description:        strings.TrimSpace(r.Description),
		ImageURL:           r.ImageURL,
		OriginalPrice:      r.OriginalPrice,
		DiscountedPrice:    r.DiscountedPrice,
		DiscountPercentage: r.DiscountPercentage,
		StartDate:          r.StartDate,
		EndDate:            r.EndDate,
		IsFeatured:         r.IsFeatured,
	}
}

// MerchantOfferCreate handles offer submission for the authenticated merchant.
// New offers always enter moderation as pending.
func MerchantOfferCreate(svc offers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "offer service unavailable"))
			return
		}

		merchantID := middleware.MerchantIDFromContext(r.Context())
		if merchantID == uuid.Nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "merchant context missing"))
			return
		}

		var payload offerCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := svc.Create(r.Context(), merchantID, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, offerToResponse(svc, created))
	}
}

// MerchantOfferList pages through the authenticated merchant's offers in
// every state.
func MerchantOfferList(svc offers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "offer service unavailable"))
			return
		}

		merchantID := middleware.MerchantIDFromContext(r.Context())
		if merchantID == uuid.Nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "merchant context missing"))
			return
		}

		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, next, err := svc.ListByMerchant(r.Context(), merchantID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, offerListToResponse(svc, list, next))
	}
}

// MerchantOfferDetail returns a single offer owned by the authenticated merchant.
func MerchantOfferDetail(svc offers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "offer service unavailable"))
			return
		}

		merchantID := middleware.MerchantIDFromContext(r.Context())
		if merchantID == uuid.Nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "merchant context missing"))
			return
		}

		offerID, err := validators.PathUUID(r, "offerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		offer, err := svc.GetForMerchant(r.Context(), merchantID, offerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, offerToResponse(svc, offer))
	}
}

type offerUpdateRequest struct {
	Category           *string          `json:"category"`
	Title              *string          `json:"title"`
	Description        *string          `json:"description"`
	ImageURL           *string          `json:"image_url"`
	OriginalPrice      *decimal.Decimal `json:"original_price"`
	DiscountedPrice    *decimal.Decimal `json:"discounted_price"`
	DiscountPercentage *int             `json:"discount_percentage"`
	StartDate          *time.Time       `json:"start_date"`
	EndDate            *time.Time       `json:"end_date"`
	ClearEndDate       bool             `json:"clear_end_date"`
	IsFeatured         *bool            `json:"is_featured"`
}

func (r offerUpdateRequest) toInput() offers.UpdateOfferInput {
	return offers.UpdateOfferInput{
		Category:           r.Category,
		Title:              r.Title,
		Description:        r.Description,
		ImageURL:           r.ImageURL,
		OriginalPrice:      r.OriginalPrice,
		DiscountedPrice:    r.DiscountedPrice,
		DiscountPercentage: r.DiscountPercentage,
		StartDate:          r.StartDate,
		EndDate:            r.EndDate,
		ClearEndDate:       r.ClearEndDate,
		IsFeatured:         r.IsFeatured,
	}
}

// MerchantOfferUpdate applies partial edits to an owned offer.
func MerchantOfferUpdate(svc offers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "offer service unavailable"))
			return
		}

		merchantID := middleware.MerchantIDFromContext(r.Context())
		if merchantID == uuid.Nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "merchant context missing"))
			return
		}

		offerID, err := validators.PathUUID(r, "offerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload offerUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.Update(r.Context(), merchantID, offerID, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, offerToResponse(svc, updated))
	}
}

type offerActiveRequest struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

// MerchantOfferSetActive toggles an owned offer's active flag. Rejected
// offers cannot be toggled.
func MerchantOfferSetActive(svc offers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "offer service unavailable"))
			return
		}

		merchantID := middleware.MerchantIDFromContext(r.Context())
		if merchantID == uuid.Nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "merchant context missing"))
			return
		}

		offerID, err := validators.PathUUID(r, "offerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload offerActiveRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.SetActive(r.Context(), merchantID, offerID, *payload.IsActive)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, offerToResponse(svc, updated))
	}
}
