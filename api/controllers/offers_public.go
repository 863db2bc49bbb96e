package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/offerhubhq/offerhub-backend/api/responses"
	"github.com/offerhubhq/offerhub-backend/api/validators"
	"github.com/offerhubhq/offerhub-backend/internal/offers"
	"github.com/offerhubhq/offerhub-backend/pkg/db/models"
	"github.com/offerhubhq/offerhub-backend/pkg/enums"
	pkgerrors "github.com/offerhubhq/offerhub-backend/pkg/errors"
	"github.com/offerhubhq/offerhub-backend/pkg/logger"
	"github.com/offerhubhq/offerhub-backend/pkg/pagination"
)

// PublicOffers lists approved, active, in-window offers for storefront browsing.
func PublicOffers(svc offers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "offer service unavailable"))
			return
		}

		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, next, err := svc.ListPublic(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, offerListToResponse(svc, list, next))
	}
}

type offerResponse struct {
	ID                 uuid.UUID        `json:"id"`
	MerchantID         uuid.UUID        `json:"merchant_id"`
	Category           string           `json:"category"`
	Title              string           `json:"title"`
	Description        string           `json:"description,omitempty"`
	ImageURL           *string          `json:"image_url,omitempty"`
	OriginalPrice      *decimal.Decimal `json:"original_price,omitempty"`
	DiscountedPrice    decimal.Decimal  `json:"discounted_price"`
	DiscountPercentage *int             `json:"discount_percentage,omitempty"`
	StartDate          time.Time        `json:"start_date"`
	EndDate            *time.Time       `json:"end_date,omitempty"`
	State              enums.OfferState `json:"state"`
	IsActive           bool             `json:"is_active"`
	IsFeatured         bool             `json:"is_featured"`
	CreatedAt          time.Time        `json:"created_at"`
}

type offerListResponse struct {
	Items      []offerResponse `json:"items"`
	NextCursor string          `json:"next_cursor,omitempty"`
}

func offerToResponse(svc offers.Service, offer *models.Offer) offerResponse {
	return offerResponse{
		ID:                 offer.ID,
		MerchantID:         offer.MerchantID,
		Category:           offer.Category,
		Title:              offer.Title,
		Description:        offer.Description,
		ImageURL:           offer.ImageURL,
		OriginalPrice:      offer.OriginalPrice,
		DiscountedPrice:    offer.DiscountedPrice,
		DiscountPercentage: offer.DiscountPercentage,
		StartDate:          offer.StartDate,
		EndDate:            offer.EndDate,
		State:              svc.StateOf(offer),
		IsActive:           offer.IsActive,
		IsFeatured:         offer.IsFeatured,
		CreatedAt:          offer.CreatedAt,
	}
}

func offerListToResponse(svc offers.Service, list []models.Offer, next *pagination.Cursor) offerListResponse {
	items := make([]offerResponse, 0, len(list))
	for i := range list {
		items = append(items, offerToResponse(svc, &list[i]))
	}
	resp := offerListResponse{Items: items}
	if next != nil {
		resp.NextCursor = pagination.EncodeCursor(*next)
	}
	return resp
}
