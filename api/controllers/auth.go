package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/offerhubhq/offerhub-backend/api/middleware"
	"github.com/offerhubhq/offerhub-backend/api/responses"
	"github.com/offerhubhq/offerhub-backend/api/validators"
	"github.com/offerhubhq/offerhub-backend/internal/merchants"
	"github.com/offerhubhq/offerhub-backend/pkg/db/models"
	"github.com/offerhubhq/offerhub-backend/pkg/enums"
	pkgerrors "github.com/offerhubhq/offerhub-backend/pkg/errors"
	"github.com/offerhubhq/offerhub-backend/pkg/logger"
)

type registerRequest struct {
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password" validate:"required"`
	BusinessName string `json:"business_name" validate:"required"`
}

func (r registerRequest) toInput() merchants.RegisterInput {
	return merchants.RegisterInput{
		Email:        strings.TrimSpace(r.Email),
		Password:     r.Password,
		BusinessName: strings.TrimSpace(r.BusinessName),
	}
}

// Register handles merchant account creation.
func Register(svc merchants.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "merchant service unavailable"))
			return
		}

		var payload registerRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Register(r.Context(), payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, authResultToResponse(result))
	}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login exchanges merchant credentials for an access token.
func Login(svc merchants.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "merchant service unavailable"))
			return
		}

		var payload loginRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Login(r.Context(), payload.Email, payload.Password)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, authResultToResponse(result))
	}
}

// Me returns the authenticated merchant's account.
func Me(svc merchants.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "merchant service unavailable"))
			return
		}

		merchantID := middleware.MerchantIDFromContext(r.Context())
		if merchantID == uuid.Nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "merchant context missing"))
			return
		}

		merchant, err := svc.Get(r.Context(), merchantID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, merchantToResponse(merchant))
	}
}

type merchantResponse struct {
	ID           uuid.UUID        `json:"id"`
	Email        string           `json:"email"`
	BusinessName string           `json:"business_name"`
	Role         enums.MemberRole `json:"role"`
	CreatedAt    time.Time        `json:"created_at"`
}

type authResponse struct {
	AccessToken string           `json:"access_token"`
	Merchant    merchantResponse `json:"merchant"`
}

func merchantToResponse(m *models.Merchant) merchantResponse {
	return merchantResponse{
		ID:           m.ID,
		Email:        m.Email,
		BusinessName: m.BusinessName,
		Role:         m.Role,
		CreatedAt:    m.CreatedAt,
	}
}

func authResultToResponse(result *merchants.AuthResult) authResponse {
	return authResponse{
		AccessToken: result.AccessToken,
		Merchant:    merchantToResponse(result.Merchant),
	}
}
