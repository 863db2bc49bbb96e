package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/offerhubhq/offerhub-backend/internal/offers"
	"github.com/offerhubhq/offerhub-backend/pkg/db/models"
	"github.com/offerhubhq/offerhub-backend/pkg/enums"
	pkgerrors "github.com/offerhubhq/offerhub-backend/pkg/errors"
	"github.com/offerhubhq/offerhub-backend/pkg/logger"
	"github.com/offerhubhq/offerhub-backend/pkg/pagination"
)

type stubOfferService struct {
	listed    []models.Offer
	listState enums.OfferState
	offer     *models.Offer
	err       error
}

func (s *stubOfferService) Create(ctx context.Context, merchantID uuid.UUID, input offers.CreateOfferInput) (*models.Offer, error) {
	return s.offer, s.err
}

func (s *stubOfferService) Update(ctx context.Context, merchantID, offerID uuid.UUID, input offers.UpdateOfferInput) (*models.Offer, error) {
	return s.offer, s.err
}

func (s *stubOfferService) GetForMerchant(ctx context.Context, merchantID, offerID uuid.UUID) (*models.Offer, error) {
	return s.offer, s.err
}

func (s *stubOfferService) ListByMerchant(ctx context.Context, merchantID uuid.UUID, params pagination.Params) ([]models.Offer, *pagination.Cursor, error) {
	return s.listed, nil, s.err
}

func (s *stubOfferService) ListPublic(ctx context.Context, params pagination.Params) ([]models.Offer, *pagination.Cursor, error) {
	return s.listed, nil, s.err
}

func (s *stubOfferService) ListByState(ctx context.Context, state enums.OfferState, params pagination.Params) ([]models.Offer, *pagination.Cursor, error) {
	s.listState = state
	return s.listed, nil, s.err
}

func (s *stubOfferService) SetActive(ctx context.Context, merchantID, offerID uuid.UUID, active bool) (*models.Offer, error) {
	return s.offer, s.err
}

func (s *stubOfferService) Approve(ctx context.Context, offerID uuid.UUID) (*models.Offer, error) {
	return s.offer, s.err
}

func (s *stubOfferService) Reject(ctx context.Context, offerID uuid.UUID) (*models.Offer, error) {
	return s.offer, s.err
}

func (s *stubOfferService) StateOf(offer *models.Offer) enums.OfferState {
	if offer.RejectedAt != nil {
		return enums.OfferStateRejected
	}
	if offer.IsApproved {
		return enums.OfferStateApproved
	}
	return enums.OfferStatePending
}

func TestAdminOfferListDefaultsToPending(t *testing.T) {
	t.Parallel()

	svc := &stubOfferService{listed: []models.Offer{{
		ID:         uuid.New(),
		MerchantID: uuid.New(),
		Category:   "food",
		Title:      "Two for one tacos",
		StartDate:  time.Now(),
	}}}

	req := httptest.NewRequest(http.MethodGet, "/api/admin/v1/offers", nil)
	rec := httptest.NewRecorder()

	AdminOfferList(svc, logger.New(logger.Options{ServiceName: "test"})).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; body %s", rec.Code, rec.Body.String())
	}
	if svc.listState != enums.OfferStatePending {
		t.Fatalf("state filter = %q, want pending", svc.listState)
	}

	var envelope struct {
		Data offerListResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data.Items) != 1 {
		t.Fatalf("items = %d, want 1", len(envelope.Data.Items))
	}
	if envelope.Data.Items[0].State != enums.OfferStatePending {
		t.Fatalf("state = %q", envelope.Data.Items[0].State)
	}
}

func TestAdminOfferListRejectsUnknownState(t *testing.T) {
	t.Parallel()

	svc := &stubOfferService{}

	req := httptest.NewRequest(http.MethodGet, "/api/admin/v1/offers?state=archived", nil)
	rec := httptest.NewRecorder()

	AdminOfferList(svc, logger.New(logger.Options{ServiceName: "test"})).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestAdminOfferApproveConflictSurfaces(t *testing.T) {
	t.Parallel()

	svc := &stubOfferService{err: pkgerrors.New(pkgerrors.CodeStateConflict, "only pending offers can be approved").
		WithDetails(map[string]any{"state": "rejected"})}

	router := chi.NewRouter()
	router.Post("/offers/{offerId}/approve", AdminOfferApprove(svc, logger.New(logger.Options{ServiceName: "test"})))

	req := httptest.NewRequest(http.MethodPost, "/offers/"+uuid.NewString()+"/approve", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422; body %s", rec.Code, rec.Body.String())
	}

	var envelope struct {
		Error struct {
			Code    string         `json:"code"`
			Details map[string]any `json:"details"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Error.Code != string(pkgerrors.CodeStateConflict) {
		t.Fatalf("error code = %q", envelope.Error.Code)
	}
	if envelope.Error.Details["state"] != "rejected" {
		t.Fatalf("details = %v", envelope.Error.Details)
	}
}

func TestAdminOfferApproveInvalidID(t *testing.T) {
	t.Parallel()

	svc := &stubOfferService{}

	router := chi.NewRouter()
	router.Post("/offers/{offerId}/approve", AdminOfferApprove(svc, logger.New(logger.Options{ServiceName: "test"})))

	req := httptest.NewRequest(http.MethodPost, "/offers/not-a-uuid/approve", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
