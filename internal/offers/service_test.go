package offers

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/offerhubhq/offerhub-backend/internal/subscriptions"
	"github.com/offerhubhq/offerhub-backend/pkg/db/models"
	"github.com/offerhubhq/offerhub-backend/pkg/enums"
	pkgerrors "github.com/offerhubhq/offerhub-backend/pkg/errors"
	"github.com/offerhubhq/offerhub-backend/pkg/pagination"
)

type stubOfferRepo struct {
	offers    map[uuid.UUID]*models.Offer
	createErr error
	updateErr error
	updated   *models.Offer
}

func newStubOfferRepo(seed ...*models.Offer) *stubOfferRepo {
	repo := &stubOfferRepo{offers: map[uuid.UUID]*models.Offer{}}
	for _, offer := range seed {
		if offer.ID == uuid.Nil {
			offer.ID = uuid.New()
		}
		repo.offers[offer.ID] = offer
	}
	return repo
}

func (s *stubOfferRepo) Create(ctx context.Context, offer *models.Offer) error {
	if s.createErr != nil {
		return s.createErr
	}
	offer.ID = uuid.New()
	s.offers[offer.ID] = offer
	return nil
}

func (s *stubOfferRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Offer, error) {
	return s.offers[id], nil
}

func (s *stubOfferRepo) Update(ctx context.Context, offer *models.Offer) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	s.offers[offer.ID] = offer
	s.updated = offer
	return nil
}

func (s *stubOfferRepo) ListByMerchant(ctx context.Context, merchantID uuid.UUID, params pagination.Params) ([]models.Offer, *pagination.Cursor, error) {
	var rows []models.Offer
	for _, offer := range s.offers {
		if offer.MerchantID == merchantID {
			rows = append(rows, *offer)
		}
	}
	return rows, nil, nil
}

func (s *stubOfferRepo) ListPublic(ctx context.Context, now time.Time, params pagination.Params) ([]models.Offer, *pagination.Cursor, error) {
	var rows []models.Offer
	for _, offer := range s.offers {
		if IsRedeemable(offer, now) && !offer.StartDate.After(now) {
			rows = append(rows, *offer)
		}
	}
	return rows, nil, nil
}

func (s *stubOfferRepo) ListByState(ctx context.Context, state enums.OfferState, now time.Time, params pagination.Params) ([]models.Offer, *pagination.Cursor, error) {
	var rows []models.Offer
	for _, offer := range s.offers {
		if DeriveState(offer, now) == state {
			rows = append(rows, *offer)
		}
	}
	return rows, nil, nil
}

func (s *stubOfferRepo) CountPublished(ctx context.Context, merchantID uuid.UUID, now time.Time) (int64, error) {
	var count int64
	for _, offer := range s.offers {
		if offer.MerchantID == merchantID && CountsTowardQuota(offer, now) {
			count++
		}
	}
	return count, nil
}

type stubQuota struct {
	decision subscriptions.Decision
	err      error
	calls    int
}

func (s *stubQuota) CheckOfferQuota(ctx context.Context, merchantID uuid.UUID) (subscriptions.Decision, error) {
	s.calls++
	return s.decision, s.err
}

func intPtr(v int) *int { return &v }

func newOfferService(t *testing.T, repo *stubOfferRepo, quota *stubQuota, now time.Time) Service {
	t.Helper()
	if quota == nil {
		quota = &stubQuota{decision: subscriptions.Decision{Allowed: true}}
	}
	svc, err := NewService(ServiceParams{
		Repo:  repo,
		Quota: quota,
		Now:   func() time.Time { return now },
	})
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}
	return svc
}

func validCreateInput(now time.Time) CreateOfferInput {
	return CreateOfferInput{
		Category:        "dining",
		Title:           "Two for one tacos",
		DiscountedPrice: decimal.NewFromInt(5),
		StartDate:       now,
	}
}

func TestCreateOfferStartsPending(t *testing.T) {
	now := time.Now()
	repo := newStubOfferRepo()
	svc := newOfferService(t, repo, nil, now)

	offer, err := svc.Create(context.Background(), uuid.New(), validCreateInput(now))
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if got := DeriveState(offer, now); got != enums.OfferStatePending {
		t.Fatalf("expected new offer pending, got %s", got)
	}
	if !offer.IsActive {
		t.Fatalf("expected new offer active by default")
	}
}

func TestCreateOfferQuotaExceeded(t *testing.T) {
	now := time.Now()
	quota := &stubQuota{decision: subscriptions.Decision{Allowed: false, Current: 1, Limit: intPtr(1)}}
	svc := newOfferService(t, newStubOfferRepo(), quota, now)

	_, err := svc.Create(context.Background(), uuid.New(), validCreateInput(now))
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeQuotaExceeded {
		t.Fatalf("expected quota exceeded, got %v", err)
	}
	details, ok := appErr.Details().(map[string]any)
	if !ok {
		t.Fatalf("expected details map, got %T", appErr.Details())
	}
	if details["current"] != int64(1) {
		t.Fatalf("expected current count in details, got %v", details["current"])
	}
}

func TestCreateOfferValidation(t *testing.T) {
	now := time.Now()
	past := now.AddDate(0, 0, -1)
	svc := newOfferService(t, newStubOfferRepo(), nil, now)

	cases := []struct {
		name   string
		mutate func(*CreateOfferInput)
	}{
		{"missing title", func(in *CreateOfferInput) { in.Title = " " }},
		{"missing category", func(in *CreateOfferInput) { in.Category = "" }},
		{"negative price", func(in *CreateOfferInput) { in.DiscountedPrice = decimal.NewFromInt(-1) }},
		{"original below discounted", func(in *CreateOfferInput) {
			original := decimal.NewFromInt(1)
			in.OriginalPrice = &original
		}},
		{"percentage out of range", func(in *CreateOfferInput) { in.DiscountPercentage = intPtr(120) }},
		{"end before start", func(in *CreateOfferInput) { in.EndDate = &past }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := validCreateInput(now)
			tc.mutate(&input)
			_, err := svc.Create(context.Background(), uuid.New(), input)
			appErr := pkgerrors.As(err)
			if appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestApprovePendingOffer(t *testing.T) {
	now := time.Now()
	offer := &models.Offer{MerchantID: uuid.New(), StartDate: now, IsActive: true}
	repo := newStubOfferRepo(offer)
	svc := newOfferService(t, repo, nil, now)

	approved, err := svc.Approve(context.Background(), offer.ID)
	if err != nil {
		t.Fatalf("Approve returned error: %v", err)
	}
	if got := DeriveState(approved, now); got != enums.OfferStateApproved {
		t.Fatalf("expected approved, got %s", got)
	}
}

func TestApproveIsIdempotent(t *testing.T) {
	now := time.Now()
	offer := &models.Offer{MerchantID: uuid.New(), StartDate: now, IsApproved: true, IsActive: true}
	repo := newStubOfferRepo(offer)
	svc := newOfferService(t, repo, nil, now)

	approved, err := svc.Approve(context.Background(), offer.ID)
	if err != nil {
		t.Fatalf("expected re-approve to succeed, got %v", err)
	}
	if approved.ID != offer.ID {
		t.Fatalf("expected same offer back")
	}
	if repo.updated != nil {
		t.Fatalf("expected no write on idempotent approve")
	}
}

func TestApproveRejectedOfferConflicts(t *testing.T) {
	now := time.Now()
	rejectedAt := now.AddDate(0, 0, -1)
	offer := &models.Offer{MerchantID: uuid.New(), StartDate: now, RejectedAt: &rejectedAt}
	repo := newStubOfferRepo(offer)
	svc := newOfferService(t, repo, nil, now)

	_, err := svc.Approve(context.Background(), offer.ID)
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestApproveExpiredOfferConflicts(t *testing.T) {
	now := time.Now()
	past := now.AddDate(0, 0, -1)
	offer := &models.Offer{MerchantID: uuid.New(), StartDate: past.AddDate(0, -1, 0), EndDate: &past}
	repo := newStubOfferRepo(offer)
	svc := newOfferService(t, repo, nil, now)

	_, err := svc.Approve(context.Background(), offer.ID)
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestRejectPendingOffer(t *testing.T) {
	now := time.Now()
	offer := &models.Offer{MerchantID: uuid.New(), StartDate: now, IsActive: true}
	repo := newStubOfferRepo(offer)
	svc := newOfferService(t, repo, nil, now)

	rejected, err := svc.Reject(context.Background(), offer.ID)
	if err != nil {
		t.Fatalf("Reject returned error: %v", err)
	}
	if rejected.RejectedAt == nil {
		t.Fatalf("expected rejection timestamp set")
	}
	if got := DeriveState(rejected, now); got != enums.OfferStateRejected {
		t.Fatalf("expected rejected, got %s", got)
	}
}

func TestRejectApprovedOfferConflicts(t *testing.T) {
	now := time.Now()
	offer := &models.Offer{MerchantID: uuid.New(), StartDate: now, IsApproved: true}
	repo := newStubOfferRepo(offer)
	svc := newOfferService(t, repo, nil, now)

	_, err := svc.Reject(context.Background(), offer.ID)
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestSetActiveOnRejectedOfferConflicts(t *testing.T) {
	now := time.Now()
	rejectedAt := now.AddDate(0, 0, -1)
	merchantID := uuid.New()
	offer := &models.Offer{MerchantID: merchantID, StartDate: now, RejectedAt: &rejectedAt}
	repo := newStubOfferRepo(offer)
	svc := newOfferService(t, repo, nil, now)

	_, err := svc.SetActive(context.Background(), merchantID, offer.ID, true)
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestSetActiveOnExpiredOfferAllowedButNotRedeemable(t *testing.T) {
	now := time.Now()
	past := now.AddDate(0, 0, -1)
	merchantID := uuid.New()
	offer := &models.Offer{
		MerchantID: merchantID,
		StartDate:  past.AddDate(0, -1, 0),
		EndDate:    &past,
		IsApproved: true,
		IsActive:   false,
	}
	repo := newStubOfferRepo(offer)
	svc := newOfferService(t, repo, nil, now)

	toggled, err := svc.SetActive(context.Background(), merchantID, offer.ID, true)
	if err != nil {
		t.Fatalf("SetActive returned error: %v", err)
	}
	if !toggled.IsActive {
		t.Fatalf("expected offer active")
	}
	if IsRedeemable(toggled, now) {
		t.Fatalf("expired offer must stay non-redeemable after toggle")
	}
}

func TestSetActiveCrossMerchantForbidden(t *testing.T) {
	now := time.Now()
	offer := &models.Offer{MerchantID: uuid.New(), StartDate: now}
	repo := newStubOfferRepo(offer)
	svc := newOfferService(t, repo, nil, now)

	_, err := svc.SetActive(context.Background(), uuid.New(), offer.ID, false)
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestApproveUnknownOffer(t *testing.T) {
	svc := newOfferService(t, newStubOfferRepo(), nil, time.Now())

	_, err := svc.Approve(context.Background(), uuid.New())
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
