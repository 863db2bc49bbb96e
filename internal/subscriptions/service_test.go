package subscriptions

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/offerhubhq/offerhub-backend/pkg/db/models"
	"github.com/offerhubhq/offerhub-backend/pkg/enums"
	pkgerrors "github.com/offerhubhq/offerhub-backend/pkg/errors"
)

type stubRepo struct {
	plans         map[uuid.UUID]*models.SubscriptionPlan
	active        *models.MerchantSubscription
	created       *models.MerchantSubscription
	cancelled     int64
	cancelledAt   *time.Time
	findActiveErr error
	createErr     error
	cancelErr     error
}

func (s *stubRepo) CreatePlan(ctx context.Context, plan *models.SubscriptionPlan) error {
	plan.ID = uuid.New()
	if s.plans == nil {
		s.plans = map[uuid.UUID]*models.SubscriptionPlan{}
	}
	s.plans[plan.ID] = plan
	return nil
}

func (s *stubRepo) UpdatePlan(ctx context.Context, plan *models.SubscriptionPlan) error {
	s.plans[plan.ID] = plan
	return nil
}

func (s *stubRepo) FindPlanByID(ctx context.Context, id uuid.UUID) (*models.SubscriptionPlan, error) {
	return s.plans[id], nil
}

func (s *stubRepo) FindDefaultPlan(ctx context.Context) (*models.SubscriptionPlan, error) {
	for _, plan := range s.plans {
		if plan.IsDefault {
			return plan, nil
		}
	}
	return nil, nil
}

func (s *stubRepo) ListPlans(ctx context.Context) ([]models.SubscriptionPlan, error) {
	var out []models.SubscriptionPlan
	for _, plan := range s.plans {
		out = append(out, *plan)
	}
	return out, nil
}

func (s *stubRepo) FindActiveByMerchant(ctx context.Context, merchantID uuid.UUID) (*models.MerchantSubscription, error) {
	if s.findActiveErr != nil {
		return nil, s.findActiveErr
	}
	return s.active, nil
}

func (s *stubRepo) ListByMerchant(ctx context.Context, merchantID uuid.UUID) ([]models.MerchantSubscription, error) {
	if s.active == nil {
		return nil, nil
	}
	return []models.MerchantSubscription{*s.active}, nil
}

func (s *stubRepo) CreateWithTx(tx *gorm.DB, sub *models.MerchantSubscription) error {
	if s.createErr != nil {
		return s.createErr
	}
	sub.ID = uuid.New()
	s.created = sub
	return nil
}

func (s *stubRepo) CancelActiveWithTx(tx *gorm.DB, merchantID uuid.UUID, at time.Time) (int64, error) {
	if s.cancelErr != nil {
		return 0, s.cancelErr
	}
	s.cancelledAt = &at
	return s.cancelled, nil
}

type stubCounter struct {
	count int64
	err   error
}

func (s *stubCounter) CountPublished(ctx context.Context, merchantID uuid.UUID, now time.Time) (int64, error) {
	return s.count, s.err
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func intPtr(v int) *int { return &v }

func newServiceForTests(t *testing.T, repo *stubRepo, counter *stubCounter, now time.Time) Service {
	t.Helper()
	if counter == nil {
		counter = &stubCounter{}
	}
	svc, err := NewService(ServiceParams{
		Repo:               repo,
		Offers:             counter,
		TransactionRunner:  stubTxRunner{},
		FreeTierOfferLimit: 1,
		Now:                func() time.Time { return now },
	})
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}
	return svc
}

func activeSub(limit *int, end time.Time) *models.MerchantSubscription {
	return &models.MerchantSubscription{
		ID:         uuid.New(),
		MerchantID: uuid.New(),
		Status:     enums.SubscriptionStatusActive,
		StartDate:  end.AddDate(0, -1, 0),
		EndDate:    &end,
		Plan:       &models.SubscriptionPlan{ID: uuid.New(), Name: "pro", OfferLimit: limit},
	}
}

func TestCheckOfferQuotaFreeTier(t *testing.T) {
	now := time.Now()
	repo := &stubRepo{}
	counter := &stubCounter{count: 1}
	svc := newServiceForTests(t, repo, counter, now)

	decision, err := svc.CheckOfferQuota(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("CheckOfferQuota returned error: %v", err)
	}
	if decision.Allowed {
		t.Fatalf("expected free tier merchant at 1 offer to be blocked")
	}
	if decision.Limit == nil || *decision.Limit != 1 {
		t.Fatalf("expected free tier limit 1, got %v", decision.Limit)
	}
}

func TestCheckOfferQuotaWithinPlanLimit(t *testing.T) {
	now := time.Now()
	repo := &stubRepo{active: activeSub(intPtr(10), now.AddDate(0, 1, 0))}
	counter := &stubCounter{count: 9}
	svc := newServiceForTests(t, repo, counter, now)

	decision, err := svc.CheckOfferQuota(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("CheckOfferQuota returned error: %v", err)
	}
	if !decision.Allowed {
		t.Fatalf("expected 9 of 10 to be allowed")
	}
	if decision.Current != 9 {
		t.Fatalf("expected current 9, got %d", decision.Current)
	}
}

func TestCheckOfferQuotaAtPlanLimit(t *testing.T) {
	now := time.Now()
	repo := &stubRepo{active: activeSub(intPtr(10), now.AddDate(0, 1, 0))}
	counter := &stubCounter{count: 10}
	svc := newServiceForTests(t, repo, counter, now)

	decision, err := svc.CheckOfferQuota(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("CheckOfferQuota returned error: %v", err)
	}
	if decision.Allowed {
		t.Fatalf("expected 10 of 10 to be blocked")
	}
}

func TestCheckOfferQuotaUnlimitedPlan(t *testing.T) {
	now := time.Now()
	repo := &stubRepo{active: activeSub(nil, now.AddDate(0, 1, 0))}
	counter := &stubCounter{count: 5000}
	svc := newServiceForTests(t, repo, counter, now)

	decision, err := svc.CheckOfferQuota(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("CheckOfferQuota returned error: %v", err)
	}
	if !decision.Allowed {
		t.Fatalf("expected unlimited plan to always allow")
	}
	if decision.Limit != nil {
		t.Fatalf("expected nil limit for unlimited plan, got %d", *decision.Limit)
	}
}

func TestCheckOfferQuotaLapsedSubscriptionFallsBackToFreeTier(t *testing.T) {
	now := time.Now()
	// Stored row still says active, but the window closed yesterday.
	repo := &stubRepo{active: activeSub(intPtr(10), now.AddDate(0, 0, -1))}
	counter := &stubCounter{count: 1}
	svc := newServiceForTests(t, repo, counter, now)

	decision, err := svc.CheckOfferQuota(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("CheckOfferQuota returned error: %v", err)
	}
	if decision.Allowed {
		t.Fatalf("expected lapsed subscription to enforce the free tier limit")
	}
	if decision.Limit == nil || *decision.Limit != 1 {
		t.Fatalf("expected free tier limit 1, got %v", decision.Limit)
	}
}

func TestCurrentDerivesExpiredStatus(t *testing.T) {
	now := time.Now()
	repo := &stubRepo{active: activeSub(intPtr(10), now.AddDate(0, 0, -1))}
	svc := newServiceForTests(t, repo, nil, now)

	sub, err := svc.Current(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("Current returned error: %v", err)
	}
	if sub.Status != enums.SubscriptionStatusExpired {
		t.Fatalf("expected derived status expired, got %s", sub.Status)
	}
}

func TestCurrentNoSubscription(t *testing.T) {
	svc := newServiceForTests(t, &stubRepo{}, nil, time.Now())

	sub, err := svc.Current(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("Current returned error: %v", err)
	}
	if sub != nil {
		t.Fatalf("expected nil subscription, got %+v", sub)
	}
}

func TestPurchaseCancelsExistingAndCreates(t *testing.T) {
	now := time.Now()
	repo := &stubRepo{cancelled: 1}
	plan := &models.SubscriptionPlan{
		Name:          "pro",
		OfferLimit:    intPtr(10),
		BillingPeriod: enums.BillingPeriodMonthly,
		Price:         decimal.NewFromInt(29),
	}
	if err := repo.CreatePlan(context.Background(), plan); err != nil {
		t.Fatalf("seed plan: %v", err)
	}
	svc := newServiceForTests(t, repo, nil, now)

	merchantID := uuid.New()
	sub, err := svc.Purchase(context.Background(), merchantID, plan.ID)
	if err != nil {
		t.Fatalf("Purchase returned error: %v", err)
	}
	if repo.cancelledAt == nil {
		t.Fatalf("expected prior active subscriptions to be cancelled")
	}
	if repo.created == nil {
		t.Fatalf("expected subscription row created")
	}
	if sub.Status != enums.SubscriptionStatusActive {
		t.Fatalf("expected active status, got %s", sub.Status)
	}
	if sub.EndDate == nil || !sub.EndDate.Equal(now.AddDate(0, 1, 0)) {
		t.Fatalf("expected monthly end date, got %v", sub.EndDate)
	}
}

func TestPurchaseYearlyEndDate(t *testing.T) {
	now := time.Now()
	repo := &stubRepo{}
	plan := &models.SubscriptionPlan{
		Name:          "pro-annual",
		BillingPeriod: enums.BillingPeriodYearly,
		Price:         decimal.NewFromInt(290),
	}
	if err := repo.CreatePlan(context.Background(), plan); err != nil {
		t.Fatalf("seed plan: %v", err)
	}
	svc := newServiceForTests(t, repo, nil, now)

	sub, err := svc.Purchase(context.Background(), uuid.New(), plan.ID)
	if err != nil {
		t.Fatalf("Purchase returned error: %v", err)
	}
	if sub.EndDate == nil || !sub.EndDate.Equal(now.AddDate(1, 0, 0)) {
		t.Fatalf("expected yearly end date, got %v", sub.EndDate)
	}
}

func TestPurchaseUnknownPlan(t *testing.T) {
	svc := newServiceForTests(t, &stubRepo{}, nil, time.Now())

	_, err := svc.Purchase(context.Background(), uuid.New(), uuid.New())
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCancelWithoutActiveSubscription(t *testing.T) {
	svc := newServiceForTests(t, &stubRepo{cancelled: 0}, nil, time.Now())

	err := svc.Cancel(context.Background(), uuid.New())
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCancelActiveSubscription(t *testing.T) {
	repo := &stubRepo{cancelled: 1}
	svc := newServiceForTests(t, repo, nil, time.Now())

	if err := svc.Cancel(context.Background(), uuid.New()); err != nil {
		t.Fatalf("Cancel returned error: %v", err)
	}
	if repo.cancelledAt == nil {
		t.Fatalf("expected cancellation timestamp recorded")
	}
}

func TestCreatePlanValidation(t *testing.T) {
	svc := newServiceForTests(t, &stubRepo{}, nil, time.Now())

	cases := []struct {
		name  string
		input CreatePlanInput
	}{
		{"empty name", CreatePlanInput{BillingPeriod: enums.BillingPeriodMonthly, Price: decimal.NewFromInt(10)}},
		{"bad period", CreatePlanInput{Name: "x", BillingPeriod: "weekly", Price: decimal.NewFromInt(10)}},
		{"negative price", CreatePlanInput{Name: "x", BillingPeriod: enums.BillingPeriodMonthly, Price: decimal.NewFromInt(-1)}},
		{"negative limit", CreatePlanInput{Name: "x", BillingPeriod: enums.BillingPeriodMonthly, Price: decimal.NewFromInt(10), OfferLimit: intPtr(-1)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreatePlan(context.Background(), tc.input)
			appErr := pkgerrors.As(err)
			if appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestUpdatePlanClearsLimit(t *testing.T) {
	repo := &stubRepo{}
	plan := &models.SubscriptionPlan{
		Name:          "pro",
		OfferLimit:    intPtr(10),
		BillingPeriod: enums.BillingPeriodMonthly,
		Price:         decimal.NewFromInt(29),
	}
	if err := repo.CreatePlan(context.Background(), plan); err != nil {
		t.Fatalf("seed plan: %v", err)
	}
	svc := newServiceForTests(t, repo, nil, time.Now())

	updated, err := svc.UpdatePlan(context.Background(), plan.ID, UpdatePlanInput{ClearLimit: true})
	if err != nil {
		t.Fatalf("UpdatePlan returned error: %v", err)
	}
	if updated.OfferLimit != nil {
		t.Fatalf("expected limit cleared, got %d", *updated.OfferLimit)
	}
}
