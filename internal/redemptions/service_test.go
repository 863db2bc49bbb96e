package redemptions

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/offerhubhq/offerhub-backend/internal/discounts"
	"github.com/offerhubhq/offerhub-backend/pkg/db/models"
	"github.com/offerhubhq/offerhub-backend/pkg/enums"
	pkgerrors "github.com/offerhubhq/offerhub-backend/pkg/errors"
)

// stubRedemptionRepo mimics the database's conditional update: the usage
// guard is enforced under a lock, exactly like the row lock taken by the
// real UPDATE.
type stubRedemptionRepo struct {
	mu         sync.Mutex
	usageCount int
	maxUses    *int
	active     bool
	total      decimal.Decimal
	records    []*models.Redemption
	applyErr   error
}

func (s *stubRedemptionRepo) ApplyWithTx(tx *gorm.DB, codeID uuid.UUID, amount decimal.Decimal) (int64, error) {
	if s.applyErr != nil {
		return 0, s.applyErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return 0, nil
	}
	if s.maxUses != nil && s.usageCount >= *s.maxUses {
		return 0, nil
	}
	s.usageCount++
	s.total = s.total.Add(amount)
	return 1, nil
}

func (s *stubRedemptionRepo) RecordWithTx(tx *gorm.DB, redemption *models.Redemption) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, redemption)
	return nil
}

func (s *stubRedemptionRepo) ListByCode(ctx context.Context, codeID uuid.UUID) ([]models.Redemption, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Redemption, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, *r)
	}
	return out, nil
}

type stubValidator struct {
	result *discounts.ValidationResult
	err    error
}

func (s *stubValidator) Validate(ctx context.Context, rawCode string, orderValue decimal.Decimal) (*discounts.ValidationResult, error) {
	return s.result, s.err
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type invalidationSpy struct {
	mu    sync.Mutex
	codes []string
}

func (s *invalidationSpy) InvalidateCode(ctx context.Context, normalized string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes = append(s.codes, normalized)
}

func dec(value string) decimal.Decimal {
	d, err := decimal.NewFromString(value)
	if err != nil {
		panic(err)
	}
	return d
}

func intPtr(v int) *int { return &v }

func acceptedValidation(code *models.DiscountCode, amount string) *discounts.ValidationResult {
	return &discounts.ValidationResult{Valid: true, Amount: dec(amount), Code: code}
}

func testCode(maxUses *int) *models.DiscountCode {
	return &models.DiscountCode{
		ID:            uuid.New(),
		MerchantID:    uuid.New(),
		Code:          "SAVE20",
		DiscountType:  enums.DiscountTypePercentage,
		DiscountValue: dec("20"),
		MaxUses:       maxUses,
		StartDate:     time.Now().AddDate(0, 0, -1),
		IsActive:      true,
	}
}

func newRedeemService(t *testing.T, repo *stubRedemptionRepo, validator *stubValidator, cache codeCache) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Repo:              repo,
		Validator:         validator,
		Cache:             cache,
		TransactionRunner: stubTxRunner{},
	})
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}
	return svc
}

func TestRedeemSuccessRecordsAudit(t *testing.T) {
	code := testCode(intPtr(10))
	repo := &stubRedemptionRepo{active: true, maxUses: code.MaxUses}
	cache := &invalidationSpy{}
	svc := newRedeemService(t, repo, &stubValidator{result: acceptedValidation(code, "20.00")}, cache)

	result, err := svc.Redeem(context.Background(), "SAVE20", dec("100"))
	if err != nil {
		t.Fatalf("Redeem returned error: %v", err)
	}
	if !result.Valid {
		t.Fatalf("expected success, got %s", result.Reason)
	}
	if !result.Amount.Equal(dec("20.00")) {
		t.Fatalf("amount = %s, want 20.00", result.Amount)
	}
	if len(repo.records) != 1 {
		t.Fatalf("expected one audit row, got %d", len(repo.records))
	}
	audit := repo.records[0]
	if audit.CodeID != code.ID || !audit.OrderValue.Equal(dec("100")) || !audit.DiscountAmount.Equal(dec("20.00")) {
		t.Fatalf("audit row mismatch: %+v", audit)
	}
	if len(cache.codes) != 1 || cache.codes[0] != "SAVE20" {
		t.Fatalf("expected cache invalidated, got %v", cache.codes)
	}
}

func TestRedeemInvalidCodePassesReasonThrough(t *testing.T) {
	repo := &stubRedemptionRepo{active: true}
	validator := &stubValidator{result: &discounts.ValidationResult{Reason: enums.RejectionCodeExpired}}
	svc := newRedeemService(t, repo, validator, nil)

	result, err := svc.Redeem(context.Background(), "OLD", dec("100"))
	if err != nil {
		t.Fatalf("Redeem returned error: %v", err)
	}
	if result.Valid {
		t.Fatalf("expected rejection")
	}
	if result.Reason != enums.RejectionCodeExpired {
		t.Fatalf("reason = %s, want %s", result.Reason, enums.RejectionCodeExpired)
	}
	if repo.usageCount != 0 {
		t.Fatalf("rejected redeem must not touch the counter")
	}
}

func TestRedeemRaceLoserGetsConflict(t *testing.T) {
	code := testCode(intPtr(1))
	repo := &stubRedemptionRepo{active: true, maxUses: code.MaxUses, usageCount: 1}
	svc := newRedeemService(t, repo, &stubValidator{result: acceptedValidation(code, "20.00")}, nil)

	_, err := svc.Redeem(context.Background(), "SAVE20", dec("100"))
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
	if len(repo.records) != 0 {
		t.Fatalf("conflict must not write an audit row")
	}
}

func TestRedeemConcurrentWinnersNeverExceedMaxUses(t *testing.T) {
	const maxUses = 5
	const attempts = 50

	code := testCode(intPtr(maxUses))
	repo := &stubRedemptionRepo{active: true, maxUses: code.MaxUses}
	svc := newRedeemService(t, repo, &stubValidator{result: acceptedValidation(code, "10.00")}, &invalidationSpy{})

	var wg sync.WaitGroup
	var mu sync.Mutex
	var wins, conflicts int
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Redeem(context.Background(), "SAVE20", dec("100"))
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				wins++
				return
			}
			if appErr := pkgerrors.As(err); appErr != nil && appErr.Code() == pkgerrors.CodeConflict {
				conflicts++
			}
		}()
	}
	wg.Wait()

	if wins != maxUses {
		t.Fatalf("wins = %d, want exactly %d", wins, maxUses)
	}
	if conflicts != attempts-maxUses {
		t.Fatalf("conflicts = %d, want %d", conflicts, attempts-maxUses)
	}
	if repo.usageCount != maxUses {
		t.Fatalf("usage count = %d, must never exceed %d", repo.usageCount, maxUses)
	}
	if len(repo.records) != maxUses {
		t.Fatalf("audit rows = %d, want %d", len(repo.records), maxUses)
	}
	if !repo.total.Equal(dec("50.00")) {
		t.Fatalf("total savings = %s, want 50.00", repo.total)
	}
}

func TestRedeemTotalSavingsGrowsMonotonically(t *testing.T) {
	code := testCode(nil)
	repo := &stubRedemptionRepo{active: true}
	svc := newRedeemService(t, repo, &stubValidator{result: acceptedValidation(code, "5.00")}, nil)

	previous := decimal.Zero
	for i := 0; i < 4; i++ {
		if _, err := svc.Redeem(context.Background(), "SAVE20", dec("25")); err != nil {
			t.Fatalf("Redeem returned error: %v", err)
		}
		if !repo.total.GreaterThan(previous) {
			t.Fatalf("total savings did not grow: %s -> %s", previous, repo.total)
		}
		previous = repo.total
	}
}

func TestRedeemDeactivatedUnderneathConflicts(t *testing.T) {
	code := testCode(nil)
	repo := &stubRedemptionRepo{active: false}
	svc := newRedeemService(t, repo, &stubValidator{result: acceptedValidation(code, "5.00")}, nil)

	_, err := svc.Redeem(context.Background(), "SAVE20", dec("25"))
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}
