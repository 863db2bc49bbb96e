package discounts

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/offerhubhq/offerhub-backend/pkg/db/models"
	"github.com/offerhubhq/offerhub-backend/pkg/enums"
)

func timePtr(t time.Time) *time.Time { return &t }
func intPtr(v int) *int              { return &v }

func dec(value string) decimal.Decimal {
	d, err := decimal.NewFromString(value)
	if err != nil {
		panic(err)
	}
	return d
}

func validCode(now time.Time) *models.DiscountCode {
	return &models.DiscountCode{
		ID:            uuid.New(),
		MerchantID:    uuid.New(),
		Code:          "SAVE20",
		DiscountType:  enums.DiscountTypePercentage,
		DiscountValue: dec("20"),
		StartDate:     now.AddDate(0, 0, -1),
		IsActive:      true,
	}
}

func TestNormalizeCode(t *testing.T) {
	if got := NormalizeCode("  save20 "); got != "SAVE20" {
		t.Fatalf("NormalizeCode = %q, want SAVE20", got)
	}
}

func TestEvaluateRejectionOrder(t *testing.T) {
	now := time.Now()
	past := now.AddDate(0, 0, -1)
	future := now.AddDate(0, 0, 1)

	cases := []struct {
		name   string
		code   *models.DiscountCode
		offer  *models.Offer
		order  decimal.Decimal
		reason enums.RejectionReason
	}{
		{
			"missing code",
			nil, nil, dec("50"),
			enums.RejectionCodeNotFound,
		},
		{
			"inactive code reads as not found",
			func() *models.DiscountCode { c := validCode(now); c.IsActive = false; return c }(),
			nil, dec("50"),
			enums.RejectionCodeNotFound,
		},
		{
			"not yet valid",
			func() *models.DiscountCode { c := validCode(now); c.StartDate = future; return c }(),
			nil, dec("50"),
			enums.RejectionCodeNotYetValid,
		},
		{
			"expired",
			func() *models.DiscountCode { c := validCode(now); c.EndDate = timePtr(past); return c }(),
			nil, dec("50"),
			enums.RejectionCodeExpired,
		},
		{
			"usage limit reached",
			func() *models.DiscountCode {
				c := validCode(now)
				c.MaxUses = intPtr(3)
				c.UsageCount = 3
				return c
			}(),
			nil, dec("50"),
			enums.RejectionUsageLimitReached,
		},
		{
			"below minimum order",
			func() *models.DiscountCode { c := validCode(now); c.MinimumOrderValue = dec("100"); return c }(),
			nil, dec("50"),
			enums.RejectionBelowMinimumOrder,
		},
		{
			"offer-scoped code with missing offer",
			func() *models.DiscountCode { c := validCode(now); id := uuid.New(); c.OfferID = &id; return c }(),
			nil, dec("50"),
			enums.RejectionOfferNotRedeemable,
		},
		{
			"offer-scoped code with pending offer",
			func() *models.DiscountCode { c := validCode(now); id := uuid.New(); c.OfferID = &id; return c }(),
			&models.Offer{IsActive: true, StartDate: past},
			dec("50"),
			enums.RejectionOfferNotRedeemable,
		},
		{
			"expiry outranks usage limit",
			func() *models.DiscountCode {
				c := validCode(now)
				c.EndDate = timePtr(past)
				c.MaxUses = intPtr(1)
				c.UsageCount = 1
				return c
			}(),
			nil, dec("50"),
			enums.RejectionCodeExpired,
		},
		{
			"usage limit outranks minimum order",
			func() *models.DiscountCode {
				c := validCode(now)
				c.MaxUses = intPtr(1)
				c.UsageCount = 1
				c.MinimumOrderValue = dec("100")
				return c
			}(),
			nil, dec("50"),
			enums.RejectionUsageLimitReached,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			eval := Evaluate(tc.code, tc.offer, tc.order, now)
			if eval.Valid {
				t.Fatalf("expected rejection, got valid with amount %s", eval.Amount)
			}
			if eval.Reason != tc.reason {
				t.Fatalf("reason = %s, want %s", eval.Reason, tc.reason)
			}
			if !eval.Amount.IsZero() {
				t.Fatalf("rejected evaluation must carry zero amount, got %s", eval.Amount)
			}
		})
	}
}

func TestEvaluateAcceptsValidCode(t *testing.T) {
	now := time.Now()
	code := validCode(now)
	code.MinimumOrderValue = dec("50")

	eval := Evaluate(code, nil, dec("50"), now)
	if !eval.Valid {
		t.Fatalf("expected valid, got %s", eval.Reason)
	}
	if !eval.Amount.Equal(dec("10")) {
		t.Fatalf("amount = %s, want 10", eval.Amount)
	}
}

func TestEvaluateOfferScopedRedeemableOffer(t *testing.T) {
	now := time.Now()
	code := validCode(now)
	offerID := uuid.New()
	code.OfferID = &offerID
	offer := &models.Offer{
		ID:         offerID,
		StartDate:  now.AddDate(0, 0, -1),
		IsApproved: true,
		IsActive:   true,
	}

	eval := Evaluate(code, offer, dec("50"), now)
	if !eval.Valid {
		t.Fatalf("expected valid, got %s", eval.Reason)
	}
}

func TestEvaluateEndDateExactlyNowStillValid(t *testing.T) {
	now := time.Now()
	code := validCode(now)
	code.EndDate = timePtr(now)

	eval := Evaluate(code, nil, dec("50"), now)
	if !eval.Valid {
		t.Fatalf("expected code valid through its end instant, got %s", eval.Reason)
	}
}

func TestComputeAmount(t *testing.T) {
	cases := []struct {
		name         string
		discountType enums.DiscountType
		value        string
		order        string
		want         string
	}{
		{"percentage of round order", enums.DiscountTypePercentage, "20", "100", "20"},
		{"percentage rounds to cents", enums.DiscountTypePercentage, "20", "99.99", "20.00"},
		{"percentage half rounds up", enums.DiscountTypePercentage, "15", "0.10", "0.02"},
		{"fixed below order", enums.DiscountTypeFixed, "10", "100", "10"},
		{"fixed clamped to order", enums.DiscountTypeFixed, "50", "30", "30"},
		{"hundred percent", enums.DiscountTypePercentage, "100", "42.42", "42.42"},
		{"zero order", enums.DiscountTypeFixed, "10", "0", "0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ComputeAmount(tc.discountType, dec(tc.value), dec(tc.order))
			if !got.Equal(dec(tc.want)) {
				t.Fatalf("ComputeAmount = %s, want %s", got, tc.want)
			}
		})
	}
}
