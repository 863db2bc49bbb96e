package discounts

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/offerhubhq/offerhub-backend/internal/offers"
	"github.com/offerhubhq/offerhub-backend/pkg/db/models"
	"github.com/offerhubhq/offerhub-backend/pkg/enums"
)

var hundred = decimal.NewFromInt(100)

// Evaluation is the outcome of running a discount code against an order.
type Evaluation struct {
	Valid  bool
	Reason enums.RejectionReason
	Amount decimal.Decimal
}

// NormalizeCode canonicalizes a code string for storage and lookup.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Evaluate runs the full validation sequence for a code against an order
// value. Checks run in a fixed order and the first failure wins, so callers
// always get the earliest applicable reason. Pure: no I/O, no clock reads.
// offer may be nil; it is only consulted when the code is offer-scoped.
func Evaluate(code *models.DiscountCode, offer *models.Offer, orderValue decimal.Decimal, now time.Time) Evaluation {
	if code == nil || !code.IsActive {
		return rejected(enums.RejectionCodeNotFound)
	}
	if now.Before(code.StartDate) {
		return rejected(enums.RejectionCodeNotYetValid)
	}
	if code.EndDate != nil && now.After(*code.EndDate) {
		return rejected(enums.RejectionCodeExpired)
	}
	if code.MaxUses != nil && code.UsageCount >= *code.MaxUses {
		return rejected(enums.RejectionUsageLimitReached)
	}
	if orderValue.LessThan(code.MinimumOrderValue) {
		return rejected(enums.RejectionBelowMinimumOrder)
	}
	if code.OfferID != nil && !offers.IsRedeemable(offer, now) {
		return rejected(enums.RejectionOfferNotRedeemable)
	}
	return Evaluation{Valid: true, Amount: ComputeAmount(code.DiscountType, code.DiscountValue, orderValue)}
}

// ComputeAmount calculates the discount in currency units, always within
// [0, orderValue]. Fixed discounts never exceed the order value; percentage
// discounts round to cents, halves away from zero.
func ComputeAmount(discountType enums.DiscountType, value, orderValue decimal.Decimal) decimal.Decimal {
	var amount decimal.Decimal
	switch discountType {
	case enums.DiscountTypePercentage:
		amount = orderValue.Mul(value).Div(hundred).Round(2)
	default:
		amount = value
	}
	if amount.GreaterThan(orderValue) {
		return orderValue
	}
	if amount.IsNegative() {
		return decimal.Zero
	}
	return amount
}

func rejected(reason enums.RejectionReason) Evaluation {
	return Evaluation{Reason: reason, Amount: decimal.Zero}
}
