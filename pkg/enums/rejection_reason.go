package enums

// RejectionReason identifies why a discount validation attempt was refused.
// Every reason is a user-correctable outcome, surfaced verbatim to the
// checkout caller.
type RejectionReason string

const (
	RejectionCodeNotFound       RejectionReason = "CODE_NOT_FOUND"
	RejectionCodeNotYetValid    RejectionReason = "CODE_NOT_YET_VALID"
	RejectionCodeExpired        RejectionReason = "CODE_EXPIRED"
	RejectionUsageLimitReached  RejectionReason = "USAGE_LIMIT_REACHED"
	RejectionBelowMinimumOrder  RejectionReason = "BELOW_MINIMUM_ORDER"
	RejectionOfferNotRedeemable RejectionReason = "OFFER_NOT_REDEEMABLE"
)

// String implements fmt.Stringer.
func (r RejectionReason) String() string {
	return string(r)
}
