package enums

import "fmt"

// OfferState is the derived moderation/expiry state of an offer. It is never
// stored; it is computed from the persisted flags and the caller's clock.
type OfferState string

const (
	OfferStatePending  OfferState = "pending"
	OfferStateApproved OfferState = "approved"
	OfferStateRejected OfferState = "rejected"
	OfferStateExpired  OfferState = "expired"
)

var validOfferStates = []OfferState{
	OfferStatePending,
	OfferStateApproved,
	OfferStateRejected,
	OfferStateExpired,
}

// String implements fmt.Stringer.
func (s OfferState) String() string {
	return string(s)
}

// IsValid reports whether the value is known.
func (s OfferState) IsValid() bool {
	for _, candidate := range validOfferStates {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no transition ever leaves the state.
func (s OfferState) IsTerminal() bool {
	return s == OfferStateRejected || s == OfferStateExpired
}

// ParseOfferState converts raw input into an OfferState.
func ParseOfferState(value string) (OfferState, error) {
	for _, candidate := range validOfferStates {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid offer state %q", value)
}
