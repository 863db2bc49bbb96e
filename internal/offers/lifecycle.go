package offers

import (
	"time"

	"github.com/offerhubhq/offerhub-backend/pkg/db/models"
	"github.com/offerhubhq/offerhub-backend/pkg/enums"
)

// DeriveState computes the moderation/expiry state for an offer at the given
// instant. Pure: same (offer, now) always yields the same state. Rejection
// wins over expiry so a rejected offer stays rejected even past its end date.
func DeriveState(offer *models.Offer, now time.Time) enums.OfferState {
	if offer == nil {
		return enums.OfferStateRejected
	}
	if offer.RejectedAt != nil {
		return enums.OfferStateRejected
	}
	if offer.EndDate != nil && now.After(*offer.EndDate) {
		return enums.OfferStateExpired
	}
	if offer.IsApproved {
		return enums.OfferStateApproved
	}
	return enums.OfferStatePending
}

// IsRedeemable reports whether a discount code bound to this offer may be
// redeemed at the given instant.
func IsRedeemable(offer *models.Offer, now time.Time) bool {
	if offer == nil {
		return false
	}
	if DeriveState(offer, now) != enums.OfferStateApproved {
		return false
	}
	if !offer.IsActive {
		return false
	}
	if offer.EndDate != nil && now.After(*offer.EndDate) {
		return false
	}
	return true
}

// CountsTowardQuota reports whether the offer consumes a slot of its
// merchant's plan limit. Rejected and expired offers free their slot so the
// merchant can resubmit.
func CountsTowardQuota(offer *models.Offer, now time.Time) bool {
	state := DeriveState(offer, now)
	return state == enums.OfferStatePending || state == enums.OfferStateApproved
}
