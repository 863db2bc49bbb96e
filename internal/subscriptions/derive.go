package subscriptions

import (
	"time"

	"github.com/offerhubhq/offerhub-backend/pkg/db/models"
	"github.com/offerhubhq/offerhub-backend/pkg/enums"
)

// DeriveStatus computes the effective status of a subscription at the given
// instant. Same lazy-expiry pattern as offer states: the stored row keeps
// saying "active" until a write touches it, but every read derives the truth
// from end_date.
func DeriveStatus(sub *models.MerchantSubscription, now time.Time) enums.SubscriptionStatus {
	if sub == nil {
		return enums.SubscriptionStatusExpired
	}
	if sub.Status == enums.SubscriptionStatusCancelled {
		return enums.SubscriptionStatusCancelled
	}
	if sub.EndDate != nil && now.After(*sub.EndDate) {
		return enums.SubscriptionStatusExpired
	}
	return sub.Status
}
