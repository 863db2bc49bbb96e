package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// RedemptionMetrics records validation and redemption outcomes.
type RedemptionMetrics struct {
	validations *prometheus.CounterVec
	redemptions *prometheus.CounterVec
}

// NewRedemptionMetrics registers the redemption metrics on the provided registerer.
func NewRedemptionMetrics(reg prometheus.Registerer) *RedemptionMetrics {
	if reg == nil {
		return &RedemptionMetrics{}
	}
	validations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "discount_validations_total",
		Help: "Discount code validation attempts by outcome.",
	}, []string{"outcome"})
	redemptions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "discount_redemptions_total",
		Help: "Discount code redemption writes by result.",
	}, []string{"result"})
	reg.MustRegister(validations, redemptions)
	return &RedemptionMetrics{
		validations: validations,
		redemptions: redemptions,
	}
}

// ObserveValidation counts one validation attempt. Outcome is "accepted" or
// the rejection reason.
func (m *RedemptionMetrics) ObserveValidation(outcome string) {
	if m == nil || m.validations == nil {
		return
	}
	m.validations.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// ObserveRedemption counts one redemption write. Result is "ok" or "conflict".
func (m *RedemptionMetrics) ObserveRedemption(result string) {
	if m == nil || m.redemptions == nil {
		return
	}
	m.redemptions.WithLabelValues(normalizeLabel(result)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
