package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		paymentsTotal,
		paymentsRevenueCents,
		promotionRedemptionsTotal,
	)
}

var (
	paymentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payments_total",
			Help: "Payments by status (pending/completed/failed/cancelled/refunded).",
		},
		[]string{"status"},
	)

	paymentsRevenueCents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payments_revenue_cents",
			Help: "Total value of completed payments in cents, labeled by type.",
		},
		[]string{"type"}, // 'course_purchase', 'subscription'
	)

	promotionRedemptionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "promotion_redemptions_total",
			Help: "Promotion code redemptions counted at payment completion.",
		},
		[]string{"result"}, // 'redeemed', 'exhausted'
	)
)

func IncPayment(status string) {
	paymentsTotal.WithLabelValues(norm(status)).Inc()
}

func AddPaymentRevenue(paymentType string, cents int64) {
	paymentsRevenueCents.WithLabelValues(norm(paymentType)).Add(float64(cents))
}

func IncPromotionRedemption(result string) {
	promotionRedemptionsTotal.WithLabelValues(norm(result)).Inc()
}
