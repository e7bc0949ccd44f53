package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		accessGrantsTotal,
		accessChecksTotal,
		accessExpiredTotal,
	)
}

var (
	accessGrantsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "access_grants_total",
			Help: "Course access grants by access type.",
		},
		[]string{"access_type"}, // 'free', 'one_time', 'subscription', 'admin_granted'
	)

	accessChecksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "access_checks_total",
			Help: "Access evaluations by outcome.",
		},
		[]string{"result"}, // 'allowed', 'denied'
	)

	accessExpiredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "access_expired_total",
			Help: "Entitlements lapsed by the expiry sweeper.",
		},
	)
)

func IncAccessGrant(accessType string) {
	accessGrantsTotal.WithLabelValues(norm(accessType)).Inc()
}

func IncAccessCheck(allowed bool) {
	result := "denied"
	if allowed {
		result = "allowed"
	}
	accessChecksTotal.WithLabelValues(result).Inc()
}

func AddAccessExpired(n int) {
	accessExpiredTotal.Add(float64(n))
}
