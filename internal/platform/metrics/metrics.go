package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	Logins = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_logins_total",
			Help: "Login attempts",
		},
		[]string{"status"},
	)
	Signups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_signups_total",
			Help: "Signup attempts",
		},
		[]string{"status"},
	)
	BorrowRequests = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "portal_borrow_requests_total",
			Help: "Borrow requests created",
		},
	)
	Transitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_request_transitions_total",
			Help: "Request status transitions",
		},
		[]string{"to", "outcome"},
	)
)

func Register() {
	prometheus.MustRegister(Logins, Signups, BorrowRequests, Transitions)
}
