// Package metrics holds the Prometheus collectors the server exports on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RPCRequests counts RPCs by procedure and Connect code ("ok" on success).
	RPCRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hisab",
		Name:      "rpc_requests_total",
		Help:      "RPC requests by procedure and result code.",
	}, []string{"procedure", "code"})

	// RPCDuration observes RPC latency by procedure.
	RPCDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "hisab",
		Name:      "rpc_duration_seconds",
		Help:      "RPC latency by procedure.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"procedure"})

	// ExpenseOps counts expense lifecycle transitions (create, draft, submit, update, delete).
	ExpenseOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hisab",
		Name:      "expense_operations_total",
		Help:      "Expense lifecycle operations by kind.",
	}, []string{"op"})

	// Settlements counts recorded and reversed settlements.
	Settlements = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hisab",
		Name:      "settlements_total",
		Help:      "Settlements by operation.",
	}, []string{"op"})

	// NotificationFailures counts notifications that could not be stored or pushed.
	NotificationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hisab",
		Name:      "notification_failures_total",
		Help:      "Notification delivery failures by stage.",
	}, []string{"stage"})

	// BalanceDuration observes how long one balance computation takes, by scope kind.
	BalanceDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "hisab",
		Name:      "balance_computation_seconds",
		Help:      "Balance computation latency by scope.",
		Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
	}, []string{"scope"})

	// BalanceCache counts balance cache lookups by result (hit, miss, error).
	BalanceCache = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hisab",
		Name:      "balance_cache_lookups_total",
		Help:      "Balance cache lookups by result.",
	}, []string{"result"})
)
