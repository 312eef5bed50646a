package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ibadmin_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPResponseTime = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ibadmin_http_response_time_seconds",
			Help:    "Histogram of response times",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	CommissionSyncs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ibadmin_commission_syncs_total",
			Help: "Commission recomputations by result",
		},
		[]string{"result"},
	)

	BridgeMessages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ibadmin_mt5_bridge_messages_total",
			Help: "Messages received from the MT5 bridge by type",
		},
		[]string{"type"},
	)

	BridgeConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ibadmin_mt5_bridge_connections",
			Help: "Open MT5 bridge connections",
		},
	)
)
