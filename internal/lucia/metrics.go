package lucia

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "luciadash",
	Subsystem: "backend",
	Name:      "request_duration_seconds",
	Help:      "Latency of requests to the Lucia backend, by method and status code.",
	Buckets:   prometheus.DefBuckets,
}, []string{"method", "status"})
