package dashboard

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	lookupAttempts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "weather_lookup_attempts_total",
		Help: "Weather lookup attempts, retries included",
	})
	lookupFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "weather_lookup_failures_total",
		Help: "Weather searches that failed after exhausting retries",
	})
)
