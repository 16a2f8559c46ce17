package lambdaapi

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// dispatchMetrics contains Prometheus metrics for dispatch outcomes.
type dispatchMetrics struct {
	settled  *prometheus.CounterVec
	failures *prometheus.CounterVec
	notFound prometheus.Counter
	duration *prometheus.HistogramVec
}

var (
	dispatchMetricsInstance *dispatchMetrics
	dispatchMetricsOnce     sync.Once
)

// getDispatchMetrics returns the singleton dispatch metrics instance.
func getDispatchMetrics() *dispatchMetrics {
	dispatchMetricsOnce.Do(func() {
		dispatchMetricsInstance = &dispatchMetrics{
			settled: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "lambda_api",
					Subsystem: "dispatch",
					Name:      "settled_total",
					Help:      "Total dispatches settled with a reply",
				},
				[]string{"format", "method", "status"},
			),
			failures: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "lambda_api",
					Subsystem: "dispatch",
					Name:      "failures_total",
					Help:      "Total dispatches settled through the fallback reply",
				},
				[]string{"format", "method"},
			),
			notFound: promauto.NewCounter(
				prometheus.CounterOpts{
					Namespace: "lambda_api",
					Subsystem: "dispatch",
					Name:      "unmatched_total",
					Help:      "Total dispatches with no matching route or method",
				},
			),
			duration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Namespace: "lambda_api",
					Subsystem: "dispatch",
					Name:      "duration_seconds",
					Help:      "Dispatch duration from normalization to reply",
					Buckets:   prometheus.DefBuckets,
				},
				[]string{"format", "method"},
			),
		}
	})
	return dispatchMetricsInstance
}

// MetricsHooks wires dispatch counters and a duration histogram into
// the lifecycle hooks, registered on the default Prometheus registry.
func MetricsHooks() Option {
	return func(a *API) {
		m := getDispatchMetrics()
		a.hooks.onSuccess = append(a.hooks.onSuccess, func(_ context.Context, req *Request, status int, d time.Duration) {
			m.settled.WithLabelValues(req.Format.String(), req.Method, strconv.Itoa(status)).Inc()
			m.duration.WithLabelValues(req.Format.String(), req.Method).Observe(d.Seconds())
		})
		a.hooks.onFailure = append(a.hooks.onFailure, func(_ context.Context, req *Request, _ error, d time.Duration) {
			m.failures.WithLabelValues(req.Format.String(), req.Method).Inc()
			m.duration.WithLabelValues(req.Format.String(), req.Method).Observe(d.Seconds())
		})
		a.hooks.onNotFound = append(a.hooks.onNotFound, func(_ context.Context, _ *Request, _ error) {
			m.notFound.Inc()
		})
	}
}
