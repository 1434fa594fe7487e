package interceptor

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/CherkashinEvgeny/goadvice/aspect"
)

const (
	outcomeOK    = "ok"
	outcomeError = "error"
)

// Metrics counts dispatched calls and fired advice.
type Metrics struct {
	calls    *prometheus.CounterVec
	duration *prometheus.HistogramVec
	advice   *prometheus.CounterVec
}

// NewMetrics registers the collectors with reg, or with the default
// registerer when reg is nil.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		calls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "goadvice_calls_total",
				Help: "Total number of intercepted calls by outcome",
			},
			[]string{"operation", "marker", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "goadvice_call_duration_seconds",
				Help:    "Duration of intercepted calls including advice",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "marker"},
		),
		advice: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "goadvice_advice_total",
				Help: "Total number of advice executions by stage",
			},
			[]string{"operation", "stage"},
		),
	}
	for _, c := range []prometheus.Collector{m.calls, m.duration, m.advice} {
		if err := reg.Register(c); err != nil {
			return nil, errors.Wrap(err, "register collector")
		}
	}
	return m, nil
}

// Around observes a whole dispatched call. It is meant to be installed
// with aspect.WithInterceptor.
func (m *Metrics) Around(ctx context.Context, jp aspect.JoinPoint, proceed aspect.Proceed) (any, error) {
	start := time.Now()
	result, err := proceed(ctx)
	marker := jp.Marker.String()
	m.duration.WithLabelValues(jp.Name, marker).Observe(time.Since(start).Seconds())
	outcome := outcomeOK
	if err != nil {
		outcome = outcomeError
	}
	m.calls.WithLabelValues(jp.Name, marker, outcome).Inc()
	return result, err
}

// Observe counts a fired plain advice.
func (m *Metrics) Observe(_ context.Context, jp aspect.JoinPoint) error {
	m.advice.WithLabelValues(jp.Name, jp.Marker.String()).Inc()
	return nil
}

// ObserveAround counts a fired around advice.
func (m *Metrics) ObserveAround(ctx context.Context, jp aspect.JoinPoint, proceed aspect.Proceed) (any, error) {
	m.advice.WithLabelValues(jp.Name, aspect.Around.String()).Inc()
	return proceed(ctx)
}
