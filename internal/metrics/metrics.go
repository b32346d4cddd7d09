// Package metrics holds the Prometheus collectors of the query pipeline.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "searchmap"

// Compile statuses.
const (
	StatusOK          = "ok"
	StatusUnsupported = "unsupported"
	StatusError       = "error"
)

// Recorder groups the collectors. A nil *Recorder records nothing.
type Recorder struct {
	compileTotal   *prometheus.CounterVec
	searchDuration *prometheus.HistogramVec
	searchErrors   *prometheus.CounterVec
	documentsPut   *prometheus.CounterVec
}

// NewRecorder creates unregistered collectors.
func NewRecorder() *Recorder {
	return &Recorder{
		compileTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "compile_total",
				Help:      "Predicate compilations by entity and status",
			},
			[]string{"entity", "status"},
		),
		searchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "search_duration_seconds",
				Help:      "Engine round trip duration in seconds",
				Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
			},
			[]string{"engine", "op"},
		),
		searchErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "search_errors_total",
				Help:      "Failed engine round trips",
			},
			[]string{"engine", "op"},
		),
		documentsPut: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "documents_put_total",
				Help:      "Documents written by entity",
			},
			[]string{"entity"},
		),
	}
}

// Register adds every collector to reg. Collectors already registered with
// reg are accepted, so one Recorder can be shared by several clients.
func (r *Recorder) Register(reg prometheus.Registerer) error {
	if r == nil || reg == nil {
		return nil
	}
	for _, c := range []prometheus.Collector{r.compileTotal, r.searchDuration, r.searchErrors, r.documentsPut} {
		if err := reg.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return err
		}
	}
	return nil
}

// Compiled counts one compilation.
func (r *Recorder) Compiled(entity, status string) {
	if r == nil {
		return
	}
	r.compileTotal.WithLabelValues(entity, status).Inc()
}

// EngineCall records one engine round trip.
func (r *Recorder) EngineCall(engine, op string, d time.Duration, err error) {
	if r == nil {
		return
	}
	r.searchDuration.WithLabelValues(engine, op).Observe(d.Seconds())
	if err != nil {
		r.searchErrors.WithLabelValues(engine, op).Inc()
	}
}

// DocumentsPut counts written documents.
func (r *Recorder) DocumentsPut(entity string, n int) {
	if r == nil || n <= 0 {
		return
	}
	r.documentsPut.WithLabelValues(entity).Add(float64(n))
}
