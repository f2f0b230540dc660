// Package metrics records store activity as Prometheus metrics.
package metrics

import (
	"errors"
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/quire/pkg/core"
)

// Namespace prefixes every metric name.
const Namespace = "quire"

// Recorder implements core.Recorder on Prometheus collectors.
type Recorder struct {
	operations *prometheus.CounterVec
	persistErr prometheus.Counter
	notes      prometheus.Gauge
}

// New creates a Recorder and registers its collectors on reg.
// A nil reg uses prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer) (*Recorder, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	r := &Recorder{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "store",
			Name:      "operations_total",
			Help:      "Store operations by kind and result.",
		}, []string{"op", "result"}),
		persistErr: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "store",
			Name:      "persist_failures_total",
			Help:      "Writes that did not reach storage while memory kept the change.",
		}),
		notes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: "store",
			Name:      "notes",
			Help:      "Notes currently held by the store.",
		}),
	}

	for _, c := range []prometheus.Collector{r.operations, r.persistErr, r.notes} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register metrics: %w", err)
		}
	}
	return r, nil
}

// RecordOperation implements core.Recorder.
func (r *Recorder) RecordOperation(op string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
		if errors.Is(err, core.ErrPersist) {
			r.persistErr.Inc()
		}
	}
	r.operations.WithLabelValues(op, result).Inc()
}

// RecordNoteCount implements core.Recorder.
func (r *Recorder) RecordNoteCount(n int) {
	r.notes.Set(float64(n))
}

var _ core.Recorder = (*Recorder)(nil)

// Operations returns the operations counter.
func (r *Recorder) Operations() *prometheus.CounterVec { return r.operations }

// PersistFailures returns the persist failure counter.
func (r *Recorder) PersistFailures() prometheus.Counter { return r.persistErr }

// Notes returns the note count gauge.
func (r *Recorder) Notes() prometheus.Gauge { return r.notes }

// Snapshot gathers g and flattens every counter and gauge sample into a map
// keyed by name{label="value",...}.
func Snapshot(g prometheus.Gatherer) (map[string]float64, error) {
	families, err := g.Gather()
	if err != nil {
		return nil, fmt.Errorf("failed to gather metrics: %w", err)
	}

	out := make(map[string]float64)
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			var b strings.Builder
			b.WriteString(mf.GetName())
			if labels := m.GetLabel(); len(labels) > 0 {
				b.WriteByte('{')
				for i, l := range labels {
					if i > 0 {
						b.WriteByte(',')
					}
					fmt.Fprintf(&b, "%s=%q", l.GetName(), l.GetValue())
				}
				b.WriteByte('}')
			}

			switch {
			case m.GetCounter() != nil:
				out[b.String()] = m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				out[b.String()] = m.GetGauge().GetValue()
			}
		}
	}
	return out, nil
}
