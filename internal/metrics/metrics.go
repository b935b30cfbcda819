// Package metrics exposes Prometheus counters for the persistence and
// attachment layers. All methods are nil-receiver safe so callers can wire
// metrics optionally.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"farmledger/internal/model"
)

// Metrics holds the counters and their registry bindings.
type Metrics struct {
	recordOps     *prometheus.CounterVec
	attachmentOps *prometheus.CounterVec
}

// New creates the metric set and registers it with reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		recordOps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "record_store_operations_total",
				Help: "Total number of document store operations by kind and outcome.",
			},
			[]string{"operation", "kind", "outcome"},
		),
		attachmentOps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "attachment_operations_total",
				Help: "Total number of object store attachment operations by outcome.",
			},
			[]string{"operation", "outcome"},
		),
	}

	if err := reg.Register(m.recordOps); err != nil {
		return nil, err
	}
	if err := reg.Register(m.attachmentOps); err != nil {
		return nil, err
	}

	return m, nil
}

// RecordOp counts one store operation. err == nil counts as "ok".
func (m *Metrics) RecordOp(operation string, kind model.Kind, err error) {
	if m == nil {
		return
	}
	m.recordOps.WithLabelValues(operation, string(kind), outcome(err)).Inc()
}

// AttachmentOp counts one object store operation. err == nil counts as "ok".
func (m *Metrics) AttachmentOp(operation string, err error) {
	if m == nil {
		return
	}
	m.attachmentOps.WithLabelValues(operation, outcome(err)).Inc()
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
