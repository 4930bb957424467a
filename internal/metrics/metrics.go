// Package metrics provides application-level metrics collection backed by
// Prometheus collectors on a private registry.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "ledgerbox"

// Import record outcomes.
const (
	OutcomeCreated = "created"
	OutcomeSkipped = "skipped"
	OutcomeFailed  = "failed"
)

// Metrics holds the collectors for export, validation and import.
type Metrics struct {
	registry *prometheus.Registry

	exportsTotal     *prometheus.CounterVec
	exportDuration   prometheus.Histogram
	validationsTotal *prometheus.CounterVec
	issuesTotal      *prometheus.CounterVec
	recordsImported  *prometheus.CounterVec
	importsTotal     *prometheus.CounterVec
	importDuration   prometheus.Histogram
}

// Global is the process-wide metrics instance.
//
//nolint:gochecknoglobals // Intentional global for metrics access
var Global = New(prometheus.NewRegistry())

// New creates Metrics and registers its collectors on reg.
func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		registry: reg,
		exportsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exports_total",
			Help:      "Backup exports by result.",
		}, []string{"result"}),
		exportDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "export_duration_seconds",
			Help:      "Wall-clock duration of backup exports.",
			Buckets:   prometheus.DefBuckets,
		}),
		validationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validations_total",
			Help:      "Backup validations by result.",
		}, []string{"result"}),
		issuesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validation_issues_total",
			Help:      "Validation issues by level and type.",
		}, []string{"level", "type"}),
		recordsImported: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "import_records_total",
			Help:      "Imported records by entity type and outcome.",
		}, []string{"entity_type", "outcome"}),
		importsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "imports_total",
			Help:      "Backup imports by result.",
		}, []string{"result"}),
		importDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "import_duration_seconds",
			Help:      "Wall-clock duration of backup imports.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 4, 10),
		}),
	}

	reg.MustRegister(
		m.exportsTotal,
		m.exportDuration,
		m.validationsTotal,
		m.issuesTotal,
		m.recordsImported,
		m.importsTotal,
		m.importDuration,
	)
	return m
}

// Registry returns the registry the collectors are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordExport records an export and its duration.
func (m *Metrics) RecordExport(duration time.Duration, err error) {
	m.exportsTotal.WithLabelValues(result(err == nil)).Inc()
	m.exportDuration.Observe(duration.Seconds())
}

// RecordValidation records the outcome of one validation pass.
func (m *Metrics) RecordValidation(valid bool) {
	m.validationsTotal.WithLabelValues(result(valid)).Inc()
}

// RecordIssue records one validation issue.
func (m *Metrics) RecordIssue(level, issueType string) {
	m.issuesTotal.WithLabelValues(level, issueType).Inc()
}

// RecordImportedRecord records the outcome of one record create.
func (m *Metrics) RecordImportedRecord(entityType, outcome string) {
	m.recordsImported.WithLabelValues(entityType, outcome).Inc()
}

// RecordImport records an import and its duration.
func (m *Metrics) RecordImport(duration time.Duration, success bool) {
	m.importsTotal.WithLabelValues(result(success)).Inc()
	m.importDuration.Observe(duration.Seconds())
}

func result(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}
