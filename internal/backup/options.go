package backup

import (
	"time"

	"github.com/mrz1836/ledgerbox/internal/metrics"
)

type options struct {
	logger        Logger
	metrics       MetricsRecorder
	maxFileSize   int64
	schemaVersion string
	generatedBy   string
	now           func() time.Time
}

// Option configures an Exporter, Validator, Importer or Service.
type Option func(*options)

// WithLogger sets the logger.
func WithLogger(l Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m MetricsRecorder) Option {
	return func(o *options) {
		if m != nil {
			o.metrics = m
		}
	}
}

// WithMaxFileSize sets the largest backup accepted for validation.
func WithMaxFileSize(n int64) Option {
	return func(o *options) {
		if n > 0 {
			o.maxFileSize = n
		}
	}
}

// WithSchemaVersion overrides the schema version produced and accepted.
func WithSchemaVersion(v string) Option {
	return func(o *options) {
		if v != "" {
			o.schemaVersion = v
		}
	}
}

// WithGeneratedBy sets meta.generated_by of exported files.
func WithGeneratedBy(s string) Option {
	return func(o *options) {
		o.generatedBy = s
	}
}

// WithClock sets the time source used for exported_at and durations.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

func newOptions(opts []Option) options {
	o := options{
		logger:        nopLogger{},
		metrics:       metrics.Global,
		maxFileSize:   DefaultMaxFileSize,
		schemaVersion: SchemaVersion,
		generatedBy:   "ledgerbox export",
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
