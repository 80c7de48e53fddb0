// Package metrics records operational metrics from the reconciliation
// pipeline through a pluggable Backend.
//
// The global backend defaults to a no-op, so instrumented code never needs to
// check whether metrics are configured. Concrete systems live in
// subpackages (prompush, datadog) and are installed with SetBackend.
package metrics

import "time"

// Metric names emitted by the helpers below.
const (
	StepTotal    = "autofeat_step_total"
	StepDuration = "autofeat_step_duration_seconds"
	RowsTotal    = "autofeat_rows_total"
	BatchesTotal = "autofeat_batches_total"
)

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a value in a duration style metric.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes or flushes metrics, if the backend needs it (e.g. Pushgateway).
	Flush() error
}

type nopBackend struct{}

func (nopBackend) IncCounter(name string, delta float64, labels Labels)       {}
func (nopBackend) ObserveHistogram(name string, value float64, labels Labels) {}
func (nopBackend) Flush() error                                               { return nil }

var backend Backend = nopBackend{}

// Nop returns a backend that discards everything.
func Nop() Backend { return nopBackend{} }

// SetBackend installs a concrete backend. Passing nil keeps the existing backend.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	backend = b
}

// Flush delegates to the current backend.
func Flush() error {
	return backend.Flush()
}

// RecordStep counts one execution of a pipeline step (load, reconcile,
// write, persist) and observes its duration.
func RecordStep(job, step string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}

	lbls := Labels{
		"job":    job,
		"step":   step,
		"status": status,
	}

	backend.IncCounter(StepTotal, 1, lbls)
	backend.ObserveHistogram(StepDuration, d.Seconds(), lbls)
}

// RecordRow adds delta to the row or column counter of the given kind.
//
// Kinds used by the reconciler:
//   - "ingested"
//   - "skipped_width"
//   - "copied_columns"
//   - "regenerated_columns"
//   - "emptied_columns"
//   - "stored" (rows copied into a database sink)
func RecordRow(job, kind string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter(RowsTotal, float64(delta), Labels{
		"job":  job,
		"kind": kind,
	})
}

// RecordBatches increments the database batch counter for the given job.
func RecordBatches(job string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter(BatchesTotal, float64(delta), Labels{
		"job": job,
	})
}
