// Package vfsmetrics records the VFS's operational signals through an
// OpenTelemetry Meter: how close a session is running to its handle
// quota, and how long lookups take. It is a scaled-down port of
// gcsfuse's common/otel_metrics.go — the VFS has far fewer signals to
// track than a full FUSE op table, so one struct covers all of them.
package vfsmetrics

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/metric"
)

// Recorder wraps the handful of instruments the VFS needs. A nil
// *Recorder is valid and every method on it is a no-op, so callers that
// don't wire in an OTEL meter (tests, the simplest CLI invocations) can
// pass nil without branching.
type Recorder struct {
	openHandles   metric.Int64UpDownCounter
	lookupCount   metric.Int64Counter
	lookupLatency metric.Float64Histogram
}

// latencyBuckets mirrors gcsfuse's defaultLatencyDistribution: fine
// granularity at the low end where most lookups land, coarser at the
// high end to still catch host-filesystem stalls.
var latencyBuckets = []float64{
	0.1, 0.3, 0.5, 0.7, 1, 2, 3, 4, 5, 7, 10, 20, 30, 50, 100, 200, 400, 800,
}

// New builds a Recorder from meter, the way gcsfuse's NewOTelMetrics
// builds its instrument set: one constructor call per instrument,
// collecting errors with errors.Join rather than failing on the first.
func New(meter metric.Meter) (*Recorder, error) {
	var errs []error

	openHandles, err := meter.Int64UpDownCounter("vfs/open_handles",
		metric.WithDescription("Number of currently open VFS handles."))
	errs = append(errs, err)

	lookupCount, err := meter.Int64Counter("vfs/lookup_count",
		metric.WithDescription("Number of VFS lookups performed."))
	errs = append(errs, err)

	lookupLatency, err := meter.Float64Histogram("vfs/lookup_latency",
		metric.WithDescription("Lookup latency in milliseconds."),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...))
	errs = append(errs, err)

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	return &Recorder{
		openHandles:   openHandles,
		lookupCount:   lookupCount,
		lookupLatency: lookupLatency,
	}, nil
}

// IncrementOpenHandles records one more handle having been opened.
func (r *Recorder) IncrementOpenHandles() {
	if r == nil {
		return
	}
	r.openHandles.Add(context.Background(), 1)
}

// DecrementOpenHandles records one fewer handle being open, by delta
// (usually 1, or the full remaining count when Free() tears everything
// down at once).
func (r *Recorder) DecrementOpenHandles(delta int) {
	if r == nil || delta == 0 {
		return
	}
	r.openHandles.Add(context.Background(), int64(-delta))
}

// RecordLookup records one lookup's latency in milliseconds.
func (r *Recorder) RecordLookup(latencyMillis float64) {
	if r == nil {
		return
	}
	ctx := context.Background()
	r.lookupCount.Add(ctx, 1)
	r.lookupLatency.Record(ctx, latencyMillis)
}
