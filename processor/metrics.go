package processor

import (
	"github.com/puzpuzpuz/xsync/v2"
	"github.com/relex/gotils/promexporter/promext"
	"github.com/relex/gotils/promexporter/promreg"
)

// Stats is a point-in-time snapshot of the processor counters, readable without blocking
// the enqueue hot path or the flush worker
type Stats struct {
	RecordsDropped uint64 // records dropped by overflow policy or inside dropped batches
	BatchesDropped uint64 // batches dropped after encoding failure, permanent error or exhausted retries
	FlushFailures  uint64 // flushes that finally failed; retried-then-succeeded flushes are not counted
	FlushSuccesses uint64 // flushes persisted to the sink, including those that needed retries
	FlushedRecords uint64 // records inside successful flushes
	FlushRetries   uint64 // individual retry attempts after transient sink errors
}

// batchMetrics tracks the processor counters
//
// Hot-path increments go to striped xsync counters so concurrent producers never contend on
// Prometheus internals; the worker mirrors accumulated values into Prometheus counters
// between flush cycles and on stop.
type batchMetrics struct {
	droppedRecords hotCounter
	droppedBatches hotCounter
	flushFailures  hotCounter
	flushSuccesses hotCounter
	flushedRecords hotCounter
	flushRetries   hotCounter
}

func newBatchMetrics(metricCreator promreg.MetricCreator) batchMetrics {
	processorMetricCreator := metricCreator.AddOrGetPrefix("processor_", nil, nil)

	return batchMetrics{
		droppedRecords: newHotCounter(processorMetricCreator.AddOrGetCounter("dropped_records_total",
			"Numbers of dropped log records", nil, nil)),
		droppedBatches: newHotCounter(processorMetricCreator.AddOrGetCounter("dropped_batches_total",
			"Numbers of dropped batches", nil, nil)),
		flushFailures: newHotCounter(processorMetricCreator.AddOrGetCounter("flush_failures_total",
			"Numbers of finally failed flushes", nil, nil)),
		flushSuccesses: newHotCounter(processorMetricCreator.AddOrGetCounter("flush_successes_total",
			"Numbers of successful flushes", nil, nil)),
		flushedRecords: newHotCounter(processorMetricCreator.AddOrGetCounter("flushed_records_total",
			"Numbers of log records in successful flushes", nil, nil)),
		flushRetries: newHotCounter(processorMetricCreator.AddOrGetCounter("flush_retries_total",
			"Numbers of flush retry attempts", nil, nil)),
	}
}

// UpdateMetrics writes accumulated values into the underlying Prometheus counters. Must only
// be called from the worker goroutine.
func (metrics *batchMetrics) UpdateMetrics() {
	metrics.droppedRecords.updateMetric()
	metrics.droppedBatches.updateMetric()
	metrics.flushFailures.updateMetric()
	metrics.flushSuccesses.updateMetric()
	metrics.flushedRecords.updateMetric()
	metrics.flushRetries.updateMetric()
}

// Snapshot reads the current counter values without locking
func (metrics *batchMetrics) Snapshot() Stats {
	return Stats{
		RecordsDropped: uint64(metrics.droppedRecords.value()),
		BatchesDropped: uint64(metrics.droppedBatches.value()),
		FlushFailures:  uint64(metrics.flushFailures.value()),
		FlushSuccesses: uint64(metrics.flushSuccesses.value()),
		FlushedRecords: uint64(metrics.flushedRecords.value()),
		FlushRetries:   uint64(metrics.flushRetries.value()),
	}
}

// hotCounter pairs a striped counter for hot-path increments with the Prometheus counter it
// is mirrored into
type hotCounter struct {
	hot      *xsync.Counter
	metric   promext.RWCounter
	mirrored int64 // value already written to the metric; worker-only
}

func newHotCounter(metric promext.RWCounter) hotCounter {
	return hotCounter{hot: xsync.NewCounter(), metric: metric}
}

func (counter *hotCounter) inc() {
	counter.hot.Inc()
}

func (counter *hotCounter) add(delta int64) {
	counter.hot.Add(delta)
}

func (counter *hotCounter) value() int64 {
	return counter.hot.Value()
}

func (counter *hotCounter) updateMetric() {
	current := counter.hot.Value()
	if delta := current - counter.mirrored; delta > 0 {
		counter.metric.Add(uint64(delta))
		counter.mirrored = current
	}
}
