// Package exporter provides the public entry point of the export pipeline: applications
// hold one Exporter and call Emit per log event
package exporter

import (
	"errors"
	"time"

	"github.com/relex/gotils/channels"
	"github.com/relex/gotils/logger"
	"github.com/relex/gotils/promexporter/promreg"
	"github.com/relex/otlp-export/base"
	"github.com/relex/otlp-export/defs"
	"github.com/relex/otlp-export/processor"
)

// recordOverheadLength approximates the encoded length of per-record fields other than body
// and attributes (timestamps, severity, wrappers), for batch size budgeting
const recordOverheadLength = 64

// Exporter is the facade over one BatchProcessor and its sink
//
// An Exporter is constructed once and passed by reference to producers; there is no global
// instance. All methods are safe for concurrent use.
type Exporter struct {
	logger   logger.Logger
	resource *base.Resource
	proc     *processor.BatchProcessor
	sink     base.LogSink
}

// New creates an Exporter owning the given sink. Call Launch to start the background worker.
func New(parentLogger logger.Logger, resource *base.Resource, encoder base.BatchEncoder, sink base.LogSink,
	args processor.Args, metricCreator promreg.MetricCreator) *Exporter {

	return &Exporter{
		logger:   parentLogger.WithField(defs.LabelComponent, "Exporter"),
		resource: resource,
		proc:     processor.NewBatchProcessor(parentLogger, args, encoder, sink, metricCreator),
		sink:     sink,
	}
}

// Launch starts the background flush worker
func (exp *Exporter) Launch() {
	exp.proc.Launch()
}

// Stopped returns an Awaitable which is signaled when the pipeline has fully stopped
func (exp *Exporter) Stopped() channels.Awaitable {
	return exp.proc.Stopped()
}

// Emit accepts one log event. It never blocks on I/O and never fails for a full buffer or a
// broken sink; those are absorbed into the background path and reflected in Stats. The only
// error is base.ErrClosed for calls after Shutdown.
//
// The attributes map is owned by the exporter after the call and must not be mutated.
func (exp *Exporter) Emit(severity base.Severity, body string, attributes map[string]base.Value) error {
	now := time.Now()

	rawLength := recordOverheadLength + len(body)
	for key, value := range attributes {
		rawLength += len(key) + value.RawLength()
	}

	return exp.proc.Enqueue(&base.LogRecord{
		Timestamp:         now,
		ObservedTimestamp: now,
		Severity:          severity,
		Body:              body,
		Attributes:        attributes,
		Resource:          exp.resource,
		RawLength:         rawLength,
	})
}

// Flush forces a synchronous flush of everything buffered, blocking until done or timeout
func (exp *Exporter) Flush(timeout time.Duration) error {
	return exp.proc.FlushNow(timeout)
}

// Rotate rotates the sink destination if the sink supports it, e.g. the file sink on SIGHUP
func (exp *Exporter) Rotate() error {
	rotator, ok := exp.sink.(base.SinkRotator)
	if !ok {
		return nil
	}
	return rotator.Rotate()
}

// Shutdown drains the remaining buffer within the timeout and stops the pipeline
//
// It returns whether the final drain succeeded so the caller can tell if data was lost.
// Calling Shutdown again is safe: the repeated call is a no-op reporting success.
func (exp *Exporter) Shutdown(timeout time.Duration) error {
	err := exp.proc.Shutdown(timeout)
	if errors.Is(err, base.ErrClosed) {
		exp.logger.Debugf("repeated shutdown ignored")
		return nil
	}
	return err
}

// Stats returns a snapshot of the pipeline counters without blocking the emit hot path
func (exp *Exporter) Stats() processor.Stats {
	return exp.proc.Stats()
}
