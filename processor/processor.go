// Package processor implements the batching core of the export pipeline: it accepts
// individual log records from producers without ever blocking them on I/O, and delivers
// encoded batches to a LogSink on a bounded schedule with bounded retry.
package processor

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/relex/gotils/channels"
	"github.com/relex/gotils/logger"
	"github.com/relex/gotils/promexporter/promreg"
	"github.com/relex/otlp-export/base"
	"github.com/relex/otlp-export/defs"
)

// Args is the tuning parameters of a BatchProcessor. Zero fields take defaults from defs.
type Args struct {
	QueueCapacity     int            // max numbers of buffered records before the overflow policy applies
	MaxBatchRecords   int            // flush when this many records are buffered
	MaxBatchBytes     int            // flush when buffered records reach this estimated total length
	MaxBatchAge       time.Duration  // flush when the oldest buffered record reaches this age
	OverflowPolicy    OverflowPolicy // what to do with records enqueued at capacity
	MaxRetries        int            // retries per flush for transient sink errors
	RetryInitialDelay time.Duration  // backoff before the first retry, doubled each attempt
	RetryMaxDelay     time.Duration  // backoff cap
}

// ApplyDefaults fills unset fields from the shared defaults
func (args *Args) ApplyDefaults() {
	if args.QueueCapacity == 0 {
		args.QueueCapacity = defs.ExporterQueueCapacity
	}
	if args.MaxBatchRecords == 0 {
		args.MaxBatchRecords = defs.ExportBatchMaxRecords
		// the default batch size can never outgrow a configured queue; without the clamp a
		// small queue would only ever flush on age
		if args.MaxBatchRecords > args.QueueCapacity {
			args.MaxBatchRecords = args.QueueCapacity
		}
	}
	if args.MaxBatchBytes == 0 {
		args.MaxBatchBytes = defs.ExportBatchMaxBytes
	}
	if args.MaxBatchAge == 0 {
		args.MaxBatchAge = defs.ExportBatchMaxAge
	}
	if args.OverflowPolicy == "" {
		args.OverflowPolicy = OverflowDropIncoming
	}
	if args.MaxRetries == 0 {
		args.MaxRetries = defs.ExportMaxRetries
	}
	if args.RetryInitialDelay == 0 {
		args.RetryInitialDelay = defs.ExportRetryInitialDelay
	}
	if args.RetryMaxDelay == 0 {
		args.RetryMaxDelay = defs.ExportRetryMaxDelay
	}
}

// Processor states
const (
	stateRunning int32 = iota
	stateDraining
	stateStopped
)

type flushRequest struct {
	result chan error
}

// BatchProcessor buffers incoming log records and drives encoder and sink from one
// background worker goroutine
//
// Producers call Enqueue concurrently; its critical section only appends to or swaps the
// buffer, never touching the sink. All I/O, retry backoff and sleeping happen on the worker.
// The sink is owned by the processor and closed by the worker on shutdown.
type BatchProcessor struct {
	logger  logger.Logger
	encoder base.BatchEncoder
	sink    base.LogSink
	args    Args
	metrics batchMetrics

	state         atomic.Int32
	mu            sync.Mutex
	buffer        []*base.LogRecord
	bufferedBytes int
	oldestEnqueue time.Time // when the oldest buffered record was enqueued; valid while buffer is non-empty

	wakeChan  chan struct{}     // capacity 1; nudges the worker to check size triggers
	flushChan chan flushRequest // synchronous flush requests from FlushNow
	drainChan chan struct{}     // closed once by Shutdown
	stopped   *channels.SignalAwaitable
	finalErr  error // outcome of the final drain, written by the worker before the stopped signal
}

// NewBatchProcessor creates a BatchProcessor owning the given sink. Call Launch to start it.
func NewBatchProcessor(parentLogger logger.Logger, args Args, encoder base.BatchEncoder, sink base.LogSink,
	metricCreator promreg.MetricCreator) *BatchProcessor {

	args.ApplyDefaults()

	return &BatchProcessor{
		logger:    parentLogger.WithField(defs.LabelComponent, "BatchProcessor"),
		encoder:   encoder,
		sink:      sink,
		args:      args,
		metrics:   newBatchMetrics(metricCreator),
		buffer:    make([]*base.LogRecord, 0, args.QueueCapacity),
		wakeChan:  make(chan struct{}, 1),
		flushChan: make(chan flushRequest),
		drainChan: make(chan struct{}),
		stopped:   channels.NewSignalAwaitable(),
	}
}

// Launch starts the background worker
func (proc *BatchProcessor) Launch() {
	go proc.run()
}

// Stopped returns an Awaitable which is signaled when the worker has stopped and the sink is closed
func (proc *BatchProcessor) Stopped() channels.Awaitable {
	return proc.stopped
}

// Stats returns a snapshot of the processor counters; it never blocks producers or the worker
func (proc *BatchProcessor) Stats() Stats {
	return proc.metrics.Snapshot()
}

// Enqueue adds one record to the buffer. It never blocks on I/O and never fails for a full
// buffer: overflow is resolved by the configured policy and counted. Fails with
// base.ErrClosed once shutdown has been initiated.
func (proc *BatchProcessor) Enqueue(record *base.LogRecord) error {
	if proc.state.Load() != stateRunning {
		return base.ErrClosed
	}

	proc.mu.Lock()
	// re-check under the mutex: a producer that passed the check above while Shutdown raced
	// ahead must not append behind the worker's final drain, where the record would vanish
	// uncounted
	if proc.state.Load() != stateRunning {
		proc.mu.Unlock()
		return base.ErrClosed
	}
	if len(proc.buffer) >= proc.args.QueueCapacity && !proc.resolveOverflowLocked(record) {
		proc.mu.Unlock()
		proc.metrics.droppedRecords.inc()
		proc.wake()
		return nil
	}

	if len(proc.buffer) == 0 {
		proc.oldestEnqueue = time.Now()
	}
	proc.buffer = append(proc.buffer, record)
	proc.bufferedBytes += record.RawLength
	full := len(proc.buffer) >= proc.args.MaxBatchRecords || proc.bufferedBytes >= proc.args.MaxBatchBytes
	first := len(proc.buffer) == 1
	proc.mu.Unlock()

	if full || first {
		proc.wake()
	}
	return nil
}

// resolveOverflowLocked applies the overflow policy; returns true if the incoming record may
// now be appended (room was made), false if it must be dropped
func (proc *BatchProcessor) resolveOverflowLocked(record *base.LogRecord) bool {
	switch proc.args.OverflowPolicy {
	case OverflowDropOldest:
		evicted := proc.buffer[0]
		copy(proc.buffer, proc.buffer[1:])
		proc.buffer = proc.buffer[:len(proc.buffer)-1]
		proc.bufferedBytes -= evicted.RawLength
		proc.oldestEnqueue = time.Now() // enqueue time of the next record is unknown; best effort
		proc.metrics.droppedRecords.inc()
		return true

	case OverflowDropNewest:
		evicted := proc.buffer[len(proc.buffer)-1]
		proc.buffer = proc.buffer[:len(proc.buffer)-1]
		proc.bufferedBytes -= evicted.RawLength
		proc.metrics.droppedRecords.inc()
		return true

	case OverflowBlock:
		return proc.waitForSpaceLocked()

	default: // OverflowDropIncoming
		return false
	}
}

// waitForSpaceLocked waits a bounded time for the worker to drain the buffer. The mutex is
// released while waiting so the worker can swap the buffer out.
func (proc *BatchProcessor) waitForSpaceLocked() bool {
	deadline := time.Now().Add(defs.EnqueueBlockTimeout)
	for {
		if len(proc.buffer) < proc.args.QueueCapacity {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		proc.mu.Unlock()
		proc.wake()
		time.Sleep(time.Millisecond)
		proc.mu.Lock()
		// the final drain may have emptied the buffer while the mutex was released; the
		// record must be dropped and counted rather than appended behind it
		if proc.state.Load() != stateRunning {
			return false
		}
	}
}

// FlushNow forces a synchronous flush of everything buffered, blocking the caller until the
// flush completes or the timeout elapses
func (proc *BatchProcessor) FlushNow(timeout time.Duration) error {
	if proc.state.Load() != stateRunning {
		return base.ErrClosed
	}

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	request := flushRequest{result: make(chan error, 1)}
	select {
	case proc.flushChan <- request:
	case <-deadline.C:
		return fmt.Errorf("flush request not taken within %s", timeout)
	}
	select {
	case err := <-request.result:
		return err
	case <-deadline.C:
		return fmt.Errorf("flush not finished within %s", timeout)
	}
}

// Shutdown stops accepting records immediately, drains the remaining buffer within the given
// timeout, closes the sink and stops the worker
//
// The processor always ends up Stopped; the returned error reports whether the final drain
// succeeded so the caller can tell if data was lost. A second call fails with base.ErrClosed.
func (proc *BatchProcessor) Shutdown(timeout time.Duration) error {
	if !proc.state.CompareAndSwap(stateRunning, stateDraining) {
		return base.ErrClosed
	}
	close(proc.drainChan)

	if !proc.stopped.Wait(timeout) {
		proc.state.Store(stateStopped)
		return fmt.Errorf("final drain not finished within %s", timeout)
	}
	proc.state.Store(stateStopped)

	if proc.finalErr != nil {
		return fmt.Errorf("final flush: %w", proc.finalErr)
	}
	return nil
}

// wake nudges the worker without ever blocking the caller
func (proc *BatchProcessor) wake() {
	select {
	case proc.wakeChan <- struct{}{}:
	default:
	}
}
