package processor

import (
	"time"

	"github.com/relex/otlp-export/base"
	"github.com/relex/otlp-export/util"
)

// run is the worker loop; the only goroutine that encodes, writes, sleeps and closes the sink
func (proc *BatchProcessor) run() {
	defer proc.stopped.Signal()
	proc.logger.Infof("started, queue=%d batch=%d/%dB age=%s policy=%s",
		proc.args.QueueCapacity, proc.args.MaxBatchRecords, proc.args.MaxBatchBytes,
		proc.args.MaxBatchAge, proc.args.OverflowPolicy)

	ageTimer := time.NewTimer(proc.args.MaxBatchAge)
	defer ageTimer.Stop()

	for {
		timerFired := false
		select {
		case <-proc.wakeChan:
			proc.flushWhileFull()

		case <-ageTimer.C:
			timerFired = true
			proc.flushIfAged()

		case request := <-proc.flushChan:
			request.result <- proc.flushAll()

		case <-proc.drainChan:
			proc.finalErr = proc.flushAll()
			if cerr := proc.sink.Close(); cerr != nil {
				proc.logger.Warnf("failed to close sink: %s", cerr.Error())
			}
			proc.metrics.UpdateMetrics()
			proc.logger.Infof("stopped")
			return
		}
		proc.metrics.UpdateMetrics()

		if timerFired {
			ageTimer.Reset(proc.nextAgeWait())
		} else {
			util.ResetTimer(ageTimer, proc.nextAgeWait())
		}
	}
}

// nextAgeWait computes how long until the oldest buffered record reaches the max batch age
func (proc *BatchProcessor) nextAgeWait() time.Duration {
	proc.mu.Lock()
	defer proc.mu.Unlock()

	if len(proc.buffer) == 0 {
		return proc.args.MaxBatchAge
	}
	if wait := proc.args.MaxBatchAge - time.Since(proc.oldestEnqueue); wait > time.Millisecond {
		return wait
	}
	return time.Millisecond
}

// flushWhileFull flushes until the buffer is below both size thresholds. Failed batches are
// dropped by flushOnce, so each round consumes records and the loop terminates.
func (proc *BatchProcessor) flushWhileFull() {
	for {
		proc.mu.Lock()
		full := len(proc.buffer) >= proc.args.MaxBatchRecords || proc.bufferedBytes >= proc.args.MaxBatchBytes
		proc.mu.Unlock()
		if !full {
			return
		}
		proc.flushOnce()
	}
}

// flushIfAged flushes one batch if the oldest buffered record has waited long enough
func (proc *BatchProcessor) flushIfAged() {
	proc.mu.Lock()
	aged := len(proc.buffer) > 0 && time.Since(proc.oldestEnqueue) >= proc.args.MaxBatchAge
	proc.mu.Unlock()
	if aged {
		proc.flushOnce()
	}
}

// flushAll flushes everything buffered, batch by batch, returning the first error
func (proc *BatchProcessor) flushAll() error {
	var firstErr error
	for {
		proc.mu.Lock()
		empty := len(proc.buffer) == 0
		proc.mu.Unlock()
		if empty {
			return firstErr
		}
		if err := proc.flushOnce(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
}

// takeBatch atomically swaps out up to one batch worth of buffered records, so concurrent
// Enqueue calls proceed against a fresh buffer while this batch is encoded and written
func (proc *BatchProcessor) takeBatch() []*base.LogRecord {
	proc.mu.Lock()
	defer proc.mu.Unlock()

	total := len(proc.buffer)
	if total == 0 {
		return nil
	}

	count := 0
	batchBytes := 0
	for count < total && count < proc.args.MaxBatchRecords {
		batchBytes += proc.buffer[count].RawLength
		count++
		if batchBytes >= proc.args.MaxBatchBytes {
			break
		}
	}

	batch := proc.buffer[:count:count]
	if count == total {
		proc.buffer = make([]*base.LogRecord, 0, proc.args.QueueCapacity)
		proc.bufferedBytes = 0
	} else {
		remainder := make([]*base.LogRecord, total-count, proc.args.QueueCapacity)
		copy(remainder, proc.buffer[count:])
		proc.buffer = remainder
		proc.bufferedBytes -= batchBytes
		proc.oldestEnqueue = time.Now() // enqueue time of the remainder's head is unknown; best effort
	}
	return batch
}

// flushOnce encodes and writes one batch. The batch is always consumed: on failure it is
// dropped and counted, never re-queued, so producers can never be stalled by a broken sink.
func (proc *BatchProcessor) flushOnce() error {
	batch := proc.takeBatch()
	if len(batch) == 0 {
		return nil
	}

	payload, eerr := proc.encoder.EncodeBatch(batch)
	if eerr != nil {
		proc.metrics.droppedBatches.inc()
		proc.metrics.droppedRecords.add(int64(len(batch)))
		proc.logger.Errorf("failed to encode batch of %d records: %s", len(batch), eerr.Error())
		return eerr
	}

	if werr := proc.writeWithRetry(payload); werr != nil {
		proc.metrics.flushFailures.inc()
		proc.metrics.droppedBatches.inc()
		proc.metrics.droppedRecords.add(int64(len(batch)))
		proc.logger.Warnf("dropped batch of %d records: %s", len(batch), werr.Error())
		return werr
	}

	proc.metrics.flushSuccesses.inc()
	proc.metrics.flushedRecords.add(int64(len(batch)))
	return nil
}

// writeWithRetry writes the payload, retrying transient sink errors with capped exponential
// backoff. Permanent errors surface immediately. A flush that succeeds on retry is a success.
func (proc *BatchProcessor) writeWithRetry(payload base.Payload) error {
	delay := proc.args.RetryInitialDelay
	for attempt := 0; ; attempt++ {
		werr := proc.sink.Write(payload)
		if werr == nil {
			return nil
		}

		serr := base.ClassifySinkError("write", werr)
		if !serr.IsTransient() || attempt >= proc.args.MaxRetries {
			return serr
		}

		proc.metrics.flushRetries.inc()
		proc.logger.Warnf("retrying flush of %s in %s (attempt %d/%d): %s",
			payload, delay, attempt+1, proc.args.MaxRetries, serr.Error())
		time.Sleep(delay)

		delay *= 2
		if delay > proc.args.RetryMaxDelay {
			delay = proc.args.RetryMaxDelay
		}
	}
}
