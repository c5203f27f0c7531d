package base

// LogSink durably persists encoded payloads, e.g. to a rotating file or a network upstream
//
// A sink instance is owned by one BatchProcessor and written from its worker goroutine only,
// except Rotate which may be called concurrently (implementations supporting it must lock).
type LogSink interface {
	// Write persists one payload. A non-nil error is always a *SinkError; its class decides
	// whether the caller may retry.
	Write(payload Payload) error

	// Close releases the sink. It must be idempotent: calls after the first are no-ops.
	Close() error
}

// SinkFlusher is an optional sink capability to force buffered data out to storage
type SinkFlusher interface {
	Flush() error
}

// SinkRotator is an optional sink capability to rotate the active destination on demand,
// e.g. on SIGHUP for a file sink
type SinkRotator interface {
	Rotate() error
}
