package defs

import (
	"time"
)

var (
	// ExporterQueueCapacity defines the maximum numbers of log records buffered inside a BatchProcessor
	//
	// When the limit is reached, the configured overflow policy decides which records are dropped.
	// The default follows the OpenTelemetry SDK's batch processor queue size.
	ExporterQueueCapacity = 2048

	// ExportBatchMaxRecords defines the maximum numbers of log records packed into one exported payload
	ExportBatchMaxRecords = 512

	// ExportBatchMaxBytes defines the maximum total length of log records packed into one exported payload
	//
	// Lengths are estimated from record bodies and attributes before encoding, not from the encoded payload
	ExportBatchMaxBytes = 4 * 1024 * 1024

	// ExportBatchMaxAge defines how long a buffered record may wait before an export is forced
	//
	// The age is measured from the oldest record in the buffer. The value affects the delay of logs.
	ExportBatchMaxAge = 1 * time.Second

	// ExportMaxRetries defines how many times a failed export is retried for transient sink errors
	//
	// Permanent sink errors are never retried. The batch is dropped and counted when retries run out.
	ExportMaxRetries = 3

	// ExportRetryInitialDelay is the backoff delay before the first export retry, doubled for each attempt
	ExportRetryInitialDelay = 500 * time.Millisecond

	// ExportRetryMaxDelay caps the exponential backoff delay between export retries
	ExportRetryMaxDelay = 5 * time.Second

	// ExporterShutdownTimeout is the default duration to wait for the final drain on shutdown
	ExporterShutdownTimeout = 30 * time.Second

	// EnqueueBlockTimeout bounds how long an Enqueue with the "block" overflow policy may wait for
	// the background worker to make room, before the incoming record is dropped and counted
	EnqueueBlockTimeout = 100 * time.Millisecond
)

var (
	// SinkConnectionTimeout is for establishing a TCP connection to a network sink
	SinkConnectionTimeout = 10 * time.Second

	// SinkSendMinimumSpeed is the minimum speed in bytes/sec to calculate network write timeout
	//
	// Actual timeout for sending is [base] + [payload length] / [minimal speed]
	SinkSendMinimumSpeed = 10 * 1024

	// SinkSendTimeoutBase is how long to wait at least for sending one payload to a network sink
	SinkSendTimeoutBase = 15 * time.Second
)

const (
	// FileSinkDefaultMaxSize is the rotation threshold of a file sink when none is configured
	FileSinkDefaultMaxSize = 5 * 1024 * 1024

	// FileSinkDefaultMaxBackups is the numbers of rotated backup files kept when none is configured
	FileSinkDefaultMaxBackups = 5
)

// For testing and experiments
const (
	TestReadTimeout = 5 * time.Second
)

// EnableTestMode turns on test mode with very short timeout and minimal retry delay
func EnableTestMode() {
	ExportBatchMaxAge = 100 * time.Millisecond
	ExportRetryInitialDelay = 10 * time.Millisecond
	ExportRetryMaxDelay = 100 * time.Millisecond
	ExporterShutdownTimeout = 3 * time.Second
	SinkConnectionTimeout = 1 * time.Second
	SinkSendTimeoutBase = 3 * time.Second
}
