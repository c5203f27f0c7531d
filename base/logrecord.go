package base

import (
	"time"
)

// LogRecord is one structured log event accepted by the exporter
//
// A record is immutable once constructed; neither the exporter nor any sink may modify it.
// The Attributes map is owned by the record after construction and must not be mutated by the producer.
type LogRecord struct {
	Timestamp         time.Time        // when the event happened, stamped by the producer
	ObservedTimestamp time.Time        // when the exporter accepted the event
	Severity          Severity         // severity level carrying the OTLP severity number
	Body              string           // main message text
	Attributes        map[string]Value // per-record scalar attributes, may be nil
	Resource          *Resource        // shared process-wide resource attributes, never nil
	RawLength         int              // approximated length of the entire record, for statistics and batch size budgeting
}
