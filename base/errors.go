package base

import (
	"errors"
	"fmt"
)

// ErrClosed is returned by exporter operations attempted after shutdown has been initiated
var ErrClosed = errors.New("exporter closed")

// SinkErrorClass classifies sink failures for retry eligibility
type SinkErrorClass int

const (
	// SinkErrorTransient marks failures eligible for bounded retry, e.g. temporary disk-full or contention
	SinkErrorTransient SinkErrorClass = iota
	// SinkErrorPermanent marks failures that would not succeed on retry, e.g. invalid path or permission denied
	SinkErrorPermanent
)

func (class SinkErrorClass) String() string {
	switch class {
	case SinkErrorTransient:
		return "transient"
	case SinkErrorPermanent:
		return "permanent"
	default:
		return fmt.Sprintf("class(%d)", int(class))
	}
}

// SinkError is the failure type of all LogSink operations
type SinkError struct {
	Class SinkErrorClass
	Op    string // failed operation for diagnostics, e.g. "write" or "rotate"
	Err   error
}

// NewTransientSinkError wraps an underlying error as retriable
func NewTransientSinkError(op string, err error) *SinkError {
	return &SinkError{Class: SinkErrorTransient, Op: op, Err: err}
}

// NewPermanentSinkError wraps an underlying error as non-retriable
func NewPermanentSinkError(op string, err error) *SinkError {
	return &SinkError{Class: SinkErrorPermanent, Op: op, Err: err}
}

func (serr *SinkError) Error() string {
	return fmt.Sprintf("%s %s: %s", serr.Class, serr.Op, serr.Err.Error())
}

func (serr *SinkError) Unwrap() error {
	return serr.Err
}

// IsTransient tells whether the caller may retry the failed operation
func (serr *SinkError) IsTransient() bool {
	return serr.Class == SinkErrorTransient
}

// ClassifySinkError returns the *SinkError inside err, or wraps an unclassified error as transient
func ClassifySinkError(op string, err error) *SinkError {
	var serr *SinkError
	if errors.As(err, &serr) {
		return serr
	}
	return NewTransientSinkError(op, err)
}

// EncodingError reports malformed input to a BatchEncoder, e.g. non-UTF8 text in a record body
//
// It should not occur with a correct producer and is never retried.
type EncodingError struct {
	Index  int    // index of the offending record within the batch
	Field  string // offending field, e.g. "body" or "attributes[key]"
	Reason string
}

func (eerr *EncodingError) Error() string {
	return fmt.Sprintf("record[%d].%s: %s", eerr.Index, eerr.Field, eerr.Reason)
}
