package base

// BatchEncoder encodes an ordered batch of log records into one self-contained payload
//
// Implementations must be pure and stateless: no I/O, no blocking, no state carried across
// calls, so a failed export can re-encode identical input byte-for-byte for retry.
// Record order must be preserved. An empty batch encodes to an empty document, never an error.
type BatchEncoder interface {
	// EncodeBatch encodes the given records in order. The batch is owned by the caller and
	// must not be modified. Fails only with *EncodingError on malformed input.
	EncodeBatch(records []*LogRecord) (Payload, error)
}
