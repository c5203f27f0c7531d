package base

import (
	"fmt"
)

// Payload represents an encoded batch of log records ready for storage or transport as its own unit
type Payload struct {
	Data    []byte // one self-contained encoded document
	Records int    // numbers of log records encoded inside
}

func (payload Payload) String() string {
	return fmt.Sprintf("len=%d records=%d", len(payload.Data), payload.Records)
}
