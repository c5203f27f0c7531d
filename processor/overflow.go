package processor

import (
	"fmt"
)

// OverflowPolicy decides what happens to records enqueued while the buffer is at capacity
//
// Every policy counts the record it drops; none of them blocks the producer on sink I/O.
type OverflowPolicy string

// Supported overflow policies
const (
	// OverflowBlock waits a bounded time for the worker to make room, then drops the incoming record
	OverflowBlock OverflowPolicy = "block"
	// OverflowDropOldest evicts the oldest buffered record in favor of the incoming one
	OverflowDropOldest OverflowPolicy = "dropOldest"
	// OverflowDropNewest evicts the newest buffered record in favor of the incoming one
	OverflowDropNewest OverflowPolicy = "dropNewest"
	// OverflowDropIncoming rejects the incoming record, the default
	OverflowDropIncoming OverflowPolicy = "dropIncoming"
)

// VerifyOverflowPolicy checks the policy name from configuration; empty selects the default
func VerifyOverflowPolicy(policy OverflowPolicy) error {
	switch policy {
	case "", OverflowBlock, OverflowDropOldest, OverflowDropNewest, OverflowDropIncoming:
		return nil
	default:
		return fmt.Errorf("'%s' is not a valid overflow policy", policy)
	}
}
