package base

import (
	"github.com/relex/gotils/channels"
)

// PipelineWorker represents a background worker owning one stage of the export pipeline
type PipelineWorker interface {
	Launch()
	Stopped() channels.Awaitable
}
