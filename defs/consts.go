package defs

// Common labels for logging
const (
	LabelComponent = "component"
	LabelName      = "name"
	LabelSink      = "sink"
)
