package bconfig

import (
	"github.com/relex/gotils/logger"
	"github.com/relex/gotils/promexporter/promreg"
	"github.com/relex/otlp-export/base"
)

// SinkConfig provides an interface for the configuration of LogSink implementations
//
// The sink type is selected by the "type" property in YAML from a closed set of registered
// constructors; there is no open-ended lookup of implementations by name at runtime.
//
// All the implementations should support YAML unmarshalling
type SinkConfig interface {
	BaseConfig

	// NewSink builds the sink from this configuration. The returned sink is owned by the
	// BatchProcessor it is given to.
	NewSink(parentLogger logger.Logger, metricCreator promreg.MetricCreator) (base.LogSink, error)

	// VerifyConfig checks the configuration at loading time, before any sink is built
	VerifyConfig() error
}

// SinkConfigHolder holds a SinkConfig for YAML unmarshalling
type SinkConfigHolder = ConfigHolder[SinkConfig]

// SinkConfigCreatorTable maps sink type names to constructors
type SinkConfigCreatorTable = ConfigCreatorTable[SinkConfig]

// RegisterSinkConfigConstructors registers the table of sink config constructors. Can only be called once.
func RegisterSinkConfigConstructors(newMap SinkConfigCreatorTable) {
	RegisterConfigConstructors(newMap)
}
