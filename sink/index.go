// Package sink registers the list of all LogSink implementations
package sink

import (
	"github.com/relex/otlp-export/base/bconfig"
	"github.com/relex/otlp-export/sink/filesink"
	"github.com/relex/otlp-export/sink/nullsink"
	"github.com/relex/otlp-export/sink/stdoutsink"
	"github.com/relex/otlp-export/sink/tcpsink"
)

func init() {
	bconfig.RegisterSinkConfigConstructors(map[string]func() bconfig.SinkConfig{
		"file":   func() bconfig.SinkConfig { return &filesink.Config{} },
		"stdout": func() bconfig.SinkConfig { return &stdoutsink.Config{} },
		"null":   func() bconfig.SinkConfig { return &nullsink.Config{} },
		"tcp":    func() bconfig.SinkConfig { return &tcpsink.Config{} },
	})
}

// Register registers all sink config types
func Register() {
	// trigger init()
}
