// Package nullsink discards payloads while counting them, for tests and benchmarks
package nullsink

import (
	"github.com/relex/gotils/logger"
	"github.com/relex/gotils/promexporter/promreg"
	"github.com/relex/otlp-export/base"
	"github.com/relex/otlp-export/base/bconfig"
	"github.com/relex/otlp-export/sink/shared"
)

// Config defines configuration for the null sink; there are no options
type Config struct {
	bconfig.Header `yaml:",inline"`
}

// NewSink builds the sink
func (cfg *Config) NewSink(parentLogger logger.Logger, metricCreator promreg.MetricCreator) (base.LogSink, error) {
	return &nullSink{
		metrics: shared.NewWriterMetrics(metricCreator, "null"),
	}, nil
}

// VerifyConfig verifies the configuration
func (cfg *Config) VerifyConfig() error {
	return nil
}

type nullSink struct {
	metrics shared.WriterMetrics
}

func (sink *nullSink) Write(payload base.Payload) error {
	sink.metrics.OnWritten(payload)
	return nil
}

func (sink *nullSink) Close() error {
	return nil
}
