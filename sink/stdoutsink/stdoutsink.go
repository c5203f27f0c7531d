// Package stdoutsink writes payloads to the process's standard output, one per line
package stdoutsink

import (
	"errors"
	"fmt"
	"io"
	"os"
	"syscall"

	"github.com/relex/gotils/logger"
	"github.com/relex/gotils/promexporter/promreg"
	"github.com/relex/otlp-export/base"
	"github.com/relex/otlp-export/base/bconfig"
	"github.com/relex/otlp-export/defs"
	"github.com/relex/otlp-export/sink/shared"
)

// Config defines configuration for the stdout sink; there are no options
type Config struct {
	bconfig.Header `yaml:",inline"`
}

// NewSink builds the sink
func (cfg *Config) NewSink(parentLogger logger.Logger, metricCreator promreg.MetricCreator) (base.LogSink, error) {
	return &stdoutSink{
		logger:  parentLogger.WithField(defs.LabelComponent, "StdoutSink"),
		metrics: shared.NewWriterMetrics(metricCreator, "stdout"),
		writer:  os.Stdout,
	}, nil
}

// VerifyConfig verifies the configuration
func (cfg *Config) VerifyConfig() error {
	return nil
}

// stdoutSink never rotates and never closes the real stdout
type stdoutSink struct {
	logger  logger.Logger
	metrics shared.WriterMetrics
	writer  io.Writer
	closed  bool
}

func (sink *stdoutSink) Write(payload base.Payload) error {
	if sink.closed {
		return base.NewPermanentSinkError("write", os.ErrClosed)
	}

	line := make([]byte, 0, len(payload.Data)+1)
	line = append(line, payload.Data...)
	line = append(line, '\n')

	if _, err := sink.writer.Write(line); err != nil {
		sink.metrics.OnError()
		if errors.Is(err, syscall.EPIPE) || errors.Is(err, os.ErrClosed) {
			return base.NewPermanentSinkError("write", err)
		}
		return base.NewTransientSinkError("write", err)
	}
	sink.metrics.OnWritten(payload)
	return nil
}

func (sink *stdoutSink) Close() error {
	sink.closed = true
	return nil
}

func (sink *stdoutSink) String() string {
	return fmt.Sprintf("stdoutSink(closed=%v)", sink.closed)
}
