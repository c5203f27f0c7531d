// Package tcpsink forwards payloads to a TCP upstream, newline-delimited, with optional TLS
package tcpsink

import (
	"fmt"
	"net"

	"github.com/relex/gotils/logger"
	"github.com/relex/gotils/promexporter/promreg"
	"github.com/relex/otlp-export/base"
	"github.com/relex/otlp-export/base/bconfig"
	"github.com/relex/otlp-export/defs"
	"github.com/relex/otlp-export/sink/shared"
)

// Config defines configuration for the TCP sink
type Config struct {
	bconfig.Header     `yaml:",inline"`
	Address            string `yaml:"address"`
	TLS                bool   `yaml:"tls"`
	InsecureSkipVerify bool   `yaml:"insecureSkipVerify"` // for testing against self-signed upstreams
}

// NewSink builds the sink; the connection is dialled lazily on the first write
func (cfg *Config) NewSink(parentLogger logger.Logger, metricCreator promreg.MetricCreator) (base.LogSink, error) {
	return &tcpSink{
		logger:  parentLogger.WithField(defs.LabelComponent, "TCPSink").WithField(defs.LabelName, cfg.Address),
		metrics: shared.NewWriterMetrics(metricCreator, "tcp"),
		config:  *cfg,
	}, nil
}

// VerifyConfig verifies the configuration
func (cfg *Config) VerifyConfig() error {
	if len(cfg.Address) == 0 {
		return fmt.Errorf(".address is unspecified")
	}
	if _, _, err := net.SplitHostPort(cfg.Address); err != nil {
		return fmt.Errorf(".address is invalid: %w", err)
	}
	if cfg.InsecureSkipVerify && !cfg.TLS {
		return fmt.Errorf(".insecureSkipVerify requires tls=true")
	}
	return nil
}
