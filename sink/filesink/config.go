// Package filesink writes payloads to a local file with size- or time-based rotation
package filesink

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/c2h5oh/datasize"
	"github.com/relex/gotils/logger"
	"github.com/relex/gotils/promexporter/promreg"
	"github.com/relex/otlp-export/base"
	"github.com/relex/otlp-export/base/bconfig"
	"github.com/relex/otlp-export/defs"
)

// Write modes for the active file
const (
	ModeAppend   = "append"
	ModeTruncate = "truncate"
)

// Config defines configuration for the file sink
type Config struct {
	bconfig.Header `yaml:",inline"`
	Path           string         `yaml:"path"`
	Mode           string         `yaml:"mode"`        // append (default) or truncate, for the initial opening only
	Rotation       RotationConfig `yaml:"rotation"`    // zero values disable rotation
	WatchRename    bool           `yaml:"watchRename"` // reopen the path if the file under it was moved, e.g. by logrotate
	Sync           bool           `yaml:"sync"`        // fdatasync after every write
}

// RotationConfig defines the rotation section of a file sink
type RotationConfig struct {
	MaxSize    datasize.ByteSize `yaml:"maxSize"`    // rotate before a write would exceed this size, e.g. 5MB
	Interval   time.Duration     `yaml:"interval"`   // rotate when the active file gets older than this
	MaxBackups int               `yaml:"maxBackups"` // numbers of rotated files kept as path.1 .. path.N
	Compress   bool              `yaml:"compress"`   // gzip rotated backups to path.N.gz
}

// Enabled tells whether any rotation trigger is configured
func (rcfg *RotationConfig) Enabled() bool {
	return rcfg.MaxSize > 0 || rcfg.Interval > 0
}

// applyDefaults fills unset rotation thresholds once any rotation option is set
func (cfg *Config) applyDefaults() {
	rotation := &cfg.Rotation
	if !rotation.Enabled() && rotation.MaxBackups == 0 && !rotation.Compress {
		return
	}
	if rotation.MaxSize == 0 && rotation.Interval == 0 {
		rotation.MaxSize = datasize.ByteSize(defs.FileSinkDefaultMaxSize)
	}
	if rotation.MaxBackups == 0 {
		rotation.MaxBackups = defs.FileSinkDefaultMaxBackups
	}
}

// NewSink opens the file and builds the sink
func (cfg *Config) NewSink(parentLogger logger.Logger, metricCreator promreg.MetricCreator) (base.LogSink, error) {
	return newFileSink(parentLogger, cfg, metricCreator)
}

// VerifyConfig verifies the configuration
func (cfg *Config) VerifyConfig() error {
	if len(cfg.Path) == 0 {
		return fmt.Errorf(".path is unspecified")
	}
	if filepath.Clean(cfg.Path) == string(filepath.Separator) {
		return fmt.Errorf(".path is invalid: '%s'", cfg.Path)
	}
	switch cfg.Mode {
	case "", ModeAppend, ModeTruncate:
	default:
		return fmt.Errorf(".mode: '%s' is not a valid mode", cfg.Mode)
	}
	if cfg.Rotation.MaxBackups < 0 {
		return fmt.Errorf(".rotation.maxBackups must not be negative")
	}
	if cfg.Rotation.Interval < 0 {
		return fmt.Errorf(".rotation.interval must not be negative")
	}
	if cfg.WatchRename && cfg.Rotation.Enabled() {
		return fmt.Errorf(".watchRename cannot be combined with .rotation")
	}
	return nil
}
