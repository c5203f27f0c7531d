package filesink

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/relex/gotils/logger"
	"github.com/relex/gotils/promexporter/promreg"
	"github.com/relex/otlp-export/base"
	"github.com/relex/otlp-export/defs"
	"github.com/relex/otlp-export/sink/shared"
	"github.com/relex/otlp-export/util"
)

// fileSink appends one payload plus newline per Write to the active file
//
// Rotation is a close + rename chain + fresh file, so a reader never observes interleaved
// partial writes: every line in the active file or any backup is one complete payload.
type fileSink struct {
	logger   logger.Logger
	metrics  shared.WriterMetrics
	config   Config
	mu       sync.Mutex // guards everything below; Rotate may be called outside the worker
	file     *os.File
	size     int64
	openedAt time.Time
	identity util.FileIdentity
	closed   bool
}

func newFileSink(parentLogger logger.Logger, config *Config, metricCreator promreg.MetricCreator) (base.LogSink, error) {
	sink := &fileSink{
		logger:  parentLogger.WithField(defs.LabelComponent, "FileSink").WithField(defs.LabelName, config.Path),
		metrics: shared.NewWriterMetrics(metricCreator, "file"),
		config:  *config,
	}
	sink.config.applyDefaults()

	if dir := filepath.Dir(config.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create parent directory: %w", err)
		}
	}
	if err := sink.openLocked(config.Mode == ModeTruncate); err != nil {
		return nil, fmt.Errorf("failed to open '%s': %w", config.Path, err)
	}
	sink.logger.Infof("opened file, size=%d", sink.size)
	return sink, nil
}

// Write persists one payload as a single line
func (sink *fileSink) Write(payload base.Payload) error {
	sink.mu.Lock()
	defer sink.mu.Unlock()

	if sink.closed {
		return base.NewPermanentSinkError("write", os.ErrClosed)
	}
	if sink.config.WatchRename {
		sink.checkReopenLocked()
	}
	if sink.rotationDueLocked(int64(len(payload.Data)) + 1) {
		if err := sink.rotateLocked(); err != nil {
			sink.metrics.OnError()
			return err
		}
	}

	// one write call per payload, never interleaved with the record separator
	line := make([]byte, 0, len(payload.Data)+1)
	line = append(line, payload.Data...)
	line = append(line, '\n')

	numWritten, werr := sink.file.Write(line)
	sink.size += int64(numWritten)
	if werr != nil {
		sink.metrics.OnError()
		return classifyIOError("write", werr)
	}
	if sink.config.Sync {
		if serr := util.Fdatasync(sink.file); serr != nil {
			sink.metrics.OnError()
			return classifyIOError("sync", serr)
		}
	}
	sink.metrics.OnWritten(payload)
	return nil
}

// Flush forces written data to storage
func (sink *fileSink) Flush() error {
	sink.mu.Lock()
	defer sink.mu.Unlock()

	if sink.closed {
		return nil
	}
	if err := util.Fdatasync(sink.file); err != nil {
		return classifyIOError("flush", err)
	}
	return nil
}

// Rotate archives the active file and starts a fresh one, regardless of thresholds
func (sink *fileSink) Rotate() error {
	sink.mu.Lock()
	defer sink.mu.Unlock()

	if sink.closed {
		return base.NewPermanentSinkError("rotate", os.ErrClosed)
	}
	return sink.rotateLocked()
}

// Close closes the active file; calls after the first are no-ops
func (sink *fileSink) Close() error {
	sink.mu.Lock()
	defer sink.mu.Unlock()

	if sink.closed {
		return nil
	}
	sink.closed = true
	if err := sink.file.Close(); err != nil {
		return classifyIOError("close", err)
	}
	sink.logger.Infof("closed file, size=%d", sink.size)
	return nil
}

func (sink *fileSink) openLocked(truncate bool) error {
	flag := os.O_WRONLY | os.O_CREATE
	if truncate {
		flag |= os.O_TRUNC
	} else {
		flag |= os.O_APPEND
	}
	file, oerr := os.OpenFile(sink.config.Path, flag, 0o644)
	if oerr != nil {
		return oerr
	}

	stat, serr := file.Stat()
	if serr != nil {
		file.Close()
		return serr
	}
	identity, ierr := util.GetOpenFileIdentity(file)
	if ierr != nil {
		file.Close()
		return ierr
	}

	sink.file = file
	sink.size = stat.Size()
	sink.openedAt = time.Now() // age of pre-existing contents is unknown; interval starts here
	sink.identity = identity
	return nil
}

func (sink *fileSink) rotationDueLocked(incomingLength int64) bool {
	rotation := &sink.config.Rotation
	if rotation.MaxSize > 0 && sink.size > 0 && sink.size+incomingLength > int64(rotation.MaxSize) {
		return true
	}
	if rotation.Interval > 0 && time.Since(sink.openedAt) >= rotation.Interval {
		return true
	}
	return false
}

func (sink *fileSink) rotateLocked() error {
	if err := sink.file.Close(); err != nil {
		sink.logger.Warnf("failed to close for rotation: %s", err.Error())
	}
	if err := sink.shiftBackupsLocked(); err != nil {
		// reopen in append mode so logging continues into the unrotated file
		if oerr := sink.openLocked(false); oerr != nil {
			return classifyIOError("rotate", oerr)
		}
		return classifyIOError("rotate", err)
	}
	if err := sink.openLocked(false); err != nil {
		return classifyIOError("rotate", err)
	}
	sink.metrics.OnRotated()
	sink.logger.Infof("rotated file")
	return nil
}

// checkReopenLocked reopens the path if the file under it was renamed or removed by an
// external rotation tool. Best-effort: failures keep the current file.
func (sink *fileSink) checkReopenLocked() {
	identity, err := util.GetFileIdentity(sink.config.Path)
	if err == nil && identity == sink.identity {
		return
	}

	previous := sink.file
	if oerr := sink.openLocked(false); oerr != nil {
		sink.logger.Warnf("failed to reopen moved file: %s", oerr.Error())
		return
	}
	previous.Close()
	sink.logger.Infof("reopened file after external move")
}
