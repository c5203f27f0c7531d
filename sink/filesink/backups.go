package filesink

import (
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
)

// shiftBackupsLocked archives the closed active file as backup 1, shifting older backups up
// and dropping the one past maxBackups. With maxBackups=0 the active file is simply removed.
func (sink *fileSink) shiftBackupsLocked() error {
	rotation := &sink.config.Rotation
	if rotation.MaxBackups == 0 {
		return os.Remove(sink.config.Path)
	}

	extension := ""
	if rotation.Compress {
		extension = ".gz"
	}

	oldest := fmt.Sprintf("%s.%d%s", sink.config.Path, rotation.MaxBackups, extension)
	if err := os.Remove(oldest); err != nil && !os.IsNotExist(err) {
		return err
	}
	for index := rotation.MaxBackups - 1; index >= 1; index-- {
		from := fmt.Sprintf("%s.%d%s", sink.config.Path, index, extension)
		to := fmt.Sprintf("%s.%d%s", sink.config.Path, index+1, extension)
		if err := os.Rename(from, to); err != nil && !os.IsNotExist(err) {
			return err
		}
	}

	if rotation.Compress {
		if err := compressFile(sink.config.Path, sink.config.Path+".1.gz"); err != nil {
			return err
		}
		return os.Remove(sink.config.Path)
	}
	return os.Rename(sink.config.Path, sink.config.Path+".1")
}

func compressFile(sourcePath string, targetPath string) error {
	source, serr := os.Open(sourcePath)
	if serr != nil {
		return serr
	}
	defer source.Close()

	target, terr := os.OpenFile(targetPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if terr != nil {
		return terr
	}

	compressor := gzip.NewWriter(target)
	if _, err := io.Copy(compressor, source); err != nil {
		target.Close()
		return err
	}
	if err := compressor.Close(); err != nil {
		target.Close()
		return err
	}
	return target.Close()
}
