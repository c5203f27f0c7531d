package filesink

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"

	"github.com/c2h5oh/datasize"
	"github.com/relex/gotils/logger"
	"github.com/relex/gotils/promexporter/promreg"
	"github.com/relex/otlp-export/base"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestSink(t *testing.T, config Config) base.LogSink {
	require.NoError(t, config.VerifyConfig())
	sink, err := config.NewSink(
		logger.WithField("test", t.Name()),
		promreg.NewMetricFactory("testfilesink_", nil, nil),
	)
	require.NoError(t, err)
	return sink
}

func writeLine(t *testing.T, sink base.LogSink, line string) {
	require.NoError(t, sink.Write(base.Payload{Data: []byte(line), Records: 1}))
}

func readLines(t *testing.T, path string) []string {
	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	lines := make([]string, 0, 16)
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	require.NoError(t, scanner.Err())
	return lines
}

func TestWriteLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	sink := openTestSink(t, Config{Path: path})

	writeLine(t, sink, `{"n":1}`)
	writeLine(t, sink, `{"n":2}`)
	require.NoError(t, sink.Close())

	assert.Equal(t, []string{`{"n":1}`, `{"n":2}`}, readLines(t, path))

	t.Run("repeated close", func(t *testing.T) {
		assert.NoError(t, sink.Close())
	})

	t.Run("write after close", func(t *testing.T) {
		err := sink.Write(base.Payload{Data: []byte("late"), Records: 1})
		serr := &base.SinkError{}
		require.ErrorAs(t, err, &serr)
		assert.False(t, serr.IsTransient())
	})
}

func TestAppendAndTruncateModes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	require.NoError(t, os.WriteFile(path, []byte("existing\n"), 0o644))

	t.Run("append keeps existing contents", func(t *testing.T) {
		sink := openTestSink(t, Config{Path: path, Mode: ModeAppend})
		writeLine(t, sink, "appended")
		require.NoError(t, sink.Close())
		assert.Equal(t, []string{"existing", "appended"}, readLines(t, path))
	})

	t.Run("truncate discards existing contents", func(t *testing.T) {
		sink := openTestSink(t, Config{Path: path, Mode: ModeTruncate})
		writeLine(t, sink, "fresh")
		require.NoError(t, sink.Close())
		assert.Equal(t, []string{"fresh"}, readLines(t, path))
	})
}

func TestSizeRotation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	sink := openTestSink(t, Config{
		Path: path,
		Rotation: RotationConfig{
			MaxSize:    datasize.ByteSize(20),
			MaxBackups: 2,
		},
	})

	// each line is 11 bytes on disk; the 2nd write in a file would exceed 20
	for _, line := range []string{"0123456789", "1123456789", "2123456789", "3123456789"} {
		writeLine(t, sink, line)
	}
	require.NoError(t, sink.Close())

	assert.Equal(t, []string{"3123456789"}, readLines(t, path))
	assert.Equal(t, []string{"2123456789"}, readLines(t, path+".1"))
	assert.Equal(t, []string{"1123456789"}, readLines(t, path+".2"))
	_, err := os.Stat(path + ".3")
	assert.True(t, os.IsNotExist(err), "backup beyond maxBackups must be dropped")
}

func TestCompressedRotation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	sink := openTestSink(t, Config{
		Path: path,
		Rotation: RotationConfig{
			MaxSize:    datasize.ByteSize(20),
			MaxBackups: 2,
			Compress:   true,
		},
	})

	writeLine(t, sink, "0123456789")
	writeLine(t, sink, "1123456789")
	require.NoError(t, sink.Close())

	assert.Equal(t, []string{"1123456789"}, readLines(t, path))

	backup, oerr := os.Open(path + ".1.gz")
	require.NoError(t, oerr)
	defer backup.Close()
	reader, gerr := gzip.NewReader(backup)
	require.NoError(t, gerr)
	contents := &bytes.Buffer{}
	_, cerr := contents.ReadFrom(reader)
	require.NoError(t, cerr)
	assert.Equal(t, "0123456789\n", contents.String())
}

func TestManualRotation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	sink := openTestSink(t, Config{
		Path:     path,
		Rotation: RotationConfig{MaxBackups: 3},
	})

	writeLine(t, sink, "before")
	rotator := sink.(base.SinkRotator)
	require.NoError(t, rotator.Rotate())
	writeLine(t, sink, "after")
	require.NoError(t, sink.Close())

	assert.Equal(t, []string{"after"}, readLines(t, path))
	assert.Equal(t, []string{"before"}, readLines(t, path+".1"))
}

func TestWatchRename(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.json")
	sink := openTestSink(t, Config{Path: path, WatchRename: true})

	writeLine(t, sink, "first")
	require.NoError(t, os.Rename(path, filepath.Join(dir, "out.json.moved")))
	writeLine(t, sink, "second")
	require.NoError(t, sink.Close())

	assert.Equal(t, []string{"second"}, readLines(t, path))
	assert.Equal(t, []string{"first"}, readLines(t, filepath.Join(dir, "out.json.moved")))
}

func TestVerifyConfig(t *testing.T) {
	t.Run("path required", func(t *testing.T) {
		config := Config{}
		assert.ErrorContains(t, config.VerifyConfig(), ".path is unspecified")
	})

	t.Run("invalid mode", func(t *testing.T) {
		config := Config{Path: "out.json", Mode: "overwrite"}
		assert.ErrorContains(t, config.VerifyConfig(), "not a valid mode")
	})

	t.Run("watchRename conflicts with rotation", func(t *testing.T) {
		config := Config{
			Path:        "out.json",
			WatchRename: true,
			Rotation:    RotationConfig{MaxSize: datasize.MB},
		}
		assert.ErrorContains(t, config.VerifyConfig(), "cannot be combined")
	})
}
