package tcpsink

import (
	"bufio"
	"net"
	"testing"

	"github.com/relex/gotils/logger"
	"github.com/relex/gotils/promexporter/promreg"
	"github.com/relex/otlp-export/base"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteToUpstream(t *testing.T) {
	listener, lerr := net.Listen("tcp", "localhost:0")
	require.NoError(t, lerr)
	defer listener.Close()

	received := make(chan string, 10)
	go func() {
		conn, aerr := listener.Accept()
		if aerr != nil {
			return
		}
		defer conn.Close()
		scanner := bufio.NewScanner(conn)
		for scanner.Scan() {
			received <- scanner.Text()
		}
	}()

	config := Config{Address: listener.Addr().String()}
	require.NoError(t, config.VerifyConfig())
	sink, serr := config.NewSink(
		logger.WithField("test", t.Name()),
		promreg.NewMetricFactory("testtcpsink_", nil, nil),
	)
	require.NoError(t, serr)

	require.NoError(t, sink.Write(base.Payload{Data: []byte(`{"n":1}`), Records: 1}))
	require.NoError(t, sink.Write(base.Payload{Data: []byte(`{"n":2}`), Records: 1}))

	assert.Equal(t, `{"n":1}`, <-received)
	assert.Equal(t, `{"n":2}`, <-received)

	require.NoError(t, sink.Close())

	t.Run("write after close", func(t *testing.T) {
		err := sink.Write(base.Payload{Data: []byte("late"), Records: 1})
		classified := &base.SinkError{}
		require.ErrorAs(t, err, &classified)
		assert.False(t, classified.IsTransient())
	})
}

func TestDialFailureIsTransient(t *testing.T) {
	// grab a port and close it so the dial is refused
	listener, lerr := net.Listen("tcp", "localhost:0")
	require.NoError(t, lerr)
	address := listener.Addr().String()
	require.NoError(t, listener.Close())

	config := Config{Address: address}
	sink, serr := config.NewSink(
		logger.WithField("test", t.Name()),
		promreg.NewMetricFactory("testtcpsink_", nil, nil),
	)
	require.NoError(t, serr)
	defer sink.Close()

	err := sink.Write(base.Payload{Data: []byte("unreachable"), Records: 1})
	classified := &base.SinkError{}
	require.ErrorAs(t, err, &classified)
	assert.True(t, classified.IsTransient())
}

func TestVerifyConfig(t *testing.T) {
	t.Run("address required", func(t *testing.T) {
		config := Config{}
		assert.ErrorContains(t, config.VerifyConfig(), ".address is unspecified")
	})

	t.Run("address must have host and port", func(t *testing.T) {
		config := Config{Address: "localhost"}
		assert.ErrorContains(t, config.VerifyConfig(), ".address is invalid")
	})

	t.Run("insecureSkipVerify requires tls", func(t *testing.T) {
		config := Config{Address: "localhost:4317", InsecureSkipVerify: true}
		assert.ErrorContains(t, config.VerifyConfig(), "requires tls")
	})
}
