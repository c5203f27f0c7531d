package tcpsink

import (
	"crypto/tls"
	"net"
	"os"
	"time"

	"github.com/relex/gotils/logger"
	"github.com/relex/otlp-export/base"
	"github.com/relex/otlp-export/defs"
	"github.com/relex/otlp-export/sink/shared"
	"github.com/relex/otlp-export/util"
)

// tcpSink writes one payload plus newline per Write to the upstream connection
//
// Any network error drops the connection; the next write dials again. All dial and write
// failures are transient: whether the upstream comes back is for the retry policy to probe.
type tcpSink struct {
	logger  logger.Logger
	metrics shared.WriterMetrics
	config  Config
	conn    net.Conn
	closed  bool
}

func (sink *tcpSink) Write(payload base.Payload) error {
	if sink.closed {
		return base.NewPermanentSinkError("write", os.ErrClosed)
	}
	if sink.conn == nil {
		if err := sink.dial(); err != nil {
			sink.metrics.OnError()
			return base.NewTransientSinkError("dial", err)
		}
	}

	line := make([]byte, 0, len(payload.Data)+1)
	line = append(line, payload.Data...)
	line = append(line, '\n')

	deadline := time.Now().Add(sink.sendTimeout(len(line)))
	if err := sink.conn.SetWriteDeadline(deadline); err != nil {
		sink.dropConnection()
		sink.metrics.OnError()
		return base.NewTransientSinkError("write", err)
	}
	if _, err := sink.conn.Write(line); err != nil {
		switch {
		case util.IsNetworkTimeout(err):
			sink.logger.Warnf("send timed out, dropping connection: %s", err.Error())
		case util.IsNetworkClosed(err):
			sink.logger.Infof("connection closed by upstream")
		}
		sink.dropConnection()
		sink.metrics.OnError()
		return base.NewTransientSinkError("write", err)
	}
	sink.metrics.OnWritten(payload)
	return nil
}

func (sink *tcpSink) Close() error {
	if sink.closed {
		return nil
	}
	sink.closed = true
	sink.dropConnection()
	return nil
}

func (sink *tcpSink) dial() error {
	dialer := &net.Dialer{Timeout: defs.SinkConnectionTimeout}
	var conn net.Conn
	var derr error
	if sink.config.TLS {
		conn, derr = tls.DialWithDialer(dialer, "tcp", sink.config.Address, &tls.Config{
			InsecureSkipVerify: sink.config.InsecureSkipVerify, //nolint:gosec // explicit opt-in for test upstreams
		})
	} else {
		conn, derr = dialer.Dial("tcp", sink.config.Address)
	}
	if derr != nil {
		return derr
	}
	sink.conn = conn
	sink.logger.Infof("connected to %s", conn.RemoteAddr())
	return nil
}

func (sink *tcpSink) dropConnection() {
	if sink.conn == nil {
		return
	}
	if err := sink.conn.Close(); err != nil {
		sink.logger.Warnf("failed to close connection: %s", err.Error())
	}
	sink.conn = nil
}

// sendTimeout scales the write deadline with the payload length at a minimum assumed speed
func (sink *tcpSink) sendTimeout(length int) time.Duration {
	return defs.SinkSendTimeoutBase + time.Duration(length/defs.SinkSendMinimumSpeed)*time.Second
}
