package processor

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/relex/gotils/logger"
	"github.com/relex/gotils/promexporter/promreg"
	"github.com/relex/otlp-export/base"
	"github.com/relex/otlp-export/defs"
	"github.com/stretchr/testify/require"
)

// lineEncoder encodes batches as newline-joined bodies, to keep test payloads inspectable
type lineEncoder struct{}

func (enc lineEncoder) EncodeBatch(records []*base.LogRecord) (base.Payload, error) {
	bodies := make([]string, len(records))
	for index, record := range records {
		if record.Body == "unencodable" {
			return base.Payload{}, &base.EncodingError{Index: index, Field: "body", Reason: "test"}
		}
		bodies[index] = record.Body
	}
	return base.Payload{Data: []byte(strings.Join(bodies, "\n")), Records: len(records)}, nil
}

// mockSink records written payloads and fails according to a scripted error queue
type mockSink struct {
	mu       sync.Mutex
	payloads []base.Payload
	script   []error // popped per Write; nil entry means success
	closed   bool
}

func (sink *mockSink) Write(payload base.Payload) error {
	sink.mu.Lock()
	defer sink.mu.Unlock()
	if len(sink.script) > 0 {
		err := sink.script[0]
		sink.script = sink.script[1:]
		if err != nil {
			return err
		}
	}
	sink.payloads = append(sink.payloads, payload)
	return nil
}

func (sink *mockSink) Close() error {
	sink.mu.Lock()
	defer sink.mu.Unlock()
	sink.closed = true
	return nil
}

func (sink *mockSink) failNext(errs ...error) {
	sink.mu.Lock()
	defer sink.mu.Unlock()
	sink.script = append(sink.script, errs...)
}

func (sink *mockSink) writtenPayloads() []base.Payload {
	sink.mu.Lock()
	defer sink.mu.Unlock()
	return append([]base.Payload(nil), sink.payloads...)
}

func (sink *mockSink) writtenBodies() []string {
	sink.mu.Lock()
	defer sink.mu.Unlock()
	bodies := make([]string, 0, len(sink.payloads))
	for _, payload := range sink.payloads {
		bodies = append(bodies, strings.Split(string(payload.Data), "\n")...)
	}
	return bodies
}

func (sink *mockSink) isClosed() bool {
	sink.mu.Lock()
	defer sink.mu.Unlock()
	return sink.closed
}

// gatedSink stalls every Write until released, to simulate a hung upstream
type gatedSink struct {
	mockSink
	entered chan struct{} // one signal per Write reaching the sink
	release chan struct{} // closed to let all writes proceed
}

func newGatedSink() *gatedSink {
	return &gatedSink{
		entered: make(chan struct{}, 100),
		release: make(chan struct{}),
	}
}

func (sink *gatedSink) Write(payload base.Payload) error {
	sink.entered <- struct{}{}
	<-sink.release
	return sink.mockSink.Write(payload)
}

// processorTestEnv bundles a launched processor with its mock sink for one test case
type processorTestEnv struct {
	proc *BatchProcessor
	sink *mockSink
}

func launchTestProcessor(t *testing.T, args Args) *processorTestEnv {
	sink := &mockSink{}
	proc := NewBatchProcessor(
		logger.WithField("test", t.Name()),
		args,
		lineEncoder{},
		sink,
		promreg.NewMetricFactory("testprocessor_", nil, nil),
	)
	proc.Launch()
	return &processorTestEnv{proc: proc, sink: sink}
}

func (env *processorTestEnv) enqueueBodies(t *testing.T, bodies ...string) {
	for _, body := range bodies {
		require.NoError(t, env.proc.Enqueue(&base.LogRecord{Body: body, RawLength: len(body)}))
	}
}

func (env *processorTestEnv) shutdown(t *testing.T) {
	err := env.proc.Shutdown(defs.TestReadTimeout)
	if err != nil && !errors.Is(err, base.ErrClosed) {
		require.NoError(t, err)
	}
}

// waitUntil polls the condition until true or the timeout elapses
func waitUntil(timeout time.Duration, condition func() bool) bool {
	deadline := time.Now().Add(timeout)
	for !condition() {
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(time.Millisecond)
	}
	return true
}

var errTransientTest = base.NewTransientSinkError("write", errors.New("socket hiccup"))
var errPermanentTest = base.NewPermanentSinkError("write", errors.New("read-only filesystem"))
