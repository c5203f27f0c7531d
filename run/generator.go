package run

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/relex/gotils/channels"
	"github.com/relex/gotils/logger"
	"github.com/relex/otlp-export/base"
	"github.com/relex/otlp-export/defs"
	"github.com/relex/otlp-export/exporter"
)

type sampleMessage struct {
	severity base.Severity
	body     string
}

// a few sample messages to rotate through
var sampleMessages = []sampleMessage{
	{base.SeverityInfo, "Service heartbeat OK."},
	{base.SeverityWarn, "Slow response from dependency."},
	{base.SeverityError, "Transient failure processing request."},
}

var sampleErrorCodes = []int64{400, 404, 500, 503}

// generator emits sample log records at a gentle pace until stopped, for demo and soak runs
type generator struct {
	logger      logger.Logger
	exporter    *exporter.Exporter
	interval    time.Duration
	stopRequest channels.Awaitable
	stopped     *channels.SignalAwaitable
}

func launchGenerator(exp *exporter.Exporter, interval time.Duration, stopRequest channels.Awaitable) *generator {
	gen := &generator{
		logger:      logger.WithField(defs.LabelComponent, "SampleGenerator"),
		exporter:    exp,
		interval:    interval,
		stopRequest: stopRequest,
		stopped:     channels.NewSignalAwaitable(),
	}
	go gen.run()
	return gen
}

func (gen *generator) Stopped() channels.Awaitable {
	return gen.stopped
}

func (gen *generator) run() {
	defer gen.stopped.Signal()
	gen.logger.Infof("started, interval=%s", gen.interval)

	for sequence := 1; ; sequence++ {
		message := sampleMessages[rand.Intn(len(sampleMessages))]

		attributes := map[string]base.Value{
			"request_id": base.StringValue(fmt.Sprintf("req-%06d", sequence)),
			"user_id":    base.IntValue(rand.Int63n(1000) + 1),
			"latency_ms": base.IntValue(rand.Int63n(496) + 5),
		}
		if message.severity == base.SeverityError {
			attributes["error_code"] = base.IntValue(sampleErrorCodes[rand.Intn(len(sampleErrorCodes))])
		}

		if err := gen.exporter.Emit(message.severity, message.body, attributes); err != nil {
			gen.logger.Warnf("emit failed: %s", err.Error())
			return
		}

		if gen.stopRequest.Wait(gen.interval) {
			gen.logger.Infof("stop requested after %d records", sequence)
			return
		}
	}
}
