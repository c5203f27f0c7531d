// Package shared provides helpers common to LogSink implementations
package shared

import (
	"github.com/relex/gotils/promexporter/promext"
	"github.com/relex/gotils/promexporter/promreg"
	"github.com/relex/otlp-export/base"
)

// WriterMetrics defines metrics shared by all sink implementations
type WriterMetrics struct {
	writtenPayloadsTotal promext.RWCounter
	writtenRecordsTotal  promext.RWCounter
	writtenLengthTotal   promext.RWCounter
	writeErrorsTotal     promext.RWCounter
	rotationsTotal       promext.RWCounter
}

// NewWriterMetrics creates WriterMetrics under the "sink_" prefix labelled by sink type
func NewWriterMetrics(metricCreator promreg.MetricCreator, sinkType string) WriterMetrics {
	sinkMetricCreator := metricCreator.AddOrGetPrefix("sink_", []string{"sink"}, []string{sinkType})

	return WriterMetrics{
		writtenPayloadsTotal: sinkMetricCreator.AddOrGetCounter("written_payloads_total", "Numbers of written payloads", nil, nil),
		writtenRecordsTotal:  sinkMetricCreator.AddOrGetCounter("written_records_total", "Numbers of log records inside written payloads", nil, nil),
		writtenLengthTotal:   sinkMetricCreator.AddOrGetCounter("written_payload_bytes_total", "Total length in bytes of written payloads", nil, nil),
		writeErrorsTotal:     sinkMetricCreator.AddOrGetCounter("write_errors_total", "Numbers of failed payload writes", nil, nil),
		rotationsTotal:       sinkMetricCreator.AddOrGetCounter("rotations_total", "Numbers of destination rotations", nil, nil),
	}
}

// OnWritten updates counters for one successfully persisted payload
func (metrics *WriterMetrics) OnWritten(payload base.Payload) {
	metrics.writtenPayloadsTotal.Inc()
	metrics.writtenRecordsTotal.Add(uint64(payload.Records))
	metrics.writtenLengthTotal.Add(uint64(len(payload.Data)))
}

// OnError updates counters for one failed payload write
func (metrics *WriterMetrics) OnError() {
	metrics.writeErrorsTotal.Inc()
}

// OnRotated updates counters for one destination rotation
func (metrics *WriterMetrics) OnRotated() {
	metrics.rotationsTotal.Inc()
}
