// Package otlpjson encodes batches of log records into OTLP/JSON documents
//
// Each batch becomes one ExportLogsServiceRequest marshalled with proto field names preserved
// (time_unix_nano, severity_number, ...), one JSON document per payload.
package otlpjson

import (
	"bytes"
	"encoding/json"
	"fmt"
	"unicode/utf8"

	"github.com/relex/otlp-export/base"
	collogspb "go.opentelemetry.io/proto/otlp/collector/logs/v1"
	commonpb "go.opentelemetry.io/proto/otlp/common/v1"
	logspb "go.opentelemetry.io/proto/otlp/logs/v1"
	resourcepb "go.opentelemetry.io/proto/otlp/resource/v1"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"google.golang.org/protobuf/encoding/protojson"
)

// Encoder encodes ordered batches of log records into self-contained OTLP/JSON payloads
//
// Encoder is pure and stateless: every call is independent, identical input yields identical
// bytes, and record order is always preserved. It implements base.BatchEncoder.
type Encoder struct {
	scopeName    string
	scopeVersion string
}

// NewEncoder creates an Encoder; the scope name and version identify the emitting
// instrumentation in every encoded batch
func NewEncoder(scopeName string, scopeVersion string) *Encoder {
	return &Encoder{
		scopeName:    scopeName,
		scopeVersion: scopeVersion,
	}
}

var marshalOptions = protojson.MarshalOptions{
	UseProtoNames: true,
}

// EncodeBatch encodes the given records in order into one OTLP/JSON document
//
// Records are grouped by their shared Resource reference in first-seen order; within each
// group the original record order is kept. An empty batch yields an empty document.
// Fails only with *base.EncodingError, on invalid UTF-8 in bodies, attribute keys or
// string attribute values.
func (enc *Encoder) EncodeBatch(records []*base.LogRecord) (base.Payload, error) {
	request := &collogspb.ExportLogsServiceRequest{}

	groupIndex := make(map[*base.Resource]int, 1)
	for index, record := range records {
		if err := validateRecord(index, record); err != nil {
			return base.Payload{}, err
		}

		gi, seen := groupIndex[record.Resource]
		if !seen {
			gi = len(request.ResourceLogs)
			groupIndex[record.Resource] = gi
			request.ResourceLogs = append(request.ResourceLogs, &logspb.ResourceLogs{
				Resource: encodeResource(record.Resource),
				ScopeLogs: []*logspb.ScopeLogs{{
					Scope: &commonpb.InstrumentationScope{
						Name:    enc.scopeName,
						Version: enc.scopeVersion,
					},
				}},
			})
		}

		scopeLogs := request.ResourceLogs[gi].ScopeLogs[0]
		scopeLogs.LogRecords = append(scopeLogs.LogRecords, encodeRecord(record))
	}

	data, merr := marshalOptions.Marshal(request)
	if merr != nil {
		return base.Payload{}, &base.EncodingError{Index: -1, Field: "batch", Reason: merr.Error()}
	}

	// protojson output whitespace is deliberately randomized; compact for stable bytes
	compacted := &bytes.Buffer{}
	if cerr := json.Compact(compacted, data); cerr != nil {
		return base.Payload{}, &base.EncodingError{Index: -1, Field: "batch", Reason: cerr.Error()}
	}
	return base.Payload{Data: compacted.Bytes(), Records: len(records)}, nil
}

func validateRecord(index int, record *base.LogRecord) error {
	if !utf8.ValidString(record.Body) {
		return &base.EncodingError{Index: index, Field: "body", Reason: "invalid UTF-8"}
	}
	for key, value := range record.Attributes {
		if !utf8.ValidString(key) {
			return &base.EncodingError{Index: index, Field: "attributes", Reason: "invalid UTF-8 in key"}
		}
		if value.Kind() == base.ValueKindString && !utf8.ValidString(value.StringVal()) {
			return &base.EncodingError{Index: index, Field: fmt.Sprintf("attributes[%s]", key), Reason: "invalid UTF-8"}
		}
	}
	return nil
}

func encodeRecord(record *base.LogRecord) *logspb.LogRecord {
	return &logspb.LogRecord{
		TimeUnixNano:         uint64(record.Timestamp.UnixNano()),
		ObservedTimeUnixNano: uint64(record.ObservedTimestamp.UnixNano()),
		SeverityNumber:       logspb.SeverityNumber(record.Severity.Number()),
		SeverityText:         record.Severity.String(),
		Body: &commonpb.AnyValue{
			Value: &commonpb.AnyValue_StringValue{StringValue: record.Body},
		},
		Attributes: encodeAttributeMap(record.Attributes),
	}
}

func encodeResource(res *base.Resource) *resourcepb.Resource {
	attributes := res.Attributes()
	encoded := make([]*commonpb.KeyValue, 0, len(attributes))
	for _, attr := range attributes {
		encoded = append(encoded, encodeAttribute(attr.Key, attr.Value))
	}
	return &resourcepb.Resource{Attributes: encoded}
}

// encodeAttributeMap encodes record attributes in sorted key order so identical input
// yields identical bytes
func encodeAttributeMap(attributes map[string]base.Value) []*commonpb.KeyValue {
	if len(attributes) == 0 {
		return nil
	}
	keys := maps.Keys(attributes)
	slices.Sort(keys)

	encoded := make([]*commonpb.KeyValue, 0, len(keys))
	for _, key := range keys {
		encoded = append(encoded, encodeAttribute(key, attributes[key]))
	}
	return encoded
}

func encodeAttribute(key string, value base.Value) *commonpb.KeyValue {
	return &commonpb.KeyValue{Key: key, Value: encodeValue(value)}
}

func encodeValue(value base.Value) *commonpb.AnyValue {
	switch value.Kind() {
	case base.ValueKindInt:
		return &commonpb.AnyValue{Value: &commonpb.AnyValue_IntValue{IntValue: value.IntVal()}}
	case base.ValueKindFloat:
		return &commonpb.AnyValue{Value: &commonpb.AnyValue_DoubleValue{DoubleValue: value.FloatVal()}}
	case base.ValueKindBool:
		return &commonpb.AnyValue{Value: &commonpb.AnyValue_BoolValue{BoolValue: value.BoolVal()}}
	default:
		return &commonpb.AnyValue{Value: &commonpb.AnyValue_StringValue{StringValue: value.StringVal()}}
	}
}
