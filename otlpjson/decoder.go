package otlpjson

import (
	"fmt"
	"time"

	"github.com/relex/otlp-export/base"
	collogspb "go.opentelemetry.io/proto/otlp/collector/logs/v1"
	commonpb "go.opentelemetry.io/proto/otlp/common/v1"
	logspb "go.opentelemetry.io/proto/otlp/logs/v1"
	"google.golang.org/protobuf/encoding/protojson"
)

// DecodePayload decodes an OTLP/JSON payload back into log records, for verification in
// tests and tooling
//
// Records from the same resource group share one reconstructed *base.Resource. Timestamps
// come back in UTC; complex attribute values from foreign producers are rejected.
func DecodePayload(data []byte) ([]*base.LogRecord, error) {
	request := &collogspb.ExportLogsServiceRequest{}
	if err := protojson.Unmarshal(data, request); err != nil {
		return nil, fmt.Errorf("malformed OTLP/JSON document: %w", err)
	}

	records := make([]*base.LogRecord, 0, 16)
	for _, resourceLogs := range request.ResourceLogs {
		attributes, aerr := decodeAttributes(resourceLogs.GetResource().GetAttributes())
		if aerr != nil {
			return nil, fmt.Errorf("resource: %w", aerr)
		}
		resource := base.NewResource(attributes)

		for _, scopeLogs := range resourceLogs.ScopeLogs {
			for index, logRecord := range scopeLogs.LogRecords {
				record, rerr := decodeRecord(logRecord, resource)
				if rerr != nil {
					return nil, fmt.Errorf("record[%d]: %w", index, rerr)
				}
				records = append(records, record)
			}
		}
	}
	return records, nil
}

func decodeRecord(encoded *logspb.LogRecord, resource *base.Resource) (*base.LogRecord, error) {
	attributes, aerr := decodeAttributes(encoded.Attributes)
	if aerr != nil {
		return nil, aerr
	}
	body, berr := decodeValue(encoded.Body)
	if berr != nil {
		return nil, fmt.Errorf("body: %w", berr)
	}
	if body.Kind() != base.ValueKindString {
		return nil, fmt.Errorf("body: unsupported kind %s", body.Kind())
	}
	return &base.LogRecord{
		Timestamp:         time.Unix(0, int64(encoded.TimeUnixNano)).UTC(),
		ObservedTimestamp: time.Unix(0, int64(encoded.ObservedTimeUnixNano)).UTC(),
		Severity:          base.SeverityFromNumber(int32(encoded.SeverityNumber)),
		Body:              body.StringVal(),
		Attributes:        attributes,
		Resource:          resource,
	}, nil
}

func decodeAttributes(encoded []*commonpb.KeyValue) (map[string]base.Value, error) {
	if len(encoded) == 0 {
		return nil, nil
	}
	attributes := make(map[string]base.Value, len(encoded))
	for _, keyValue := range encoded {
		value, err := decodeValue(keyValue.Value)
		if err != nil {
			return nil, fmt.Errorf("attribute '%s': %w", keyValue.Key, err)
		}
		attributes[keyValue.Key] = value
	}
	return attributes, nil
}

func decodeValue(encoded *commonpb.AnyValue) (base.Value, error) {
	switch value := encoded.GetValue().(type) {
	case *commonpb.AnyValue_StringValue:
		return base.StringValue(value.StringValue), nil
	case *commonpb.AnyValue_IntValue:
		return base.IntValue(value.IntValue), nil
	case *commonpb.AnyValue_DoubleValue:
		return base.FloatValue(value.DoubleValue), nil
	case *commonpb.AnyValue_BoolValue:
		return base.BoolValue(value.BoolValue), nil
	default:
		return base.Value{}, fmt.Errorf("unsupported value type %T", encoded.GetValue())
	}
}
