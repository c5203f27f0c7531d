package otlpjson

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/relex/otlp-export/base"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestResource() *base.Resource {
	return base.NewResource(map[string]base.Value{
		"service.name":    base.StringValue("checkout"),
		"service.version": base.StringValue("1.2.3"),
	})
}

func newTestRecord(resource *base.Resource, severity base.Severity, body string, attributes map[string]base.Value) *base.LogRecord {
	return &base.LogRecord{
		Timestamp:         time.Unix(1700000000, 123456789).UTC(),
		ObservedTimestamp: time.Unix(1700000001, 0).UTC(),
		Severity:          severity,
		Body:              body,
		Attributes:        attributes,
		Resource:          resource,
	}
}

func TestEncodeEmptyBatch(t *testing.T) {
	enc := NewEncoder("otlp-export", "test")

	payload, err := enc.EncodeBatch(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, payload.Records)
	assert.Equal(t, "{}", string(payload.Data))

	decoded, derr := DecodePayload(payload.Data)
	require.NoError(t, derr)
	assert.Empty(t, decoded)
}

func TestEncodeDeterminism(t *testing.T) {
	enc := NewEncoder("otlp-export", "test")
	resource := newTestResource()
	records := []*base.LogRecord{
		newTestRecord(resource, base.SeverityInfo, "first", map[string]base.Value{
			"zeta":  base.IntValue(1),
			"alpha": base.StringValue("a"),
			"mid":   base.BoolValue(true),
		}),
		newTestRecord(resource, base.SeverityError, "second", map[string]base.Value{
			"ratio": base.FloatValue(0.5),
		}),
	}

	payload1, err1 := enc.EncodeBatch(records)
	require.NoError(t, err1)
	payload2, err2 := enc.EncodeBatch(records)
	require.NoError(t, err2)

	assert.Equal(t, payload1.Data, payload2.Data)
	assert.Equal(t, 2, payload1.Records)
	assert.True(t, json.Valid(payload1.Data))
}

func TestEncodeFieldNames(t *testing.T) {
	enc := NewEncoder("otlp-export", "test")
	records := []*base.LogRecord{
		newTestRecord(newTestResource(), base.SeverityWarn, "watch out", nil),
	}

	payload, err := enc.EncodeBatch(records)
	require.NoError(t, err)

	// proto field names must be preserved, not lowerCamelCase
	text := string(payload.Data)
	assert.Contains(t, text, `"resource_logs"`)
	assert.Contains(t, text, `"scope_logs"`)
	assert.Contains(t, text, `"log_records"`)
	assert.Contains(t, text, `"time_unix_nano"`)
	assert.Contains(t, text, `"observed_time_unix_nano"`)
	assert.Contains(t, text, `"severity_number":13`)
	assert.Contains(t, text, `"severity_text":"WARN"`)
	assert.NotContains(t, text, `"resourceLogs"`)
}

func TestEncodeResourceGrouping(t *testing.T) {
	enc := NewEncoder("otlp-export", "test")
	resourceA := newTestResource()
	resourceB := base.NewResource(map[string]base.Value{
		"service.name": base.StringValue("billing"),
	})
	records := []*base.LogRecord{
		newTestRecord(resourceA, base.SeverityInfo, "a1", nil),
		newTestRecord(resourceB, base.SeverityInfo, "b1", nil),
		newTestRecord(resourceA, base.SeverityInfo, "a2", nil),
	}

	payload, err := enc.EncodeBatch(records)
	require.NoError(t, err)

	var document struct {
		ResourceLogs []struct {
			ScopeLogs []struct {
				Scope struct {
					Name    string `json:"name"`
					Version string `json:"version"`
				} `json:"scope"`
				LogRecords []struct {
					Body struct {
						StringValue string `json:"string_value"`
					} `json:"body"`
				} `json:"log_records"`
			} `json:"scope_logs"`
		} `json:"resource_logs"`
	}
	require.NoError(t, json.Unmarshal(payload.Data, &document))

	require.Len(t, document.ResourceLogs, 2)
	require.Len(t, document.ResourceLogs[0].ScopeLogs, 1)
	assert.Equal(t, "otlp-export", document.ResourceLogs[0].ScopeLogs[0].Scope.Name)
	require.Len(t, document.ResourceLogs[0].ScopeLogs[0].LogRecords, 2)
	assert.Equal(t, "a1", document.ResourceLogs[0].ScopeLogs[0].LogRecords[0].Body.StringValue)
	assert.Equal(t, "a2", document.ResourceLogs[0].ScopeLogs[0].LogRecords[1].Body.StringValue)
	require.Len(t, document.ResourceLogs[1].ScopeLogs[0].LogRecords, 1)
	assert.Equal(t, "b1", document.ResourceLogs[1].ScopeLogs[0].LogRecords[0].Body.StringValue)
}

func TestEncodeInvalidUTF8(t *testing.T) {
	enc := NewEncoder("otlp-export", "test")
	resource := newTestResource()

	t.Run("in body", func(t *testing.T) {
		_, err := enc.EncodeBatch([]*base.LogRecord{
			newTestRecord(resource, base.SeverityInfo, "ok", nil),
			newTestRecord(resource, base.SeverityInfo, "bad \xc3\x28 body", nil),
		})
		encodingErr := &base.EncodingError{}
		require.ErrorAs(t, err, &encodingErr)
		assert.Equal(t, 1, encodingErr.Index)
		assert.Equal(t, "body", encodingErr.Field)
	})

	t.Run("in attribute value", func(t *testing.T) {
		_, err := enc.EncodeBatch([]*base.LogRecord{
			newTestRecord(resource, base.SeverityInfo, "ok", map[string]base.Value{
				"path": base.StringValue("\xff\xfe"),
			}),
		})
		encodingErr := &base.EncodingError{}
		require.ErrorAs(t, err, &encodingErr)
		assert.Equal(t, 0, encodingErr.Index)
		assert.Equal(t, "attributes[path]", encodingErr.Field)
	})
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	enc := NewEncoder("otlp-export", "test")
	resource := newTestResource()
	records := []*base.LogRecord{
		newTestRecord(resource, base.SeverityDebug, "round trip", map[string]base.Value{
			"count":   base.IntValue(42),
			"ratio":   base.FloatValue(3.25),
			"enabled": base.BoolValue(false),
			"name":    base.StringValue("value"),
		}),
		newTestRecord(resource, base.SeverityFatal, "", nil),
	}

	payload, err := enc.EncodeBatch(records)
	require.NoError(t, err)

	decoded, derr := DecodePayload(payload.Data)
	require.NoError(t, derr)
	require.Len(t, decoded, 2)

	for index, record := range records {
		assert.Equal(t, record.Timestamp, decoded[index].Timestamp, "record %d", index)
		assert.Equal(t, record.ObservedTimestamp, decoded[index].ObservedTimestamp, "record %d", index)
		assert.Equal(t, record.Severity, decoded[index].Severity, "record %d", index)
		assert.Equal(t, record.Body, decoded[index].Body, "record %d", index)
		assert.Equal(t, record.Attributes, decoded[index].Attributes, "record %d", index)
	}
	assert.Equal(t, resource.Attributes(), decoded[0].Resource.Attributes())
	assert.Same(t, decoded[0].Resource, decoded[1].Resource)
}
