package base

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSeverity(t *testing.T) {
	for _, text := range []string{"warn", "WARN", "Warning"} {
		sev, err := ParseSeverity(text)
		assert.NoError(t, err, text)
		assert.Equal(t, SeverityWarn, sev, text)
	}

	_, err := ParseSeverity("CRITICAL")
	assert.ErrorContains(t, err, "unknown severity")
}

func TestSeverityNumbers(t *testing.T) {
	assert.Equal(t, int32(1), SeverityTrace.Number())
	assert.Equal(t, int32(9), SeverityInfo.Number())
	assert.Equal(t, int32(21), SeverityFatal.Number())
	assert.Equal(t, "ERROR", SeverityError.String())
	assert.False(t, Severity(10).IsValid())
}

func TestSeverityFromNumber(t *testing.T) {
	assert.Equal(t, SeverityTrace, SeverityFromNumber(0))
	assert.Equal(t, SeverityInfo, SeverityFromNumber(9))
	assert.Equal(t, SeverityInfo, SeverityFromNumber(12))
	assert.Equal(t, SeverityFatal, SeverityFromNumber(24))
}
