package base

import (
	"fmt"
	"strings"
)

// Severity is a log severity level
//
// The numeric values are the OTLP severity numbers for the lowest level of each range.
type Severity int32

// Severity levels from lowest to highest
const (
	SeverityTrace Severity = 1
	SeverityDebug Severity = 5
	SeverityInfo  Severity = 9
	SeverityWarn  Severity = 13
	SeverityError Severity = 17
	SeverityFatal Severity = 21
)

var severityNames = map[Severity]string{
	SeverityTrace: "TRACE",
	SeverityDebug: "DEBUG",
	SeverityInfo:  "INFO",
	SeverityWarn:  "WARN",
	SeverityError: "ERROR",
	SeverityFatal: "FATAL",
}

func (sev Severity) String() string {
	if name, ok := severityNames[sev]; ok {
		return name
	}
	return fmt.Sprintf("SEVERITY(%d)", int32(sev))
}

// Number returns the OTLP severity number
func (sev Severity) Number() int32 {
	return int32(sev)
}

// IsValid checks whether the severity is one of the defined levels
func (sev Severity) IsValid() bool {
	_, ok := severityNames[sev]
	return ok
}

// ParseSeverity parses a severity level from text, case-insensitively
//
// "WARNING" is accepted as an alias of WARN for compatibility with syslog-ish producers.
func ParseSeverity(text string) (Severity, error) {
	switch strings.ToUpper(text) {
	case "TRACE":
		return SeverityTrace, nil
	case "DEBUG":
		return SeverityDebug, nil
	case "INFO":
		return SeverityInfo, nil
	case "WARN", "WARNING":
		return SeverityWarn, nil
	case "ERROR":
		return SeverityError, nil
	case "FATAL":
		return SeverityFatal, nil
	default:
		return 0, fmt.Errorf("unknown severity: '%s'", text)
	}
}

// SeverityFromNumber maps an OTLP severity number back to the lowest defined level of its range
func SeverityFromNumber(number int32) Severity {
	switch {
	case number >= int32(SeverityFatal):
		return SeverityFatal
	case number >= int32(SeverityError):
		return SeverityError
	case number >= int32(SeverityWarn):
		return SeverityWarn
	case number >= int32(SeverityInfo):
		return SeverityInfo
	case number >= int32(SeverityDebug):
		return SeverityDebug
	default:
		return SeverityTrace
	}
}
