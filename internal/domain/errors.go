package domain

import (
	"fmt"
	"strings"
)

// MalformedRecordError reports a sensor line that could not be decoded.
// Line is 1-based; Field is the offending field (or the whole line when the
// field count is wrong).
type MalformedRecordError struct {
	Line   int
	Field  string
	Reason string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("line %d: malformed record: %s (field %q)", e.Line, e.Reason, e.Field)
}

// UnknownSoilTypeError reports a soil-type identifier outside the calibrated set.
type UnknownSoilTypeError struct {
	Name string
}

func (e *UnknownSoilTypeError) Error() string {
	return fmt.Sprintf("unknown soil type %q (expected one of: %s)", e.Name, strings.Join(SoilTypeNames(), ", "))
}

// CalibrationDomainError reports an observation outside the physical domain
// of the calibration model, such as a probe temperature no TMS4 sensor can
// produce.
type CalibrationDomainError struct {
	Temperature float64
}

func (e *CalibrationDomainError) Error() string {
	return fmt.Sprintf("temperature %.2f °C outside plausible sensor range [%.0f, %.0f]", e.Temperature, MinPlausibleTemp, MaxPlausibleTemp)
}
