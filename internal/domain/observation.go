package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TimeLayout is the datetime pattern used in TMS4 export files.
const TimeLayout = "2006.01.02 15:04"

// fieldCount is the number of ;-separated fields in one record, not counting
// the empty field produced by an optional trailing separator.
const fieldCount = 9

// RawLine is one unparsed line of sensor input with its 1-based line number.
type RawLine struct {
	Text   string
	Number int
}

// SensorObservation is one decoded TMS4 reading. Immutable once constructed.
type SensorObservation struct {
	Index       int
	Timestamp   time.Time
	Temp1       float64 // soil probe, drives the temperature correction
	Temp2       float64 // surface probe
	Temp3       float64 // air probe
	RawMoisture int
	Shake       int
	ErrFlag     int
}

// VWCRecord is one calibrated output row. Masked marks a reading suppressed
// by the frozen-soil policy; its VWC is not meaningful and serializes as NA.
type VWCRecord struct {
	Timestamp   time.Time `json:"datetime"`
	RawMoisture int       `json:"raw"`
	Temperature float64   `json:"temp"`
	VWC         float64   `json:"vwc"`
	Masked      bool      `json:"masked,omitempty"`
	ProcessedAt time.Time `json:"processed_at"`
}

// ParseRecord decodes one raw sensor line into a SensorObservation.
// lineNo is the 1-based position of the line in its input, reported on
// failure. Surrounding whitespace and a trailing field separator are
// tolerated. Pure function of its input.
func ParseRecord(line string, lineNo int) (SensorObservation, error) {
	fields := strings.Split(strings.TrimSpace(line), ";")
	if n := len(fields); n == fieldCount+1 && strings.TrimSpace(fields[fieldCount]) == "" {
		fields = fields[:fieldCount]
	}
	if len(fields) != fieldCount {
		return SensorObservation{}, &MalformedRecordError{
			Line:   lineNo,
			Field:  strings.TrimSpace(line),
			Reason: fmt.Sprintf("expected %d fields, got %d", fieldCount, len(fields)),
		}
	}
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}

	index, err := parseIntField(fields[0], "index", lineNo)
	if err != nil {
		return SensorObservation{}, err
	}
	if index < 0 {
		return SensorObservation{}, &MalformedRecordError{Line: lineNo, Field: fields[0], Reason: "negative sequence index"}
	}

	ts, terr := time.Parse(TimeLayout, fields[1])
	if terr != nil {
		return SensorObservation{}, &MalformedRecordError{
			Line:   lineNo,
			Field:  fields[1],
			Reason: "datetime does not match pattern YYYY.MM.DD HH:MM",
		}
	}

	// fields[2] is the timezone column of the TMS4 export, unused here but
	// still required to be present.

	temps := make([]float64, 3)
	for i, name := range []string{"T1", "T2", "T3"} {
		temps[i], err = parseFloatField(fields[3+i], name, lineNo)
		if err != nil {
			return SensorObservation{}, err
		}
	}

	rawMoist, err := parseIntField(fields[6], "raw_moist", lineNo)
	if err != nil {
		return SensorObservation{}, err
	}
	shake, err := parseIntField(fields[7], "shake", lineNo)
	if err != nil {
		return SensorObservation{}, err
	}
	errFlag, err := parseIntField(fields[8], "errFlag", lineNo)
	if err != nil {
		return SensorObservation{}, err
	}

	return SensorObservation{
		Index:       index,
		Timestamp:   ts,
		Temp1:       temps[0],
		Temp2:       temps[1],
		Temp3:       temps[2],
		RawMoisture: rawMoist,
		Shake:       shake,
		ErrFlag:     errFlag,
	}, nil
}

func parseIntField(s, name string, lineNo int) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, &MalformedRecordError{Line: lineNo, Field: s, Reason: fmt.Sprintf("non-numeric %s field", name)}
	}
	return v, nil
}

func parseFloatField(s, name string, lineNo int) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, &MalformedRecordError{Line: lineNo, Field: s, Reason: fmt.Sprintf("non-numeric %s field", name)}
	}
	return v, nil
}
