package domain

// Plausible probe temperature bounds in °C. The TMS4 operating range is
// -40…+60; readings outside these widened bounds indicate a corrupt record
// rather than an extreme environment.
const (
	MinPlausibleTemp = -55.0
	MaxPlausibleTemp = 100.0
)

// CalibrationConstants are the temperature-drift correction parameters
// shared across all soil types. Immutable; constructed once and passed
// explicitly to the engine.
type CalibrationConstants struct {
	RefTemp         float64 // reference temperature the curves were fitted at
	AirCorrection   float64 // drift amplitude in air, counts per °C (acor_t)
	WaterCorrection float64 // drift slope toward the water count (wcor_t)
}

// DefaultConstants returns the myClim defaults for the drift correction.
func DefaultConstants() CalibrationConstants {
	return CalibrationConstants{
		RefTemp:         24.0,
		AirCorrection:   1.91132689118083,
		WaterCorrection: 0.64108,
	}
}

// Engine converts sensor observations to VWC records for one soil type.
// Conversion is deterministic and side-effect free apart from the
// ProcessedAt stamp taken from the package clock.
type Engine struct {
	calib      SoilCalibration
	consts     CalibrationConstants
	maskFrozen bool
}

// NewEngine builds an engine for the given calibration row and constants.
// maskFrozen enables the frozen-soil policy (reference default: disabled).
func NewEngine(calib SoilCalibration, consts CalibrationConstants, maskFrozen bool) *Engine {
	return &Engine{calib: calib, consts: consts, maskFrozen: maskFrozen}
}

// Convert applies the temperature correction and the calibration curve to
// one observation. The probe-1 temperature drives the correction and is
// reported in the output record. A temperature outside the plausible sensor
// range yields a CalibrationDomainError; all other well-formed inputs
// produce a finite value.
func (e *Engine) Convert(obs SensorObservation) (VWCRecord, error) {
	t := obs.Temp1
	if t < MinPlausibleTemp || t > MaxPlausibleTemp {
		return VWCRecord{}, &CalibrationDomainError{Temperature: t}
	}

	rec := VWCRecord{
		Timestamp:   obs.Timestamp,
		RawMoisture: obs.RawMoisture,
		Temperature: t,
		ProcessedAt: clock.Now(),
	}

	if e.maskFrozen && t < 0 {
		rec.Masked = true
		return rec, nil
	}

	x := correctForTemperature(float64(obs.RawMoisture), t, e.consts)
	rec.VWC = clamp01(e.calib.A*x*x + e.calib.B*x + e.calib.C)
	return rec, nil
}

// correctForTemperature compensates the raw count for the sensor's
// temperature drift: the drift slope grows linearly with the count itself,
// from AirCorrection counts/°C in dry air upward as the signal approaches
// the water count (Wild et al. 2019).
func correctForTemperature(raw, temp float64, c CalibrationConstants) float64 {
	drift := c.AirCorrection + c.WaterCorrection*raw/1000.0
	return raw + (c.RefTemp-temp)*drift
}

// clamp01 limits the curve output to the physical VWC range. The quadratic
// fits extrapolate below zero for in-air counts and above one for counts
// past the water point.
func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
