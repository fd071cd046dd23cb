// Package domain models TOMST TMS4 soil sensor data and its conversion to
// Volumetric Water Content (VWC).
//
// # Record Format
//
// TMS4 loggers export one reading per line, nine ;-separated fields with an
// optional trailing separator:
//
//	index;datetime;tz;T1;T2;T3;raw_moist;shake;errFlag;
//	0;2023.05.30 06:45;4;22.25;22.25;22.5;354;202;0;
//
// index is a sensor-assigned sequence number (non-negative, not necessarily
// unique). The datetime pattern is YYYY.MM.DD HH:MM. T1 is the soil probe,
// T2 the surface probe, T3 the air probe, all in °C. raw_moist is the
// uncalibrated capacitance count of the moisture probe. shake and errFlag
// are diagnostic metadata passed through unused.
//
// # Calibration Model
//
// Conversion follows the myClim R package (Wild et al. 2019; Kopecký et al.
// 2021). The raw count is first corrected for the sensor's temperature
// drift relative to a 24 °C reference:
//
//	corrected = raw + (ref_t - T1) * (acor_t + wcor_t * raw / 1000)
//
// then mapped to VWC through a soil-type-specific quadratic curve
// a·x² + b·x + c, clamped to the physical range [0, 1]. The thirteen
// calibrated soil types and their coefficients are fixed published data;
// see [SoilType]. The validate command re-checks them against fixtures
// produced by the reference package.
//
// # Frozen Soil
//
// Below 0 °C the capacitance signal does not measure liquid water content.
// Masking such readings is optional and off by default, matching the
// reference configuration (frozen2NA = FALSE); see [NewEngine].
package domain
