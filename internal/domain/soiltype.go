package domain

// SoilType identifies one row of the TMS calibration table. The set is
// closed: every calibrated soil has exactly one constant below and one
// coefficient row in Calibration.
type SoilType int

const (
	Sand SoilType = iota
	LoamySandA
	LoamySandB
	SandyLoamA
	SandyLoamB
	Loam
	SiltLoam
	Peat
	Water
	Universal
	SandTMS1
	LoamySandTMS1
	SiltLoamTMS1
)

// AllSoilTypes lists every calibrated soil type in table order.
var AllSoilTypes = []SoilType{
	Sand, LoamySandA, LoamySandB, SandyLoamA, SandyLoamB,
	Loam, SiltLoam, Peat, Water, Universal,
	SandTMS1, LoamySandTMS1, SiltLoamTMS1,
}

var soilTypeNames = map[SoilType]string{
	Sand:          "sand",
	LoamySandA:    "loamy_sand_A",
	LoamySandB:    "loamy_sand_B",
	SandyLoamA:    "sandy_loam_A",
	SandyLoamB:    "sandy_loam_B",
	Loam:          "loam",
	SiltLoam:      "silt_loam",
	Peat:          "peat",
	Water:         "water",
	Universal:     "universal",
	SandTMS1:      "sand_TMS1",
	LoamySandTMS1: "loamy_sand_TMS1",
	SiltLoamTMS1:  "silt_loam_TMS1",
}

func (s SoilType) String() string { return soilTypeNames[s] }

// SoilTypeNames returns the identifiers of all calibrated soil types in
// table order, for usage and error messages.
func SoilTypeNames() []string {
	names := make([]string, len(AllSoilTypes))
	for i, s := range AllSoilTypes {
		names[i] = s.String()
	}
	return names
}

// ParseSoilType resolves a soil-type identifier. Matching is case-sensitive;
// anything outside the calibrated set yields an UnknownSoilTypeError.
func ParseSoilType(name string) (SoilType, error) {
	for _, s := range AllSoilTypes {
		if soilTypeNames[s] == name {
			return s, nil
		}
	}
	return 0, &UnknownSoilTypeError{Name: name}
}

// SoilCalibration holds the quadratic calibration curve VWC = A·x² + B·x + C
// for one soil type, where x is the temperature-corrected raw count.
type SoilCalibration struct {
	Soil    SoilType
	A, B, C float64
}

// Calibration returns the soil type's published calibration coefficients
// (Wild et al. 2019; universal curve from Kopecký et al. 2021). Fixed data,
// never computed.
func (s SoilType) Calibration() SoilCalibration {
	switch s {
	case Sand:
		return SoilCalibration{s, -3.00e-9, 1.61192e-4, -0.109956505}
	case LoamySandA:
		return SoilCalibration{s, -1.90e-8, 2.66112e-4, -0.154089291}
	case LoamySandB:
		return SoilCalibration{s, -2.30e-8, 2.82473e-4, -0.167211156}
	case SandyLoamA:
		return SoilCalibration{s, -3.80e-8, 3.39449e-4, -0.214921782}
	case SandyLoamB:
		return SoilCalibration{s, -9.00e-10, 2.61847e-4, -0.158618303}
	case Loam:
		return SoilCalibration{s, -5.10e-8, 3.97984e-4, -0.291046437}
	case SiltLoam:
		return SoilCalibration{s, 1.70e-8, 1.18119e-4, -0.101168511}
	case Peat:
		return SoilCalibration{s, 1.23e-7, -1.44644e-4, 0.202927906}
	case Water:
		return SoilCalibration{s, 0, 3.06700e-4, -0.134927}
	case Universal:
		return SoilCalibration{s, -1.34e-8, 2.50e-4, -0.158}
	case SandTMS1:
		return SoilCalibration{s, -3.00e-9, 2.30e-4, -0.134}
	case LoamySandTMS1:
		return SoilCalibration{s, -1.90e-8, 3.20e-4, -0.206}
	case SiltLoamTMS1:
		return SoilCalibration{s, 1.70e-8, 1.60e-4, -0.126}
	default:
		panic("unreachable: soil type outside calibrated set")
	}
}
