package nutrition

import "math"

const (
	cmPerInch = 2.54
	lbsPerKg  = 2.20462
)

// FeetInchesToCm converts a height to whole centimetres
func FeetInchesToCm(feet, inches int) int {
	return int(math.Round(float64(feet*12+inches) * cmPerInch))
}

// CmToFeetInches converts centimetres to feet and inches, rounding to the nearest
// inch first so inches is always 0..11.
func CmToFeetInches(cm float64) (feet, inches int) {
	total := int(math.Round(cm / cmPerInch))
	return total / 12, total % 12
}

// KgToLbs converts kilograms to pounds, one decimal place
func KgToLbs(kg float64) float64 {
	return roundTo(kg*lbsPerKg, 1)
}

// LbsToKg converts pounds to kilograms, one decimal place
func LbsToKg(lbs float64) float64 {
	return roundTo(lbs/lbsPerKg, 1)
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
