package utils

import "math"

// Round2 rounds x to 2 decimal places, half away from zero. Only for ratios
// such as growth percentages; amounts are decimal.Decimal throughout.
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}
