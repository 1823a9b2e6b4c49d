package utils

import "math"

// Round rounds v to the given number of decimal places. Equity and crypto
// prices use 2 places, fund NAVs 4.
func Round(v float64, decimals int) float64 {
	p := math.Pow10(decimals)
	return math.Round(v*p) / p
}
