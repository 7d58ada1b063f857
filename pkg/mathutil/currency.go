// Package mathutil provides small numeric helpers shared by the
// financial calculation packages.
package mathutil

import "math"

// Round rounds a value to two decimals, i.e. to represent real currency.
func Round(val float64) float64 {
	return math.Round(val*100) / 100
}

// WithinTolerance checks if two values are within a specified tolerance.
func WithinTolerance(a, b, tolerance float64) bool {
	return math.Abs(a-b) <= tolerance
}
