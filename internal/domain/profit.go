package domain

// Percent returns the relative difference between two prices as a signed
// percentage: (comparison/reference - 1) * 100.
//
// A zero reference yields an infinite result. Callers must treat non-finite
// values as "not profitable" instead of clamping them.
func Percent(reference, comparison float64) float64 {
	return (comparison/reference - 1) * 100
}
