// Package numx provides small numeric helpers shared by the scorers.
package numx

import "math"

// Round rounds v to the given number of decimal places, half away from zero.
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Ratio returns n/d, or 0 when d is zero.
func Ratio(n, d float64) float64 {
	if d == 0 {
		return 0
	}
	return n / d
}
