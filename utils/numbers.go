// Package utils holds numeric predicates used by scalar coercion.
package utils

import "math"

type number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// IsInRange checks if a value is within the specified range, both inclusive.
func IsInRange[T number](min T, value T, max T) bool {
	return min <= value && value <= max
}

// FitsInt32 reports whether i converts to int32 without loss.
func FitsInt32(i int64) bool {
	return IsInRange(math.MinInt32, i, math.MaxInt32)
}

// FitsFloat32 reports whether f is finite in float32, or already infinite.
func FitsFloat32(f float64) bool {
	return math.IsInf(f, 0) || math.IsNaN(f) || IsInRange(-math.MaxFloat32, f, math.MaxFloat32)
}

// IsIntegral reports whether f has no fractional part and converts to int64.
func IsIntegral(f float64) bool {
	return f == math.Trunc(f) && f >= math.MinInt64 && f < math.MaxInt64
}
