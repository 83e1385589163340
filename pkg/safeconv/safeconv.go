// Package safeconv provides saturating conversions for byte sizes and counts.
package safeconv

import "math"

// FloatToUint64 converts a size estimate to whole bytes.
// Negative values and NaN give 0; values beyond the uint64 range saturate.
func FloatToUint64(v float64) uint64 {
	switch {
	case math.IsNaN(v) || v <= 0:
		return 0
	case v >= math.MaxUint64:
		return math.MaxUint64
	default:
		return uint64(v)
	}
}

// IntToUint64 converts int to uint64, clamping negatives to 0.
func IntToUint64(v int) uint64 {
	if v < 0 {
		return 0
	}

	return uint64(v)
}
