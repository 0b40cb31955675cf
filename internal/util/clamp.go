package util

import "cmp"

// Clamp clamps val to the range [min, max] for any ordered type.
func Clamp[T cmp.Ordered](val, min, max T) T {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// ClampByte rounds a float intensity to the nearest integer and clamps it to [0,255].
func ClampByte(v float64) uint8 {
	if v != v { // NaN
		return 0
	}
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v + 0.5)
}
