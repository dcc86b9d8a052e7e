// Package fixed implements the saturating fixed-point primitives the format
// converter relies on. The rules are bit-exact: golden SEQ outputs for Q15
// and Q31 vectors depend on them.
package fixed

import (
	"math"
	"math/bits"
)

// SignBits16 counts the leading bits of x that equal its sign bit, the sign
// bit included. A fully normalized value returns 1, 0 and -1 return 16.
//
//	SignBits16(16384)  == 1  // 0100 0000 0000 0000
//	SignBits16(-16384) == 2  // 1100 0000 0000 0000
func SignBits16(x int16) int {
	u := uint16(x)
	if x < 0 {
		u = ^u
	}

	return bits.LeadingZeros16(u)
}

// MinSignBits16 returns the smallest SignBits16 over xs, or 16 for an empty
// or all-zero block.
func MinSignBits16(xs []int16) int {
	m := 16
	for _, x := range xs {
		if s := SignBits16(x); s < m {
			m = s
			if m == 1 {
				break
			}
		}
	}

	return m
}

// Sat32 clamps v to the int32 range.
func Sat32(v int64) int32 {
	switch {
	case v > math.MaxInt32:
		return math.MaxInt32
	case v < math.MinInt32:
		return math.MinInt32
	default:
		return int32(v)
	}
}

// Sat16 clamps v to the int16 range.
func Sat16(v int64) int16 {
	switch {
	case v > math.MaxInt16:
		return math.MaxInt16
	case v < math.MinInt16:
		return math.MinInt16
	default:
		return int16(v)
	}
}

// LShl shifts x left by s with saturation. A negative s is an arithmetic
// right shift.
func LShl(x int32, s int) int32 {
	switch {
	case s == 0 || x == 0:
		return x
	case s < 0:
		if s <= -31 {
			if x < 0 {
				return -1
			}

			return 0
		}

		return x >> uint(-s)
	case s >= 31:
		if x > 0 {
			return math.MaxInt32
		}

		return math.MinInt32
	default:
		return Sat32(int64(x) << uint(s))
	}
}

// RoundQ15 extracts the high half of a Q31 word, rounding half away from
// zero on the discarded 16 bits and saturating to int16.
func RoundQ15(x int32) int16 {
	v := int64(x)
	if v >= 0 {
		return Sat16((v + 0x8000) >> 16)
	}

	return Sat16(-((-v + 0x8000) >> 16))
}

// RoundSat16 rounds f half away from zero and saturates to int16.
// NaN maps to 0.
func RoundSat16(f float64) int16 {
	if math.IsNaN(f) {
		return 0
	}

	r := math.Round(f)
	switch {
	case r >= math.MaxInt16:
		return math.MaxInt16
	case r <= math.MinInt16:
		return math.MinInt16
	default:
		return int16(r)
	}
}

// RoundSat32 rounds f half away from zero and saturates to int32.
// NaN maps to 0.
func RoundSat32(f float64) int32 {
	if math.IsNaN(f) {
		return 0
	}

	r := math.Round(f)
	switch {
	case r >= math.MaxInt32:
		return math.MaxInt32
	case r <= math.MinInt32:
		return math.MinInt32
	default:
		return int32(r)
	}
}

// RoundSat64 rounds f half away from zero and saturates to int64.
// NaN maps to 0.
func RoundSat64(f float64) int64 {
	if math.IsNaN(f) {
		return 0
	}

	r := math.Round(f)
	switch {
	// float64(MaxInt64) rounds up to 2^63, so >= catches the boundary.
	case r >= math.MaxInt64:
		return math.MaxInt64
	case r <= math.MinInt64:
		return math.MinInt64
	default:
		return int64(r)
	}
}

// MulQ15 multiplies two Q15 values with rounding and saturation.
func MulQ15(a, b int16) int16 {
	return RoundQ15(LShl(int32(a)*int32(b), 1))
}
