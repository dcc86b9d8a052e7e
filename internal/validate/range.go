// Package validate judges function-under-test output: closed-range checks
// against per-element bound vectors and SINAD/error-free-bit scoring against
// a double-precision reference.
package validate

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-testeng/internal/vec"
)

// ErrShape is returned when a value vector and its bounds disagree in format
// or length.
var ErrShape = errors.New("validate: bound vectors do not match value vector")

// CheckRange reports whether every component of v lies within the closed
// range given by the matching components of lo and hi. first is the index of
// the first failing component, or -1. Complex vectors are checked component
// by component against interleaved bounds.
//
// For floating-point formats two zero bounds of opposite sign accept any
// zero, while two zero bounds of equal sign accept only a zero with that
// sign. A NaN bound requires a NaN value, and a signaling NaN value is only
// accepted when at least one bound is a signaling NaN.
func CheckRange(v, lo, hi *vec.Vector) (ok bool, first int, err error) {
	if err := sameShape(v, lo, hi); err != nil {
		return false, -1, err
	}

	switch v.Format().Base() {
	case vec.Float32:
		x, l, h, err := slices3[float32](v, lo, hi)
		if err != nil {
			return false, -1, err
		}

		for i := range x {
			if !floatInRange(float64(x[i]), float64(l[i]), float64(h[i]),
				isSignaling32(x[i]), isSignaling32(l[i]), isSignaling32(h[i])) {
				return false, i, nil
			}
		}
	case vec.Float64:
		x, l, h, err := slices3[float64](v, lo, hi)
		if err != nil {
			return false, -1, err
		}

		for i := range x {
			if !floatInRange(x[i], l[i], h[i], isSignaling64(x[i]), isSignaling64(l[i]), isSignaling64(h[i])) {
				return false, i, nil
			}
		}
	default:
		x, l, h, err := ints3(v, lo, hi)
		if err != nil {
			return false, -1, err
		}

		for i := range x {
			if x[i] < l[i] || x[i] > h[i] {
				return false, i, nil
			}
		}
	}

	return true, -1, nil
}

// Failure describes component i of v and its bounds.
func Failure(v, lo, hi *vec.Vector, i int) string {
	c := v.Format().Components()

	where := fmt.Sprintf("element %d", i/c)
	if c == 2 {
		where += [2]string{" re", " im"}[i%2]
	}

	return fmt.Sprintf("%s: value %s outside [%s, %s]", where, component(v, i), component(lo, i), component(hi, i))
}

func floatInRange(x, lo, hi float64, xSig, loSig, hiSig bool) bool {
	if math.IsNaN(lo) || math.IsNaN(hi) {
		if !math.IsNaN(x) {
			return false
		}

		return !xSig || loSig || hiSig
	}

	if lo == 0 && hi == 0 {
		if x != 0 {
			return false
		}

		if math.Signbit(lo) != math.Signbit(hi) {
			return true
		}

		return math.Signbit(x) == math.Signbit(lo)
	}

	return lo <= x && x <= hi
}

// isSignaling32 reports a NaN whose quiet bit (bit 22) is clear. It works on
// the raw bits since widening to float64 may quiet the NaN.
func isSignaling32(x float32) bool {
	b := math.Float32bits(x)

	return b&0x7f800000 == 0x7f800000 && b&0x007fffff != 0 && b&0x00400000 == 0
}

// isSignaling64 reports a NaN whose quiet bit (bit 51) is clear.
func isSignaling64(x float64) bool {
	b := math.Float64bits(x)

	return b&0x7ff0000000000000 == 0x7ff0000000000000 && b&0x000fffffffffffff != 0 && b&(1<<51) == 0
}

func sameShape(v, lo, hi *vec.Vector) error {
	for _, b := range []*vec.Vector{lo, hi} {
		if b.Format() != v.Format() {
			return fmt.Errorf("%w: bound format %s, value format %s", ErrShape, b.Format(), v.Format())
		}

		if b.Len() != v.Len() {
			return fmt.Errorf("%w: bound length %d, value length %d", ErrShape, b.Len(), v.Len())
		}
	}

	return nil
}

func slices3[T float32 | float64](v, lo, hi *vec.Vector) ([]T, []T, []T, error) {
	x, err := vec.Slice[T](v)
	if err != nil {
		return nil, nil, nil, err
	}

	l, err := vec.Slice[T](lo)
	if err != nil {
		return nil, nil, nil, err
	}

	h, err := vec.Slice[T](hi)
	if err != nil {
		return nil, nil, nil, err
	}

	return x, l, h, nil
}

// ints3 widens integer and fixed-point components to int64.
func ints3(v, lo, hi *vec.Vector) ([]int64, []int64, []int64, error) {
	out := make([][]int64, 3)

	for k, src := range []*vec.Vector{v, lo, hi} {
		w, err := widen(src)
		if err != nil {
			return nil, nil, nil, err
		}

		out[k] = w
	}

	return out[0], out[1], out[2], nil
}

func widen(v *vec.Vector) ([]int64, error) {
	switch v.Format().Base() {
	case vec.Int16, vec.Q15:
		z, err := vec.Slice[int16](v)
		if err != nil {
			return nil, err
		}

		return widenInts(z), nil
	case vec.Int32, vec.Q31:
		z, err := vec.Slice[int32](v)
		if err != nil {
			return nil, err
		}

		return widenInts(z), nil
	case vec.Int64:
		return vec.Slice[int64](v)
	default:
		return nil, fmt.Errorf("%w: %s", vec.ErrInvalidFormat, v.Format())
	}
}

func widenInts[T int16 | int32](z []T) []int64 {
	out := make([]int64, len(z))
	for i, x := range z {
		out[i] = int64(x)
	}

	return out
}

func component(v *vec.Vector, i int) string {
	switch v.Format().Base() {
	case vec.Float32:
		x := vec.MustSlice[float32](v)[i]
		return fmt.Sprintf("%g (%08x)", x, math.Float32bits(x))
	case vec.Float64:
		x := vec.MustSlice[float64](v)[i]
		return fmt.Sprintf("%g (%016x)", x, math.Float64bits(x))
	default:
		w, err := widen(v)
		if err != nil {
			return "?"
		}

		return fmt.Sprintf("%d", w[i])
	}
}
