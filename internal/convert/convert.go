// Package convert moves test data between 16-bit PCM, fixed-point and
// floating-point vectors while tracking the block exponent applied.
//
// Fixed-point conversions are bit-exact:
//
//	shift = min(SignBits16(x)) - bexp
//	Q15:  z = RoundQ15(LShl(x, 16+shift))
//	Q31:  z = LShl(x, 16+shift)
//
// and the reverse direction rescales by ldexp(z, -shift-15) or
// ldexp(z, -shift-31).
package convert

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-testeng/internal/fixed"
	"github.com/cwbudde/algo-testeng/internal/vec"
)

// ErrLength is returned when a source or destination is too short.
var ErrLength = errors.New("convert: length mismatch")

// FromPCM16 fills dst from 16-bit PCM samples. Complex vectors consume two
// interleaved samples per element. For Q15/Q31 targets the block is
// normalized so that its minimum sign-bit count equals bexp, and the left
// shift applied is returned (negative means a right shift). Other targets
// return 0.
func FromPCM16(dst *vec.Vector, pcm []int16, bexp int) (int, error) {
	n := dst.Components()
	if len(pcm) < n {
		return 0, fmt.Errorf("%w: need %d samples, have %d", ErrLength, n, len(pcm))
	}

	return fromPCM16(dst, 0, pcm[:n], bexp)
}

// FromPCM16Blockwise converts frames consecutive frames of frameLen
// elements each, normalizing every frame on its own. The shift applied to
// frame f is written to shifts[f].
func FromPCM16Blockwise(dst *vec.Vector, pcm []int16, frameLen, frames, bexp int, shifts []int) error {
	c := dst.Format().Components()
	per := frameLen * c

	if frameLen < 0 || frames < 0 || frameLen*frames > dst.Len() {
		return fmt.Errorf("%w: %d frames of %d exceed %d elements", ErrLength, frames, frameLen, dst.Len())
	}

	if len(pcm) < per*frames || len(shifts) < frames {
		return fmt.Errorf("%w: %d frames of %d components", ErrLength, frames, per)
	}

	for f := range frames {
		s, err := fromPCM16(dst, f*per, pcm[f*per:(f+1)*per], bexp)
		if err != nil {
			return err
		}

		shifts[f] = s
	}

	return nil
}

// fromPCM16 writes pcm into the components of dst starting at component at.
func fromPCM16(dst *vec.Vector, at int, pcm []int16, bexp int) (int, error) {
	f := dst.Format()

	switch f.Base() {
	case vec.Int16:
		z, err := vec.Slice[int16](dst)
		if err != nil {
			return 0, err
		}

		copy(z[at:], pcm)
	case vec.Int32:
		z, err := vec.Slice[int32](dst)
		if err != nil {
			return 0, err
		}

		for i, x := range pcm {
			z[at+i] = int32(x)
		}
	case vec.Int64:
		z, err := vec.Slice[int64](dst)
		if err != nil {
			return 0, err
		}

		for i, x := range pcm {
			z[at+i] = int64(x)
		}
	case vec.Q15:
		z, err := vec.Slice[int16](dst)
		if err != nil {
			return 0, err
		}

		shift := fixed.MinSignBits16(pcm) - bexp
		for i, x := range pcm {
			z[at+i] = fixed.RoundQ15(fixed.LShl(int32(x), 16+shift))
		}

		return shift, nil
	case vec.Q31:
		z, err := vec.Slice[int32](dst)
		if err != nil {
			return 0, err
		}

		shift := fixed.MinSignBits16(pcm) - bexp
		for i, x := range pcm {
			z[at+i] = fixed.LShl(int32(x), 16+shift)
		}

		return shift, nil
	case vec.Float32:
		z, err := vec.Slice[float32](dst)
		if err != nil {
			return 0, err
		}

		for i, x := range pcm {
			z[at+i] = float32(math.Ldexp(float64(x), -15))
		}
	case vec.Float64:
		z, err := vec.Slice[float64](dst)
		if err != nil {
			return 0, err
		}

		for i, x := range pcm {
			z[at+i] = math.Ldexp(float64(x), -15)
		}
	default:
		return 0, fmt.Errorf("%w: %s", vec.ErrInvalidFormat, f)
	}

	return 0, nil
}

// FromFloat64 converts a float64 stream into dst's native format. Integer
// targets round half away from zero and saturate; Q15/Q31 targets are
// scaled by 2^15/2^31 first. No shift is tracked.
func FromFloat64(dst *vec.Vector, src []float64) error {
	n := dst.Components()
	if len(src) < n {
		return fmt.Errorf("%w: need %d values, have %d", ErrLength, n, len(src))
	}

	src = src[:n]

	switch dst.Format().Base() {
	case vec.Int16, vec.Q15:
		z, err := vec.Slice[int16](dst)
		if err != nil {
			return err
		}

		e := dst.Format().FracBits()
		for i, x := range src {
			z[i] = fixed.RoundSat16(math.Ldexp(x, e))
		}
	case vec.Int32, vec.Q31:
		z, err := vec.Slice[int32](dst)
		if err != nil {
			return err
		}

		e := dst.Format().FracBits()
		for i, x := range src {
			z[i] = fixed.RoundSat32(math.Ldexp(x, e))
		}
	case vec.Int64:
		z, err := vec.Slice[int64](dst)
		if err != nil {
			return err
		}

		for i, x := range src {
			z[i] = fixed.RoundSat64(x)
		}
	case vec.Float32:
		z, err := vec.Slice[float32](dst)
		if err != nil {
			return err
		}

		for i, x := range src {
			z[i] = float32(x)
		}
	case vec.Float64:
		z, err := vec.Slice[float64](dst)
		if err != nil {
			return err
		}

		copy(z, src)
	default:
		return fmt.Errorf("%w: %s", vec.ErrInvalidFormat, dst.Format())
	}

	return nil
}

// ToFloat64 converts src into dst, undoing a left shift of shift bits.
// Fixed-point sources are additionally scaled down by 2^15 or 2^31.
func ToFloat64(dst []float64, src *vec.Vector, shift int) error {
	n := src.Components()
	if len(dst) < n {
		return fmt.Errorf("%w: need %d values, have %d", ErrLength, n, len(dst))
	}

	return toFloat64(dst[:n], src, 0, shift)
}

// ToFloat64Blockwise is the per-frame inverse of FromPCM16Blockwise.
func ToFloat64Blockwise(dst []float64, src *vec.Vector, frameLen, frames int, shifts []int) error {
	per := frameLen * src.Format().Components()

	if frameLen < 0 || frames < 0 || frameLen*frames > src.Len() {
		return fmt.Errorf("%w: %d frames of %d exceed %d elements", ErrLength, frames, frameLen, src.Len())
	}

	if len(dst) < per*frames || len(shifts) < frames {
		return fmt.Errorf("%w: %d frames of %d components", ErrLength, frames, per)
	}

	for f := range frames {
		if err := toFloat64(dst[f*per:(f+1)*per], src, f*per, shifts[f]); err != nil {
			return err
		}
	}

	return nil
}

func toFloat64(dst []float64, src *vec.Vector, at, shift int) error {
	e := -shift - src.Format().FracBits()

	switch src.Format().Base() {
	case vec.Int16, vec.Q15:
		z, err := vec.Slice[int16](src)
		if err != nil {
			return err
		}

		for i := range dst {
			dst[i] = math.Ldexp(float64(z[at+i]), e)
		}
	case vec.Int32, vec.Q31:
		z, err := vec.Slice[int32](src)
		if err != nil {
			return err
		}

		for i := range dst {
			dst[i] = math.Ldexp(float64(z[at+i]), e)
		}
	case vec.Int64:
		z, err := vec.Slice[int64](src)
		if err != nil {
			return err
		}

		for i := range dst {
			dst[i] = math.Ldexp(float64(z[at+i]), e)
		}
	case vec.Float32:
		z, err := vec.Slice[float32](src)
		if err != nil {
			return err
		}

		for i := range dst {
			dst[i] = math.Ldexp(float64(z[at+i]), e)
		}
	case vec.Float64:
		z, err := vec.Slice[float64](src)
		if err != nil {
			return err
		}

		for i := range dst {
			dst[i] = math.Ldexp(z[at+i], e)
		}
	default:
		return fmt.Errorf("%w: %s", vec.ErrInvalidFormat, src.Format())
	}

	return nil
}

// PCM16ToFloat64 scales PCM samples to [-1, 1) the way a float target of
// FromPCM16 does. Reconstruction cases use it as their reference.
func PCM16ToFloat64(dst []float64, pcm []int16) {
	for i, x := range pcm[:min(len(pcm), len(dst))] {
		dst[i] = math.Ldexp(float64(x), -15)
	}
}
