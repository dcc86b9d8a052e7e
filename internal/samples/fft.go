package samples

import (
	"github.com/cwbudde/algo-testeng/internal/fixed"
	imath "github.com/cwbudde/algo-testeng/internal/math"
	"github.com/cwbudde/algo-testeng/internal/reference"
)

// Complex is the constraint for the floating-point DIT kernels.
type Complex interface {
	complex64 | complex128
}

// conj returns the complex conjugate of val.
func conj[T Complex](val T) T {
	switch v := any(val).(type) {
	case complex64:
		return any(complex(real(v), -imag(v))).(T)
	case complex128:
		return any(complex(real(v), -imag(v))).(T)
	default:
		panic("unsupported complex type")
	}
}

// ditRadix2 computes a size-n radix-2 decimation-in-time FFT of x into y.
// Twiddle k of the size-n transform is tw[k*stride]. The input is loaded
// in bit-reversed order into scratch first, so y may alias x. The inverse
// uses conjugated twiddles and is unnormalized.
func ditRadix2[T Complex](y, x, tw []T, stride, n int, inverse bool) {
	work := make([]T, n)

	for i, j := range imath.ComputeBitReversalIndices(n) {
		work[j] = x[i]
	}

	for size := 2; size <= n; size <<= 1 {
		half := size >> 1
		step := (n / size) * stride

		for start := 0; start < n; start += size {
			for k := range half {
				w := tw[k*step]
				if inverse {
					w = conj(w)
				}

				a := work[start+k]
				b := w * work[start+k+half]
				work[start+k], work[start+k+half] = a+b, a-b
			}
		}
	}

	copy(y[:n], work)
}

func forwardF32(y, x, tw []complex64, stride, n, _ int) int {
	ditRadix2(y, x, tw, stride, n, false)
	return 0
}

func inverseF32(y, x, tw []complex64, stride, n, _ int) int {
	ditRadix2(y, x, tw, stride, n, true)
	return 0
}

// batchF32 runs the forward kernel over every frame packed in x.
func batchF32(y, x, tw []complex64, stride, n, _ int) int {
	for f := 0; f+n <= len(x) && f+n <= len(y); f += n {
		ditRadix2(y[f:f+n], x[f:f+n], tw, stride, n, false)
	}

	return 0
}

// The float64 transforms delegate to the reference implementation and
// ignore the twiddle table.

func forwardF64(y, x, _ []complex128, _, n, _ int) int {
	in := append([]complex128(nil), x[:n]...)
	reference.FFT(y[:n], in)

	return 0
}

func inverseF64(y, x, _ []complex128, _, n, _ int) int {
	in := append([]complex128(nil), x[:n]...)
	reference.IFFT(y[:n], in)

	return 0
}

func forwardRealF64(y, x, _ []float64, _, n, _ int) int {
	bins := reference.RFFT(nil, append([]float64(nil), x[:n]...))
	for k, b := range bins {
		y[2*k], y[2*k+1] = real(b), imag(b)
	}

	return 0
}

func inverseRealF64(y, x, _ []float64, _, n, _ int) int {
	bins := reference.Complex(x[:2*(n/2+1)])
	reference.IRFFT(y[:n], bins, n)

	return 0
}

// dctCos returns Re(exp(-iπm/(2n))) from a DCT table read at stride, using
// the quarter-wave symmetry for m >= n.
func dctCos(tw []complex128, stride, n, m int) float64 {
	m %= 4 * n
	w := tw[(m%n)*stride]

	switch m / n {
	case 0:
		return real(w)
	case 1:
		return imag(w)
	case 2:
		return -real(w)
	default:
		return -imag(w)
	}
}

// forwardDCT computes the DCT-II from the table.
func forwardDCT(y, x []float64, tw []complex128, stride, n, _ int) int {
	in := append([]float64(nil), x[:n]...)

	for k := range n {
		var sum float64
		for i, v := range in {
			sum += v * dctCos(tw, stride, n, (2*i+1)*k)
		}

		y[k] = sum
	}

	return 0
}

// inverseDCT computes the DCT-III from the table.
func inverseDCT(y, x []float64, tw []complex128, stride, n, _ int) int {
	in := append([]float64(nil), x[:n]...)

	for i := range n {
		sum := in[0] / 2
		for k := 1; k < n; k++ {
			sum += in[k] * dctCos(tw, stride, n, (2*i+1)*k)
		}

		y[i] = sum
	}

	return 0
}

// Scale methods of the Q15 FFT.
const (
	ScaleNone    = iota // caller provides headroom
	ScaleStatic         // halve before every stage
	ScaleDynamic        // halve when a stage could overflow
	ScaleLoose          // halve only when a value reaches half scale
)

// needsHalving reports whether any component magnitude exceeds limit.
func needsHalving(re, im []int32, limit int32) bool {
	for i := range re {
		if re[i] > limit || re[i] < -limit || im[i] > limit || im[i] < -limit {
			return true
		}
	}

	return false
}

func halve(re, im []int32) {
	for i := range re {
		re[i] = (re[i] + 1) >> 1
		im[i] = (im[i] + 1) >> 1
	}
}

// fftQ15 is a radix-2 DIT FFT on interleaved Q15 data with Q15 twiddles.
// It returns the number of halvings applied.
func fftQ15(y, x, tw []int16, stride, n, scale int, inverse bool) int {
	re := make([]int32, n)
	im := make([]int32, n)

	for i, j := range imath.ComputeBitReversalIndices(n) {
		re[j], im[j] = int32(x[2*i]), int32(x[2*i+1])
	}

	shift := 0

	for size := 2; size <= n; size <<= 1 {
		halving := false

		switch scale {
		case ScaleStatic:
			halving = true
		case ScaleDynamic:
			halving = needsHalving(re, im, 1<<13)
		case ScaleLoose:
			halving = needsHalving(re, im, 1<<14)
		}

		if halving {
			halve(re, im)
			shift++
		}

		half := size >> 1
		step := (n / size) * stride

		for start := 0; start < n; start += size {
			for k := range half {
				idx := k * step
				wr, wi := int64(tw[2*idx]), int64(tw[2*idx+1])

				if inverse {
					wi = -wi
				}

				a, b := start+k, start+k+half
				br, bi := int64(re[b]), int64(im[b])

				tr := (wr*br - wi*bi + 1<<14) >> 15
				ti := (wr*bi + wi*br + 1<<14) >> 15

				ar, ai := int64(re[a]), int64(im[a])
				re[a], im[a] = int32(fixed.Sat16(ar+tr)), int32(fixed.Sat16(ai+ti))
				re[b], im[b] = int32(fixed.Sat16(ar-tr)), int32(fixed.Sat16(ai-ti))
			}
		}
	}

	for i := range n {
		y[2*i], y[2*i+1] = int16(re[i]), int16(im[i])
	}

	return shift
}

func forwardQ15(y, x, tw []int16, stride, n, scale int) int {
	return fftQ15(y, x, tw, stride, n, scale, false)
}

func inverseQ15(y, x, tw []int16, stride, n, scale int) int {
	return fftQ15(y, x, tw, stride, n, scale, true)
}

// BlockExp returns the block exponent the Q15 FFT needs on its input for
// scale method scale: unscaled transforms need log2(n)+2 bits of headroom,
// scaled ones 2.
func BlockExp(n, scale int) int {
	if scale == ScaleNone {
		return imath.Log2(n) + 2
	}

	return 2
}
