// Package reference computes double-precision transforms used as golden
// output. FFTs come from gonum's dsp/fourier; the DCT is evaluated
// directly from its definition.
//
// Conventions, for a frame of size N:
//
//	forward FFT:   X[k] = Σ x[n]·exp(-2πikn/N)          (unnormalized)
//	inverse FFT:   x[n] = Σ X[k]·exp(+2πikn/N)          (unnormalized, gain N)
//	DCT-II:        X[k] = Σ x[n]·cos(π(2n+1)k/(2N))
//	DCT-III:       x[n] = X[0]/2 + Σ_{k≥1} X[k]·cos(π(2n+1)k/(2N))  (gain N/2)
//
// Real FFTs produce and consume the N/2+1 non-negative bins.
package reference

import (
	"fmt"
	"math"
	"sync"

	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/cwbudde/algo-testeng/internal/fut"
)

type planKey struct {
	n      int
	isReal bool
}

// plan guards a gonum plan, which keeps its work space inside.
type plan struct {
	mu sync.Mutex
	c  *fourier.CmplxFFT
	r  *fourier.FFT
}

// plans caches one plan per size and kind.
var plans sync.Map // map[planKey]*plan

func lookup(n int, isReal bool) *plan {
	k := planKey{n: n, isReal: isReal}
	if p, ok := plans.Load(k); ok {
		return p.(*plan)
	}

	p := &plan{}
	if isReal {
		p.r = fourier.NewFFT(n)
	} else {
		p.c = fourier.NewCmplxFFT(n)
	}

	actual, _ := plans.LoadOrStore(k, p)

	return actual.(*plan)
}

// FFT computes the forward complex FFT of x into dst.
func FFT(dst, x []complex128) []complex128 {
	p := lookup(len(x), false)
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.c.Coefficients(dst, x)
}

// IFFT computes the unnormalized inverse complex FFT of x into dst.
func IFFT(dst, x []complex128) []complex128 {
	p := lookup(len(x), false)
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.c.Sequence(dst, x)
}

// RFFT computes the N/2+1 non-negative bins of the real sequence x.
func RFFT(dst []complex128, x []float64) []complex128 {
	p := lookup(len(x), true)
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.r.Coefficients(dst, x)
}

// IRFFT computes the unnormalized real sequence of length n from its n/2+1
// non-negative bins.
func IRFFT(dst []float64, bins []complex128, n int) []float64 {
	p := lookup(n, true)
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.r.Sequence(dst, bins)
}

// DCT2 computes the DCT-II of x into dst.
func DCT2(dst, x []float64) []float64 {
	n := len(x)
	dst = resize(dst, n)

	for k := range n {
		var sum float64
		for i, v := range x {
			sum += v * math.Cos(math.Pi*float64((2*i+1)*k)/float64(2*n))
		}

		dst[k] = sum
	}

	return dst
}

// DCT3 computes the DCT-III of x into dst, the inverse of DCT2 up to a
// gain of N/2.
func DCT3(dst, x []float64) []float64 {
	n := len(x)
	dst = resize(dst, n)

	for i := range n {
		sum := x[0] / 2
		for k := 1; k < n; k++ {
			sum += x[k] * math.Cos(math.Pi*float64((2*i+1)*k)/float64(2*n))
		}

		dst[i] = sum
	}

	return dst
}

// Gain returns the factor a forward transform followed by its inverse
// applies to a frame of size n.
func Gain(cat fut.Category, n int) float64 {
	if cat == fut.DCT {
		return float64(n) / 2
	}

	return float64(n)
}

// Transform applies the transform of the given category and direction to
// one frame of size n. Data is interleaved float64: complex values take two
// entries, in the layout of the reference files.
func Transform(cat fut.Category, dir fut.Direction, x []float64, n int) ([]float64, error) {
	switch cat {
	case fut.ComplexFFT:
		if len(x) != 2*n {
			return nil, fmt.Errorf("reference: complex frame of %d needs %d values, have %d", n, 2*n, len(x))
		}

		in := Complex(x)
		if dir == fut.Inverse {
			return Interleave(IFFT(nil, in)), nil
		}

		return Interleave(FFT(nil, in)), nil
	case fut.RealFFT:
		if dir == fut.Inverse {
			if len(x) != 2*(n/2+1) {
				return nil, fmt.Errorf("reference: %d bins need %d values, have %d", n/2+1, 2*(n/2+1), len(x))
			}

			return IRFFT(nil, Complex(x), n), nil
		}

		if len(x) != n {
			return nil, fmt.Errorf("reference: real frame of %d, have %d", n, len(x))
		}

		return Interleave(RFFT(nil, x)), nil
	case fut.DCT:
		if len(x) != n {
			return nil, fmt.Errorf("reference: real frame of %d, have %d", n, len(x))
		}

		if dir == fut.Inverse {
			return DCT3(nil, x), nil
		}

		return DCT2(nil, x), nil
	default:
		return nil, fmt.Errorf("reference: unknown category %s", cat)
	}
}

// Complex pairs up interleaved values.
func Complex(x []float64) []complex128 {
	out := make([]complex128, len(x)/2)
	for i := range out {
		out[i] = complex(x[2*i], x[2*i+1])
	}

	return out
}

// Interleave flattens complex values.
func Interleave(c []complex128) []float64 {
	out := make([]float64, 2*len(c))
	for i, v := range c {
		out[2*i], out[2*i+1] = real(v), imag(v)
	}

	return out
}

func resize(dst []float64, n int) []float64 {
	if cap(dst) < n {
		return make([]float64, n)
	}

	return dst[:n]
}
