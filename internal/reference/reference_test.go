package reference

import (
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-testeng/internal/fut"
)

func randomReal(seed int64, n int) []float64 {
	rnd := rand.New(rand.NewSource(seed))

	x := make([]float64, n)
	for i := range x {
		x[i] = rnd.Float64()*2 - 1
	}

	return x
}

func TestFFTImpulse(t *testing.T) {
	t.Parallel()

	x := make([]complex128, 8)
	x[0] = 1

	for k, v := range FFT(nil, x) {
		assert.InDelta(t, 1, real(v), 1e-12, "bin %d", k)
		assert.InDelta(t, 0, imag(v), 1e-12, "bin %d", k)
	}
}

func TestFFTMatchesDefinition(t *testing.T) {
	t.Parallel()

	const n = 16

	x := Complex(randomReal(1, 2*n))
	got := FFT(nil, x)

	for k := range n {
		var want complex128
		for i, v := range x {
			a := -2 * math.Pi * float64(i*k) / n
			want += v * complex(math.Cos(a), math.Sin(a))
		}

		assert.InDelta(t, real(want), real(got[k]), 1e-9)
		assert.InDelta(t, imag(want), imag(got[k]), 1e-9)
	}
}

func TestRoundTripGain(t *testing.T) {
	t.Parallel()

	for _, cat := range []fut.Category{fut.ComplexFFT, fut.RealFFT, fut.DCT} {
		for _, n := range []int{4, 32, 128} {
			t.Run(fmt.Sprintf("%s/n=%d", cat, n), func(t *testing.T) {
				t.Parallel()

				width := n
				if cat == fut.ComplexFFT {
					width = 2 * n
				}

				x := randomReal(int64(n), width)

				fwd, err := Transform(cat, fut.Forward, x, n)
				require.NoError(t, err)

				back, err := Transform(cat, fut.Inverse, fwd, n)
				require.NoError(t, err)
				require.Len(t, back, width)

				g := Gain(cat, n)
				for i := range x {
					assert.InDelta(t, x[i], back[i]/g, 1e-9, "i=%d", i)
				}
			})
		}
	}
}

func TestRealFFTMatchesComplex(t *testing.T) {
	t.Parallel()

	const n = 32

	x := randomReal(5, n)

	cx := make([]complex128, n)
	for i, v := range x {
		cx[i] = complex(v, 0)
	}

	full := FFT(nil, cx)
	half := RFFT(nil, x)
	require.Len(t, half, n/2+1)

	for k := range half {
		assert.InDelta(t, real(full[k]), real(half[k]), 1e-9)
		assert.InDelta(t, imag(full[k]), imag(half[k]), 1e-9)
	}
}

func TestDCT2Constant(t *testing.T) {
	t.Parallel()

	got := DCT2(nil, []float64{1, 1, 1, 1})
	assert.InDelta(t, 4, got[0], 1e-12)

	for _, v := range got[1:] {
		assert.InDelta(t, 0, v, 1e-12)
	}
}

func TestTransformRejectsBadFrames(t *testing.T) {
	t.Parallel()

	_, err := Transform(fut.ComplexFFT, fut.Forward, make([]float64, 7), 4)
	assert.Error(t, err)

	_, err = Transform(fut.RealFFT, fut.Inverse, make([]float64, 8), 8)
	assert.Error(t, err)

	_, err = Transform(fut.DCT, fut.Forward, make([]float64, 3), 4)
	assert.Error(t, err)

	_, err = Transform(fut.Category(9), fut.Forward, nil, 4)
	assert.Error(t, err)
}

func TestConcurrentPlansShareCache(t *testing.T) {
	t.Parallel()

	x := Complex(randomReal(9, 64))
	want := FFT(nil, x)

	done := make(chan []complex128, 8)
	for range 8 {
		go func() { done <- FFT(nil, x) }()
	}

	for range 8 {
		assert.Equal(t, want, <-done)
	}
}
