package samples

import (
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-testeng/internal/cpu"
	"github.com/cwbudde/algo-testeng/internal/fixed"
	"github.com/cwbudde/algo-testeng/internal/fut"
	imath "github.com/cwbudde/algo-testeng/internal/math"
	"github.com/cwbudde/algo-testeng/internal/reference"
	"github.com/cwbudde/algo-testeng/internal/twiddle"
	"github.com/cwbudde/algo-testeng/internal/vec"
)

// snr returns 10·log10(Σ|ref|² / Σ|ref-got|²).
func snr(ref, got []complex128) float64 {
	var sig, noise float64

	for i := range ref {
		d := ref[i] - got[i]
		sig += real(ref[i])*real(ref[i]) + imag(ref[i])*imag(ref[i])
		noise += real(d)*real(d) + imag(d)*imag(d)
	}

	if noise == 0 {
		return math.Inf(1)
	}

	return 10 * math.Log10(sig/noise)
}

func randomComplex(rng *rand.Rand, n int) []complex128 {
	x := make([]complex128, n)
	for i := range x {
		x[i] = complex(rng.Float64()*2-1, rng.Float64()*2-1)
	}

	return x
}

func toComplex64(x []complex128) []complex64 {
	out := make([]complex64, len(x))
	for i, v := range x {
		out[i] = complex64(v)
	}

	return out
}

func toComplex128(x []complex64) []complex128 {
	out := make([]complex128, len(x))
	for i, v := range x {
		out[i] = complex128(v)
	}

	return out
}

func TestRadix2MatchesReference(t *testing.T) {
	t.Parallel()

	for _, n := range []int{2, 4, 16, 64, 256} {
		for _, stride := range []int{1, 4} {
			t.Run(fmt.Sprintf("n=%d/stride=%d", n, stride), func(t *testing.T) {
				t.Parallel()

				rng := rand.New(rand.NewSource(int64(n)))
				x := randomComplex(rng, n)
				tw := toComplex64(twiddle.Compute(twiddle.FFT, n*stride))

				y := make([]complex64, n)
				forwardF32(y, toComplex64(x), tw, stride, n, 0)
				assert.Greater(t, snr(reference.FFT(nil, x), toComplex128(y)), 110.0)

				inverseF32(y, toComplex64(x), tw, stride, n, 0)
				assert.Greater(t, snr(reference.IFFT(nil, x), toComplex128(y)), 110.0)
			})
		}
	}
}

func TestRadix2InPlace(t *testing.T) {
	t.Parallel()

	const n = 32

	rng := rand.New(rand.NewSource(5))
	x := randomComplex(rng, n)
	tw := toComplex64(twiddle.Compute(twiddle.FFT, n))

	buf := toComplex64(x)
	forwardF32(buf, buf, tw, 1, n, 0)
	assert.Greater(t, snr(reference.FFT(nil, x), toComplex128(buf)), 110.0)
}

func TestBatchProcessesEveryFrame(t *testing.T) {
	t.Parallel()

	const n = 8

	rng := rand.New(rand.NewSource(9))
	x := randomComplex(rng, n*BatchFrames)
	tw := toComplex64(twiddle.Compute(twiddle.FFT, n))

	y := make([]complex64, len(x))
	batchF32(y, toComplex64(x), tw, 1, n, 0)

	for f := range BatchFrames {
		want := reference.FFT(nil, x[f*n:(f+1)*n])
		assert.Greater(t, snr(want, toComplex128(y[f*n:(f+1)*n])), 110.0, "frame %d", f)
	}
}

func q15Twiddles(n int) []int16 {
	c := twiddle.Compute(twiddle.FFT, n)
	out := make([]int16, 2*n)

	for i, w := range c {
		out[2*i] = fixed.RoundSat16(real(w) * 32768)
		out[2*i+1] = fixed.RoundSat16(imag(w) * 32768)
	}

	return out
}

func TestQ15ScaleMethods(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		scale     int
		amplitude float64
		minSNR    float64
	}{
		{"static", ScaleStatic, 1 << 13, 40},
		{"dynamic", ScaleDynamic, 1 << 13, 40},
		{"loose", ScaleLoose, 1 << 13, 40},
		{"none", ScaleNone, 1 << 6, 30},
	}

	for _, tt := range tests {
		for _, n := range []int{16, 64, 256} {
			t.Run(fmt.Sprintf("%s/n=%d", tt.name, n), func(t *testing.T) {
				t.Parallel()

				rng := rand.New(rand.NewSource(int64(n) + int64(tt.scale)))
				x := make([]int16, 2*n)
				xc := make([]complex128, n)

				for i := range n {
					re := int16((rng.Float64()*2 - 1) * tt.amplitude)
					im := int16((rng.Float64()*2 - 1) * tt.amplitude)
					x[2*i], x[2*i+1] = re, im
					xc[i] = complex(float64(re), float64(im))
				}

				y := make([]int16, 2*n)
				shift := forwardQ15(y, x, q15Twiddles(n), 1, n, tt.scale)

				switch tt.scale {
				case ScaleStatic:
					assert.Equal(t, imath.Log2(n), shift)
				case ScaleNone:
					assert.Zero(t, shift)
				default:
					assert.LessOrEqual(t, shift, imath.Log2(n))
				}

				want := reference.FFT(nil, xc)
				for i := range want {
					want[i] /= complex(math.Ldexp(1, shift), 0)
				}

				got := make([]complex128, n)
				for i := range got {
					got[i] = complex(float64(y[2*i]), float64(y[2*i+1]))
				}

				assert.Greater(t, snr(want, got), tt.minSNR)
			})
		}
	}
}

func TestQ15InverseUndoesForward(t *testing.T) {
	t.Parallel()

	const n = 64

	rng := rand.New(rand.NewSource(3))
	x := make([]int16, 2*n)

	for i := range x {
		x[i] = int16(rng.Intn(1<<13) - 1<<12)
	}

	tw := q15Twiddles(n)
	bins := make([]int16, 2*n)
	back := make([]int16, 2*n)

	s1 := forwardQ15(bins, x, tw, 1, n, ScaleStatic)
	s2 := inverseQ15(back, bins, tw, 1, n, ScaleStatic)

	// Forward and inverse each halve log2(n) times and the pair gains n,
	// so the result is x / n.
	assert.Equal(t, 2*imath.Log2(n), s1+s2)

	var sig, noise float64

	for i := range x {
		want := float64(x[i]) / n
		d := want - float64(back[i])
		sig += want * want
		noise += d * d
	}

	assert.Greater(t, 10*math.Log10(sig/noise), 10.0)
}

func TestBlockExp(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 8, BlockExp(64, ScaleNone))
	assert.Equal(t, 2, BlockExp(64, ScaleStatic))
	assert.Equal(t, 2, BlockExp(1024, ScaleLoose))
}

func TestDCTMatchesReference(t *testing.T) {
	t.Parallel()

	for _, n := range []int{4, 16, 32} {
		for _, stride := range []int{1, 2} {
			t.Run(fmt.Sprintf("n=%d/stride=%d", n, stride), func(t *testing.T) {
				t.Parallel()

				rng := rand.New(rand.NewSource(int64(n * stride)))
				x := make([]float64, n)

				for i := range x {
					x[i] = rng.Float64()*2 - 1
				}

				tw := twiddle.Compute(twiddle.DCT, n*stride)
				y := make([]float64, n)

				forwardDCT(y, x, tw, stride, n, 0)
				assert.InDeltaSlice(t, reference.DCT2(nil, x), y, 1e-9)

				inverseDCT(y, x, tw, stride, n, 0)
				assert.InDeltaSlice(t, reference.DCT3(nil, x), y, 1e-9)
			})
		}
	}
}

func TestRegister(t *testing.T) {
	t.Parallel()

	r := fut.NewRegistry()
	Register(r)
	RegisterFaulty(r)

	for _, id := range []string{CFFTF64, RFFTF64, CFFTF32, CFFTQ15, DCTF64} {
		e, ok := r.Lookup(id)
		require.True(t, ok, id)

		p, pt, err := r.Partner(e)
		require.NoError(t, err, id)
		assert.Equal(t, fut.Inverse, pt.Direction, p.ID)

		back, _, err := r.Partner(p)
		require.NoError(t, err)
		assert.Equal(t, id, back.ID)
	}

	q31, _ := r.Lookup(CFFTQ31)
	assert.ErrorIs(t, q31.Available(cpu.DetectFeatures()), fut.ErrMissing)

	avx, _ := r.Lookup(CFFTF32AVX)
	assert.ErrorIs(t, avx.Available(cpu.Features{HasAVX2: true}), fut.ErrUnsupported)

	bad, err := r.Match("bad_*")
	require.NoError(t, err)
	assert.Len(t, bad, 4)
}

func TestVectorSamples(t *testing.T) {
	t.Parallel()

	y := make([]int16, 3)
	negQ15(y, []int16{-32768, 5, 0}, 3)
	assert.Equal(t, []int16{32767, -5, 0}, y)

	f := make([]float32, 2)
	absF32(f, []float32{-1.5, float32(math.Copysign(0, -1))}, 2)
	assert.Equal(t, float32(1.5), f[0])
	assert.False(t, math.Signbit(float64(f[1])))

	s := make([]int32, 1)
	sumQ31(s, []int16{16384, 8192}, 2)
	assert.Equal(t, int32(24576)<<16, s[0])

	sumQ31(s, []int16{32767, 32767}, 2)
	assert.Equal(t, int32(math.MaxInt32), s[0])

	assert.Equal(t, int16(-1), signI32(math.MinInt32))
}

func TestGainObject(t *testing.T) {
	t.Parallel()

	st := vec.NewStore(1)
	obj := gainObject()

	_, err := obj.Alloc(fut.Args{M: 0, N: 4})
	require.ErrorIs(t, err, errGainChannels)

	inst, err := obj.Alloc(fut.Args{M: 2, N: 4})
	require.NoError(t, err)

	params, err := vec.New(st, vec.Q15, []int16{16384, -32768})
	require.NoError(t, err)

	in, err := vec.New(st, vec.Q15, []int16{1000, 1000, -32768, 2})
	require.NoError(t, err)

	out, err := vec.New(st, vec.Q15, make([]int16, 4))
	require.NoError(t, err)

	require.NoError(t, inst.Init(params))
	require.NoError(t, inst.Process(out, in))
	assert.Equal(t, []int16{500, -1000, -16384, -2}, vec.MustSlice[int16](out))

	require.NoError(t, vec.FreeAll(params, in, out))
	assert.Zero(t, st.Live())
}

func TestFaultyOverrunHitsGuard(t *testing.T) {
	t.Parallel()

	r := fut.NewRegistry()
	RegisterFaulty(r)

	e, ok := r.Lookup(BadVecOverrun)
	require.True(t, ok)

	st := vec.NewStore(2)

	in, err := vec.New(st, vec.Q15, []int16{1, 2, 3})
	require.NoError(t, err)

	out, err := st.Alloc(vec.Q15, 3, false, nil)
	require.NoError(t, err)

	require.NoError(t, e.Func.(*fut.Vector).Call(out, in, fut.Args{N: 3}))
	assert.Equal(t, []int16{-1, -2, -3}, vec.MustSlice[int16](out))
	assert.ErrorIs(t, out.CheckGuards(), vec.ErrGuardCorrupted)
	assert.ErrorIs(t, vec.FreeAll(in, out), vec.ErrGuardCorrupted)
}
