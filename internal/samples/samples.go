// Package samples is a catalog of small functions-under-test used to
// exercise the harness end to end. They are test doubles, not a DSP
// library: the float64 transforms delegate to the reference package, the
// float32 and Q15 transforms are plain radix-2 kernels.
package samples

import (
	"github.com/cwbudde/algo-testeng/internal/cpu"
	"github.com/cwbudde/algo-testeng/internal/fut"
	"github.com/cwbudde/algo-testeng/internal/vec"
)

// Registry IDs of the sample functions.
const (
	CFFTF64      = "cfft_f64"
	IFFTF64      = "ifft_f64"
	RFFTF64      = "rfft_f64"
	IRFFTF64     = "irfft_f64"
	CFFTF32      = "cfft_f32"
	IFFTF32      = "ifft_f32"
	CFFTF32Batch = "cfft_f32_batch"
	CFFTF32AVX   = "cfft_f32_avx512"
	CFFTQ15      = "cfft_q15"
	IFFTQ15      = "ifft_q15"
	CFFTQ31      = "cfft_q31"
	DCTF64       = "dct_f64"
	IDCTF64      = "idct_f64"

	VecNegQ15  = "vec_neg_q15"
	VecAbsF32  = "vec_abs_f32"
	VecSumQ31  = "vec_sum_q31"
	SclSignI32 = "scl_sign_i32"
	ObjGainQ15 = "obj_gain_q15"
)

// BatchFrames is the number of frames cfft_f32_batch processes per call.
const BatchFrames = 4

// Register adds every well-behaved sample to r.
func Register(r *fut.Registry) {
	r.MustRegister(transforms()...)
	r.MustRegister(vectors()...)
}

func transforms() []fut.Entry {
	inPlace := fut.TransformOptions{InPlace: true, Strided: true}

	with := func(partner string) fut.TransformOptions {
		o := inPlace
		o.Partner = partner

		return o
	}

	q15 := func(partner string) fut.TransformOptions {
		o := with(partner)
		o.ScaleMethods = 4
		o.BlockExp = BlockExp

		return o
	}

	return []fut.Entry{
		{
			ID:   CFFTF64,
			Func: fut.NewTransform(fut.ComplexFFT, fut.Forward, vec.Float64, vec.Float64, with(IFFTF64), forwardF64),
			Doc:  "complex FFT, float64",
		},
		{
			ID:   IFFTF64,
			Func: fut.NewTransform(fut.ComplexFFT, fut.Inverse, vec.Float64, vec.Float64, with(CFFTF64), inverseF64),
			Doc:  "complex inverse FFT, float64",
		},
		{
			ID:   RFFTF64,
			Func: fut.NewTransform(fut.RealFFT, fut.Forward, vec.Float64, vec.Float64, with(IRFFTF64), forwardRealF64),
			Doc:  "real FFT, float64",
		},
		{
			ID:   IRFFTF64,
			Func: fut.NewTransform(fut.RealFFT, fut.Inverse, vec.Float64, vec.Float64, with(RFFTF64), inverseRealF64),
			Doc:  "real inverse FFT, float64",
		},
		{
			ID:   CFFTF32,
			Func: fut.NewTransform(fut.ComplexFFT, fut.Forward, vec.Float32, vec.Float32, with(IFFTF32), forwardF32),
			Doc:  "complex radix-2 FFT, float32",
		},
		{
			ID:   IFFTF32,
			Func: fut.NewTransform(fut.ComplexFFT, fut.Inverse, vec.Float32, vec.Float32, with(CFFTF32), inverseF32),
			Doc:  "complex radix-2 inverse FFT, float32",
		},
		{
			ID: CFFTF32Batch,
			Func: fut.NewTransform(fut.ComplexFFT, fut.Forward, vec.Float32, vec.Float32,
				fut.TransformOptions{Strided: true, Frames: BatchFrames}, batchF32),
			Doc: "complex radix-2 FFT, float32, four frames per call",
		},
		{
			ID:       CFFTF32AVX,
			Func:     fut.NewTransform(fut.ComplexFFT, fut.Forward, vec.Float32, vec.Float32, inPlace, forwardF32),
			Requires: cpu.SIMDAVX512,
			Doc:      "complex FFT, float32, avx-512 build",
		},
		{
			ID:   CFFTQ15,
			Func: fut.NewTransform(fut.ComplexFFT, fut.Forward, vec.Q15, vec.Q15, q15(IFFTQ15), forwardQ15),
			Doc:  "complex radix-2 FFT, q15, block scaled",
		},
		{
			ID:   IFFTQ15,
			Func: fut.NewTransform(fut.ComplexFFT, fut.Inverse, vec.Q15, vec.Q15, q15(CFFTQ15), inverseQ15),
			Doc:  "complex radix-2 inverse FFT, q15, block scaled",
		},
		{
			ID:   CFFTQ31,
			Func: fut.NewTransform[int32, int32](fut.ComplexFFT, fut.Forward, vec.Q31, vec.Q31, inPlace, nil),
			Doc:  "complex FFT, q31 (not built)",
		},
		{
			ID:   DCTF64,
			Func: fut.NewTransform(fut.DCT, fut.Forward, vec.Float64, vec.Float64, with(IDCTF64), forwardDCT),
			Doc:  "DCT-II, float64",
		},
		{
			ID:   IDCTF64,
			Func: fut.NewTransform(fut.DCT, fut.Inverse, vec.Float64, vec.Float64, with(DCTF64), inverseDCT),
			Doc:  "DCT-III, float64",
		},
	}
}
