package samples

import (
	"unsafe"

	"github.com/cwbudde/algo-testeng/internal/fut"
	"github.com/cwbudde/algo-testeng/internal/vec"
)

// IDs of the faulty doubles.
const (
	BadCFFTOverrun  = "bad_cfft_oob"
	BadCFFTScribble = "bad_cfft_scribble"
	BadCFFTTwiddle  = "bad_cfft_twiddle"
	BadVecOverrun   = "bad_vec_oob"
)

// RegisterFaulty adds doubles that compute a correct result but break the
// memory contract. The harness must report each of them as corruption.
func RegisterFaulty(r *fut.Registry) {
	opts := fut.TransformOptions{Strided: true}

	r.MustRegister(
		fut.Entry{
			ID: BadCFFTOverrun,
			Func: fut.NewTransform(fut.ComplexFFT, fut.Forward, vec.Float32, vec.Float32, opts,
				func(y, x, tw []complex64, stride, n, scale int) int {
					forwardF32(y, x, tw, stride, n, scale)
					past(y, 1)[0] = 0

					return 0
				}),
			Doc: "writes one element past its output",
		},
		fut.Entry{
			ID: BadCFFTScribble,
			Func: fut.NewTransform(fut.ComplexFFT, fut.Forward, vec.Float32, vec.Float32, opts,
				func(y, x, tw []complex64, stride, n, scale int) int {
					forwardF32(y, x, tw, stride, n, scale)
					x[n-1] += 1

					return 0
				}),
			Doc: "modifies its input",
		},
		fut.Entry{
			ID: BadCFFTTwiddle,
			Func: fut.NewTransform(fut.ComplexFFT, fut.Forward, vec.Float32, vec.Float32, opts,
				func(y, x, tw []complex64, stride, n, scale int) int {
					forwardF32(y, x, tw, stride, n, scale)
					tw[len(tw)-1] = -tw[len(tw)-1]

					return 0
				}),
			Doc: "modifies the twiddle table",
		},
		fut.Entry{
			ID: BadVecOverrun,
			Func: fut.NewVector(vec.Q15, vec.Q15, func(y, x []int16, n int) {
				negQ15(y, x, n)
				past(y, 2)[1] = 0x7f7f
			}),
			Doc: "negates, then writes two elements past its output",
		},
	)
}

// past returns the k elements following s in memory. Guarded vectors keep
// at least one guard unit there.
func past[T any](s []T, k int) []T {
	base := unsafe.Pointer(unsafe.SliceData(s))
	var zero T

	return unsafe.Slice((*T)(unsafe.Add(base, uintptr(len(s))*unsafe.Sizeof(zero))), k)
}
