package fut

import (
	"fmt"

	imath "github.com/cwbudde/algo-testeng/internal/math"
	"github.com/cwbudde/algo-testeng/internal/twiddle"
	"github.com/cwbudde/algo-testeng/internal/vec"
)

// Category is the transform family.
type Category uint8

const (
	// ComplexFFT maps N complex samples to N complex bins.
	ComplexFFT Category = iota
	// RealFFT maps N real samples to N/2+1 complex bins.
	RealFFT
	// DCT maps N real samples to N real coefficients (DCT-II forward,
	// DCT-III inverse).
	DCT
)

func (c Category) String() string {
	switch c {
	case ComplexFFT:
		return "cfft"
	case RealFFT:
		return "rfft"
	case DCT:
		return "dct"
	default:
		return fmt.Sprintf("Category(%d)", c)
	}
}

// TwiddleKind returns the coefficient family the category consumes.
func (c Category) TwiddleKind() twiddle.Kind {
	if c == DCT {
		return twiddle.DCT
	}

	return twiddle.FFT
}

// Direction selects forward or inverse transforms.
type Direction uint8

const (
	Forward Direction = iota
	Inverse
)

func (d Direction) String() string {
	if d == Inverse {
		return "inverse"
	}

	return "forward"
}

// TransformOptions declare what a transform tolerates and promises.
type TransformOptions struct {
	// InPlace allows the driver to pass the same storage as input and output.
	InPlace bool
	// ReusesInput allows the function to overwrite its input. Otherwise the
	// input is checksummed around every call.
	ReusesInput bool
	// Strided allows twiddle tables larger than N, read with a stride.
	Strided bool
	// Frames is the number of frames processed per call; 0 means 1.
	Frames int
	// ScaleMethods is the number of scale methods accepted; 0 means the
	// function ignores the selector.
	ScaleMethods int
	// Partner is the registry ID of the opposite-direction transform used
	// for reconstruction cases.
	Partner string
	// BlockExp returns the sign-bit count fixed-point input must be
	// normalized to for size n and a scale method. Nil leaves log2(n)+2
	// bits of headroom.
	BlockExp func(n, scale int) int
}

// Transform is an FFT or DCT of one category and direction.
type Transform struct {
	Category  Category
	Direction Direction
	// Data is the component format of samples and bins; the driver derives
	// the real or complex input and output formats from the category.
	Data    vec.Format
	Twiddle vec.Format
	TransformOptions

	call func(y, x, tw *vec.Vector, stride, n, scale int) (int, error)
}

// NewTransform wraps f, which computes y from x using the twiddle table tw
// read at the given stride and returns the right shift it applied for block
// scaling (0 for floating-point functions). T is the component type of data,
// or its complex type for ComplexFFT; W is the component or complex type of
// the twiddle format. A nil f yields a function that is not implemented.
func NewTransform[T, W vec.Element](cat Category, dir Direction, data, tw vec.Format,
	opts TransformOptions, f func(y, x []T, tw []W, stride, n, scale int) int,
) *Transform {
	t := &Transform{
		Category:         cat,
		Direction:        dir,
		Data:             data.Base(),
		Twiddle:          tw.Base() | vec.Complex,
		TransformOptions: opts,
	}

	if f == nil {
		return t
	}

	t.call = func(yv, xv, twv *vec.Vector, stride, n, scale int) (int, error) {
		x, err := vec.Slice[T](xv)
		if err != nil {
			return 0, fmt.Errorf("input: %w", err)
		}

		y, err := vec.Slice[T](yv)
		if err != nil {
			return 0, fmt.Errorf("output: %w", err)
		}

		w, err := vec.Slice[W](twv)
		if err != nil {
			return 0, fmt.Errorf("twiddle: %w", err)
		}

		return f(y, x, w, stride, n, scale), nil
	}

	return t
}

func (*Transform) Kind() Kind { return KindTransform }

func (t *Transform) Implemented() bool { return t.call != nil }

func (*Transform) sealed() {}

// InputBlockExp returns the block exponent of fixed-point input.
func (t *Transform) InputBlockExp(n, scale int) int {
	if t.BlockExp != nil {
		return t.BlockExp(n, scale)
	}

	return imath.Log2(n) + 2
}

// FramesPerCall returns the batch size, at least 1.
func (t *Transform) FramesPerCall() int {
	return max(t.Frames, 1)
}

// InFormat returns the format of the input vector.
func (t *Transform) InFormat() vec.Format {
	if t.Category == ComplexFFT || t.Category == RealFFT && t.Direction == Inverse {
		return t.Data | vec.Complex
	}

	return t.Data
}

// OutFormat returns the format of the output vector.
func (t *Transform) OutFormat() vec.Format {
	if t.Category == ComplexFFT || t.Category == RealFFT && t.Direction == Forward {
		return t.Data | vec.Complex
	}

	return t.Data
}

// InLen returns the input elements of one frame of size n.
func (t *Transform) InLen(n int) int {
	if t.Category == RealFFT && t.Direction == Inverse {
		return n/2 + 1
	}

	return n
}

// OutLen returns the output elements of one frame of size n.
func (t *Transform) OutLen(n int) int {
	if t.Category == RealFFT && t.Direction == Forward {
		return n/2 + 1
	}

	return n
}

// Call runs one invocation over FramesPerCall frames of size n.
func (t *Transform) Call(y, x *vec.Vector, tab twiddle.Table, n, scale int) (int, error) {
	if t.call == nil {
		return 0, ErrMissing
	}

	f := t.FramesPerCall()

	if err := need(x, t.InFormat(), f*t.InLen(n), "input"); err != nil {
		return 0, err
	}

	if err := need(y, t.OutFormat(), f*t.OutLen(n), "output"); err != nil {
		return 0, err
	}

	if tab.Vector.Format() != t.Twiddle {
		return 0, fmt.Errorf("%w: twiddle is %s, want %s", ErrShape, tab.Vector.Format(), t.Twiddle)
	}

	if tab.Stride > 1 && !t.Strided {
		return 0, fmt.Errorf("%w: stride %d on an unstrided transform", ErrShape, tab.Stride)
	}

	return t.call(y, x, tab.Vector, tab.Stride, n, scale)
}
