package fut

import (
	"github.com/cwbudde/algo-testeng/internal/vec"
)

// Scalar is an element-wise unary function y = f(x). The driver applies it
// to every element of an input vector of Len(args) elements.
type Scalar struct {
	In, Out vec.Format
	Len     Size

	apply func(out, in *vec.Vector, n int) error
}

// NewScalar wraps f. In and Out are the Go element types of the in and out
// formats; a nil f yields a function that is not implemented.
func NewScalar[In, Out vec.Element](in, out vec.Format, f func(In) Out) *Scalar {
	s := &Scalar{In: in, Out: out, Len: SizeN}
	if f == nil {
		return s
	}

	s.apply = func(outv, inv *vec.Vector, n int) error {
		x, err := vec.Slice[In](inv)
		if err != nil {
			return err
		}

		y, err := vec.Slice[Out](outv)
		if err != nil {
			return err
		}

		// Slices may count components; scale n to the slice granularity.
		nx := n * len(x) / max(inv.Len(), 1)
		ny := n * len(y) / max(outv.Len(), 1)

		x, y = prefix(x, nx), prefix(y, ny)
		for i := range min(len(x), len(y)) {
			y[i] = f(x[i])
		}

		return nil
	}

	return s
}

func (*Scalar) Kind() Kind { return KindScalar }

func (s *Scalar) Implemented() bool { return s.apply != nil }

func (*Scalar) sealed() {}

// Apply computes out[i] = f(in[i]) for the first Len(a) elements.
func (s *Scalar) Apply(out, in *vec.Vector, a Args) error {
	if s.apply == nil {
		return ErrMissing
	}

	n := sizeOr(s.Len, SizeN)(a)

	if err := need(in, s.In, n, "input"); err != nil {
		return err
	}

	if err := need(out, s.Out, n, "output"); err != nil {
		return err
	}

	return s.apply(out, in, n)
}

// Vector is a unary vector function y = f(x, n) over whole vectors.
type Vector struct {
	In, Out       vec.Format
	InLen, OutLen Size

	call func(out, in *vec.Vector, a Args) error
}

// NewVector wraps f, which receives the output and input data and N. A nil
// f yields a function that is not implemented.
func NewVector[In, Out vec.Element](in, out vec.Format, f func(y []Out, x []In, n int)) *Vector {
	v := &Vector{In: in, Out: out, InLen: SizeN, OutLen: SizeN}
	if f == nil {
		return v
	}

	v.call = func(outv, inv *vec.Vector, a Args) error {
		x, err := vec.Slice[In](inv)
		if err != nil {
			return err
		}

		y, err := vec.Slice[Out](outv)
		if err != nil {
			return err
		}

		f(y, x, a.N)

		return nil
	}

	return v
}

func (*Vector) Kind() Kind { return KindVector }

func (v *Vector) Implemented() bool { return v.call != nil }

func (*Vector) sealed() {}

// Call runs the function on vectors sized by InLen and OutLen.
func (v *Vector) Call(out, in *vec.Vector, a Args) error {
	if v.call == nil {
		return ErrMissing
	}

	if err := need(in, v.In, sizeOr(v.InLen, SizeN)(a), "input"); err != nil {
		return err
	}

	if err := need(out, v.Out, sizeOr(v.OutLen, SizeN)(a), "output"); err != nil {
		return err
	}

	return v.call(out, in, a)
}
