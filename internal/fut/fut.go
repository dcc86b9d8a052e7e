// Package fut describes functions under test. A Function is one of a closed
// set of call shapes (Scalar, Vector, Transform, Object), each built from a
// typed Go function by a generic constructor that checks vector formats
// before every call.
package fut

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-testeng/internal/vec"
)

var (
	// ErrMissing is returned when a function has no implementation in this
	// build.
	ErrMissing = errors.New("fut: function not available")

	// ErrUnsupported is returned when the host lacks a required CPU feature.
	ErrUnsupported = errors.New("fut: cpu feature not supported")

	// ErrDuplicate is returned when an ID is registered twice.
	ErrDuplicate = errors.New("fut: duplicate id")

	// ErrShape is returned when a vector handed to a function has the wrong
	// format or too few elements.
	ErrShape = errors.New("fut: vector shape mismatch")
)

// Kind names the call shape of a Function.
type Kind uint8

const (
	KindScalar Kind = iota
	KindVector
	KindTransform
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindVector:
		return "vector"
	case KindTransform:
		return "transform"
	case KindObject:
		return "object"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Function is implemented by *Scalar, *Vector, *Transform and *Object only.
type Function interface {
	Kind() Kind
	// Implemented reports whether a call target is present.
	Implemented() bool

	sealed()
}

// Args are the dimensional parameters of one data-driven case.
type Args struct {
	M, N, P, L int
}

// Size derives a vector length from case arguments.
type Size func(a Args) int

// Common sizes.
var (
	SizeM   Size = func(a Args) int { return a.M }
	SizeN   Size = func(a Args) int { return a.N }
	SizeP   Size = func(a Args) int { return a.P }
	SizeL   Size = func(a Args) int { return a.L }
	SizeOne Size = func(Args) int { return 1 }
)

// Port is the format and length of one vector a function consumes or
// produces.
type Port struct {
	Format vec.Format
	Len    int
}

// Ports returns the vectors a data-driven call of f takes for a, in the
// order a SEQ case lists them: the parameters of an object, then the
// input. Transforms are driven frame by frame and have no ports.
func Ports(f Function, a Args) (in []Port, out Port, err error) {
	switch f := f.(type) {
	case *Scalar:
		n := sizeOr(f.Len, SizeN)(a)
		return []Port{{f.In, n}}, Port{f.Out, n}, nil
	case *Vector:
		return []Port{{f.In, sizeOr(f.InLen, SizeN)(a)}}, Port{f.Out, sizeOr(f.OutLen, SizeN)(a)}, nil
	case *Object:
		return []Port{
			{f.Params, sizeOr(f.ParamLen, SizeM)(a)},
			{f.In, sizeOr(f.InLen, SizeN)(a)},
		}, Port{f.Out, sizeOr(f.OutLen, SizeN)(a)}, nil
	default:
		return nil, Port{}, fmt.Errorf("%w: %T has no data-driven ports", ErrShape, f)
	}
}

func sizeOr(s, def Size) Size {
	if s == nil {
		return def
	}

	return s
}

// need checks that v has format f and holds at least n elements.
func need(v *vec.Vector, f vec.Format, n int, role string) error {
	if v.Format() != f {
		return fmt.Errorf("%w: %s is %s, want %s", ErrShape, role, v.Format(), f)
	}

	if v.Len() < n {
		return fmt.Errorf("%w: %s has %d elements, want %d", ErrShape, role, v.Len(), n)
	}

	return nil
}

// prefix returns the first n entries of s, or all of s if it is shorter.
func prefix[T any](s []T, n int) []T {
	return s[:min(max(n, 0), len(s))]
}
