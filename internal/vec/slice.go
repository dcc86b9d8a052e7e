package vec

import (
	"fmt"
	"unsafe"
)

// Element is the set of Go types a Vector can be viewed as.
type Element interface {
	int16 | int32 | int64 | float32 | float64 | complex64 | complex128
}

// Slice returns the data region of v as a []T. T is either the component
// type (yielding Components() entries, interleaved for complex vectors) or
// the full complex element type of a complex float vector. Any other
// combination returns ErrFormatMismatch.
func Slice[T Element](v *Vector) ([]T, error) {
	if v == nil {
		return nil, fmt.Errorf("%w: nil vector", ErrFormatMismatch)
	}

	if v.Freed() {
		return nil, ErrFreed
	}

	var zero T
	if !storageMatches(v.format, any(zero)) {
		return nil, fmt.Errorf("%w: %s vector viewed as %T", ErrFormatMismatch, v.format, zero)
	}

	n := v.SizeBytes() / int(unsafe.Sizeof(zero))
	ptr := (*T)(unsafe.Pointer(&v.buf[v.left()]))

	return unsafe.Slice(ptr, n), nil
}

// MustSlice is Slice for callers that have already checked the format.
// It panics on mismatch.
func MustSlice[T Element](v *Vector) []T {
	s, err := Slice[T](v)
	if err != nil {
		panic(err)
	}

	return s
}

// New allocates an aligned vector and fills it from data. data holds
// components; complex vectors take interleaved pairs and count = len/2.
func New[T Element](s *Store, format Format, data []T) (*Vector, error) {
	var zero T

	count := len(data)

	switch any(zero).(type) {
	case complex64, complex128:
	default:
		if format.IsComplex() {
			count /= 2
		}
	}

	v, err := s.Alloc(format, count, true, nil)
	if err != nil {
		return nil, err
	}

	dst, err := Slice[T](v)
	if err != nil {
		_ = v.Free()
		return nil, err
	}

	copy(dst, data)

	return v, nil
}

func storageMatches(f Format, zero any) bool {
	b := f.Base()

	switch zero.(type) {
	case int16:
		return b == Int16 || b == Q15
	case int32:
		return b == Int32 || b == Q31
	case int64:
		return b == Int64
	case float32:
		return b == Float32
	case float64:
		return b == Float64
	case complex64:
		return f == Float32|Complex
	case complex128:
		return f == Float64|Complex
	default:
		return false
	}
}
