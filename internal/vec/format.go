package vec

import "strings"

// Format tags the element representation of a Vector. The low bits select
// the scalar kind; Complex marks interleaved real/imaginary pairs.
type Format uint8

const (
	Int16 Format = iota + 1
	Int32
	Int64
	Q15
	Q31
	Float32
	Float64

	// Complex is OR'ed into a scalar kind: Q15 | Complex is a complex
	// fixed-point vector stored as interleaved int16 pairs.
	Complex Format = 0x80
)

// Base strips the Complex flag.
func (f Format) Base() Format {
	return f &^ Complex
}

// IsComplex reports whether elements are interleaved pairs.
func (f Format) IsComplex() bool {
	return f&Complex != 0
}

// Valid reports whether f names a supported representation.
func (f Format) Valid() bool {
	b := f.Base()
	return b >= Int16 && b <= Float64 && f&^(Complex|0x0f) == 0
}

// IsFixed reports whether f is a Q15 or Q31 fraction.
func (f Format) IsFixed() bool {
	b := f.Base()
	return b == Q15 || b == Q31
}

// IsFloat reports whether f is an IEEE-754 representation.
func (f Format) IsFloat() bool {
	b := f.Base()
	return b == Float32 || b == Float64
}

// IsInteger reports whether f is a plain integer representation.
func (f Format) IsInteger() bool {
	b := f.Base()
	return b == Int16 || b == Int32 || b == Int64
}

// FracBits returns the number of fractional bits of a fixed-point format.
func (f Format) FracBits() int {
	switch f.Base() {
	case Q15:
		return 15
	case Q31:
		return 31
	default:
		return 0
	}
}

// ComponentSize is the byte size of one scalar component.
func (f Format) ComponentSize() int {
	switch f.Base() {
	case Int16, Q15:
		return 2
	case Int32, Q31, Float32:
		return 4
	case Int64, Float64:
		return 8
	default:
		return 0
	}
}

// Components is 2 for complex formats and 1 otherwise.
func (f Format) Components() int {
	if f.IsComplex() {
		return 2
	}

	return 1
}

// ElemSize is the byte size of one logical element.
func (f Format) ElemSize() int {
	return f.ComponentSize() * f.Components()
}

func (f Format) String() string {
	var name string

	switch f.Base() {
	case Int16:
		name = "int16"
	case Int32:
		name = "int32"
	case Int64:
		name = "int64"
	case Q15:
		name = "q15"
	case Q31:
		name = "q31"
	case Float32:
		name = "float32"
	case Float64:
		name = "float64"
	default:
		return "invalid"
	}

	if f.IsComplex() {
		return "complex " + name
	}

	return name
}

// ParseFormat is the inverse of Format.String. It accepts the short
// "c"-prefixed spelling as well ("cq15" == "complex q15").
func ParseFormat(s string) (Format, bool) {
	s = strings.ToLower(strings.TrimSpace(s))

	var flag Format

	switch {
	case strings.HasPrefix(s, "complex "):
		flag, s = Complex, strings.TrimPrefix(s, "complex ")
	case strings.HasPrefix(s, "c") && len(s) > 1:
		flag, s = Complex, s[1:]
	}

	for f := Int16; f <= Float64; f++ {
		if f.String() == s {
			return f | flag, true
		}
	}

	return 0, false
}
