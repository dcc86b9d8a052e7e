package seq

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"unicode"

	"github.com/cwbudde/algo-testeng/internal/vec"
)

// token returns the next whitespace-delimited token, skipping comments
// that run from ';' to the end of the line.
func (r *Reader) token() (string, error) {
	for {
		c, _, err := r.ReadRune()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return "", ErrUnexpectedEOF
			}

			return "", err
		}

		if unicode.IsSpace(c) {
			continue
		}

		if c == ';' {
			if _, err := r.readLine(); err != nil && !errors.Is(err, io.EOF) {
				return "", err
			}

			continue
		}

		var sb strings.Builder

		sb.WriteRune(c)

		for {
			c, _, err := r.ReadRune()
			if err != nil {
				if errors.Is(err, io.EOF) {
					return sb.String(), nil
				}

				return "", err
			}

			if unicode.IsSpace(c) || c == ';' {
				_ = r.UnreadRune()
				return sb.String(), nil
			}

			sb.WriteRune(c)
		}
	}
}

// parseInt parses a decimal integer digit by digit and rejects values
// outside [lo, hi] instead of wrapping them.
func parseInt(tok string, lo, hi int64) (int64, bool) {
	neg := false

	switch {
	case strings.HasPrefix(tok, "-"):
		neg, tok = true, tok[1:]
	case strings.HasPrefix(tok, "+"):
		tok = tok[1:]
	}

	if tok == "" {
		return 0, false
	}

	limit := uint64(hi)
	if neg {
		limit = uint64(-(lo + 1)) + 1
	}

	var mag uint64

	for _, c := range tok {
		if c < '0' || c > '9' {
			return 0, false
		}

		d := uint64(c - '0')
		if mag > (limit-d)/10 {
			return 0, false
		}

		mag = mag*10 + d
	}

	if neg {
		if mag == 1<<63 {
			return math.MinInt64, true
		}

		return -int64(mag), true
	}

	return int64(mag), true
}

// parseHex parses exactly digits hexadecimal characters.
func parseHex(tok string, digits int) (uint64, bool) {
	if len(tok) != digits {
		return 0, false
	}

	var v uint64

	for _, c := range tok {
		var d uint64

		switch {
		case c >= '0' && c <= '9':
			d = uint64(c - '0')
		case c >= 'a' && c <= 'f':
			d = uint64(c-'a') + 10
		case c >= 'A' && c <= 'F':
			d = uint64(c-'A') + 10
		default:
			return 0, false
		}

		v = v<<4 | d
	}

	return v, true
}

// ReadVector fills v with Components() tokens: decimal integers for
// integer and fixed-point formats, 8 hex digits of raw bits for float32 and
// 16 for float64. Elements before a failing token stay written; elements
// after it are untouched.
func (r *Reader) ReadVector(v *vec.Vector) error {
	n := v.Components()
	f := v.Format()

	store, err := componentWriter(v)
	if err != nil {
		return err
	}

	for i := range n {
		line := r.line

		tok, err := r.token()
		if err != nil {
			return fmt.Errorf("%w: %s:%d: %s component %d of %d", err, r.name, line, f, i, n)
		}

		if !store(i, tok) {
			return fmt.Errorf("%w: %s:%d: %s component %d: bad token %q", ErrMalformed, r.name, r.line, f, i, tok)
		}
	}

	return nil
}

// ReadVectors reads vs in order and stops at the first failure.
func (r *Reader) ReadVectors(vs ...*vec.Vector) error {
	for i, v := range vs {
		if err := r.ReadVector(v); err != nil {
			return fmt.Errorf("vector %d: %w", i, err)
		}
	}

	return nil
}

func componentWriter(v *vec.Vector) (func(i int, tok string) bool, error) {
	switch v.Format().Base() {
	case vec.Int16, vec.Q15:
		z, err := vec.Slice[int16](v)
		if err != nil {
			return nil, err
		}

		return func(i int, tok string) bool {
			x, ok := parseInt(tok, math.MinInt16, math.MaxInt16)
			if ok {
				z[i] = int16(x)
			}

			return ok
		}, nil
	case vec.Int32, vec.Q31:
		z, err := vec.Slice[int32](v)
		if err != nil {
			return nil, err
		}

		return func(i int, tok string) bool {
			x, ok := parseInt(tok, math.MinInt32, math.MaxInt32)
			if ok {
				z[i] = int32(x)
			}

			return ok
		}, nil
	case vec.Int64:
		z, err := vec.Slice[int64](v)
		if err != nil {
			return nil, err
		}

		return func(i int, tok string) bool {
			x, ok := parseInt(tok, math.MinInt64, math.MaxInt64)
			if ok {
				z[i] = x
			}

			return ok
		}, nil
	case vec.Float32:
		z, err := vec.Slice[float32](v)
		if err != nil {
			return nil, err
		}

		return func(i int, tok string) bool {
			b, ok := parseHex(tok, 8)
			if ok {
				z[i] = math.Float32frombits(uint32(b))
			}

			return ok
		}, nil
	case vec.Float64:
		z, err := vec.Slice[float64](v)
		if err != nil {
			return nil, err
		}

		return func(i int, tok string) bool {
			b, ok := parseHex(tok, 16)
			if ok {
				z[i] = math.Float64frombits(b)
			}

			return ok
		}, nil
	default:
		return nil, fmt.Errorf("%w: %s", vec.ErrInvalidFormat, v.Format())
	}
}
