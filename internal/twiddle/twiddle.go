// Package twiddle builds the coefficient tables handed to transform
// functions under test. Tables are generated once in complex128, converted
// to the function's native coefficient format and kept read-only for the
// whole run.
package twiddle

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/cwbudde/algo-testeng/internal/convert"
	imath "github.com/cwbudde/algo-testeng/internal/math"
	"github.com/cwbudde/algo-testeng/internal/vec"
)

// Kind selects the coefficient family.
type Kind uint8

const (
	// FFT tables hold W_S^k = exp(-2πik/S) for k = 0..S-1.
	FFT Kind = iota
	// DCT tables hold exp(-iπk/(2S)) for k = 0..S-1.
	DCT
)

func (k Kind) String() string {
	switch k {
	case FFT:
		return "fft"
	case DCT:
		return "dct"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

var (
	// ErrSize is returned when no table can serve a transform size.
	ErrSize = errors.New("twiddle: no table for size")

	// ErrModified is returned when a table no longer matches its checksum.
	ErrModified = errors.New("twiddle: table modified")
)

// Compute returns the canonical size-n table of the given kind.
func Compute(kind Kind, n int) []complex128 {
	if n <= 0 {
		return nil
	}

	tw := make([]complex128, n)

	for k := range n {
		var angle float64

		switch kind {
		case DCT:
			angle = -math.Pi * float64(k) / float64(2*n)
		default:
			angle = -imath.TwoPi * float64(k) / float64(n)
		}

		tw[k] = complex(math.Cos(angle), math.Sin(angle))
	}

	return tw
}

// Load converts canonical coefficients into dst, which must be a complex
// vector of at least len(c) elements. Fixed-point formats round and
// saturate, so 1.0 becomes the largest positive value.
func Load(dst *vec.Vector, c []complex128) error {
	if !dst.Format().IsComplex() {
		return fmt.Errorf("%w: twiddle tables are complex, got %s", vec.ErrFormatMismatch, dst.Format())
	}

	flat := make([]float64, 2*len(c))
	for i, w := range c {
		flat[2*i], flat[2*i+1] = real(w), imag(w)
	}

	return convert.FromFloat64(dst, flat)
}

// Table is one coefficient table chosen for a transform of size N: entry
// k·Stride holds the k-th coefficient of the size-N transform.
type Table struct {
	Vector *vec.Vector
	Size   int
	Stride int

	crc uint32
}

// Unchanged reports whether the table still matches the checksum taken
// when it was loaded.
func (t Table) Unchanged() bool {
	return t.Vector.VerifyUnchanged(t.crc)
}

// Set holds one table per power-of-two size for a single run. Lookups draw
// from a seeded source, so a run is reproducible yet exercises several
// table sizes.
type Set struct {
	kind   Kind
	format vec.Format
	rng    *rand.Rand

	sizes  []int
	tables map[int]Table
}

// NewSet allocates and loads tables of sizes 2^minLog2 .. 2^maxLog2 from s.
// format is the native component format; the complex flag is implied.
func NewSet(s *vec.Store, kind Kind, format vec.Format, minLog2, maxLog2 int, aligned bool, seed int64) (*Set, error) {
	if minLog2 < 0 || maxLog2 < minLog2 || maxLog2 > imath.MaxTransformLog2 {
		return nil, fmt.Errorf("%w: sizes 2^%d..2^%d", ErrSize, minLog2, maxLog2)
	}

	set := &Set{
		kind:   kind,
		format: format.Base() | vec.Complex,
		rng:    rand.New(rand.NewSource(seed)),
		tables: make(map[int]Table),
	}

	for l := minLog2; l <= maxLog2; l++ {
		n := 1 << l

		v, err := s.Alloc(set.format, n, aligned, nil)
		if err != nil {
			return nil, errors.Join(err, set.Free())
		}

		if err := Load(v, Compute(kind, n)); err != nil {
			return nil, errors.Join(err, v.Free(), set.Free())
		}

		set.sizes = append(set.sizes, n)
		set.tables[n] = Table{Vector: v, Size: n, Stride: 1, crc: v.Checksum()}
	}

	return set, nil
}

// Kind returns the coefficient family.
func (t *Set) Kind() Kind {
	return t.kind
}

// Format returns the native complex format of every table.
func (t *Set) Format() vec.Format {
	return t.format
}

// Sizes returns the table sizes in increasing order.
func (t *Set) Sizes() []int {
	return append([]int(nil), t.sizes...)
}

// Lookup returns a table for a transform of size n. When strided is true it
// picks at random among all tables whose size is a multiple of n; otherwise
// only the exact size qualifies.
func (t *Set) Lookup(n int, strided bool) (Table, error) {
	if !imath.IsPowerOf2(n) {
		return Table{}, fmt.Errorf("%w: %d is not a power of two", ErrSize, n)
	}

	if !strided {
		tab, ok := t.tables[n]
		if !ok {
			return Table{}, fmt.Errorf("%w: %d", ErrSize, n)
		}

		return tab, nil
	}

	i := sort.SearchInts(t.sizes, n)
	if i == len(t.sizes) {
		return Table{}, fmt.Errorf("%w: %d exceeds largest table %d", ErrSize, n, t.sizes[len(t.sizes)-1])
	}

	tab := t.tables[t.sizes[i+t.rng.Intn(len(t.sizes)-i)]]
	tab.Stride = tab.Size / n

	return tab, nil
}

// Verify checks every table against its load-time checksum.
func (t *Set) Verify() error {
	for _, n := range t.sizes {
		if !t.tables[n].Unchanged() {
			return fmt.Errorf("%w: size %d", ErrModified, n)
		}
	}

	return nil
}

// Repair reloads every table that no longer matches its checksum and
// returns how many were reloaded.
func (t *Set) Repair() (int, error) {
	repaired := 0

	for _, n := range t.sizes {
		tab := t.tables[n]
		if tab.Unchanged() {
			continue
		}

		if err := Load(tab.Vector, Compute(t.kind, n)); err != nil {
			return repaired, fmt.Errorf("twiddle %s size %d: %w", t.kind, n, err)
		}

		tab.crc = tab.Vector.Checksum()
		t.tables[n] = tab
		repaired++
	}

	return repaired, nil
}

// Free releases every table and reports guard corruption.
func (t *Set) Free() error {
	var errs []error

	for _, n := range t.sizes {
		if err := t.tables[n].Vector.Free(); err != nil {
			errs = append(errs, fmt.Errorf("twiddle %s size %d: %w", t.kind, n, err))
		}
	}

	t.sizes = nil
	t.tables = map[int]Table{}

	return errors.Join(errs...)
}
