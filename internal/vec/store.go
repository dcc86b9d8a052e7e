// Package vec implements the guarded vector store: typed numeric buffers
// bracketed by canary regions, with optional randomized misalignment of the
// first element.
package vec

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"unsafe"
)

// AlignUnit is the alignment, in bytes, of an aligned allocation and the
// minimum size of each guard region.
const AlignUnit = 32

// canary is tiled over both guard regions.
var canary = [AlignUnit]byte{
	0xa5, 0x5a, 0xc3, 0x3c, 0x96, 0x69, 0xf0, 0x0f,
	0xde, 0xad, 0xbe, 0xef, 0x12, 0x34, 0x56, 0x78,
	0x87, 0x65, 0x43, 0x21, 0xfe, 0xed, 0xfa, 0xce,
	0x0b, 0xad, 0xf0, 0x0d, 0xca, 0xfe, 0xba, 0xbe,
}

// Sentinel errors returned by the store.
var (
	// ErrAllocation is returned when a request cannot be satisfied.
	ErrAllocation = errors.New("vec: allocation failed")

	// ErrGuardCorrupted is returned by Free when a canary byte was overwritten.
	ErrGuardCorrupted = errors.New("vec: guard region corrupted")

	// ErrFormatMismatch is returned by typed accessors and views whose element
	// type does not match the vector's storage.
	ErrFormatMismatch = errors.New("vec: format mismatch")

	// ErrInvalidFormat is returned for unknown Format values.
	ErrInvalidFormat = errors.New("vec: invalid format")

	// ErrFreed is returned when a released vector is used.
	ErrFreed = errors.New("vec: vector already freed")

	// ErrView is returned by Free on a view; views are released with their parent.
	ErrView = errors.New("vec: cannot free a view")
)

// Store allocates guarded vectors. It owns the PRNG used to pick
// misalignment offsets, so two stores seeded alike produce identical
// layouts. A Store is not safe for concurrent use; give each run its own.
type Store struct {
	rng *rand.Rand

	// Limit caps the bytes held by live vectors. Zero means unlimited.
	Limit int

	inUse int
	live  int
}

// NewStore returns a store whose misalignment offsets derive from seed.
func NewStore(seed int64) *Store {
	return &Store{rng: rand.New(rand.NewSource(seed))}
}

// InUse reports the guarded bytes held by live vectors.
func (s *Store) InUse() int {
	return s.inUse
}

// Live reports the number of vectors allocated and not yet freed.
func (s *Store) Live() int {
	return s.live
}

// Alloc returns a guarded vector of count elements. A negative count is
// sized as zero but reported unchanged by Count. When aligned is false and
// the element is smaller than AlignUnit, element 0 is placed at a random,
// component-aligned offset inside the first unit. init, when non-nil,
// pre-fills the data region.
func (s *Store) Alloc(format Format, count int, aligned bool, init []byte) (*Vector, error) {
	if !format.Valid() {
		return nil, fmt.Errorf("%w: %#x", ErrInvalidFormat, uint8(format))
	}

	n := max(count, 0)
	esz := format.ElemSize()

	if n > (math.MaxInt32-4*AlignUnit)/esz {
		return nil, fmt.Errorf("%w: %d x %d bytes", ErrAllocation, n, esz)
	}

	offset := 0
	if !aligned && esz%AlignUnit != 0 {
		step := format.ComponentSize()
		offset = (1 + s.rng.Intn(AlignUnit/step-1)) * step
	}

	data := n * esz
	left := AlignUnit + offset
	right := roundUp(left+data, AlignUnit) - (left + data) + AlignUnit
	total := left + data + right

	if s.Limit > 0 && s.inUse+total > s.Limit {
		return nil, fmt.Errorf("%w: %d bytes requested, %d of %d in use", ErrAllocation, total, s.inUse, s.Limit)
	}

	raw := make([]byte, total+AlignUnit)
	base := alignedStart(raw)
	buf := raw[base : base+total : base+total]

	tile(buf[:left])
	tile(buf[left+data:])

	if init != nil {
		copy(buf[left:left+data], init)
	}

	s.inUse += total
	s.live++

	return &Vector{
		format: format,
		count:  count,
		offset: offset,
		buf:    buf,
		store:  s,
	}, nil
}

// AllocMany allocates one vector per entry of counts. The returned slices
// are parallel to counts; a failed entry has a nil vector and its error.
func (s *Store) AllocMany(format Format, counts []int, aligned bool) ([]*Vector, []error) {
	vs := make([]*Vector, len(counts))
	errs := make([]error, len(counts))

	for i, n := range counts {
		vs[i], errs[i] = s.Alloc(format, n, aligned, nil)
	}

	return vs, errs
}

// Allocated counts the successful entries of an AllocMany result and
// returns the first failure.
func Allocated(errs []error) (int, error) {
	ok := 0

	var first error

	for _, err := range errs {
		if err == nil {
			ok++
		} else if first == nil {
			first = err
		}
	}

	return ok, first
}

// FreeAll frees every non-nil vector and joins the failures.
func FreeAll(vs ...*Vector) error {
	var errs []error

	for _, v := range vs {
		if v == nil {
			continue
		}

		if err := v.Free(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func roundUp(n, unit int) int {
	return (n + unit - 1) / unit * unit
}

// alignedStart returns the index of the first AlignUnit-aligned byte of b.
func alignedStart(b []byte) int {
	addr := uintptr(unsafe.Pointer(unsafe.SliceData(b)))
	return int((AlignUnit - addr%AlignUnit) % AlignUnit)
}

func tile(b []byte) {
	for i := range b {
		b[i] = canary[i%AlignUnit]
	}
}

// firstMismatch returns the index of the first byte of b that differs from
// the tiled canary, or -1.
func firstMismatch(b []byte) int {
	for i := range b {
		if b[i] != canary[i%AlignUnit] {
			return i
		}
	}

	return -1
}
