package vec

import (
	"fmt"
	"hash/crc32"
	"unsafe"
)

// Vector is a typed numeric buffer bracketed by canary regions.
// The memory layout is
//
//	| left guard (AlignUnit + offset) | data (Len*ElemSize) | right guard (>= AlignUnit) |
//
// with the left guard starting on an AlignUnit boundary.
type Vector struct {
	format Format
	count  int
	offset int
	buf    []byte
	store  *Store
	parent *Vector
}

// Format returns the element representation.
func (v *Vector) Format() Format {
	return v.format
}

// Count returns the element count as requested, possibly negative.
func (v *Vector) Count() int {
	return v.count
}

// Len returns the element count clamped at zero.
func (v *Vector) Len() int {
	return max(v.count, 0)
}

// Components returns Len for real vectors and 2*Len for complex ones.
func (v *Vector) Components() int {
	return v.Len() * v.format.Components()
}

// Offset returns the misalignment of element 0 within its alignment unit.
func (v *Vector) Offset() int {
	return v.offset
}

// ElemSize returns the byte size of one element.
func (v *Vector) ElemSize() int {
	return v.format.ElemSize()
}

// SizeBytes returns Len()*ElemSize().
func (v *Vector) SizeBytes() int {
	return v.Len() * v.ElemSize()
}

// AllocBytes returns the size of the guarded allocation, guards included.
func (v *Vector) AllocBytes() int {
	if v.parent != nil {
		return v.parent.AllocBytes()
	}

	return len(v.buf)
}

// IsView reports whether v shares storage with a parent vector.
func (v *Vector) IsView() bool {
	return v.parent != nil
}

// Freed reports whether the storage has been released.
func (v *Vector) Freed() bool {
	if v.parent != nil {
		return v.parent.Freed()
	}

	return v.buf == nil
}

func (v *Vector) left() int {
	return AlignUnit + v.offset
}

// Data returns the data region. The slice is empty after Free.
func (v *Vector) Data() []byte {
	if v.Freed() {
		return nil
	}

	l := v.left()
	r := l + v.SizeBytes()

	return v.buf[l:r:r]
}

// Element returns the bytes of logical element i. An index outside
// [0, Len()) panics; for an empty vector index 0 yields an empty slice at
// the position element 0 would occupy.
func (v *Vector) Element(i int) []byte {
	if v.Freed() {
		panic(ErrFreed)
	}

	n := v.Len()
	if i < 0 || i >= n && !(n == 0 && i == 0) {
		panic(fmt.Sprintf("vec: element index %d out of range [0,%d)", i, n))
	}

	esz := v.ElemSize()
	l := v.left() + i*esz

	if n == 0 {
		return v.buf[l:l:l]
	}

	return v.buf[l : l+esz : l+esz]
}

// Addr returns the address of element 0.
func (v *Vector) Addr() uintptr {
	if v.Freed() {
		return 0
	}

	return uintptr(unsafe.Pointer(unsafe.SliceData(v.buf))) + uintptr(v.left())
}

// Aligned reports whether element 0 sits on an AlignUnit boundary.
func (v *Vector) Aligned() bool {
	return v.offset == 0
}

// Free verifies both guard regions and releases the storage. The storage is
// released even when verification fails. A failed check returns an error
// wrapping ErrGuardCorrupted that names the side and byte.
func (v *Vector) Free() error {
	if v.parent != nil {
		return ErrView
	}

	if v.buf == nil {
		return ErrFreed
	}

	err := v.checkGuards()

	if v.store != nil {
		v.store.inUse -= len(v.buf)
		v.store.live--
	}

	v.buf = nil

	return err
}

// CheckGuards verifies the canaries without releasing the storage.
func (v *Vector) CheckGuards() error {
	if v.parent != nil {
		return v.parent.CheckGuards()
	}

	if v.buf == nil {
		return ErrFreed
	}

	return v.checkGuards()
}

func (v *Vector) checkGuards() error {
	l := v.left()
	r := l + v.SizeBytes()

	if i := firstMismatch(v.buf[:l]); i >= 0 {
		return fmt.Errorf("%w: %s vector of %d: left guard byte %d (%d bytes before element 0)",
			ErrGuardCorrupted, v.format, v.count, i, l-i)
	}

	if i := firstMismatch(v.buf[r:]); i >= 0 {
		return fmt.Errorf("%w: %s vector of %d: right guard byte %d past the end",
			ErrGuardCorrupted, v.format, v.count, i)
	}

	return nil
}

// Checksum returns the CRC-32 of the data region.
func (v *Vector) Checksum() uint32 {
	return crc32.ChecksumIEEE(v.Data())
}

// VerifyUnchanged reports whether the data region still matches a checksum
// taken earlier with Checksum.
func (v *Vector) VerifyUnchanged(prior uint32) bool {
	return !v.Freed() && v.Checksum() == prior
}

// Reinterpret returns a view of v's storage as count elements of format.
// The view must fit in v's data region and keep component alignment.
// Views are released together with v and cannot be freed on their own.
func (v *Vector) Reinterpret(format Format, count int) (*Vector, error) {
	if !format.Valid() {
		return nil, fmt.Errorf("%w: %#x", ErrInvalidFormat, uint8(format))
	}

	if v.Freed() {
		return nil, ErrFreed
	}

	if v.offset%format.ComponentSize() != 0 {
		return nil, fmt.Errorf("%w: offset %d not aligned for %s", ErrFormatMismatch, v.offset, format)
	}

	if max(count, 0)*format.ElemSize() > v.SizeBytes() {
		return nil, fmt.Errorf("%w: %d x %s exceeds %d bytes", ErrFormatMismatch, count, format, v.SizeBytes())
	}

	root := v
	if v.parent != nil {
		root = v.parent
	}

	return &Vector{
		format: format,
		count:  count,
		offset: v.offset,
		buf:    root.buf,
		parent: root,
	}, nil
}

func (v *Vector) String() string {
	return fmt.Sprintf("%s[%d]@+%d", v.format, v.count, v.offset)
}
