package vec

import (
	"errors"
	"fmt"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allFormats = []Format{
	Int16, Int32, Int64, Q15, Q31, Float32, Float64,
	Int16 | Complex, Int32 | Complex, Int64 | Complex,
	Q15 | Complex, Q31 | Complex, Float32 | Complex, Float64 | Complex,
}

func TestAllocFloat32AlignedRoundTrip(t *testing.T) {
	t.Parallel()

	s := NewStore(1)
	v, err := s.Alloc(Float32, 5, true, nil)
	require.NoError(t, err)

	assert.Equal(t, 0, v.Offset())
	assert.Zero(t, v.Addr()%AlignUnit, "aligned vector must start on a unit boundary")

	data, err := Slice[float32](v)
	require.NoError(t, err)
	require.Len(t, data, 5)

	for i := range data {
		data[i] = float32(i) * 1.5
	}

	assert.NoError(t, v.Free())
	assert.Equal(t, 0, s.Live())
	assert.Equal(t, 0, s.InUse())
}

func TestGuardsAfterAlloc(t *testing.T) {
	t.Parallel()

	s := NewStore(7)

	for _, f := range allFormats {
		for _, aligned := range []bool{true, false} {
			for _, n := range []int{-3, 0, 1, 5, 17, 64} {
				t.Run(fmt.Sprintf("%s/aligned=%v/n=%d", f, aligned, n), func(t *testing.T) {
					v, err := s.Alloc(f, n, aligned, nil)
					require.NoError(t, err)

					l := AlignUnit + v.Offset()
					r := l + v.SizeBytes()

					assert.Equal(t, -1, firstMismatch(v.buf[:l]))
					assert.Equal(t, -1, firstMismatch(v.buf[r:]))
					assert.GreaterOrEqual(t, len(v.buf)-r, AlignUnit)
					assert.Zero(t, len(v.buf)%AlignUnit)
					assert.NoError(t, v.CheckGuards())
					assert.NoError(t, v.Free())
				})
			}
		}
	}
}

func TestInBoundsWritesKeepGuards(t *testing.T) {
	t.Parallel()

	s := NewStore(3)

	for _, f := range allFormats {
		v, err := s.Alloc(f, 9, false, nil)
		require.NoError(t, err)

		d := v.Data()
		for i := range d {
			d[i] = 0xff
		}

		assert.NoError(t, v.Free(), "format %s", f)
	}
}

func TestOutOfBoundsWriteDetected(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		write func(v *Vector)
	}{
		{"one past the end", func(v *Vector) {
			d := MustSlice[int16](v)
			past := unsafe.Slice(unsafe.SliceData(d), len(d)+1)
			past[len(d)] = 0
		}},
		{"one before the start", func(v *Vector) {
			p := unsafe.Pointer(uintptr(unsafe.Pointer(unsafe.SliceData(MustSlice[int16](v)))) - 2)
			*(*int16)(p) = 0
		}},
		{"far into the right guard", func(v *Vector) {
			d := MustSlice[int16](v)
			past := unsafe.Slice(unsafe.SliceData(d), len(d)+16)
			past[len(d)+15] ^= 1
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := NewStore(11)
			v, err := s.Alloc(Q15, 8, false, nil)
			require.NoError(t, err)

			tt.write(v)

			err = v.Free()
			require.ErrorIs(t, err, ErrGuardCorrupted)
			assert.True(t, v.Freed(), "storage must be released even when the check fails")
			assert.Equal(t, 0, s.Live())
		})
	}
}

func TestNegativeCountKeptButClamped(t *testing.T) {
	t.Parallel()

	s := NewStore(1)
	v, err := s.Alloc(Int32, -4, true, nil)
	require.NoError(t, err)

	assert.Equal(t, -4, v.Count())
	assert.Equal(t, 0, v.Len())
	assert.Equal(t, 0, v.SizeBytes())
	assert.Empty(t, v.Element(0))
	assert.Panics(t, func() { v.Element(1) })
	assert.NoError(t, v.Free())
}

func TestMisalignmentOffsets(t *testing.T) {
	t.Parallel()

	s := NewStore(42)
	seen := map[int]bool{}

	for range 200 {
		v, err := s.Alloc(Q15|Complex, 3, false, nil)
		require.NoError(t, err)

		off := v.Offset()
		assert.Positive(t, off)
		assert.Less(t, off, AlignUnit)
		assert.Zero(t, off%2, "offset must keep component alignment")
		assert.Equal(t, uintptr(off), v.Addr()%AlignUnit)

		seen[off] = true

		require.NoError(t, v.Free())
	}

	assert.Greater(t, len(seen), 4, "offsets should vary across allocations")
}

func TestMisalignmentDeterministicPerSeed(t *testing.T) {
	t.Parallel()

	offsets := func(seed int64) []int {
		s := NewStore(seed)

		var out []int

		for range 16 {
			v, err := s.Alloc(Float32, 4, false, nil)
			require.NoError(t, err)

			out = append(out, v.Offset())
			require.NoError(t, v.Free())
		}

		return out
	}

	assert.Equal(t, offsets(5), offsets(5))
}

func TestWidestElementStillMisaligned(t *testing.T) {
	t.Parallel()

	// complex float64 (16 bytes) is the widest element and still smaller
	// than a unit, so unaligned requests are always offset.
	s := NewStore(2)
	v, err := s.Alloc(Float64|Complex, 2, false, nil)
	require.NoError(t, err)
	assert.Positive(t, v.Offset())
	assert.Zero(t, v.Offset()%8)
	require.NoError(t, v.Free())
}

func TestElementAddressing(t *testing.T) {
	t.Parallel()

	s := NewStore(9)
	v, err := s.Alloc(Int32, 4, false, nil)
	require.NoError(t, err)

	d := MustSlice[int32](v)
	for i := range d {
		d[i] = int32(100 + i)
	}

	for i := range 4 {
		e := v.Element(i)
		require.Len(t, e, 4)
		assert.Equal(t, int32(100+i), *(*int32)(unsafe.Pointer(&e[0])))
	}

	assert.Panics(t, func() { v.Element(4) })
	assert.Panics(t, func() { v.Element(-1) })
	require.NoError(t, v.Free())
}

func TestSliceFormatChecks(t *testing.T) {
	t.Parallel()

	s := NewStore(1)
	v, err := s.Alloc(Float32|Complex, 3, true, nil)
	require.NoError(t, err)

	flat, err := Slice[float32](v)
	require.NoError(t, err)
	assert.Len(t, flat, 6)

	cx, err := Slice[complex64](v)
	require.NoError(t, err)
	assert.Len(t, cx, 3)

	flat[2], flat[3] = 1, -1
	assert.Equal(t, complex64(complex(1, -1)), cx[1])

	_, err = Slice[int16](v)
	assert.ErrorIs(t, err, ErrFormatMismatch)

	_, err = Slice[complex128](v)
	assert.ErrorIs(t, err, ErrFormatMismatch)

	require.NoError(t, v.Free())

	_, err = Slice[float32](v)
	assert.ErrorIs(t, err, ErrFreed)
	assert.ErrorIs(t, v.Free(), ErrFreed)
}

func TestNewPrefills(t *testing.T) {
	t.Parallel()

	s := NewStore(1)
	v, err := New(s, Q15|Complex, []int16{1, 2, 3, 4})
	require.NoError(t, err)
	assert.Equal(t, 2, v.Len())
	assert.Equal(t, []int16{1, 2, 3, 4}, MustSlice[int16](v))
	require.NoError(t, v.Free())

	w, err := s.Alloc(Int16, 3, false, []byte{1, 0, 2, 0, 3, 0})
	require.NoError(t, err)
	assert.Equal(t, []int16{1, 2, 3}, MustSlice[int16](w))
	require.NoError(t, w.Free())
}

func TestChecksumVerifyUnchanged(t *testing.T) {
	t.Parallel()

	s := NewStore(1)
	v, err := New(s, Int16, []int16{5, 6, 7})
	require.NoError(t, err)

	crc := v.Checksum()
	assert.True(t, v.VerifyUnchanged(crc))

	MustSlice[int16](v)[1]++
	assert.False(t, v.VerifyUnchanged(crc))

	require.NoError(t, v.Free())
	assert.False(t, v.VerifyUnchanged(crc))
}

func TestReinterpret(t *testing.T) {
	t.Parallel()

	s := NewStore(4)
	parent, err := s.Alloc(Q15|Complex, 5, false, nil)
	require.NoError(t, err)

	view, err := parent.Reinterpret(Q15, 8)
	require.NoError(t, err)
	assert.True(t, view.IsView())
	assert.Equal(t, parent.Addr(), view.Addr())

	MustSlice[int16](view)[7] = 99
	assert.Equal(t, int16(99), MustSlice[int16](parent)[7])

	_, err = parent.Reinterpret(Q15, 11)
	assert.ErrorIs(t, err, ErrFormatMismatch)

	assert.ErrorIs(t, view.Free(), ErrView)
	require.NoError(t, parent.Free())
	assert.True(t, view.Freed())
}

func TestAllocManyAndLimit(t *testing.T) {
	t.Parallel()

	s := NewStore(1)
	s.Limit = 4 * 1024

	vs, errs := s.AllocMany(Float64, []int{16, 16, 4096, 8}, true)
	n, first := Allocated(errs)

	assert.Equal(t, 3, n)
	require.ErrorIs(t, first, ErrAllocation)
	assert.Nil(t, vs[2])
	assert.ErrorIs(t, errs[2], ErrAllocation)
	assert.NoError(t, errs[3])

	assert.NoError(t, FreeAll(vs...))
	assert.Equal(t, 0, s.InUse())
}

func TestFreeAllJoinsFailures(t *testing.T) {
	t.Parallel()

	s := NewStore(1)
	a, err := s.Alloc(Int16, 2, true, nil)
	require.NoError(t, err)
	b, err := s.Alloc(Int16, 2, true, nil)
	require.NoError(t, err)

	a.buf[0] ^= 0xff

	err = FreeAll(a, nil, b)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrGuardCorrupted))
	assert.True(t, b.Freed())
}

func TestInvalidFormat(t *testing.T) {
	t.Parallel()

	_, err := NewStore(1).Alloc(Format(0), 1, true, nil)
	assert.ErrorIs(t, err, ErrInvalidFormat)

	_, err = NewStore(1).Alloc(Format(0x40)|Int16, 1, true, nil)
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestFormatStringRoundTrip(t *testing.T) {
	t.Parallel()

	for _, f := range allFormats {
		got, ok := ParseFormat(f.String())
		assert.True(t, ok, f.String())
		assert.Equal(t, f, got)
	}

	f, ok := ParseFormat("cq15")
	assert.True(t, ok)
	assert.Equal(t, Q15|Complex, f)

	_, ok = ParseFormat("q7")
	assert.False(t, ok)
}
