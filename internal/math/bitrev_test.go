package math

import (
	"fmt"
	"testing"
)

func TestReverseBits(t *testing.T) {
	t.Parallel()

	tests := []struct {
		x, width, want int
	}{
		{0b110, 3, 0b011},
		{0b001, 3, 0b100},
		{0b1, 1, 0b1},
		{0b0011, 4, 0b1100},
		{0x12, 8, 0x48},
		{0x123, 10, 0x312},
		{0x1234, 16, 0x2c48},
		// bits above the width are ignored
		{0b1110, 3, 0b011},
		{6, 0, 0},
		{6, -2, 0},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%#b/%d", tt.x, tt.width), func(t *testing.T) {
			t.Parallel()

			if got := ReverseBits(tt.x, tt.width); got != tt.want {
				t.Errorf("ReverseBits(%#b, %d) = %#b, want %#b", tt.x, tt.width, got, tt.want)
			}
		})
	}
}

func TestBitReversalPermutation(t *testing.T) {
	t.Parallel()

	if got := ComputeBitReversalIndices(0); got != nil {
		t.Errorf("n=0: got %v, want nil", got)
	}

	want8 := []int{0, 4, 2, 6, 1, 5, 3, 7}
	if got := ComputeBitReversalIndices(8); fmt.Sprint(got) != fmt.Sprint(want8) {
		t.Errorf("n=8: got %v, want %v", got, want8)
	}

	for k := range 11 {
		n := 1 << k

		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			t.Parallel()

			perm := ComputeBitReversalIndices(n)
			if len(perm) != n {
				t.Fatalf("len = %d, want %d", len(perm), n)
			}

			// A bit reversal is its own inverse, so this also proves it is a
			// permutation of [0, n).
			for i, j := range perm {
				if j < 0 || j >= n || perm[j] != i {
					t.Fatalf("perm[%d] = %d is not an involution", i, j)
				}
			}
		})
	}
}

func TestLog2(t *testing.T) {
	t.Parallel()

	for k := range 20 {
		n := 1 << k
		if !IsPowerOf2(n) || Log2(n) != k {
			t.Errorf("n=%d: IsPowerOf2=%t Log2=%d, want true and %d", n, IsPowerOf2(n), Log2(n), k)
		}

		if n > 2 && IsPowerOf2(n+1) {
			t.Errorf("IsPowerOf2(%d) = true", n+1)
		}
	}

	if Log2(12) != 3 || Log2(0) != 0 {
		t.Errorf("Log2(12) = %d, Log2(0) = %d; want 3 and 0", Log2(12), Log2(0))
	}

	for _, n := range []int{0, -1, -8} {
		if IsPowerOf2(n) {
			t.Errorf("IsPowerOf2(%d) = true", n)
		}
	}
}

func BenchmarkComputeBitReversalIndices(b *testing.B) {
	for _, n := range []int{64, 1024, 4096} {
		b.Run(fmt.Sprintf("n=%d", n), func(b *testing.B) {
			b.ReportAllocs()

			for range b.N {
				_ = ComputeBitReversalIndices(n)
			}
		})
	}
}
