// Package math holds the integer helpers behind twiddle table sizing, SEQ
// row validation and the bit-reversed loads of the sample radix-2
// transforms.
package math

import "math/bits"

// IsPowerOf2 reports whether n is a positive power of two.
func IsPowerOf2(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// Log2 returns floor(log2(n)), or 0 for n < 1.
func Log2(n int) int {
	if n < 1 {
		return 0
	}

	return bits.Len(uint(n)) - 1
}

// ReverseBits mirrors the low width bits of x. Bits above width are
// dropped; a width below 1 yields 0.
//
//	ReverseBits(0b110, 3) == 0b011
func ReverseBits(x, width int) int {
	if width < 1 {
		return 0
	}

	width = min(width, bits.UintSize)

	return int(bits.Reverse(uint(x)) >> (bits.UintSize - width))
}

// ComputeBitReversalIndices returns the input permutation of an n-point
// decimation-in-time transform: element i is loaded from index [i].
func ComputeBitReversalIndices(n int) []int {
	if n <= 0 {
		return nil
	}

	width := Log2(n)
	perm := make([]int, n)

	for i := range perm {
		perm[i] = ReverseBits(i, width)
	}

	return perm
}
