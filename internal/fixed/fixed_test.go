package fixed

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignBits16(t *testing.T) {
	t.Parallel()

	tests := []struct {
		x    int16
		want int
	}{
		{0, 16},
		{-1, 16},
		{1, 15},
		{16384, 1},
		{-16384, 2},
		{32767, 1},
		{-32768, 1},
		{0x0100, 7},
		{-0x0100, 8},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("x=%d", tt.x), func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, SignBits16(tt.x))
		})
	}
}

func TestMinSignBits16(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 16, MinSignBits16(nil))
	assert.Equal(t, 16, MinSignBits16([]int16{0, 0, -1}))
	assert.Equal(t, 1, MinSignBits16([]int16{16384, -16384}))
	assert.Equal(t, 7, MinSignBits16([]int16{0x100, -0x80, 3}))
}

func TestLShl(t *testing.T) {
	t.Parallel()

	tests := []struct {
		x    int32
		s    int
		want int32
	}{
		{1, 0, 1},
		{1, 4, 16},
		{0x4000, 16, 0x40000000},
		{0x4000, 17, math.MaxInt32},
		{-0x4000, 17, math.MinInt32},
		{-0x4000, 16, -0x40000000},
		{-8, -2, -2},
		{-7, -1, -4},
		{7, -1, 3},
		{5, -40, 0},
		{-5, -40, -1},
		{3, 40, math.MaxInt32},
		{0, 40, 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, LShl(tt.x, tt.s), "LShl(%d, %d)", tt.x, tt.s)
	}
}

func TestRoundQ15(t *testing.T) {
	t.Parallel()

	tests := []struct {
		x    int32
		want int16
	}{
		{0x40000000, 0x4000},
		{0x00008000, 1},   // +0.5 LSB rounds up
		{-0x00008000, -1}, // -0.5 LSB rounds away from zero
		{0x00007fff, 0},
		{-0x00007fff, 0},
		{0x00018000, 2},
		{-0x00018000, -2},
		{math.MaxInt32, math.MaxInt16},
		{math.MinInt32, math.MinInt16},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, RoundQ15(tt.x), "RoundQ15(%#x)", tt.x)
	}
}

func TestRoundSat(t *testing.T) {
	t.Parallel()

	assert.Equal(t, int16(math.MaxInt16), RoundSat16(1e9))
	assert.Equal(t, int16(math.MinInt16), RoundSat16(-1e9))
	assert.Equal(t, int16(-3), RoundSat16(-2.5))
	assert.Equal(t, int16(3), RoundSat16(2.5))
	assert.Equal(t, int16(0), RoundSat16(math.NaN()))
	assert.Equal(t, int32(math.MaxInt32), RoundSat32(math.Inf(1)))
	assert.Equal(t, int32(-2), RoundSat32(-1.5))
	assert.Equal(t, int64(math.MaxInt64), RoundSat64(1e300))
	assert.Equal(t, int64(math.MinInt64), RoundSat64(-1e300))
	assert.Equal(t, int64(42), RoundSat64(41.6))
}

func TestMulQ15(t *testing.T) {
	t.Parallel()

	assert.Equal(t, int16(0x2000), MulQ15(0x4000, 0x4000))
	assert.Equal(t, int16(math.MaxInt16), MulQ15(math.MinInt16, math.MinInt16))
	assert.Equal(t, int16(-0x4000), MulQ15(0x4000, math.MinInt16))
}
