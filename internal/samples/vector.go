package samples

import (
	"errors"
	"math"

	"github.com/cwbudde/algo-testeng/internal/fixed"
	"github.com/cwbudde/algo-testeng/internal/fut"
	"github.com/cwbudde/algo-testeng/internal/vec"
)

func vectors() []fut.Entry {
	sum := fut.NewVector(vec.Q15, vec.Q31, sumQ31)
	sum.OutLen = fut.SizeOne

	return []fut.Entry{
		{ID: VecNegQ15, Func: fut.NewVector(vec.Q15, vec.Q15, negQ15), Doc: "saturating negate, q15"},
		{ID: VecAbsF32, Func: fut.NewVector(vec.Float32, vec.Float32, absF32), Doc: "absolute value, float32"},
		{ID: VecSumQ31, Func: sum, Doc: "sum of q15 into one q31"},
		{ID: SclSignI32, Func: fut.NewScalar(vec.Int32, vec.Int16, signI32), Doc: "sign, int32 to int16"},
		{ID: ObjGainQ15, Func: gainObject(), Doc: "gain stage, q15"},
	}
}

func negQ15(y, x []int16, n int) {
	for i := range n {
		y[i] = fixed.Sat16(-int64(x[i]))
	}
}

func absF32(y, x []float32, n int) {
	for i := range n {
		y[i] = float32(math.Abs(float64(x[i])))
	}
}

// sumQ31 accumulates Q15 samples and returns the sum as a saturated Q31.
func sumQ31(y []int32, x []int16, n int) {
	var acc int64
	for i := range n {
		acc += int64(x[i])
	}

	y[0] = fixed.Sat32(acc << 16)
}

func signI32(x int32) int16 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}

// gain is the state of obj_gain_q15: one Q15 factor per channel, applied
// to interleaved frames of M channels.
type gain struct {
	g []int16
}

var errGainChannels = errors.New("gain: M must be positive")

func gainObject() *fut.Object {
	return fut.NewObject(vec.Q15, vec.Q15, vec.Q15,
		func(a fut.Args) (*gain, error) {
			if a.M <= 0 {
				return nil, errGainChannels
			}

			return &gain{g: make([]int16, a.M)}, nil
		},
		func(s *gain, p []int16, a fut.Args) error {
			copy(s.g, p[:a.M])
			return nil
		},
		func(s *gain, y, x []int16, a fut.Args) {
			m := len(s.g)
			for i := range a.N {
				y[i] = fixed.MulQ15(x[i], s.g[i%m])
			}
		})
}
