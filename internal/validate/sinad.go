package validate

import (
	"math"
)

// MaxEFB caps the error-free bit count; it is also the score of an exact
// frame.
const MaxEFB = 32

// Quality accumulates signal-to-noise-and-distortion and error-free bits
// over the frames of one test case. The zero value is not usable; call
// NewQuality.
type Quality struct {
	minSINAD float64
	minEFB   int
	frames   int

	signal float64
	noise  float64
}

// NewQuality returns an accumulator with no frames.
func NewQuality() *Quality {
	return &Quality{minSINAD: math.Inf(1), minEFB: MaxEFB}
}

// Frame scores one frame of got against ref, component by component, and
// returns the frame SINAD in dB. Frames whose reference is silent are
// skipped: ok is false and neither minimum changes. Only the common prefix
// of mismatched lengths is compared.
func (q *Quality) Frame(ref, got []float64) (sinad float64, ok bool) {
	n := min(len(ref), len(got))

	var (
		signal, noise   float64
		maxRef, maxErr float64
	)

	for i := range n {
		e := ref[i] - got[i]

		signal += ref[i] * ref[i]
		noise += e * e
		maxRef = math.Max(maxRef, math.Abs(ref[i]))
		maxErr = math.Max(maxErr, math.Abs(e))
	}

	q.signal += signal
	q.noise += noise

	if signal == 0 {
		return 0, false
	}

	q.frames++

	sinad = ratioDB(signal, noise)
	q.minSINAD = math.Min(q.minSINAD, sinad)
	q.minEFB = min(q.minEFB, errorFreeBits(maxRef, maxErr))

	return sinad, true
}

// MinSINAD returns the lowest per-frame SINAD in dB, or +Inf if no frame
// carried signal or every frame was exact.
func (q *Quality) MinSINAD() float64 {
	return q.minSINAD
}

// EFB returns the lowest per-frame error-free bit count.
func (q *Quality) EFB() int {
	return q.minEFB
}

// Frames returns the number of scored frames.
func (q *Quality) Frames() int {
	return q.frames
}

// Total returns the SINAD in dB over every frame seen, silent frames
// included. It is NaN when nothing carried signal.
func (q *Quality) Total() float64 {
	if q.signal == 0 {
		return math.NaN()
	}

	return ratioDB(q.signal, q.noise)
}

// ratioDB scores a NaN or infinite noise power as -Inf so it always fails.
func ratioDB(signal, noise float64) float64 {
	switch {
	case math.IsNaN(noise) || math.IsInf(noise, 0):
		return math.Inf(-1)
	case noise == 0:
		return math.Inf(1)
	}

	return 10 * math.Log10(signal/noise)
}

// errorFreeBits is floor(log2 maxRef) - floor(log2 maxErr), clamped to
// [0, MaxEFB].
func errorFreeBits(maxRef, maxErr float64) int {
	switch {
	case maxErr == 0:
		return MaxEFB
	case math.IsInf(maxErr, 0) || math.IsNaN(maxErr):
		return 0
	}

	efb := int(math.Logb(maxRef)) - int(math.Logb(maxErr))

	return max(0, min(MaxEFB, efb))
}
