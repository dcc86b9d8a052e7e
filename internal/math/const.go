package math

import "math"

// TwoPi is 2π with full float64 precision.
const TwoPi = 2.0 * math.Pi

// MaxTransformLog2 bounds the transform sizes the harness knows about.
const MaxTransformLog2 = 16
