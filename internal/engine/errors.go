package engine

import (
	"errors"

	"github.com/cwbudde/algo-testeng/internal/fut"
	"github.com/cwbudde/algo-testeng/internal/seq"
	"github.com/cwbudde/algo-testeng/internal/twiddle"
	"github.com/cwbudde/algo-testeng/internal/validate"
	"github.com/cwbudde/algo-testeng/internal/vec"
)

// Sentinel errors classifying the outcome of a test case.
var (
	// ErrAllocation is returned when a vector or object state cannot be
	// allocated. The case fails and the run continues.
	ErrAllocation = errors.New("testeng: allocation failed")

	// ErrMalformedSeq is returned when a SEQ file or a data stream does not
	// match its expected layout.
	ErrMalformedSeq = errors.New("testeng: malformed test data")

	// ErrBufferCorruption is returned when a function writes outside its
	// output, modifies an input it promised to keep or touches a twiddle
	// table. It stops the remaining frames of the case.
	ErrBufferCorruption = errors.New("testeng: buffer corruption")

	// ErrAccuracy is returned when an output falls outside its bounds or a
	// transform misses its SINAD threshold.
	ErrAccuracy = errors.New("testeng: accuracy failure")

	// ErrNotTested is returned when a function or case cannot run in this
	// build or on this host. It is not a failure.
	ErrNotTested = errors.New("testeng: not tested")
)

// classify maps a case error to its status and category.
func classify(err error) (Status, Category) {
	switch {
	case err == nil:
		return StatusPass, CategoryNone
	case errors.Is(err, ErrNotTested), errors.Is(err, fut.ErrMissing), errors.Is(err, fut.ErrUnsupported):
		return StatusNotTested, CategoryMissing
	case errors.Is(err, ErrBufferCorruption), errors.Is(err, vec.ErrGuardCorrupted), errors.Is(err, twiddle.ErrModified):
		return StatusFail, CategoryCorruption
	case errors.Is(err, ErrAllocation), errors.Is(err, vec.ErrAllocation):
		return StatusFail, CategoryAllocation
	case errors.Is(err, ErrMalformedSeq), errors.Is(err, seq.ErrMalformed), errors.Is(err, seq.ErrUnexpectedEOF):
		return StatusFail, CategoryMalformed
	case errors.Is(err, ErrAccuracy):
		return StatusFail, CategoryAccuracy
	case errors.Is(err, fut.ErrShape), errors.Is(err, validate.ErrShape):
		return StatusFail, CategoryDescriptor
	default:
		return StatusFail, CategoryInternal
	}
}
