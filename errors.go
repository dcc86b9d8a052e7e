package testeng

import "github.com/cwbudde/algo-testeng/internal/engine"

// Sentinel errors carried by CaseResult.Err. Use errors.Is to match them.
var (
	// ErrAllocation is reported when a vector or object state cannot be
	// allocated.
	ErrAllocation = engine.ErrAllocation

	// ErrMalformedSeq is reported when a SEQ file or data stream does not
	// match its layout.
	ErrMalformedSeq = engine.ErrMalformedSeq

	// ErrBufferCorruption is reported when a function writes outside its
	// output or modifies memory it must leave alone.
	ErrBufferCorruption = engine.ErrBufferCorruption

	// ErrAccuracy is reported when output misses its bounds or threshold.
	ErrAccuracy = engine.ErrAccuracy

	// ErrNotTested is reported when a case cannot run in this build or on
	// this host.
	ErrNotTested = engine.ErrNotTested

	// ErrLeak is returned by Context.Close when vectors were never freed.
	ErrLeak = engine.ErrLeak
)
