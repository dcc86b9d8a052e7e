// Package cpu reports host capabilities and times calls into functions-under-test.
package cpu

import (
	"runtime"
	"sync"

	"golang.org/x/sys/cpu"
)

// SIMDLevel describes the minimum CPU features a function-under-test needs.
type SIMDLevel uint8

const (
	SIMDNone   SIMDLevel = iota // Pure Go implementation
	SIMDSSE2                    // Requires SSE2 (x86_64 baseline)
	SIMDSSE3                    // Requires SSE3
	SIMDAVX2                    // Requires AVX2
	SIMDAVX512                  // Requires AVX-512
	SIMDNEON                    // Requires ARM NEON
)

// String returns a human-readable name for the SIMD level.
func (s SIMDLevel) String() string {
	switch s {
	case SIMDNone:
		return "generic"
	case SIMDSSE2:
		return "sse2"
	case SIMDSSE3:
		return "sse3"
	case SIMDAVX2:
		return "avx2"
	case SIMDAVX512:
		return "avx512"
	case SIMDNEON:
		return "neon"
	default:
		return "unknown"
	}
}

// Features describes CPU capabilities relevant to choosing which
// functions-under-test can run on this host.
type Features struct {
	HasSSE2      bool
	HasSSE3      bool
	HasAVX2      bool
	HasAVX512    bool
	HasNEON      bool
	ForceGeneric bool
	Architecture string
}

var (
	detectOnce sync.Once
	detected   Features
)

// DetectFeatures reports the available CPU features for the current process.
func DetectFeatures() Features {
	detectOnce.Do(func() {
		detected = Features{
			HasSSE2:      cpu.X86.HasSSE2,
			HasSSE3:      cpu.X86.HasSSE3,
			HasAVX2:      cpu.X86.HasAVX2,
			HasAVX512:    cpu.X86.HasAVX512F,
			HasNEON:      cpu.ARM64.HasASIMD,
			Architecture: runtime.GOARCH,
		}
	})

	return detected
}

// Supports reports whether f satisfies the requirement level.
func (f Features) Supports(level SIMDLevel) bool {
	if level == SIMDNone {
		return true
	}

	if f.ForceGeneric {
		return false
	}

	switch level {
	case SIMDSSE2:
		return f.HasSSE2
	case SIMDSSE3:
		return f.HasSSE3
	case SIMDAVX2:
		return f.HasAVX2
	case SIMDAVX512:
		return f.HasAVX512
	case SIMDNEON:
		return f.HasNEON
	default:
		return false
	}
}

// String summarizes the feature set for run headers.
func (f Features) String() string {
	s := f.Architecture
	for _, lvl := range []SIMDLevel{SIMDSSE2, SIMDSSE3, SIMDAVX2, SIMDAVX512, SIMDNEON} {
		if f.Supports(lvl) {
			s += " " + lvl.String()
		}
	}

	return s
}
