package engine

import (
	"fmt"
	"strings"

	"github.com/cwbudde/algo-testeng/internal/cpu"
)

// Fullness selects which rows of a test table run. Rows carry a mask of
// the levels they belong to.
type Fullness uint8

const (
	Brief Fullness = 1 << iota
	Full
	// Sanity runs every selected row but stops each transform case after
	// its first call and each data-driven file after its first case.
	Sanity

	AllLevels = Brief | Full | Sanity
)

func (f Fullness) String() string {
	var parts []string

	for _, l := range []struct {
		bit  Fullness
		name string
	}{{Brief, "brief"}, {Full, "full"}, {Sanity, "sanity"}} {
		if f&l.bit != 0 {
			parts = append(parts, l.name)
		}
	}

	if len(parts) == 0 {
		return "none"
	}

	return strings.Join(parts, "|")
}

// ParseFullness parses "brief", "full" or "sanity".
func ParseFullness(s string) (Fullness, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "brief", "b":
		return Brief, nil
	case "full", "f":
		return Full, nil
	case "sanity", "s":
		return Sanity, nil
	default:
		return 0, fmt.Errorf("engine: unknown fullness %q", s)
	}
}

// Options control a single test file run.
type Options struct {
	Fullness           Fullness
	Verbose            bool
	StopOnFirstFailure bool
}

// Config holds the settings shared by every file of a run.
type Config struct {
	// Seed drives misalignment offsets and twiddle stride selection.
	Seed int64
	// Aligned disables misalignment fuzzing.
	Aligned bool
	// MinTwiddleLog2 and MaxTwiddleLog2 bound the table sizes loaded for
	// each transform.
	MinTwiddleLog2 int
	MaxTwiddleLog2 int
	// StoreLimit caps the bytes of live vectors; zero means unlimited.
	StoreLimit int
	// Features gates functions on host CPU support.
	Features cpu.Features
}

// DefaultConfig returns the settings used by the command line tools.
func DefaultConfig() Config {
	return Config{
		Seed:           1,
		MinTwiddleLog2: 1,
		MaxTwiddleLog2: 12,
		Features:       cpu.DetectFeatures(),
	}
}
