package testeng

import (
	"context"

	"github.com/pion/logging"

	"github.com/cwbudde/algo-testeng/internal/engine"
	"github.com/cwbudde/algo-testeng/internal/fut"
	"github.com/cwbudde/algo-testeng/internal/samples"
)

// DefaultConfig returns seed 1, twiddle tables of 2 to 4096 points,
// misalignment fuzzing and the host's CPU features.
func DefaultConfig() Config {
	return engine.DefaultConfig()
}

// NewContext creates the state of one run. Partners of reconstruction
// cases are resolved in reg. A nil loggers logs through pion's default
// factory.
func NewContext(reg *Registry, cfg Config, loggers logging.LoggerFactory) *Context {
	return engine.NewContext(reg, cfg, loggers)
}

// NewRegistry returns an empty function registry.
func NewRegistry() *Registry {
	return fut.NewRegistry()
}

// Samples returns a registry holding the bundled sample functions.
func Samples() *Registry {
	r := fut.NewRegistry()
	samples.Register(r)

	return r
}

// ParseFullness parses "brief", "full" or "sanity".
func ParseFullness(s string) (Fullness, error) {
	return engine.ParseFullness(s)
}

// RunTestFile runs the SEQ file at path against the function registered as
// id in rc. An unknown id yields a NOT TESTED report.
func RunTestFile(ctx context.Context, rc *Context, id string, desc Descriptor, path string, opts Options) (Report, error) {
	e := fut.Entry{ID: id}

	if rc.Registry != nil {
		if found, ok := rc.Registry.Lookup(id); ok {
			e = found
		}
	}

	return engine.RunTestFile(ctx, rc, e, desc, path, opts)
}

// RunTable runs the rows of t selected by opts.Fullness.
func RunTable(ctx context.Context, rc *Context, t Table, opts Options) ([]Report, error) {
	return engine.RunTable(ctx, rc, t, opts)
}
