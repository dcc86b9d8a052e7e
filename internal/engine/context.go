// Package engine drives functions under test through SEQ files: transform
// files frame by frame against binary reference streams, and data-driven
// files case by case against per-element bounds.
package engine

import (
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/pion/logging"

	"github.com/cwbudde/algo-testeng/internal/cpu"
	"github.com/cwbudde/algo-testeng/internal/fut"
	"github.com/cwbudde/algo-testeng/internal/twiddle"
	"github.com/cwbudde/algo-testeng/internal/vec"
)

// ErrLeak is returned by Close when vectors are still live.
var ErrLeak = errors.New("engine: vectors still allocated")

type twiddleKey struct {
	id     string
	kind   twiddle.Kind
	format vec.Format
}

// Context is the state of one run: the vector store with its PRNG, the
// twiddle tables of every function tested so far, the loggers and the
// call meter. A Context is not safe for concurrent use; concurrent runs
// each get their own.
type Context struct {
	RunID    uuid.UUID
	Config   Config
	Store    *vec.Store
	Registry *fut.Registry

	loggers  logging.LoggerFactory
	log      logging.LeveledLogger
	twiddles map[twiddleKey]*twiddle.Set
	meter    cpu.Meter
}

// NewContext returns a context resolving partners in reg. A nil loggers
// uses pion's default factory, which reads its levels from PION_LOG_*.
func NewContext(reg *fut.Registry, cfg Config, loggers logging.LoggerFactory) *Context {
	if loggers == nil {
		loggers = logging.NewDefaultLoggerFactory()
	}

	st := vec.NewStore(cfg.Seed)
	st.Limit = cfg.StoreLimit

	c := &Context{
		RunID:    uuid.New(),
		Config:   cfg,
		Store:    st,
		Registry: reg,
		loggers:  loggers,
		twiddles: make(map[twiddleKey]*twiddle.Set),
	}
	c.log = c.Logger("engine")

	return c
}

// Logger returns a logger for scope.
func (c *Context) Logger(scope string) logging.LeveledLogger {
	return c.loggers.NewLogger(scope)
}

// twiddleSet returns the tables of function id, loading them on first use.
// Every function gets its own set, seeded from the run seed and its ID.
func (c *Context) twiddleSet(id string, kind twiddle.Kind, format vec.Format) (*twiddle.Set, error) {
	k := twiddleKey{id: id, kind: kind, format: format.Base()}
	if s, ok := c.twiddles[k]; ok {
		return s, nil
	}

	seed := c.Config.Seed ^ int64(uuid.NewSHA1(uuid.NameSpaceOID, []byte(id)).ID())

	s, err := twiddle.NewSet(c.Store, kind, format, c.Config.MinTwiddleLog2, c.Config.MaxTwiddleLog2, c.Config.Aligned, seed)
	if err != nil {
		return nil, fmt.Errorf("twiddles for %s: %w", id, err)
	}

	c.log.Debugf("run %s: loaded %s %s twiddles %v for %s", c.RunID, kind, s.Format(), s.Sizes(), id)
	c.twiddles[k] = s

	return s, nil
}

// Close releases every twiddle table and reports vectors that were never
// freed.
func (c *Context) Close() error {
	keys := make([]twiddleKey, 0, len(c.twiddles))
	for k := range c.twiddles {
		keys = append(keys, k)
	}

	sort.Slice(keys, func(i, j int) bool { return keys[i].id < keys[j].id })

	var errs []error

	for _, k := range keys {
		if err := c.twiddles[k].Free(); err != nil {
			errs = append(errs, err)
		}

		delete(c.twiddles, k)
	}

	if n := c.Store.Live(); n != 0 {
		errs = append(errs, fmt.Errorf("%w: %d", ErrLeak, n))
	}

	return errors.Join(errs...)
}
