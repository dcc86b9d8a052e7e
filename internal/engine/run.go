package engine

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/pion/logging"

	"github.com/cwbudde/algo-testeng/internal/cpu"
	"github.com/cwbudde/algo-testeng/internal/fut"
	"github.com/cwbudde/algo-testeng/internal/seq"
)

// Mode is a set of call modes for transform cases.
type Mode uint8

const (
	// ModeOutOfPlace passes separate input and output vectors.
	ModeOutOfPlace Mode = 1 << iota
	// ModeInPlace passes one storage as input and output. It only applies
	// to transforms that declare InPlace.
	ModeInPlace
)

// Descriptor tunes how a test file drives its function.
type Descriptor struct {
	// Modes restricts the call modes of transform cases. Zero allows both;
	// calls then alternate between them.
	Modes Mode
	// BlockExp overrides the block exponent of fixed-point transform input.
	// Zero keeps the function's own choice.
	BlockExp int
}

// RunTestFile runs every case of the SEQ file at path against e. Case
// failures are recorded in the report; the error reports only problems
// that stop the file, such as a missing SEQ file or a cancelled ctx.
func RunTestFile(ctx context.Context, rc *Context, e fut.Entry, desc Descriptor, path string, opts Options) (Report, error) {
	rep := Report{RunID: rc.RunID, Function: e.ID, File: path}
	log := rc.Logger("engine")

	if err := e.Available(rc.Config.Features); err != nil {
		res := newCaseResult(0, "function")
		res.finish(err)
		rep.add(res)
		logResult(log, rc.RunID.String(), e.ID, res)

		return rep, nil
	}

	rd, err := seq.Open(path)
	if err != nil {
		return rep, err
	}
	defer rd.Close()

	var meter cpu.Meter

	switch f := e.Func.(type) {
	case *fut.Transform:
		r := &transformRun{rc: rc, id: e.ID, t: f, desc: desc, opts: opts, log: log, meter: &meter}
		err = r.run(ctx, rd, &rep)
	default:
		r := &dataRun{rc: rc, id: e.ID, f: f, opts: opts, log: log, meter: &meter}
		err = r.run(ctx, rd, &rep)
	}

	rc.meter.Merge(meter)
	rep.Calls, rep.PerCall = meter.Calls(), meter.PerCall()

	pass, fail, skipped := rep.Counts()
	log.Infof("run %s: %s %s: %d passed, %d failed, %d not tested", rc.RunID, e.ID, filepath.Base(path), pass, fail, skipped)

	return rep, err
}

// TableRow binds a function to a test file.
type TableRow struct {
	Function string
	File     string
	// Levels is the set of fullness levels the row belongs to.
	Levels Fullness
	Desc   Descriptor
}

// Table is a declarative list of test files. Relative file names are
// resolved against Dir.
type Table struct {
	Dir  string
	Rows []TableRow
}

// RunTable runs the rows of t whose levels include opts.Fullness, in order.
// A function missing from the registry yields a NOT TESTED report. With
// StopOnFirstFailure the table stops after the first failing file.
func RunTable(ctx context.Context, rc *Context, t Table, opts Options) ([]Report, error) {
	var reports []Report

	for _, row := range t.Rows {
		if row.Levels&opts.Fullness == 0 {
			continue
		}

		if err := ctx.Err(); err != nil {
			return reports, err
		}

		path := resolve(t.Dir, row.File)

		e := fut.Entry{ID: row.Function}
		if rc.Registry != nil {
			if found, ok := rc.Registry.Lookup(row.Function); ok {
				e = found
			}
		}

		rep, err := RunTestFile(ctx, rc, e, row.Desc, path, opts)
		if err != nil {
			return append(reports, rep), fmt.Errorf("%s %s: %w", row.Function, row.File, err)
		}

		reports = append(reports, rep)

		if !rep.Passed() && opts.StopOnFirstFailure {
			break
		}
	}

	return reports, nil
}

// Meter returns the timings of every call made through rc so far.
func (c *Context) Meter() cpu.Meter {
	return c.meter
}

func logResult(log logging.LeveledLogger, runID, id string, res CaseResult) {
	switch {
	case res.Status == StatusNotTested:
		log.Warnf("run %s: %s %s", runID, id, res)
	case res.Category == CategoryCorruption:
		log.Errorf("run %s: %s %s", runID, id, res)
	default:
		log.Infof("run %s: %s %s", runID, id, res)
	}
}
