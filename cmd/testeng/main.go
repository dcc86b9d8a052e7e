// Command testeng runs functions under test against their SEQ files and
// prints one summary line per file.
package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"os"
	"os/signal"
	"path"
	"path/filepath"
	"strings"

	"github.com/pion/logging"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/cwbudde/algo-testeng/internal/cpu"
	"github.com/cwbudde/algo-testeng/internal/engine"
	"github.com/cwbudde/algo-testeng/internal/fut"
	"github.com/cwbudde/algo-testeng/internal/samples"
	"github.com/cwbudde/algo-testeng/internal/vec"
)

type fileResult struct {
	runID  string
	report engine.Report
	err    error
}

func main() {
	var (
		dir       = flag.String("dir", "testdata", "directory of <id>.seq files, used when -table is empty")
		tablePath = flag.String("table", "", "table file listing function, file, levels, modes and block exponent")
		fullness  = flag.String("fullness", "brief", "fullness level: brief, full, sanity")
		run       = flag.String("run", "", "comma-separated shell patterns of function ids")
		formats   = flag.String("format", "", "comma-separated data formats to keep, e.g. q15,cfloat32")
		seed      = flag.Int64("seed", 1, "seed for misalignment offsets and twiddle strides")
		aligned   = flag.Bool("aligned", false, "disable misalignment fuzzing")
		maxLog2   = flag.Int("maxlog2", 12, "largest twiddle table, as log2 of its size")
		parallel  = flag.Int("parallel", 1, "functions tested concurrently")
		stop      = flag.Bool("stop", false, "stop each function at its first failure")
		verbose   = flag.Bool("v", false, "log every frame")
		faulty    = flag.Bool("faulty", false, "also register the faulty doubles")
		list      = flag.Bool("list", false, "list registered functions and exit")
	)
	flag.Parse()

	reg := fut.NewRegistry()
	samples.Register(reg)

	if *faulty {
		samples.RegisterFaulty(reg)
	}

	cfg := engine.DefaultConfig()
	cfg.Seed = *seed
	cfg.Aligned = *aligned
	cfg.MaxTwiddleLog2 = *maxLog2

	var patterns []string
	if *run != "" {
		patterns = strings.Split(*run, ",")
	}

	entries, err := reg.Match(patterns...)
	if err != nil {
		fail(err)
	}

	if entries, err = filterFormats(entries, *formats); err != nil {
		fail(err)
	}

	if *list {
		listEntries(entries, cfg.Features)
		return
	}

	level, err := engine.ParseFullness(*fullness)
	if err != nil {
		fail(err)
	}

	table, err := loadTable(*tablePath, *dir, entries)
	if err != nil {
		fail(err)
	}

	opts := engine.Options{Fullness: level, Verbose: *verbose, StopOnFirstFailure: *stop}

	loggers := logging.NewDefaultLoggerFactory()
	loggers.DefaultLogLevel = logging.LogLevelWarn

	if *verbose {
		loggers.DefaultLogLevel = logging.LogLevelDebug
	}

	log := loggers.NewLogger("cli")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	selected := make(map[string]bool, len(entries))
	for _, e := range entries {
		selected[e.ID] = true
	}

	groups, order := groupRows(table, reg, selected, patterns)
	results := make([][]fileResult, len(order))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(*parallel, 1))

	for i, id := range order {
		g.Go(func() error {
			rc := engine.NewContext(reg, cfg, loggers)
			sub := engine.Table{Dir: table.Dir, Rows: groups[id]}

			log.Infof("run %s: %s: %d files", rc.RunID, id, len(sub.Rows))

			reps, err := engine.RunTable(gctx, rc, sub, opts)
			for _, rep := range reps {
				results[i] = append(results[i], fileResult{runID: rc.RunID.String(), report: rep})
			}

			if err != nil {
				results[i] = append(results[i], fileResult{runID: rc.RunID.String(), report: engine.Report{Function: id}, err: err})
			}

			if cerr := rc.Close(); cerr != nil {
				results[i] = append(results[i], fileResult{runID: rc.RunID.String(), report: engine.Report{Function: id}, err: cerr})
			}

			return gctx.Err()
		})
	}

	if err := g.Wait(); err != nil {
		fmt.Fprintf(os.Stderr, "testeng: %v\n", err)
	}

	color := term.IsTerminal(int(os.Stdout.Fd()))

	fmt.Printf("fullness=%s seed=%d aligned=%t features=%s\n", level, *seed, *aligned, cfg.Features)
	fmt.Printf("%-18s  %-24s  %5s  %5s  %5s  %10s  %12s  %s\n",
		"function", "file", "pass", "fail", "n/t", "min SINAD", "per call", "status")

	failed := false

	for _, rs := range results {
		for _, r := range rs {
			if r.err != nil {
				failed = true

				fmt.Printf("%-18s  %s\n", r.report.Function, paint(color, engine.StatusFail, "ERROR: "+r.err.Error()))

				continue
			}

			rep := r.report
			pass, nfail, skipped := rep.Counts()
			failed = failed || nfail > 0

			fmt.Printf("%-18s  %-24s  %5d  %5d  %5d  %10s  %12s  %s\n",
				rep.Function, filepath.Base(rep.File), pass, nfail, skipped,
				formatSINAD(rep.MinSINAD()), rep.PerCall, paint(color, rep.Status(), rep.Status().String()))

			for _, c := range rep.Cases {
				if c.Status == engine.StatusFail {
					fmt.Printf("    run %s: %s\n", r.runID, c)
				}
			}
		}
	}

	if failed {
		os.Exit(1)
	}
}

// loadTable reads the table file, or builds one row per entry from
// <dir>/<id>.seq files that exist.
func loadTable(tablePath, dir string, entries []fut.Entry) (engine.Table, error) {
	if tablePath != "" {
		return engine.ReadTable(tablePath)
	}

	t := engine.Table{Dir: dir}

	for _, e := range entries {
		file := e.ID + ".seq"
		if _, err := os.Stat(filepath.Join(dir, file)); err != nil {
			continue
		}

		t.Rows = append(t.Rows, engine.TableRow{Function: e.ID, File: file, Levels: engine.AllLevels})
	}

	if len(t.Rows) == 0 {
		return t, fmt.Errorf("no SEQ files for the selected functions in %s", dir)
	}

	return t, nil
}

// groupRows splits the rows to run by function, keeping first-seen order.
// Rows naming a function the registry does not know are kept when they
// match the patterns, so they report NOT TESTED.
func groupRows(t engine.Table, reg *fut.Registry, selected map[string]bool, patterns []string) (map[string][]engine.TableRow, []string) {
	groups := make(map[string][]engine.TableRow)

	var order []string

	for _, row := range t.Rows {
		if _, known := reg.Lookup(row.Function); known && !selected[row.Function] {
			continue
		}

		if !selected[row.Function] && !matchAny(patterns, row.Function) {
			continue
		}

		if _, ok := groups[row.Function]; !ok {
			order = append(order, row.Function)
		}

		groups[row.Function] = append(groups[row.Function], row)
	}

	return groups, order
}

// filterFormats keeps the entries whose data format is listed. A plain
// format also matches its complex form. An empty list keeps everything.
func filterFormats(entries []fut.Entry, list string) ([]fut.Entry, error) {
	if strings.TrimSpace(list) == "" {
		return entries, nil
	}

	var want []vec.Format

	for _, s := range strings.Split(list, ",") {
		if strings.TrimSpace(s) == "" {
			continue
		}

		f, ok := vec.ParseFormat(s)
		if !ok {
			return nil, fmt.Errorf("unknown format %q", s)
		}

		want = append(want, f)
	}

	var kept []fut.Entry

	for _, e := range entries {
		f, ok := dataFormat(e.Func)
		if !ok {
			continue
		}

		for _, w := range want {
			if f == w || f.Base() == w {
				kept = append(kept, e)
				break
			}
		}
	}

	return kept, nil
}

// dataFormat is the format of the data a function consumes.
func dataFormat(f fut.Function) (vec.Format, bool) {
	switch f := f.(type) {
	case *fut.Transform:
		return f.InFormat(), true
	case *fut.Scalar:
		return f.In, true
	case *fut.Vector:
		return f.In, true
	case *fut.Object:
		return f.In, true
	default:
		return 0, false
	}
}

func matchAny(patterns []string, id string) bool {
	if len(patterns) == 0 {
		return true
	}

	for _, p := range patterns {
		if ok, _ := path.Match(p, id); ok {
			return true
		}
	}

	return false
}

func listEntries(entries []fut.Entry, f cpu.Features) {
	fmt.Printf("%-18s  %-10s  %-16s  %-10s  %s\n", "id", "kind", "format", "available", "description")

	for _, e := range entries {
		kind, format := "-", "-"
		if e.Func != nil {
			kind = e.Func.Kind().String()
		}

		if f, ok := dataFormat(e.Func); ok {
			format = f.String()
		}

		avail := "yes"
		if err := e.Available(f); err != nil {
			avail = "no"
		}

		fmt.Printf("%-18s  %-10s  %-16s  %-10s  %s\n", e.ID, kind, format, avail, e.Doc)
	}
}

func formatSINAD(v float64) string {
	switch {
	case math.IsNaN(v):
		return "-"
	case math.IsInf(v, 1):
		return "exact"
	default:
		return fmt.Sprintf("%.2f dB", v)
	}
}

func paint(color bool, s engine.Status, text string) string {
	if !color {
		return text
	}

	code := map[engine.Status]string{
		engine.StatusPass:      "32",
		engine.StatusFail:      "31",
		engine.StatusNotTested: "33",
	}[s]

	return "\x1b[" + code + "m" + text + "\x1b[0m"
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "testeng: %v\n", err)
	os.Exit(2)
}
