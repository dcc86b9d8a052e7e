// Command seqgen writes the test data of the bundled sample functions:
// PCM input and float64 reference streams, transform and data-driven SEQ
// files, and the table that runs them.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cwbudde/algo-testeng/internal/engine"
	"github.com/cwbudde/algo-testeng/internal/fut"
	"github.com/cwbudde/algo-testeng/internal/golden"
	"github.com/cwbudde/algo-testeng/internal/samples"
)

func main() {
	var (
		out       = flag.String("out", "testdata", "output directory")
		sizeList  = flag.String("sizes", "16,64,256", "comma-separated transform sizes")
		frames    = flag.Int("frames", 8, "frames per stream")
		amplitude = flag.Float64("amp", 0.9, "peak amplitude as a fraction of full scale")
		seed      = flag.Int64("seed", 1, "rng seed")
		cases     = flag.Int("cases", 16, "cases per data-driven file")
	)
	flag.Parse()

	sizes, err := parseSizes(*sizeList)
	if err != nil {
		fail(err)
	}

	if err := os.MkdirAll(*out, 0o755); err != nil {
		fail(err)
	}

	reg := fut.NewRegistry()
	samples.Register(reg)

	rows, err := golden.WriteSuite(*out, reg, golden.SuiteOptions{
		Sizes: sizes, Frames: *frames, Amplitude: *amplitude, Seed: *seed,
	})
	if err != nil {
		fail(err)
	}

	rnd := rand.New(rand.NewSource(*seed))

	for _, m := range dataModels() {
		dc := make([]golden.DataCase, *cases)
		for i := range dc {
			dc[i] = m.gen(rnd, i+1)
		}

		file := m.id + ".seq"
		if err := golden.WriteDataSeq(filepath.Join(*out, file), m.id, dc); err != nil {
			fail(err)
		}

		rows = append(rows, engine.TableRow{Function: m.id, File: file, Levels: engine.AllLevels})
	}

	table := filepath.Join(*out, "testeng.table")
	if err := engine.WriteTable(table, engine.Table{Rows: rows}); err != nil {
		fail(err)
	}

	fmt.Printf("wrote %d table rows to %s\n", len(rows), table)
}

func parseSizes(s string) ([]int, error) {
	var sizes []int

	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		n, err := strconv.Atoi(part)
		if err != nil || n < 2 || n&(n-1) != 0 {
			return nil, fmt.Errorf("size %q is not a power of two", part)
		}

		sizes = append(sizes, n)
	}

	if len(sizes) == 0 {
		return nil, fmt.Errorf("no sizes in %q", s)
	}

	return sizes, nil
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "seqgen: %v\n", err)
	os.Exit(2)
}
