package golden

import (
	"fmt"
	"path/filepath"

	"github.com/cwbudde/algo-testeng/internal/engine"
	"github.com/cwbudde/algo-testeng/internal/fut"
	"github.com/cwbudde/algo-testeng/internal/vec"
)

// SuiteOptions shape the transform files WriteSuite generates.
type SuiteOptions struct {
	// Sizes lists the transform sizes. The first one goes into the brief
	// file, all of them into the full file.
	Sizes     []int
	Frames    int
	Amplitude float64
	Seed      int64
}

// DefaultSuiteOptions returns sizes 16, 64 and 256 with eight frames each.
func DefaultSuiteOptions() SuiteOptions {
	return SuiteOptions{Sizes: []int{16, 64, 256}, Frames: 8, Amplitude: 0.9, Seed: 1}
}

// MinSINAD is the threshold WriteSuite assigns to a case of t.
func MinSINAD(t *fut.Transform, typ engine.CaseType, scale int) float64 {
	switch t.Data {
	case vec.Float64:
		return 200
	case vec.Float32:
		return 100
	}

	switch {
	case typ == engine.CaseReconstruction:
		return 20
	case scale == 0:
		return 30
	default:
		return 40
	}
}

// WriteSuite writes input and reference streams plus two SEQ files for
// every transform in reg: <id>.seq with the first size at the brief and
// sanity levels, and <id>_full.seq with every size at the full level. It
// returns the table rows that run them.
func WriteSuite(dir string, reg *fut.Registry, o SuiteOptions) ([]engine.TableRow, error) {
	if len(o.Sizes) == 0 || o.Frames <= 0 {
		return nil, fmt.Errorf("golden: suite needs sizes and frames")
	}

	var rows []engine.TableRow

	for _, id := range reg.IDs() {
		e, _ := reg.Lookup(id)

		t, ok := e.Func.(*fut.Transform)
		if !ok {
			continue
		}

		var brief, full []engine.TransformCase

		for i, n := range o.Sizes {
			cases, err := transformCases(dir, t, n, o)
			if err != nil {
				return nil, fmt.Errorf("%s N=%d: %w", id, n, err)
			}

			if i == 0 {
				brief = cases
			}

			full = append(full, cases...)
		}

		for _, f := range []struct {
			name   string
			levels engine.Fullness
			cases  []engine.TransformCase
		}{
			{id + ".seq", engine.Brief | engine.Sanity, brief},
			{id + "_full.seq", engine.Full, full},
		} {
			if err := WriteSeq(filepath.Join(dir, f.name), id, f.cases); err != nil {
				return nil, err
			}

			rows = append(rows, engine.TableRow{Function: id, File: f.name, Levels: f.levels})
		}
	}

	return rows, nil
}

func transformCases(dir string, t *fut.Transform, n int, o SuiteOptions) ([]engine.TransformCase, error) {
	s := Stream{
		Category:  t.Category,
		Direction: t.Direction,
		N:         n,
		Frames:    o.Frames,
		Amplitude: o.Amplitude,
		Seed:      o.Seed + int64(n),
	}

	in, ref, err := s.Write(dir)
	if err != nil {
		return nil, err
	}

	typ := engine.CaseForward
	if t.Direction == fut.Inverse {
		typ = engine.CaseInverse
	}

	var cases []engine.TransformCase

	for scale := range max(t.ScaleMethods, 1) {
		cases = append(cases, engine.TransformCase{
			Type: typ, N: n, Scale: scale, Input: in, Reference: ref,
			MinSINAD: MinSINAD(t, typ, scale),
		})

		if t.Partner != "" && t.Direction == fut.Forward {
			cases = append(cases, engine.TransformCase{
				Type: engine.CaseReconstruction, N: n, Scale: scale, Input: in,
				MinSINAD: MinSINAD(t, engine.CaseReconstruction, scale),
			})
		}
	}

	return cases, nil
}
