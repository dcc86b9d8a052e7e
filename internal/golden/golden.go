// Package golden writes transform test data: PCM input streams, float64
// reference streams computed by the reference package and the SEQ files
// that tie them together.
package golden

import (
	"bufio"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/cwbudde/algo-testeng/internal/engine"
	"github.com/cwbudde/algo-testeng/internal/fut"
	"github.com/cwbudde/algo-testeng/internal/reference"
)

// Stream describes one input/reference pair.
type Stream struct {
	Category  fut.Category
	Direction fut.Direction
	N         int
	Frames    int
	// Amplitude is the peak as a fraction of full scale, in (0, 1].
	Amplitude float64
	Seed      int64
}

// Name is the base file name of the pair.
func (s Stream) Name() string {
	return fmt.Sprintf("%s_%s_%d_s%d", s.Category, s.Direction, s.N, s.Seed)
}

// inComps is the number of PCM samples per frame.
func (s Stream) inComps() int {
	switch {
	case s.Category == fut.ComplexFFT:
		return 2 * s.N
	case s.Category == fut.RealFFT && s.Direction == fut.Inverse:
		return 2 * (s.N/2 + 1)
	default:
		return s.N
	}
}

// PCM returns the input frames of s.
func (s Stream) PCM() []int16 {
	rng := rand.New(rand.NewSource(s.Seed))
	per := s.inComps()
	peak := math.Min(math.Max(s.Amplitude, 0), 1) * math.MaxInt16

	pcm := make([]int16, per*s.Frames)
	for i := range pcm {
		pcm[i] = int16(math.Round((rng.Float64()*2 - 1) * peak))
	}

	// Bins 0 and N/2 of a real spectrum are real.
	if s.Category == fut.RealFFT && s.Direction == fut.Inverse {
		for f := range s.Frames {
			pcm[f*per+1] = 0
			pcm[f*per+per-1] = 0
		}
	}

	return pcm
}

// Reference computes the golden output of pcm, the transform of pcm·2^-15.
func (s Stream) Reference(pcm []int16) ([]float64, error) {
	per := s.inComps()

	var out []float64

	for f := 0; f+per <= len(pcm); f += per {
		x := make([]float64, per)
		for i, v := range pcm[f : f+per] {
			x[i] = math.Ldexp(float64(v), -15)
		}

		y, err := reference.Transform(s.Category, s.Direction, x, s.N)
		if err != nil {
			return nil, err
		}

		out = append(out, y...)
	}

	return out, nil
}

// Write creates <dir>/<name>.pcm and <dir>/<name>.ref and returns their
// base names.
func (s Stream) Write(dir string) (in, ref string, err error) {
	pcm := s.PCM()

	golden, err := s.Reference(pcm)
	if err != nil {
		return "", "", err
	}

	in, ref = s.Name()+".pcm", s.Name()+".ref"

	if err := engine.WriteStreamFile(filepath.Join(dir, in), pcm); err != nil {
		return "", "", err
	}

	if err := engine.WriteStreamFile(filepath.Join(dir, ref), golden); err != nil {
		return "", "", err
	}

	return in, ref, nil
}

// WriteSeq writes a transform SEQ file with one row per case.
func WriteSeq(path, title string, cases []engine.TransformCase) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	w := bufio.NewWriter(f)

	fmt.Fprintf(w, "; %s\n", title)
	fmt.Fprintln(w, "; type N scale input reference minSINAD")

	for _, c := range cases {
		ref := c.Reference
		if ref == "" {
			ref = "-"
		}

		fmt.Fprintf(w, "%d %d %d %s %s %g\n", c.Type, c.N, c.Scale, c.Input, ref, c.MinSINAD)
	}

	if err := w.Flush(); err != nil {
		return errors.Join(err, f.Close())
	}

	return f.Close()
}

// DataCase is one case of a data-driven SEQ file. Vectors are given as
// tokens; see Int, Float32 and Float64.
type DataCase struct {
	Args   engine.CaseArgs
	Inputs [][]string
	Lo, Hi []string
}

// WriteDataSeq writes a data-driven SEQ file.
func WriteDataSeq(path, title string, cases []DataCase) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	w := bufio.NewWriter(f)

	fmt.Fprintf(w, "; %s\n%d\n", title, len(cases))

	for _, c := range cases {
		a := c.Args
		fmt.Fprintf(w, "; case %d\n%d %d %d %d %d %d\n", a.ID, a.ID, a.Type, a.M, a.N, a.P, a.L)

		for _, in := range c.Inputs {
			writeTokens(w, in)
		}

		writeTokens(w, c.Lo)
		writeTokens(w, c.Hi)
	}

	if err := w.Flush(); err != nil {
		return errors.Join(err, f.Close())
	}

	return f.Close()
}

func writeTokens(w *bufio.Writer, toks []string) {
	for i, t := range toks {
		if i > 0 {
			w.WriteByte(' ')
		}

		w.WriteString(t)
	}

	w.WriteByte('\n')
}

// Int formats integer and fixed-point tokens.
func Int[T int16 | int32 | int64](xs ...T) []string {
	out := make([]string, len(xs))
	for i, x := range xs {
		out[i] = fmt.Sprint(x)
	}

	return out
}

// Float32 formats float32 tokens as raw bits.
func Float32(xs ...float32) []string {
	out := make([]string, len(xs))
	for i, x := range xs {
		out[i] = fmt.Sprintf("%08x", math.Float32bits(x))
	}

	return out
}

// Float64 formats float64 tokens as raw bits.
func Float64(xs ...float64) []string {
	out := make([]string, len(xs))
	for i, x := range xs {
		out[i] = fmt.Sprintf("%016x", math.Float64bits(x))
	}

	return out
}
