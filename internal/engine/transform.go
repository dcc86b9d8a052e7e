package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/pion/logging"

	"github.com/cwbudde/algo-testeng/internal/convert"
	"github.com/cwbudde/algo-testeng/internal/cpu"
	"github.com/cwbudde/algo-testeng/internal/fut"
	imath "github.com/cwbudde/algo-testeng/internal/math"
	"github.com/cwbudde/algo-testeng/internal/seq"
	"github.com/cwbudde/algo-testeng/internal/twiddle"
	"github.com/cwbudde/algo-testeng/internal/validate"
	"github.com/cwbudde/algo-testeng/internal/vec"
)

// CaseType is the semantic tag of a test case.
type CaseType uint8

const (
	CaseForward        CaseType = 1
	CaseInverse        CaseType = 2
	CaseReconstruction CaseType = 3
)

func (c CaseType) String() string {
	switch c {
	case CaseForward:
		return "forward"
	case CaseInverse:
		return "inverse"
	case CaseReconstruction:
		return "reconstruction"
	default:
		return fmt.Sprintf("CaseType(%d)", c)
	}
}

// TransformCase is one row of a transform SEQ file:
//
//	<caseType> <N> <scaleMethod> <inputFile> <referenceFile> <minSINAD>
//
// Reconstruction rows compare against their input, so their reference
// file is ignored and conventionally written as "-".
type TransformCase struct {
	Row       int
	Type      CaseType
	N         int
	Scale     int
	Input     string
	Reference string
	MinSINAD  float64
}

func (tc TransformCase) name() string {
	return fmt.Sprintf("%s N=%d scale=%d", tc.Type, tc.N, tc.Scale)
}

// ReadTransformCase scans the next row of a transform file. Data file
// names are resolved against dir. It returns io.EOF after the last row.
func ReadTransformCase(rd *seq.Reader, dir string) (TransformCase, error) {
	var (
		tc      TransformCase
		typ     int
		in, ref string
	)

	if _, err := rd.Scan("%d %d %d %s %s %g", &typ, &tc.N, &tc.Scale, &in, &ref, &tc.MinSINAD); err != nil {
		return tc, err
	}

	tc.Type = CaseType(typ)
	tc.Input = resolve(dir, in)
	tc.Reference = resolve(dir, ref)

	if tc.Type < CaseForward || tc.Type > CaseReconstruction {
		return tc, fmt.Errorf("%w: %s: case type %d", ErrMalformedSeq, rd.Name(), typ)
	}

	if tc.N < 2 || !imath.IsPowerOf2(tc.N) {
		return tc, fmt.Errorf("%w: %s: transform size %d", ErrMalformedSeq, rd.Name(), tc.N)
	}

	return tc, nil
}

func resolve(dir, name string) string {
	if name == "-" || filepath.IsAbs(name) {
		return name
	}

	return filepath.Join(dir, name)
}

// stage is one transform call of a case: the function itself, or the
// function followed by its partner for reconstruction.
type stage struct {
	id  string
	t   *fut.Transform
	set *twiddle.Set
}

// call runs one invocation and checks the memory contract: guards of both
// vectors, the input checksum when checkInput is set and every twiddle
// table of the stage.
func (st stage) call(m *cpu.Meter, y, x *vec.Vector, n, scale int, checkInput bool) (int, error) {
	tab, err := st.set.Lookup(n, st.t.Strided)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", ErrNotTested, st.id, err)
	}

	var crc uint32
	if checkInput {
		crc = x.Checksum()
	}

	m.Begin()
	shift, err := st.t.Call(y, x, tab, n, scale)
	m.End()

	if err != nil {
		return 0, fmt.Errorf("%s: %w", st.id, err)
	}

	if err := errors.Join(x.CheckGuards(), y.CheckGuards()); err != nil {
		return 0, fmt.Errorf("%w: %s: %w", ErrBufferCorruption, st.id, err)
	}

	if checkInput && !x.VerifyUnchanged(crc) {
		return 0, fmt.Errorf("%w: %s modified its input", ErrBufferCorruption, st.id)
	}

	if err := st.set.Verify(); err != nil {
		return 0, fmt.Errorf("%w: %s: %w", ErrBufferCorruption, st.id, err)
	}

	return shift, nil
}

// caseBuffers holds the vectors of one case. plain[0] is the input and
// plain[i+1] the output of stage i; shared backs the same chain as views
// of a single allocation for in-place calls.
type caseBuffers struct {
	plain  []*vec.Vector
	shared *vec.Vector
	views  []*vec.Vector
}

func (b *caseBuffers) chain(inPlace bool) []*vec.Vector {
	if inPlace {
		return b.views
	}

	return b.plain
}

func (b *caseBuffers) free() error {
	vs := append([]*vec.Vector(nil), b.plain...)
	if b.shared != nil {
		vs = append(vs, b.shared)
	}

	b.plain, b.shared, b.views = nil, nil, nil

	return vec.FreeAll(vs...)
}

// transformRun drives one transform function through a file.
type transformRun struct {
	rc    *Context
	id    string
	t     *fut.Transform
	desc  Descriptor
	opts  Options
	log   logging.LeveledLogger
	meter *cpu.Meter
}

func (r *transformRun) run(ctx context.Context, rd *seq.Reader, rep *Report) error {
	dir := filepath.Dir(rd.Name())

	for row := 1; ; row++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		tc, err := ReadTransformCase(rd, dir)
		if errors.Is(err, io.EOF) {
			return nil
		}

		var res CaseResult

		if err != nil {
			res = newCaseResult(row, "header")
			res.finish(err)

			if skipErr := rd.SkipLine(); skipErr != nil {
				err = io.EOF
			}
		} else {
			tc.Row = row
			res = r.runCase(ctx, tc)
		}

		rep.add(res)
		logResult(r.log, r.rc.RunID.String(), r.id, res)

		if errors.Is(err, io.EOF) || res.Status == StatusFail && r.opts.StopOnFirstFailure {
			return nil
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
	}
}

func (r *transformRun) runCase(ctx context.Context, tc TransformCase) CaseResult {
	res := newCaseResult(tc.Row, tc.name())
	q := validate.NewQuality()

	err := r.exec(ctx, tc, q, &res.Frames)

	if q.Frames() > 0 {
		res.SINAD, res.EFB = q.MinSINAD(), q.EFB()
	}

	if err == nil && res.SINAD < tc.MinSINAD {
		err = fmt.Errorf("%w: SINAD %.2f dB below %.2f dB (efb %d)", ErrAccuracy, res.SINAD, tc.MinSINAD, res.EFB)
	}

	res.finish(err)

	if res.Status == StatusPass && q.Frames() == 0 {
		res.Detail = fmt.Sprintf("no frame scored: %d silent reference frames", res.Frames)
		r.log.Warnf("run %s: %s row %d: %s", r.rc.RunID, r.id, tc.Row, res.Detail)
	}

	return res
}

// stages resolves the calls a case makes.
func (r *transformRun) stages(tc TransformCase) ([]stage, error) {
	first, err := r.stage(r.id, r.t)
	if err != nil {
		return nil, err
	}

	switch tc.Type {
	case CaseForward, CaseInverse:
		want := fut.Forward
		if tc.Type == CaseInverse {
			want = fut.Inverse
		}

		if r.t.Direction != want {
			return nil, fmt.Errorf("%w: %s case on a %s transform", ErrNotTested, tc.Type, r.t.Direction)
		}

		return []stage{first}, nil
	default:
		if r.t.Direction != fut.Forward {
			return nil, fmt.Errorf("%w: reconstruction starts from a forward transform", ErrNotTested)
		}

		if r.rc.Registry == nil {
			return nil, fmt.Errorf("%w: no registry to resolve the partner of %s", ErrNotTested, r.id)
		}

		p, pt, err := r.rc.Registry.Partner(fut.Entry{ID: r.id, Func: r.t})
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrNotTested, err)
		}

		if err := p.Available(r.rc.Config.Features); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrNotTested, err)
		}

		if pt.FramesPerCall() != r.t.FramesPerCall() || pt.Category != r.t.Category || pt.Data != r.t.Data {
			return nil, fmt.Errorf("%w: partner %s does not mirror %s", ErrNotTested, p.ID, r.id)
		}

		second, err := r.stage(p.ID, pt)
		if err != nil {
			return nil, err
		}

		return []stage{first, second}, nil
	}
}

func (r *transformRun) stage(id string, t *fut.Transform) (stage, error) {
	set, err := r.rc.twiddleSet(id, t.Category.TwiddleKind(), t.Twiddle)
	if err != nil {
		return stage{}, err
	}

	return stage{id: id, t: t, set: set}, nil
}

// modes reports which call modes the case may use.
func (r *transformRun) modes(stages []stage) (outOfPlace, inPlace bool) {
	m := r.desc.Modes
	if m == 0 {
		m = ModeOutOfPlace | ModeInPlace
	}

	inPlace = m&ModeInPlace != 0
	for _, st := range stages {
		inPlace = inPlace && st.t.InPlace
	}

	return m&ModeOutOfPlace != 0, inPlace
}

// alloc creates the vectors of a case.
func (r *transformRun) alloc(stages []stage, n int, outOfPlace, inPlace bool) (*caseBuffers, error) {
	aligned := r.rc.Config.Aligned
	frames := r.t.FramesPerCall()

	formats := []vec.Format{stages[0].t.InFormat()}
	counts := []int{frames * stages[0].t.InLen(n)}

	for _, st := range stages {
		formats = append(formats, st.t.OutFormat())
		counts = append(counts, frames*st.t.OutLen(n))
	}

	b := &caseBuffers{}

	if outOfPlace {
		for i, f := range formats {
			v, err := r.rc.Store.Alloc(f, counts[i], aligned, nil)
			if err != nil {
				return nil, fmt.Errorf("%w: %w", ErrAllocation, errors.Join(err, b.free()))
			}

			b.plain = append(b.plain, v)
		}
	}

	if inPlace {
		comps := 0
		for i, f := range formats {
			comps = max(comps, counts[i]*f.Components())
		}

		v, err := r.rc.Store.Alloc(r.t.Data, comps, aligned, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrAllocation, errors.Join(err, b.free()))
		}

		b.shared = v

		for i, f := range formats {
			view, err := v.Reinterpret(f, counts[i])
			if err != nil {
				return nil, errors.Join(err, b.free())
			}

			b.views = append(b.views, view)
		}
	}

	return b, nil
}

func (r *transformRun) exec(ctx context.Context, tc TransformCase, q *validate.Quality, scored *int) (err error) {
	stages, err := r.stages(tc)
	if err != nil {
		return err
	}

	if r.t.ScaleMethods > 0 && (tc.Scale < 0 || tc.Scale >= r.t.ScaleMethods) {
		return fmt.Errorf("%w: scale method %d of %d", ErrNotTested, tc.Scale, r.t.ScaleMethods)
	}

	outOfPlace, inPlace := r.modes(stages)
	if !outOfPlace && !inPlace {
		return fmt.Errorf("%w: no call mode left for %s", ErrNotTested, r.id)
	}

	in, err := openStream[int16](tc.Input)
	if err != nil {
		return err
	}
	defer in.Close()

	var ref *stream[float64]

	if tc.Type != CaseReconstruction {
		ref, err = openStream[float64](tc.Reference)
		if err != nil {
			return err
		}
		defer ref.Close()
	}

	b, err := r.alloc(stages, tc.N, outOfPlace, inPlace)
	if err != nil {
		return err
	}

	defer func() {
		if ferr := b.free(); ferr != nil {
			err = errors.Join(fmt.Errorf("%w: %w", ErrBufferCorruption, ferr), err)
		}

		for _, st := range stages {
			if n, rerr := st.set.Repair(); rerr != nil {
				err = errors.Join(err, rerr)
			} else if n > 0 {
				r.log.Warnf("run %s: %s: reloaded %d twiddle tables", r.rc.RunID, st.id, n)
			}
		}
	}()

	var (
		n        = tc.N
		frames   = r.t.FramesPerCall()
		last     = stages[len(stages)-1].t
		inComps  = stages[0].t.InLen(n) * stages[0].t.InFormat().Components()
		outComps = last.OutLen(n) * last.OutFormat().Components()
		bexp     = r.t.InputBlockExp(n, tc.Scale)

		pcm       = make([]int16, frames*inComps)
		shifts    = make([]int, frames)
		outShifts = make([]int, frames)
		got       = make([]float64, frames*outComps)
		want      = make([]float64, outComps)
	)

	if r.desc.BlockExp > 0 {
		bexp = r.desc.BlockExp
	}

	gainLog2 := 0
	if len(stages) > 1 {
		gainLog2 = imath.Log2(n)
		if r.t.Category == fut.DCT {
			gainLog2--
		}
	}

	for call := 0; ; call++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		k, err := readFrames(in, pcm, inComps, frames)
		if err != nil {
			return err
		}

		if k == 0 {
			if call == 0 {
				return fmt.Errorf("%w: %s holds no frame", ErrMalformedSeq, tc.Input)
			}

			return nil
		}

		clear(pcm[k*inComps:])

		chain := b.chain(inPlace && (!outOfPlace || call%2 == 1))
		x := chain[0]

		if frames == 1 {
			shifts[0], err = convert.FromPCM16(x, pcm, bexp)
		} else {
			err = convert.FromPCM16Blockwise(x, pcm, stages[0].t.InLen(n), frames, bexp, shifts)
		}

		if err != nil {
			return err
		}

		applied := 0

		for i, st := range stages {
			checkInput := !st.t.ReusesInput && !sameStorage(chain[i], chain[i+1])

			s, err := st.call(r.meter, chain[i+1], chain[i], n, tc.Scale, checkInput)
			if err != nil {
				return err
			}

			applied += s
		}

		for f := range frames {
			outShifts[f] = shifts[f] - applied + gainLog2
		}

		y := chain[len(chain)-1]

		if frames == 1 {
			err = convert.ToFloat64(got, y, outShifts[0])
		} else {
			err = convert.ToFloat64Blockwise(got, y, last.OutLen(n), frames, outShifts)
		}

		if err != nil {
			return err
		}

		for f := range k {
			if ref == nil {
				convert.PCM16ToFloat64(want, pcm[f*inComps:(f+1)*inComps])
			} else {
				ok, err := ref.next(want)
				if err != nil {
					return err
				}

				if !ok {
					return fmt.Errorf("%w: %s ends before frame %d of %s", ErrMalformedSeq, tc.Reference, *scored, tc.Input)
				}
			}

			sinad, ok := q.Frame(want, got[f*outComps:(f+1)*outComps])
			*scored++

			if r.opts.Verbose && ok {
				r.log.Debugf("run %s: %s row %d frame %d: sinad %.2f dB", r.rc.RunID, r.id, tc.Row, *scored-1, sinad)
			}
		}

		if r.opts.Fullness&Sanity != 0 {
			return nil
		}
	}
}

// sameStorage reports whether two vectors share an allocation.
func sameStorage(a, b *vec.Vector) bool {
	return a == b || a.IsView() && b.IsView()
}

// readFrames reads up to frames frames of per samples into pcm and returns
// how many were complete.
func readFrames(s *stream[int16], pcm []int16, per, frames int) (int, error) {
	for f := range frames {
		ok, err := s.next(pcm[f*per : (f+1)*per])
		if err != nil {
			return f, err
		}

		if !ok {
			return f, nil
		}
	}

	return frames, nil
}
