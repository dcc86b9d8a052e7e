package engine

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/pion/logging"

	"github.com/cwbudde/algo-testeng/internal/cpu"
	"github.com/cwbudde/algo-testeng/internal/fut"
	"github.com/cwbudde/algo-testeng/internal/seq"
	"github.com/cwbudde/algo-testeng/internal/validate"
	"github.com/cwbudde/algo-testeng/internal/vec"
)

// CaseArgs are the dimensions and tag of one data-driven case, read from
//
//	<id> <caseType> <M> <N> <P> <L>
type CaseArgs struct {
	fut.Args
	ID   int
	Type CaseType
}

func (a CaseArgs) String() string {
	return fmt.Sprintf("type=%d M=%d N=%d P=%d L=%d", a.Type, a.M, a.N, a.P, a.L)
}

// ReadCaseArgs scans the header of the next case.
func ReadCaseArgs(rd *seq.Reader) (CaseArgs, error) {
	var (
		a   CaseArgs
		typ int
	)

	if _, err := rd.Scan("%d %d %d %d %d %d", &a.ID, &typ, &a.M, &a.N, &a.P, &a.L); err != nil {
		return a, err
	}

	if typ < 0 || a.M < 0 || a.N < 0 || a.P < 0 || a.L < 0 {
		return a, fmt.Errorf("%w: %s: case %d has negative fields", ErrMalformedSeq, rd.Name(), a.ID)
	}

	a.Type = CaseType(typ)

	return a, nil
}

// dataRun drives a scalar, vector or object function through a file of
// cases, each holding its inputs and a lower and upper bound vector.
type dataRun struct {
	rc    *Context
	id    string
	f     fut.Function
	opts  Options
	log   logging.LeveledLogger
	meter *cpu.Meter
}

func (r *dataRun) run(ctx context.Context, rd *seq.Reader, rep *Report) error {
	var count int

	if _, err := rd.Scan("%d", &count); err != nil {
		if errors.Is(err, io.EOF) {
			err = fmt.Errorf("%w: %s holds no case count", ErrMalformedSeq, rd.Name())
		}

		res := newCaseResult(0, "header")
		res.finish(err)
		rep.add(res)
		logResult(r.log, r.rc.RunID.String(), r.id, res)

		return nil
	}

	for i := range count {
		if err := ctx.Err(); err != nil {
			return err
		}

		res, lost := r.runCase(rd, i+1)
		rep.add(res)
		logResult(r.log, r.rc.RunID.String(), r.id, res)

		// A case that failed to read leaves the reader mid-case.
		if lost || res.Status == StatusFail && r.opts.StopOnFirstFailure || r.opts.Fullness&Sanity != 0 {
			return nil
		}
	}

	return nil
}

func (r *dataRun) runCase(rd *seq.Reader, index int) (CaseResult, bool) {
	a, err := ReadCaseArgs(rd)
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = fmt.Errorf("%w: %s ends before case %d", ErrMalformedSeq, rd.Name(), index)
		}

		res := newCaseResult(index, "header")
		res.finish(err)

		return res, true
	}

	res := newCaseResult(a.ID, a.String())
	lost, err := r.exec(rd, a)
	res.finish(err)

	return res, lost
}

// exec runs one case. lost reports that the case data could not be read
// completely.
func (r *dataRun) exec(rd *seq.Reader, a CaseArgs) (lost bool, err error) {
	ports, outPort, err := fut.Ports(r.f, a.Args)
	if err != nil {
		return true, err
	}

	var vs []*vec.Vector

	defer func() {
		if ferr := vec.FreeAll(vs...); ferr != nil {
			err = errors.Join(fmt.Errorf("%w: %w", ErrBufferCorruption, ferr), err)
		}
	}()

	alloc := func(p fut.Port) (*vec.Vector, error) {
		v, err := r.rc.Store.Alloc(p.Format, p.Len, r.rc.Config.Aligned, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrAllocation, err)
		}

		vs = append(vs, v)

		return v, nil
	}

	ins := make([]*vec.Vector, len(ports))
	for i, p := range ports {
		if ins[i], err = alloc(p); err != nil {
			return true, err
		}
	}

	out, err := alloc(outPort)
	if err != nil {
		return true, err
	}

	lo, err := alloc(outPort)
	if err != nil {
		return true, err
	}

	hi, err := alloc(outPort)
	if err != nil {
		return true, err
	}

	if err := rd.ReadVectors(ins...); err != nil {
		return true, fmt.Errorf("inputs: %w", err)
	}

	if err := rd.ReadVectors(lo, hi); err != nil {
		return true, fmt.Errorf("bounds: %w", err)
	}

	crcs := make([]uint32, len(ins))
	for i, v := range ins {
		crcs[i] = v.Checksum()
	}

	if err := r.call(ins, out, a.Args); err != nil {
		return false, err
	}

	for _, v := range vs {
		if err := v.CheckGuards(); err != nil {
			return false, fmt.Errorf("%w: %s: %w", ErrBufferCorruption, r.id, err)
		}
	}

	for i, v := range ins {
		if !v.VerifyUnchanged(crcs[i]) {
			return false, fmt.Errorf("%w: %s modified input %d", ErrBufferCorruption, r.id, i)
		}
	}

	ok, first, err := validate.CheckRange(out, lo, hi)
	if err != nil {
		return false, err
	}

	if !ok {
		return false, fmt.Errorf("%w: %s", ErrAccuracy, validate.Failure(out, lo, hi, first))
	}

	return false, nil
}

func (r *dataRun) call(ins []*vec.Vector, out *vec.Vector, a fut.Args) error {
	switch f := r.f.(type) {
	case *fut.Scalar:
		r.meter.Begin()
		defer r.meter.End()

		return f.Apply(out, ins[0], a)
	case *fut.Vector:
		r.meter.Begin()
		defer r.meter.End()

		return f.Call(out, ins[0], a)
	case *fut.Object:
		inst, err := f.Alloc(a)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrAllocation, err)
		}

		if err := inst.Init(ins[0]); err != nil {
			return err
		}

		r.meter.Begin()
		defer r.meter.End()

		return inst.Process(out, ins[1])
	default:
		return fmt.Errorf("%w: %T", fut.ErrShape, f)
	}
}
