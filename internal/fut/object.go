package fut

import (
	"fmt"

	"github.com/cwbudde/algo-testeng/internal/vec"
)

// Object is a stateful function driven through alloc, init and process.
// Init consumes a parameter vector of ParamLen elements; process maps an
// input of InLen elements to an output of OutLen elements.
type Object struct {
	Params, In, Out         vec.Format
	ParamLen, InLen, OutLen Size

	alloc   func(a Args) (any, error)
	init    func(state any, params *vec.Vector, a Args) error
	process func(state any, out, in *vec.Vector, a Args) error
}

// NewObject wraps a typed triad. alloc creates the state for the given
// dimensions, init loads parameters into it and process runs one block. If
// any of the three is nil the object is not implemented.
func NewObject[S any, P, In, Out vec.Element](params, in, out vec.Format,
	alloc func(a Args) (*S, error),
	init func(s *S, p []P, a Args) error,
	process func(s *S, y []Out, x []In, a Args),
) *Object {
	o := &Object{
		Params: params, In: in, Out: out,
		ParamLen: SizeM, InLen: SizeN, OutLen: SizeN,
	}

	if alloc == nil || init == nil || process == nil {
		return o
	}

	o.alloc = func(a Args) (any, error) {
		return alloc(a)
	}

	o.init = func(state any, pv *vec.Vector, a Args) error {
		p, err := vec.Slice[P](pv)
		if err != nil {
			return err
		}

		return init(state.(*S), p, a)
	}

	o.process = func(state any, outv, inv *vec.Vector, a Args) error {
		x, err := vec.Slice[In](inv)
		if err != nil {
			return err
		}

		y, err := vec.Slice[Out](outv)
		if err != nil {
			return err
		}

		process(state.(*S), y, x, a)

		return nil
	}

	return o
}

func (*Object) Kind() Kind { return KindObject }

func (o *Object) Implemented() bool { return o.alloc != nil }

func (*Object) sealed() {}

// Instance is an allocated object state.
type Instance struct {
	obj   *Object
	state any
	args  Args
}

// Alloc creates a new instance for dimensions a.
func (o *Object) Alloc(a Args) (*Instance, error) {
	if o.alloc == nil {
		return nil, ErrMissing
	}

	s, err := o.alloc(a)
	if err != nil {
		return nil, fmt.Errorf("alloc: %w", err)
	}

	return &Instance{obj: o, state: s, args: a}, nil
}

// Init loads the parameter vector.
func (in *Instance) Init(params *vec.Vector) error {
	o := in.obj

	if err := need(params, o.Params, sizeOr(o.ParamLen, SizeM)(in.args), "params"); err != nil {
		return err
	}

	if err := o.init(in.state, params, in.args); err != nil {
		return fmt.Errorf("init: %w", err)
	}

	return nil
}

// Process runs one block.
func (in *Instance) Process(out, x *vec.Vector) error {
	o := in.obj

	if err := need(x, o.In, sizeOr(o.InLen, SizeN)(in.args), "input"); err != nil {
		return err
	}

	if err := need(out, o.Out, sizeOr(o.OutLen, SizeN)(in.args), "output"); err != nil {
		return err
	}

	return o.process(in.state, out, x, in.args)
}
