package main

import (
	"math"
	"math/rand"

	"github.com/cwbudde/algo-testeng/internal/engine"
	"github.com/cwbudde/algo-testeng/internal/fut"
	"github.com/cwbudde/algo-testeng/internal/golden"
	"github.com/cwbudde/algo-testeng/internal/samples"
)

// model generates one data-driven case with its expected bounds, computed
// independently of the sample implementation.
type model struct {
	id  string
	gen func(rnd *rand.Rand, id int) golden.DataCase
}

func dataModels() []model {
	return []model{
		{samples.VecNegQ15, negCase},
		{samples.VecAbsF32, absCase},
		{samples.VecSumQ31, sumCase},
		{samples.SclSignI32, signCase},
		{samples.ObjGainQ15, gainCase},
	}
}

func caseArgs(id int, a fut.Args) engine.CaseArgs {
	return engine.CaseArgs{ID: id, Type: 1, Args: a}
}

// q15 draws a sample, full scale endpoints included now and then.
func q15(rnd *rand.Rand) int16 {
	switch rnd.Intn(16) {
	case 0:
		return math.MinInt16
	case 1:
		return math.MaxInt16
	default:
		return int16(rnd.Intn(1<<16) - 1<<15)
	}
}

func clamp16(v float64) int16 {
	return int16(math.Max(math.MinInt16, math.Min(math.MaxInt16, v)))
}

func negCase(rnd *rand.Rand, id int) golden.DataCase {
	n := 1 + rnd.Intn(32)
	x := make([]int16, n)
	y := make([]int16, n)

	for i := range x {
		x[i] = q15(rnd)
		y[i] = clamp16(-float64(x[i]))
	}

	return golden.DataCase{
		Args:   caseArgs(id, fut.Args{N: n}),
		Inputs: [][]string{golden.Int(x...)},
		Lo:     golden.Int(y...),
		Hi:     golden.Int(y...),
	}
}

func absCase(rnd *rand.Rand, id int) golden.DataCase {
	n := 1 + rnd.Intn(32)
	x := make([]float32, n)
	y := make([]float32, n)

	for i := range x {
		x[i] = float32(rnd.NormFloat64() * 100)
		y[i] = float32(math.Abs(float64(x[i])))
	}

	return golden.DataCase{
		Args:   caseArgs(id, fut.Args{N: n}),
		Inputs: [][]string{golden.Float32(x...)},
		Lo:     golden.Float32(y...),
		Hi:     golden.Float32(y...),
	}
}

func sumCase(rnd *rand.Rand, id int) golden.DataCase {
	n := 1 + rnd.Intn(64)
	x := make([]int16, n)

	var acc float64

	for i := range x {
		x[i] = q15(rnd)
		acc += float64(x[i])
	}

	sum := int32(math.Max(math.MinInt32, math.Min(math.MaxInt32, acc*65536)))

	return golden.DataCase{
		Args:   caseArgs(id, fut.Args{N: n}),
		Inputs: [][]string{golden.Int(x...)},
		Lo:     golden.Int(sum),
		Hi:     golden.Int(sum),
	}
}

func signCase(rnd *rand.Rand, id int) golden.DataCase {
	n := 1 + rnd.Intn(32)
	x := make([]int32, n)
	y := make([]int16, n)

	for i := range x {
		if rnd.Intn(8) > 0 {
			x[i] = int32(rnd.Uint32())
		}

		switch {
		case x[i] > 0:
			y[i] = 1
		case x[i] < 0:
			y[i] = -1
		}
	}

	return golden.DataCase{
		Args:   caseArgs(id, fut.Args{N: n}),
		Inputs: [][]string{golden.Int(x...)},
		Lo:     golden.Int(y...),
		Hi:     golden.Int(y...),
	}
}

// gainCase allows either neighbour of the exact product, so any rounding
// mode passes.
func gainCase(rnd *rand.Rand, id int) golden.DataCase {
	m := 1 + rnd.Intn(4)
	n := m * (1 + rnd.Intn(8))

	g := make([]int16, m)
	for i := range g {
		g[i] = q15(rnd)
	}

	x := make([]int16, n)
	lo := make([]int16, n)
	hi := make([]int16, n)

	for i := range x {
		x[i] = q15(rnd)

		exact := float64(x[i]) * float64(g[i%m]) / 32768
		lo[i], hi[i] = clamp16(math.Floor(exact)), clamp16(math.Ceil(exact))
	}

	return golden.DataCase{
		Args:   caseArgs(id, fut.Args{M: m, N: n}),
		Inputs: [][]string{golden.Int(g...), golden.Int(x...)},
		Lo:     golden.Int(lo...),
		Hi:     golden.Int(hi...),
	}
}
