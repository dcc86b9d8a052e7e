package golden

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-testeng/internal/engine"
	"github.com/cwbudde/algo-testeng/internal/fut"
	"github.com/cwbudde/algo-testeng/internal/seq"
	"github.com/cwbudde/algo-testeng/internal/vec"
)

func TestStreamPCM(t *testing.T) {
	t.Parallel()

	s := Stream{Category: fut.RealFFT, Direction: fut.Inverse, N: 16, Frames: 3, Amplitude: 0.5, Seed: 4}

	pcm := s.PCM()
	require.Len(t, pcm, 3*18)
	assert.Equal(t, pcm, s.PCM(), "same seed, same frames")

	for f := range 3 {
		assert.Zero(t, pcm[f*18+1], "dc imaginary part")
		assert.Zero(t, pcm[f*18+17], "nyquist imaginary part")
	}

	for _, v := range pcm {
		assert.LessOrEqual(t, int(v), 16384)
		assert.GreaterOrEqual(t, int(v), -16384)
	}

	assert.Equal(t, "rfft_inverse_16_s4", s.Name())
}

func TestStreamWrite(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s := Stream{Category: fut.ComplexFFT, Direction: fut.Forward, N: 8, Frames: 2, Amplitude: 1, Seed: 1}

	in, ref, err := s.Write(dir)
	require.NoError(t, err)

	pcm, err := os.ReadFile(filepath.Join(dir, in))
	require.NoError(t, err)
	assert.Len(t, pcm, 2*16*2)

	golden, err := os.ReadFile(filepath.Join(dir, ref))
	require.NoError(t, err)
	assert.Len(t, golden, 2*16*8)

	_, _, err = Stream{Category: fut.Category(9), Direction: fut.Forward, N: 8, Frames: 1, Amplitude: 1}.Write(dir)
	assert.Error(t, err)
}

func TestWriteSeqRoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "t.seq")

	want := []engine.TransformCase{
		{Type: engine.CaseForward, N: 64, Scale: 1, Input: "a.pcm", Reference: "a.ref", MinSINAD: 60.5},
		{Type: engine.CaseReconstruction, N: 32, Input: "b.pcm", MinSINAD: 40},
	}
	require.NoError(t, WriteSeq(path, "round trip", want))

	rd, err := seq.Open(path)
	require.NoError(t, err)

	defer rd.Close()

	for i, w := range want {
		got, err := engine.ReadTransformCase(rd, dir)
		require.NoError(t, err)

		assert.Equal(t, w.Type, got.Type, "row %d", i)
		assert.Equal(t, w.N, got.N)
		assert.Equal(t, w.Scale, got.Scale)
		assert.Equal(t, filepath.Join(dir, w.Input), got.Input)
		assert.Equal(t, w.MinSINAD, got.MinSINAD)
	}

	_, err = engine.ReadTransformCase(rd, dir)
	assert.ErrorIs(t, err, io.EOF)
}

func TestWriteDataSeqRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "d.seq")

	require.NoError(t, WriteDataSeq(path, "data", []DataCase{{
		Args:   engine.CaseArgs{ID: 9, Type: 1, Args: fut.Args{N: 2}},
		Inputs: [][]string{Float64(0.5, -2)},
		Lo:     Float32(-0.5, 2),
		Hi:     Float32(-0.5, 2),
	}}))

	rd, err := seq.Open(path)
	require.NoError(t, err)

	defer rd.Close()

	var count int

	_, err = rd.Scan("%d", &count)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	a, err := engine.ReadCaseArgs(rd)
	require.NoError(t, err)
	assert.Equal(t, 9, a.ID)
	assert.Equal(t, 2, a.N)

	st := vec.NewStore(1)
	x, err := st.Alloc(vec.Float64, 2, true, nil)
	require.NoError(t, err)

	lo, err := st.Alloc(vec.Float32, 2, true, nil)
	require.NoError(t, err)

	require.NoError(t, rd.ReadVectors(x, lo))
	assert.Equal(t, []float64{0.5, -2}, vec.MustSlice[float64](x))
	assert.Equal(t, []float32{-0.5, 2}, vec.MustSlice[float32](lo))
	assert.NoError(t, vec.FreeAll(x, lo))
}

func TestTokens(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"-3", "7"}, Int[int16](-3, 7))
	assert.Equal(t, []string{"3f800000"}, Float32(1))
	assert.Equal(t, []string{"bff0000000000000"}, Float64(-1))
}

func TestWriteSuite(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	reg := fut.NewRegistry()
	reg.MustRegister(
		fut.Entry{ID: "fwd", Func: fut.NewTransform[complex64, complex64](fut.ComplexFFT, fut.Forward, vec.Float32, vec.Float32,
			fut.TransformOptions{Partner: "inv"}, nil)},
		fut.Entry{ID: "inv", Func: fut.NewTransform[complex64, complex64](fut.ComplexFFT, fut.Inverse, vec.Float32, vec.Float32,
			fut.TransformOptions{Partner: "fwd"}, nil)},
		fut.Entry{ID: "neg", Func: fut.NewVector[int16, int16](vec.Q15, vec.Q15, nil)},
	)

	rows, err := WriteSuite(dir, reg, SuiteOptions{Sizes: []int{8, 16}, Frames: 2, Amplitude: 0.5, Seed: 3})
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, engine.TableRow{Function: "fwd", File: "fwd.seq", Levels: engine.Brief | engine.Sanity}, rows[0])
	assert.Equal(t, engine.TableRow{Function: "fwd", File: "fwd_full.seq", Levels: engine.Full}, rows[1])

	rd, err := seq.Open(filepath.Join(dir, "fwd_full.seq"))
	require.NoError(t, err)

	defer rd.Close()

	var types []engine.CaseType

	for {
		tc, err := engine.ReadTransformCase(rd, dir)
		if err != nil {
			require.ErrorIs(t, err, io.EOF)
			break
		}

		types = append(types, tc.Type)
		assert.FileExists(t, tc.Input)
	}

	assert.Equal(t, []engine.CaseType{
		engine.CaseForward, engine.CaseReconstruction, engine.CaseForward, engine.CaseReconstruction,
	}, types)

	_, err = WriteSuite(dir, reg, SuiteOptions{})
	assert.Error(t, err)
}

func TestMinSINAD(t *testing.T) {
	t.Parallel()

	q15 := fut.NewTransform[complex64, complex64](fut.ComplexFFT, fut.Forward, vec.Q15, vec.Q15, fut.TransformOptions{}, nil)

	assert.Equal(t, 30.0, MinSINAD(q15, engine.CaseForward, 0))
	assert.Equal(t, 40.0, MinSINAD(q15, engine.CaseForward, 1))
	assert.Equal(t, 20.0, MinSINAD(q15, engine.CaseReconstruction, 1))
}
