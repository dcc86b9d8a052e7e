package main

import (
	"context"
	"io"
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/pion/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-testeng/internal/engine"
	"github.com/cwbudde/algo-testeng/internal/fut"
	"github.com/cwbudde/algo-testeng/internal/golden"
	"github.com/cwbudde/algo-testeng/internal/samples"
)

func TestParseSizes(t *testing.T) {
	t.Parallel()

	sizes, err := parseSizes(" 16, 64,,256")
	require.NoError(t, err)
	assert.Equal(t, []int{16, 64, 256}, sizes)

	for _, bad := range []string{"", "12", "1", "x"} {
		_, err := parseSizes(bad)
		assert.Error(t, err, bad)
	}
}

func TestModelsAgreeWithSamples(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	reg := fut.NewRegistry()
	samples.Register(reg)

	rc := engine.NewContext(reg, engine.Config{Seed: 5, MinTwiddleLog2: 1, MaxTwiddleLog2: 4},
		&logging.DefaultLoggerFactory{Writer: io.Discard})

	defer func() { assert.NoError(t, rc.Close()) }()

	rnd := rand.New(rand.NewSource(11))

	for _, m := range dataModels() {
		cases := make([]golden.DataCase, 40)
		for i := range cases {
			cases[i] = m.gen(rnd, i+1)
		}

		path := filepath.Join(dir, m.id+".seq")
		require.NoError(t, golden.WriteDataSeq(path, m.id, cases))

		e, ok := reg.Lookup(m.id)
		require.True(t, ok, m.id)

		rep, err := engine.RunTestFile(context.Background(), rc, e, engine.Descriptor{}, path, engine.Options{Fullness: engine.Full})
		require.NoError(t, err)

		pass, fail, skipped := rep.Counts()
		assert.Equal(t, [3]int{40, 0, 0}, [3]int{pass, fail, skipped}, "%s: %v", m.id, rep.Cases)
	}
}
