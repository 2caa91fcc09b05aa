// SPDX-License-Identifier: MIT
package bench_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/batchla/batch"
	"github.com/katalvlaran/batchla/bench"
	"github.com/katalvlaran/batchla/parallel"
)

// spdPair returns a seeded SPD batch and right-hand sides.
func spdPair(tb testing.TB, seed int64, count, m int) (a, b *batch.Dense) {
	tb.Helper()
	rng := rand.New(rand.NewSource(seed))
	a, err := batch.RandomSPD(rng, count, m, 0.2)
	require.NoError(tb, err)
	b, err = batch.Random(rng, count, m, 1)
	require.NoError(tb, err)

	return a, b
}

func TestRun_AllEnginesOnSPD(t *testing.T) {
	a, b := spdPair(t, 1, 32, 4)
	a0, b0 := a.Clone(), b.Clone()

	rep, err := bench.Run(a, b)
	require.NoError(t, err)
	assert.Equal(t, bench.AllEngines(), rep.Engines())

	for _, e := range rep.Engines() {
		st := rep[e]
		assert.Zero(t, st.FailedCount, e)
		assert.Less(t, st.MaxResidual, 1e-10, e)
		assert.GreaterOrEqual(t, st.ElapsedSeconds, 0.0, e)
		assert.Less(t, st.MaxDivergence, 1e-9, e)
	}
	assert.Zero(t, rep[bench.EngineLU].MaxDivergence, "reference engine")

	assert.Equal(t, a0.Data(), a.Data(), "inputs untouched without WithInPlace")
	assert.Equal(t, b0.Data(), b.Data())

	fastest, ok := rep.Fastest()
	assert.True(t, ok)
	assert.True(t, fastest.Valid())
}

// TestRun_Rectangular: LU and Cholesky are skipped for least-squares input.
func TestRun_Rectangular(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	a, _ := batch.Random(rng, 4, 6, 2)
	b, _ := batch.Random(rng, 4, 6, 1)

	rep, err := bench.Run(a, b)
	require.NoError(t, err)
	assert.Equal(t, []bench.Engine{bench.EngineQR, bench.EngineSVD}, rep.Engines())

	_, err = bench.Run(a, b, bench.WithEngines(bench.EngineLU))
	require.ErrorIs(t, err, batch.ErrShapeMismatch)
}

// TestRun_FailuresSurface: a singular element is counted, never silently dropped.
func TestRun_FailuresSurface(t *testing.T) {
	a, b := spdPair(t, 5, 4, 2)
	copy(a.Raw(1), []float64{1, 2, 2, 4})

	rep, err := bench.Run(a, b, bench.WithEngines(bench.EngineCholesky, bench.EngineLU))
	require.NoError(t, err)
	assert.Equal(t, []bench.Engine{bench.EngineLU, bench.EngineCholesky}, rep.Engines())
	assert.Equal(t, 1, rep[bench.EngineLU].FailedCount)
	assert.Equal(t, 1, rep[bench.EngineCholesky].FailedCount)
	assert.Less(t, rep[bench.EngineLU].MaxResidual, 1e-10)

	_, ok := rep.Fastest()
	assert.False(t, ok)
}

// TestRun_InPlace: later engines see the overwritten buffers and the report shows it.
func TestRun_InPlace(t *testing.T) {
	a, b := spdPair(t, 7, 8, 3)
	a0 := a.Clone()

	rep, err := bench.Run(a, b, bench.WithInPlace(), bench.WithEngines(bench.EngineLU, bench.EngineQR))
	require.NoError(t, err)
	assert.NotEqual(t, a0.Data(), a.Data())
	assert.Less(t, rep[bench.EngineLU].MaxResidual, 1e-10)
	assert.Greater(t, rep[bench.EngineQR].MaxResidual, 1e-6, "QR solved the invalidated input")
}

// TestRun_DefaultSkipsCholeskyOnAsymmetric: Cholesky reads only the lower
// triangle, so the default set leaves it out for non-symmetric input.
func TestRun_DefaultSkipsCholeskyOnAsymmetric(t *testing.T) {
	a, err := batch.New(1, 2, 2, []float64{4, 100, 1, 3})
	require.NoError(t, err)
	b, err := batch.New(1, 2, 1, []float64{1, 1})
	require.NoError(t, err)

	rep, err := bench.Run(a, b)
	require.NoError(t, err)
	assert.Equal(t, []bench.Engine{bench.EngineLU, bench.EngineQR, bench.EngineSVD}, rep.Engines())
	for _, e := range rep.Engines() {
		assert.Less(t, rep[e].MaxResidual, 1e-10, e)
		assert.Zero(t, rep[e].FailedCount, e)
	}

	// One asymmetric element is enough to drop it for the whole batch.
	spd, rhs := spdPair(t, 13, 3, 2)
	copy(spd.Raw(2), []float64{4, 100, 1, 3})
	rep, err = bench.Run(spd, rhs)
	require.NoError(t, err)
	assert.NotContains(t, rep.Engines(), bench.EngineCholesky)

	// An explicit request is honored as given.
	rep, err = bench.Run(a, b, bench.WithEngines(bench.EngineCholesky))
	require.NoError(t, err)
	assert.Equal(t, []bench.Engine{bench.EngineCholesky}, rep.Engines())
}

// TestRun_NonFiniteDesign: a NaN design is counted as failed and the report
// still encodes.
func TestRun_NonFiniteDesign(t *testing.T) {
	rng := rand.New(rand.NewSource(17))
	a, _ := batch.Random(rng, 2, 5, 2)
	b, _ := batch.Random(rng, 2, 5, 1)
	a.Raw(1)[3] = math.NaN()

	rep, err := bench.Run(a, b)
	require.NoError(t, err)
	for _, e := range rep.Engines() {
		assert.Equal(t, 1, rep[e].FailedCount, e)
		assert.False(t, math.IsNaN(rep[e].MaxResidual), e)
	}
	_, err = json.Marshal(rep)
	require.NoError(t, err)
}

func TestRun_Errors(t *testing.T) {
	a, b := spdPair(t, 9, 2, 2)
	_, err := bench.Run(nil, b)
	require.ErrorIs(t, err, batch.ErrNilBatch)

	short, _ := batch.Zeros(1, 2, 1)
	_, err = bench.Run(a, short)
	require.ErrorIs(t, err, batch.ErrShapeMismatch)

	assert.Panics(t, func() { bench.WithEngines("qr", "gpu") })
	assert.Panics(t, func() { bench.WithPivotTolerance(-1) })
	assert.Panics(t, func() { bench.WithRankTolerance(-1) })
	assert.Panics(t, func() { bench.WithParallel(parallel.Config{Enabled: true}) })
}

func TestRun_Logs(t *testing.T) {
	a, b := spdPair(t, 11, 2, 2)
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	_, err := bench.Run(a, b, bench.WithLogger(logger), bench.WithEngines(bench.EngineQR))
	require.NoError(t, err)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &rec))
	assert.Equal(t, "engine finished", rec["msg"])
	assert.Equal(t, "qr", rec["engine"])
	assert.EqualValues(t, 0, rec["failed_count"])
}

func TestRunEpochs(t *testing.T) {
	gen := func(epoch int) (*batch.Dense, *batch.Dense, error) {
		a, b := spdPair(t, int64(epoch), 16, 3)
		return a, b, nil
	}
	rep, err := bench.RunEpochs(3, gen, bench.WithEngines(bench.EngineLU, bench.EngineCholesky))
	require.NoError(t, err)
	assert.Len(t, rep, 2)
	assert.Zero(t, rep[bench.EngineCholesky].FailedCount)

	boom := errors.New("boom")
	_, err = bench.RunEpochs(2, func(int) (*batch.Dense, *batch.Dense, error) { return nil, nil, boom })
	require.ErrorIs(t, err, boom)
	_, err = bench.RunEpochs(0, gen)
	require.ErrorIs(t, err, batch.ErrInvalidDimensions)
}

func TestReport_JSON(t *testing.T) {
	rep := bench.Report{
		bench.EngineSVD: {ElapsedSeconds: 0.5, MaxResidual: 1e-15, FailedCount: 2},
	}
	out, err := json.Marshal(rep)
	require.NoError(t, err)
	s := string(out)
	for _, key := range []string{`"svd"`, `"elapsed_seconds":0.5`, `"max_residual":1e-15`, `"failed_count":2`} {
		assert.True(t, strings.Contains(s, key), "missing %s in %s", key, s)
	}
}

func TestParseEngine(t *testing.T) {
	e, err := bench.ParseEngine("cholesky")
	require.NoError(t, err)
	assert.Equal(t, bench.EngineCholesky, e)
	assert.True(t, e.Square())
	assert.False(t, bench.EngineSVD.Square())

	_, err = bench.ParseEngine("qr2")
	require.ErrorIs(t, err, bench.ErrUnknownEngine)
}

func TestConfig(t *testing.T) {
	var cfg bench.Config
	require.NoError(t, json.Unmarshal([]byte(`{
		"pivot_tolerance": 1e-10,
		"svd_rank_tolerance": 1e-8,
		"in_place": false,
		"engines": ["svd", "qr"]
	}`), &cfg))
	assert.Equal(t, []bench.Engine{bench.EngineSVD, bench.EngineQR}, cfg.Engines)

	opts, err := cfg.Options()
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(2))
	a, _ := batch.Random(rng, 2, 5, 2)
	b, _ := batch.Random(rng, 2, 5, 1)
	rep, err := bench.Run(a, b, opts...)
	require.NoError(t, err)
	assert.Equal(t, []bench.Engine{bench.EngineQR, bench.EngineSVD}, rep.Engines())

	assert.Equal(t, bench.DefaultPivotTolerance, bench.DefaultConfig().PivotTolerance)
	_, err = bench.Config{PivotTolerance: -1}.Options()
	require.Error(t, err)
	_, err = bench.Config{Engines: []bench.Engine{"gpu"}}.Options()
	require.ErrorIs(t, err, bench.ErrUnknownEngine)
}

// TestConfig_OmittedTolerancesKeepDefaults: a document without tolerances
// runs with the same pivot threshold as factor.LU without options.
func TestConfig_OmittedTolerancesKeepDefaults(t *testing.T) {
	var cfg bench.Config
	require.NoError(t, json.Unmarshal([]byte(`{"engines":["lu"]}`), &cfg))
	require.Zero(t, cfg.PivotTolerance)

	opts, err := cfg.Options()
	require.NoError(t, err)

	// Numerically singular: the second pivot is ~1e-14 against a scale of 1.
	a, err := batch.New(1, 2, 2, []float64{1, 1, 1, 1 + 1e-14})
	require.NoError(t, err)
	b, err := batch.New(1, 2, 1, []float64{1, 1})
	require.NoError(t, err)

	rep, err := bench.Run(a, b, opts...)
	require.NoError(t, err)
	assert.Equal(t, []bench.Engine{bench.EngineLU}, rep.Engines())
	assert.Equal(t, 1, rep[bench.EngineLU].FailedCount)

	fromDefault, err := bench.DefaultConfig().Options()
	require.NoError(t, err)
	rep, err = bench.Run(a, b, append(fromDefault, bench.WithEngines(bench.EngineLU))...)
	require.NoError(t, err)
	assert.Equal(t, 1, rep[bench.EngineLU].FailedCount)
}
