package fluid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParallelMatchesSerial(t *testing.T) {
	params := DefaultParams()
	grid, err := GridPreset("demo")
	require.NoError(t, err)
	grid.Jitter = MaxJitter
	grid.Seed = 3

	serial, err := NewSolver(params, grid)
	require.NoError(t, err)
	parallel, err := NewSolver(params, grid)
	require.NoError(t, err)
	parallel.SetWorkers(4)
	defer parallel.Close()

	require.GreaterOrEqual(t, serial.Store().Len(), parallelThreshold)

	for tick := 0; tick < 20; tick++ {
		serial.Step()
		parallel.Step()
	}

	// Per-particle sums run in the same order, so results are bit-identical.
	assert.Equal(t, serial.Store().CopyTo(nil), parallel.Store().CopyTo(nil))
}

func TestSetWorkers(t *testing.T) {
	s := newTestSolver(t, DefaultParams(), Particle{Position: Vec3{0.5, 0.5, 0.5}})
	assert.Equal(t, 1, s.Workers())

	s.SetWorkers(3)
	assert.Equal(t, 3, s.Workers())

	s.SetWorkers(0)
	assert.GreaterOrEqual(t, s.Workers(), 1)

	s.Close()
	assert.Equal(t, 1, s.Workers())
	s.Step() // still usable
	assert.Equal(t, uint64(1), s.Steps())
}

func TestWorkerPoolCoversRange(t *testing.T) {
	p := newWorkerPool(3)
	defer p.stop()

	const n = 100
	hits := make([]int, n)
	p.forEach(n, func(start, end int) {
		for i := start; i < end; i++ {
			hits[i]++
		}
	})
	for i, h := range hits {
		assert.Equal(t, 1, h, "index %d", i)
	}

	// Small ranges run inline
	var calls int
	p.forEach(parallelThreshold-1, func(start, end int) {
		calls++
		assert.Equal(t, 0, start)
		assert.Equal(t, parallelThreshold-1, end)
	})
	assert.Equal(t, 1, calls)
}
