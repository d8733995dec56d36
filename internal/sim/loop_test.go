package sim

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingStepper struct {
	ticks  int
	alphas []float64
}

func (c *countingStepper) Tick(float64)         { c.ticks++ }
func (c *countingStepper) Render(alpha float64) { c.alphas = append(c.alphas, alpha) }

func TestLoopAccumulates(t *testing.T) {
	s := &countingStepper{}
	l := NewLoop(s, 0.1, 0.25, nil)

	assert.Equal(t, 2, l.Advance(0.25))
	require.Len(t, s.alphas, 1)
	assert.InDelta(t, 0.5, s.alphas[0], 1e-9)

	assert.Equal(t, 1, l.Advance(0.07))
	// a long hitch only contributes maxFrame
	assert.Equal(t, 2, l.Advance(10))
	assert.Equal(t, 5, s.ticks)
	assert.Len(t, s.alphas, 3)
}

func TestLoopPaused(t *testing.T) {
	s := &countingStepper{}
	l := NewLoop(s, 0.1, 0.25, nil)
	l.SetPaused(true)
	assert.Zero(t, l.Advance(0.2))
	assert.Len(t, s.alphas, 1)

	l.SetPaused(false)
	assert.Equal(t, 2, l.Advance(0.2+1e-9))
}

func TestLoopRunStopsOnCancel(t *testing.T) {
	s := &countingStepper{}
	l := NewLoop(s, 0.001, 0.25, NewFrameLimiter(500))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	require.NoError(t, l.Run(ctx))
	assert.NotEmpty(t, s.alphas)
	assert.Positive(t, s.ticks)
}

func TestFrameLimiterPaces(t *testing.T) {
	f := NewFrameLimiter(100)
	start := time.Now()
	for _n := 0; _n < 5; _n++ {
		f.Wait()
	}
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)

	f.SetLimit(0)
	start = time.Now()
	f.Wait()
	assert.Less(t, time.Since(start), 5*time.Millisecond)
}
