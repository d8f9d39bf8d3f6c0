package concurrent

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForEachVisitsAll(t *testing.T) {
	var sum atomic.Int64
	err := ForEach(context.Background(), []int{1, 2, 3, 4}, 2, func(_ context.Context, _ int, v int) error {
		sum.Add(int64(v))
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, int64(10), sum.Load())
}

func TestForEachRespectsLimit(t *testing.T) {
	var running, peak atomic.Int32
	items := make([]int, 32)
	err := ForEach(context.Background(), items, 3, func(context.Context, int, int) error {
		n := running.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		running.Add(-1)
		return nil
	})
	require.NoError(t, err)
	assert.LessOrEqual(t, peak.Load(), int32(3))
}

func TestForEachReturnsFirstError(t *testing.T) {
	boom := errors.New("boom")
	err := ForEach(context.Background(), []int{1, 2, 3}, 1, func(_ context.Context, _ int, v int) error {
		if v == 2 {
			return boom
		}
		return nil
	})
	assert.ErrorIs(t, err, boom)
}

func TestForEachCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := ForEach(ctx, []int{1, 2}, 1, func(context.Context, int, int) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMapPreservesOrder(t *testing.T) {
	out, err := Map(context.Background(), []int{3, 1, 2}, 0, func(_ context.Context, i int, v int) (int, error) {
		return v * 10, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{30, 10, 20}, out)
}
