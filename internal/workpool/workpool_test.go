package workpool

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunVisitsEveryItem(t *testing.T) {
	const n = 2500
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	seen := make([]int32, n)
	p := New(4, logger)
	err := p.Run(context.Background(), n, func(_ context.Context, i int) error {
		atomic.AddInt32(&seen[i], 1)
		return nil
	})
	require.NoError(t, err)
	for i, c := range seen {
		require.EqualValues(t, 1, c, "item %d", i)
	}
	assert.EqualValues(t, n, p.Done())
	assert.Len(t, hook.AllEntries(), n/ProgressEvery)
}

func TestRunStopsOnError(t *testing.T) {
	boom := errors.New("boom")
	var calls int64
	p := New(2, nil)
	err := p.Run(context.Background(), 10000, func(ctx context.Context, i int) error {
		atomic.AddInt64(&calls, 1)
		if i == 3 {
			return boom
		}
		return nil
	})
	assert.ErrorIs(t, err, boom)
	assert.Less(t, atomic.LoadInt64(&calls), int64(10000))
}

func TestRunHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := New(0, nil).Run(ctx, 100, func(context.Context, int) error {
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunEmpty(t *testing.T) {
	p := New(3, nil)
	require.NoError(t, p.Run(context.Background(), 0, func(context.Context, int) error {
		t.Fatal("unexpected call")
		return nil
	}))
	assert.Zero(t, p.Done())
}
