package utils

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkerPoolRunsEveryJob(t *testing.T) {
	pool := NewWorkerPool(context.Background(), 4)
	assert.Equal(t, 4, pool.Workers())

	var done atomic.Int64
	results := make([]int, 100)
	for i := range results {
		i := i
		require.True(t, pool.Submit(func() {
			results[i] = i * i
			done.Add(1)
		}))
	}
	require.NoError(t, pool.Wait())

	assert.Equal(t, int64(100), done.Load())
	assert.Equal(t, 81, results[9])
	assert.False(t, pool.Submit(func() {}), "closed pool rejects jobs")
}

func TestWorkerPoolCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	pool := NewWorkerPool(ctx, 2)
	cancel()

	assert.ErrorIs(t, pool.Wait(), context.Canceled)
}

func TestWorkerPoolStop(t *testing.T) {
	pool := NewWorkerPool(context.Background(), 0)
	assert.Positive(t, pool.Workers())
	pool.Stop()
	pool.Stop()
	assert.False(t, pool.Submit(func() {}))
}

func TestWorkerPoolSubmitWhileClosing(t *testing.T) {
	pool := NewWorkerPool(context.Background(), 2)

	var accepted, ran atomic.Int64
	var submitters sync.WaitGroup
	start := make(chan struct{})
	for g := 0; g < 8; g++ {
		submitters.Add(1)
		go func() {
			defer submitters.Done()
			<-start
			for i := 0; i < 200; i++ {
				if !pool.Submit(func() { ran.Add(1) }) {
					return
				}
				accepted.Add(1)
			}
		}()
	}

	close(start)
	require.NoError(t, pool.Wait())
	submitters.Wait()

	assert.Equal(t, accepted.Load(), ran.Load(), "every accepted job runs")
}
