package utils

import (
	"context"
	"runtime"
	"sync"
)

// WorkerPool runs submitted jobs on a fixed number of goroutines
type WorkerPool struct {
	jobs    chan func()
	wg      sync.WaitGroup
	workers int
	ctx     context.Context

	// mu orders sends on jobs against closing it
	mu     sync.RWMutex
	closed bool
	cancel  context.CancelFunc
}

// NewWorkerPool starts a pool bound to ctx. workers <= 0 uses GOMAXPROCS.
func NewWorkerPool(ctx context.Context, workers int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	ctx, cancel := context.WithCancel(ctx)
	pool := &WorkerPool{
		jobs:    make(chan func(), workers*2),
		workers: workers,
		ctx:     ctx,
		cancel:  cancel,
	}
	pool.start()
	return pool
}

// Workers returns the number of worker goroutines
func (p *WorkerPool) Workers() int {
	return p.workers
}

func (p *WorkerPool) start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for {
				select {
				case <-p.ctx.Done():
					return
				case job, ok := <-p.jobs:
					if !ok {
						return
					}
					job()
				}
			}
		}()
	}
}

// Submit queues a job. It returns false once the pool is closed or its
// context is done. It is safe to call concurrently with Wait and Stop.
func (p *WorkerPool) Submit(job func()) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return false
	}

	select {
	case p.jobs <- job:
		return true
	case <-p.ctx.Done():
		return false
	}
}

func (p *WorkerPool) close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.closed {
		p.closed = true
		close(p.jobs)
	}
}

// Wait closes the pool to new jobs, runs everything already queued and
// waits for the workers to exit. It returns the context error if the pool
// was cancelled before the queue drained.
func (p *WorkerPool) Wait() error {
	p.close()
	p.wg.Wait()
	err := p.ctx.Err()
	p.cancel()
	return err
}

// Stop abandons queued jobs and waits for running ones to return
func (p *WorkerPool) Stop() {
	p.cancel()
	p.close()
	p.wg.Wait()
}
