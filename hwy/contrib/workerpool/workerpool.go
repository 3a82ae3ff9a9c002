// Copyright 2025 The go-highway Authors. SPDX-License-Identifier: Apache-2.0

// Package workerpool provides a persistent, reusable worker pool for the
// parallel dense kernels. A Pool is created once and reused across many
// products, so goroutine spawning is paid only at creation.
//
// ParallelFor splits an independent index range across workers. Gang runs
// a fixed group of cooperating members that synchronize with each other
// through spin-waits, as the parallel GEMM driver does.
//
// Usage:
//
//	pool := workerpool.New(runtime.GOMAXPROCS(0))
//	defer pool.Close()
//
//	for _, c := range outputs {
//	    matmul.Gemm(c, a, b, 1, matmul.WithPool(pool))
//	}
package workerpool

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Pool is a fixed set of worker goroutines fed through a buffered queue.
//
// Work is only queued to a worker reserved as idle, so a queued task never
// waits behind another task. idle counts the workers neither running nor
// reserved.
type Pool struct {
	numWorkers int
	queue      chan task
	idle       atomic.Int32
	closeOnce  sync.Once
	closed     atomic.Bool
}

// task is one unit of queued work; done is signalled when fn returns.
type task struct {
	fn   func()
	done *sync.WaitGroup
}

func (t task) run() {
	t.fn()
	t.done.Done()
}

// New starts a pool of numWorkers goroutines, or GOMAXPROCS when
// numWorkers <= 0. The workers live until Close.
func New(numWorkers int) *Pool {
	if numWorkers <= 0 {
		numWorkers = runtime.GOMAXPROCS(0)
	}
	p := &Pool{
		numWorkers: numWorkers,
		queue:      make(chan task, numWorkers),
	}
	p.idle.Store(int32(numWorkers))
	for range numWorkers {
		go func() {
			for t := range p.queue {
				t.run()
				p.idle.Add(1)
			}
		}()
	}
	return p
}

// tryQueue hands t to an idle worker. It returns false, without queueing,
// when every worker is busy or reserved or the pool is closed.
func (p *Pool) tryQueue(t task) bool {
	for {
		if p.closed.Load() {
			return false
		}
		v := p.idle.Load()
		if v <= 0 {
			return false
		}
		if p.idle.CompareAndSwap(v, v-1) {
			p.queue <- t
			return true
		}
	}
}

// NumWorkers returns the number of workers in the pool.
func (p *Pool) NumWorkers() int {
	return p.numWorkers
}

// Close stops the workers once queued work has drained. It is safe to call
// more than once; a closed pool runs work on the caller or fresh goroutines.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		p.closed.Store(true)
		close(p.queue)
	})
}

// ParallelFor calls fn(start, end) over contiguous chunks covering [0, n)
// and blocks until every chunk is done. At most NumWorkers chunks are used.
// Chunks that find no idle worker run on the caller, so ParallelFor may be
// called from inside pool work.
func (p *Pool) ParallelFor(n int, fn func(start, end int)) {
	if n <= 0 {
		return
	}
	chunks := min(p.numWorkers, n)
	if chunks == 1 || p.closed.Load() {
		fn(0, n)
		return
	}
	size := (n + chunks - 1) / chunks

	var wg sync.WaitGroup
	var local []int
	for start := size; start < n; start += size {
		end := min(start+size, n)
		wg.Add(1)
		if !p.tryQueue(task{fn: func() { fn(start, end) }, done: &wg}) {
			wg.Done()
			local = append(local, start)
		}
	}
	fn(0, min(size, n))
	for _, start := range local {
		fn(start, min(start+size, n))
	}
	wg.Wait()
}

// Gang runs fn(member) for member in [0, n) with every member on its own
// goroutine, and blocks until all members return. Member 0 runs on the
// calling goroutine and the others go to idle workers of the pool.
//
// Members may wait on each other: every member starts without waiting on
// other pool work. Members that find no idle worker, including all members
// on a closed pool, run on fresh goroutines. Gangs may therefore share a
// pool across goroutines and nest inside ParallelFor or other gangs.
func (p *Pool) Gang(n int, fn func(member int)) {
	if n <= 0 {
		return
	}
	if n == 1 {
		fn(0)
		return
	}

	var wg sync.WaitGroup
	wg.Add(n - 1)
	for member := 1; member < n; member++ {
		t := task{fn: func() { fn(member) }, done: &wg}
		if !p.tryQueue(t) {
			go t.run()
		}
	}
	fn(0)
	wg.Wait()
}
