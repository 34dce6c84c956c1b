package server

import (
	"context"
	"fmt"
	"sync"
)

// job represents a unit of work to be executed on a pool goroutine.
type job struct {
	fn   func() any
	done chan jobResult
}

// jobResult holds the return value from a job.
type jobResult struct {
	value any
	err   error
}

// Worker runs jobs on a fixed number of goroutines. It bounds how many
// programs execute at once; each job still gets its own Machine.
type Worker struct {
	requests chan job
	quit     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// NewWorker creates a Worker and starts n processing goroutines. Values
// of n below 1 start a single goroutine.
func NewWorker(n int) *Worker {
	if n < 1 {
		n = 1
	}
	w := &Worker{
		requests: make(chan job),
		quit:     make(chan struct{}),
	}
	w.wg.Add(n)
	for i := 0; i < n; i++ {
		go w.loop()
	}
	return w
}

// loop processes jobs until Stop is called.
func (w *Worker) loop() {
	defer w.wg.Done()
	for {
		select {
		case j := <-w.requests:
			j.done <- w.execute(j.fn)
		case <-w.quit:
			return
		}
	}
}

// execute runs fn, recovering from panics.
func (w *Worker) execute(fn func() any) jobResult {
	var result jobResult
	func() {
		defer func() {
			if r := recover(); r != nil {
				result.err = fmt.Errorf("%v", r)
			}
		}()
		result.value = fn()
	}()
	return result
}

// Do submits fn and blocks until it completes or ctx is done. A panic in
// fn is returned as an error.
func (w *Worker) Do(ctx context.Context, fn func() any) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	j := job{fn: fn, done: make(chan jobResult, 1)}
	select {
	case w.requests <- j:
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-w.quit:
		return nil, fmt.Errorf("worker stopped")
	}
	select {
	case r := <-j.done:
		return r.value, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Stop shuts down the worker goroutines and waits for them to exit.
func (w *Worker) Stop() {
	w.stopOnce.Do(func() { close(w.quit) })
	w.wg.Wait()
}
