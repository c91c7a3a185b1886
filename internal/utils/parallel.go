package utils

import (
	"errors"
	"sync"
)

// ParallelTask is one unit of work for RunParallelTasks.
type ParallelTask[T any] func() (T, error)

// RunParallelTasks runs every task in its own goroutine and returns results
// and errors in task order.
func RunParallelTasks[T any](tasks []ParallelTask[T]) ([]T, []error) {
	var wg sync.WaitGroup
	results := make([]T, len(tasks))
	errs := make([]error, len(tasks))

	wg.Add(len(tasks))
	for i, task := range tasks {
		go func() {
			defer wg.Done()
			results[i], errs[i] = task()
		}()
	}

	wg.Wait()
	return results, errs
}

// JoinErrors joins the non-nil errors of a RunParallelTasks call.
func JoinErrors(errs []error) error {
	return errors.Join(errs...)
}

// WorkerPool runs queued functions on a fixed number of goroutines.
type WorkerPool struct {
	taskChan chan func()
	wg       sync.WaitGroup
}

func NewWorkerPool(maxWorkers int) *WorkerPool {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	pool := &WorkerPool{taskChan: make(chan func(), maxWorkers*2)}
	for range maxWorkers {
		go pool.worker()
	}
	return pool
}

func (p *WorkerPool) worker() {
	for task := range p.taskChan {
		task()
		p.wg.Done()
	}
}

// AddTask queues task, blocking while the buffer is full.
func (p *WorkerPool) AddTask(task func()) {
	p.wg.Add(1)
	p.taskChan <- task
}

// Wait blocks until every queued task has finished.
func (p *WorkerPool) Wait() {
	p.wg.Wait()
}

// Close stops the workers. AddTask must not be called afterwards.
func (p *WorkerPool) Close() {
	close(p.taskChan)
}

// ForEach runs fn over items on at most workers goroutines and waits.
func ForEach[T any](items []T, workers int, fn func(T)) {
	if len(items) == 0 {
		return
	}
	pool := NewWorkerPool(min(workers, len(items)))
	defer pool.Close()
	for _, item := range items {
		pool.AddTask(func() { fn(item) })
	}
	pool.Wait()
}
