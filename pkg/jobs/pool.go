package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Task is one unit of fan-out work.
type Task[T any] struct {
	ID  string
	Run func(context.Context) (T, error)
}

// Outcome is the completion record of a Task.
type Outcome[T any] struct {
	TaskID   string
	Value    T
	Err      error
	Duration time.Duration
}

// Summary reports what a Run did.
type Summary struct {
	Tasks   int
	Failed  int
	Workers int
}

// PoolConfig configures worker pool behaviour.
type PoolConfig struct {
	MaxWorkers int
	Logger     *zap.Logger
}

// Pool runs a batch of tasks on a bounded set of goroutines.
type Pool[T any] struct {
	name       string
	maxWorkers int
	logger     *zap.Logger
}

// NewPool builds a pool bounded by cfg.MaxWorkers goroutines per Run.
func NewPool[T any](name string, cfg PoolConfig) *Pool[T] {
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = 10
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Pool[T]{name: name, maxWorkers: cfg.MaxWorkers, logger: cfg.Logger}
}

// Workers returns the number of goroutines a Run over n tasks uses: min(MaxWorkers, n).
func (p *Pool[T]) Workers(n int) int {
	if n < p.maxWorkers {
		return n
	}
	return p.maxWorkers
}

// Run executes every task and calls collect once per task, sequentially and in
// completion order, from the calling goroutine. It returns after all tasks have
// finished. The pool never cancels a submitted task; a panicking task is
// reported as a failed Outcome.
func (p *Pool[T]) Run(ctx context.Context, tasks []Task[T], collect func(Outcome[T])) Summary {
	summary := Summary{Tasks: len(tasks), Workers: p.Workers(len(tasks))}
	if len(tasks) == 0 {
		return summary
	}

	queue := make(chan Task[T])
	results := make(chan Outcome[T], len(tasks))

	var wg sync.WaitGroup
	for i := 0; i < summary.Workers; i++ {
		wg.Add(1)
		go p.worker(ctx, i+1, queue, results, &wg)
	}

	go func() {
		for _, task := range tasks {
			queue <- task
		}
		close(queue)
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	for outcome := range results {
		if outcome.Err != nil {
			summary.Failed++
			p.logger.Sugar().Warnw("task failed", "pool", p.name, "task_id", outcome.TaskID, "duration", outcome.Duration, "error", outcome.Err)
		}
		if collect != nil {
			collect(outcome)
		}
	}

	p.logger.Sugar().Debugw("pool finished", "pool", p.name, "tasks", summary.Tasks, "failed", summary.Failed, "workers", summary.Workers)
	return summary
}

func (p *Pool[T]) worker(ctx context.Context, workerID int, queue <-chan Task[T], results chan<- Outcome[T], wg *sync.WaitGroup) {
	defer wg.Done()
	for task := range queue {
		results <- p.execute(ctx, workerID, task)
	}
}

func (p *Pool[T]) execute(ctx context.Context, workerID int, task Task[T]) (outcome Outcome[T]) {
	start := time.Now()
	outcome.TaskID = task.ID
	defer func() {
		if r := recover(); r != nil {
			outcome.Err = fmt.Errorf("task %s panicked on worker %d: %v", task.ID, workerID, r)
		}
		outcome.Duration = time.Since(start)
	}()
	if task.Run == nil {
		outcome.Err = fmt.Errorf("task %s has no run function", task.ID)
		return outcome
	}
	outcome.Value, outcome.Err = task.Run(ctx)
	return outcome
}
