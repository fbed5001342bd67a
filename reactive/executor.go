package reactive

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
)

// Task is a deferred unit of work. Tasks are executed exactly once.
type Task func()

// Executor accepts deferred work units and runs them according to its own
// discipline.
type Executor interface {
	// Schedule defers a task for eventual execution. This is the entry point
	// used for every routing step after the first.
	Schedule(task Task)

	// ScheduleMain defers the first task of a routing run.
	ScheduleMain(task Task)

	// ScheduleSync runs a task with a preference for staying on the calling
	// goroutine. Used for the first step of transacted exchanges.
	ScheduleSync(task Task)
}

// Pool is the default Executor: worker goroutines draining an unbounded FIFO
// queue. The queue never blocks producers, so a task scheduling follow-up
// work from inside a worker cannot deadlock.
type Pool struct {
	logger    *slog.Logger
	workers   int
	mu        sync.Mutex
	cond      *sync.Cond
	queue     []Task
	running   bool
	stopping  bool
	wg        sync.WaitGroup
	scheduled atomic.Int64
	completed atomic.Int64
}

// PoolOption configures a Pool.
type PoolOption func(*Pool)

// WithWorkers sets the number of worker goroutines. Values below one are
// treated as one.
func WithWorkers(workers int) PoolOption {
	return func(p *Pool) {
		if workers > 0 {
			p.workers = workers
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) PoolOption {
	return func(p *Pool) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewPool creates a pool with a single worker unless configured otherwise.
func NewPool(opts ...PoolOption) *Pool {
	p := &Pool{
		logger:  slog.Default(),
		workers: 1,
	}
	p.cond = sync.NewCond(&p.mu)

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Start launches the worker goroutines.
func (p *Pool) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return fmt.Errorf("executor already started")
	}

	p.running = true
	p.stopping = false

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.work()
	}

	p.logger.Debug("executor started", "workers", p.workers)
	return nil
}

// Stop drains the queue and waits for workers to exit, or returns early when
// ctx is done. Tasks scheduled after Stop begins are still executed as part
// of the drain.
func (p *Pool) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	p.stopping = true
	p.cond.Broadcast()
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return fmt.Errorf("executor stop interrupted: %w", ctx.Err())
	}

	p.mu.Lock()
	p.running = false
	p.mu.Unlock()

	p.logger.Debug("executor stopped",
		"scheduled", p.scheduled.Load(),
		"completed", p.completed.Load())
	return nil
}

// Schedule implements Executor.
func (p *Pool) Schedule(task Task) {
	p.enqueue(task)
}

// ScheduleMain implements Executor.
func (p *Pool) ScheduleMain(task Task) {
	p.enqueue(task)
}

// ScheduleSync implements Executor. The task runs inline on the calling
// goroutine, keeping a transacted unit of work on one execution context.
func (p *Pool) ScheduleSync(task Task) {
	p.scheduled.Add(1)
	task()
	p.completed.Add(1)
}

// Pending returns the number of queued tasks not yet picked up.
func (p *Pool) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queue)
}

// Completed returns the number of tasks executed so far.
func (p *Pool) Completed() int64 {
	return p.completed.Load()
}

func (p *Pool) enqueue(task Task) {
	p.scheduled.Add(1)

	p.mu.Lock()
	p.queue = append(p.queue, task)
	p.cond.Signal()
	p.mu.Unlock()
}

func (p *Pool) work() {
	defer p.wg.Done()

	for {
		p.mu.Lock()
		for len(p.queue) == 0 && !p.stopping {
			p.cond.Wait()
		}
		if len(p.queue) == 0 && p.stopping {
			p.mu.Unlock()
			return
		}
		task := p.queue[0]
		p.queue = p.queue[1:]
		p.mu.Unlock()

		task()
		p.completed.Add(1)
	}
}
