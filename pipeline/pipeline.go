package pipeline

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/glimte/routeline-go/exchange"
	"github.com/glimte/routeline-go/reactive"
)

// Pipeline routes an exchange through an ordered list of processors, reusing
// the same envelope so each processor sees the output of the one before it.
// The processor list is fixed at construction and shared read-only across
// concurrent routing runs.
type Pipeline struct {
	executor   reactive.Executor
	processors []AsyncProcessor
	logger     *slog.Logger
	id         string
	routeID    string
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithPipelineLogger sets the logger.
func WithPipelineLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithID sets the identity label.
func WithID(id string) Option {
	return func(p *Pipeline) {
		p.id = id
	}
}

// New builds a pipeline over processors. An empty list yields nil (nothing
// to run); a single processor is returned unchanged, so a one-stage pipeline
// is indistinguishable from the bare stage. Callers must handle both cases.
func New(executor reactive.Executor, processors []Processor, opts ...Option) Processor {
	if len(processors) == 0 {
		return nil
	}
	if len(processors) == 1 {
		return processors[0]
	}
	return newPipeline(executor, processors, opts...)
}

// Of is the variadic variant of New. Nil entries are dropped before the
// collapse rules apply.
func Of(executor reactive.Executor, processors ...Processor) Processor {
	kept := make([]Processor, 0, len(processors))
	for _, p := range processors {
		if p != nil {
			kept = append(kept, p)
		}
	}
	return New(executor, kept)
}

func newPipeline(executor reactive.Executor, processors []Processor, opts ...Option) *Pipeline {
	async := make([]AsyncProcessor, len(processors))
	for i, p := range processors {
		async[i] = ToAsync(p)
	}

	p := &Pipeline{
		executor:   executor,
		processors: async,
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// run holds the state shared by every continuation of one routing run. The
// cursor is atomic because a processor's callback may fire on a different
// goroutine than the one that invoked the processor.
type run struct {
	ctx      context.Context
	ex       *exchange.Exchange
	callback AsyncCallback
	index    atomic.Int64
}

// Process is the blocking facade over ProcessAsync. It returns once the run
// completes, surfacing the error recorded on the exchange, or earlier when
// ctx is done.
func (p *Pipeline) Process(ctx context.Context, ex *exchange.Exchange) error {
	done := make(chan struct{})
	p.ProcessAsync(ctx, ex, func(doneSync bool) {
		close(done)
	})

	select {
	case <-done:
		return ex.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ProcessAsync starts a routing run. It never completes inline: the return
// value is always false and completion is signaled through callback exactly
// once, even when every processor finishes synchronously. Transacted
// exchanges get their first step through the synchronous-preferring
// scheduling entry point; everything after the first step goes through the
// executor's standard deferred schedule.
func (p *Pipeline) ProcessAsync(ctx context.Context, ex *exchange.Exchange, callback AsyncCallback) bool {
	r := &run{ctx: ctx, ex: ex, callback: callback}

	if ex.IsTransacted() {
		p.executor.ScheduleSync(func() { p.doProcess(r, true) })
	} else {
		p.executor.ScheduleMain(func() { p.doProcess(r, true) })
	}
	return false
}

// doProcess advances one routing step. Re-entry always goes through the
// executor so processors that complete synchronously cannot grow the stack.
// The continuation predicate is skipped on the first step: the first
// processor runs even when the exchange arrives pre-flagged.
func (p *Pipeline) doProcess(r *run, first bool) {
	if p.continueRouting(r) && (first || ContinueProcessing(r.ex, "so breaking out of pipeline", p.logger)) {
		exchange.PrepareOutToIn(r.ex)

		processor := p.processors[r.index.Add(1)-1]

		processor.ProcessAsync(r.ctx, r.ex, func(doneSync bool) {
			p.executor.Schedule(func() { p.doProcess(r, false) })
		})
	} else {
		exchange.CopyResults(r.ex, r.ex)

		p.logger.Debug("routing complete",
			"exchangeId", r.ex.ID(),
			"pipelineId", p.id)

		p.executor.Schedule(func() { r.callback(false) })
	}
}

// continueRouting re-reads the stop-routing property on every step; any
// processor may set it mid-run.
func (p *Pipeline) continueRouting(r *run) bool {
	if stop, ok := r.ex.Property(exchange.PropertyRouteStop); ok {
		doStop, err := exchange.ToBool(stop)
		if err != nil {
			p.logger.Warn("stop-routing property is not boolean-convertible",
				"exchangeId", r.ex.ID(),
				"value", stop,
				"error", err)
		} else if doStop {
			p.logger.Debug("exchange marked to stop routing",
				"exchangeId", r.ex.ID(),
				"pipelineId", p.id)
			return false
		}
	}
	return int(r.index.Load()) < len(p.processors)
}

// Start starts every processor that participates in the service lifecycle,
// in list order, failing fast on the first error.
func (p *Pipeline) Start(ctx context.Context) error {
	return StartServices(ctx, p.asProcessors()...)
}

// Stop stops every lifecycle-aware processor, best-effort.
func (p *Pipeline) Stop(ctx context.Context) error {
	return StopServices(ctx, p.asProcessors()...)
}

// Next returns a copy of the ordered processor list for diagnostics.
func (p *Pipeline) Next() []Processor {
	if !p.HasNext() {
		return nil
	}
	return p.asProcessors()
}

// HasNext reports whether the pipeline has any processors.
func (p *Pipeline) HasNext() bool {
	return len(p.processors) > 0
}

// ID returns the identity label.
func (p *Pipeline) ID() string {
	return p.id
}

// SetID sets the identity label. It has no effect on routing.
func (p *Pipeline) SetID(id string) {
	p.id = id
}

// RouteID returns the enclosing-route label.
func (p *Pipeline) RouteID() string {
	return p.routeID
}

// SetRouteID sets the enclosing-route label. It has no effect on routing.
func (p *Pipeline) SetRouteID(routeID string) {
	p.routeID = routeID
}

// TraceLabel identifies this processor kind in traces.
func (p *Pipeline) TraceLabel() string {
	return "pipeline"
}

// String returns the identity label.
func (p *Pipeline) String() string {
	return p.id
}

func (p *Pipeline) asProcessors() []Processor {
	processors := make([]Processor, len(p.processors))
	for i, ap := range p.processors {
		processors[i] = ap
	}
	return processors
}
