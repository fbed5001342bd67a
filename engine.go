// Copyright 2024 Routeline Contributors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package routeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/glimte/routeline-go/exchange"
	"github.com/glimte/routeline-go/pipeline"
	"github.com/glimte/routeline-go/reactive"
)

// Engine composes named routes over a shared reactive executor. Each route
// is a pipeline built with the collapse rules: a single-processor route
// registers the bare processor.
type Engine struct {
	executor reactive.Executor
	pool     *reactive.Pool
	logger   *slog.Logger

	mu     sync.RWMutex
	routes map[string]pipeline.Processor
	order  []string
}

// EngineOption configures the engine.
type EngineOption func(*engineConfig)

type engineConfig struct {
	logger   *slog.Logger
	executor reactive.Executor
	workers  int
}

// WithLogger sets the logger for the engine and its executor.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(cfg *engineConfig) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// WithExecutor supplies an external executor. The engine then does not
// manage the executor's lifecycle.
func WithExecutor(executor reactive.Executor) EngineOption {
	return func(cfg *engineConfig) {
		cfg.executor = executor
	}
}

// WithWorkers sets the worker count for the engine-owned executor. Ignored
// when WithExecutor is used.
func WithWorkers(workers int) EngineOption {
	return func(cfg *engineConfig) {
		cfg.workers = workers
	}
}

// NewEngine creates an engine. Unless an executor is supplied, the engine
// owns a reactive.Pool and starts and stops it with the routes.
func NewEngine(opts ...EngineOption) *Engine {
	cfg := &engineConfig{
		logger:  slog.Default(),
		workers: 1,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	e := &Engine{
		logger: cfg.logger,
		routes: make(map[string]pipeline.Processor),
	}

	if cfg.executor != nil {
		e.executor = cfg.executor
	} else {
		e.pool = reactive.NewPool(
			reactive.WithWorkers(cfg.workers),
			reactive.WithLogger(cfg.logger),
		)
		e.executor = e.pool
	}

	return e
}

// Executor returns the executor routes are scheduled on.
func (e *Engine) Executor() reactive.Executor {
	return e.executor
}

// AddRoute registers a route built from processors in order. Nil processors
// are dropped; a route that ends up empty is rejected, as are duplicate ids.
func (e *Engine) AddRoute(id string, processors ...pipeline.Processor) error {
	if id == "" {
		return fmt.Errorf("route id cannot be empty")
	}

	route := pipeline.Of(e.executor, processors...)
	if route == nil {
		return fmt.Errorf("route %s has no processors", id)
	}

	if p, ok := route.(*pipeline.Pipeline); ok {
		p.SetID(id)
		p.SetRouteID(id)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.routes[id]; exists {
		return fmt.Errorf("route already registered: %s", id)
	}
	e.routes[id] = route
	e.order = append(e.order, id)

	e.logger.Info("registered route", "routeId", id, "processors", len(processors))
	return nil
}

// Route returns the processor registered under id.
func (e *Engine) Route(id string) (pipeline.Processor, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	route, exists := e.routes[id]
	if !exists {
		return nil, fmt.Errorf("route not found: %s", id)
	}
	return route, nil
}

// RouteIDs returns route ids in registration order.
func (e *Engine) RouteIDs() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	ids := make([]string, len(e.order))
	copy(ids, e.order)
	return ids
}

// Send routes an exchange through the named route without blocking. The
// callback fires exactly once when the run completes; failure state is on
// the exchange.
func (e *Engine) Send(ctx context.Context, routeID string, ex *exchange.Exchange, callback pipeline.AsyncCallback) error {
	route, err := e.Route(routeID)
	if err != nil {
		return err
	}

	pipeline.ToAsync(route).ProcessAsync(ctx, ex, callback)
	return nil
}

// SendSync routes an exchange through the named route and blocks until the
// run completes, returning the error recorded on the exchange.
func (e *Engine) SendSync(ctx context.Context, routeID string, ex *exchange.Exchange) error {
	route, err := e.Route(routeID)
	if err != nil {
		return err
	}

	done := make(chan struct{})
	pipeline.ToAsync(route).ProcessAsync(ctx, ex, func(doneSync bool) {
		close(done)
	})

	select {
	case <-done:
		return ex.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Start starts the engine-owned executor and then every route in
// registration order, failing fast on the first error.
func (e *Engine) Start(ctx context.Context) error {
	if e.pool != nil {
		if err := e.pool.Start(ctx); err != nil {
			return fmt.Errorf("failed to start executor: %w", err)
		}
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	for _, id := range e.order {
		if err := pipeline.StartServices(ctx, e.routes[id]); err != nil {
			return fmt.Errorf("failed to start route %s: %w", id, err)
		}
	}

	e.logger.Info("engine started", "routes", len(e.order))
	return nil
}

// Stop stops every route and the engine-owned executor, best-effort,
// joining all failures.
func (e *Engine) Stop(ctx context.Context) error {
	e.mu.RLock()
	var errs []error
	for _, id := range e.order {
		if err := pipeline.StopServices(ctx, e.routes[id]); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop route %s: %w", id, err))
		}
	}
	e.mu.RUnlock()

	if e.pool != nil {
		if err := e.pool.Stop(ctx); err != nil {
			errs = append(errs, err)
		}
	}

	e.logger.Info("engine stopped")
	return errors.Join(errs...)
}
