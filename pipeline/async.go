package pipeline

import (
	"context"

	"github.com/glimte/routeline-go/exchange"
)

// AsyncCallback signals completion of asynchronous processing. doneSync is
// true when the work finished on the goroutine that started it.
type AsyncCallback func(doneSync bool)

// Processor handles an exchange synchronously. A processing failure is
// returned and also belongs on the exchange; ToAsync records it there.
type Processor interface {
	Process(ctx context.Context, ex *exchange.Exchange) error
}

// ProcessorFunc is a function adapter for Processor.
type ProcessorFunc func(ctx context.Context, ex *exchange.Exchange) error

// Process implements Processor.
func (f ProcessorFunc) Process(ctx context.Context, ex *exchange.Exchange) error {
	return f(ctx, ex)
}

// AsyncProcessor handles an exchange without blocking the caller. The return
// value reports whether processing completed synchronously; either way the
// callback is invoked exactly once.
type AsyncProcessor interface {
	Processor
	ProcessAsync(ctx context.Context, ex *exchange.Exchange, callback AsyncCallback) bool
}

// ToAsync adapts a Processor to AsyncProcessor. Synchronous processors run
// inline: the error is recorded on the exchange and the callback fires before
// ProcessAsync returns. Processors that already implement AsyncProcessor are
// returned unchanged.
func ToAsync(p Processor) AsyncProcessor {
	if p == nil {
		return nil
	}
	if ap, ok := p.(AsyncProcessor); ok {
		return ap
	}
	return &asyncBridge{processor: p}
}

type asyncBridge struct {
	processor Processor
}

func (b *asyncBridge) Process(ctx context.Context, ex *exchange.Exchange) error {
	return b.processor.Process(ctx, ex)
}

func (b *asyncBridge) ProcessAsync(ctx context.Context, ex *exchange.Exchange, callback AsyncCallback) bool {
	if err := b.processor.Process(ctx, ex); err != nil {
		ex.SetErr(err)
	}
	callback(true)
	return true
}

// Unwrap exposes the wrapped processor for introspection.
func (b *asyncBridge) Unwrap() Processor {
	return b.processor
}
