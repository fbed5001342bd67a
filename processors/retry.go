package processors

import (
	"context"
	"time"

	"github.com/glimte/routeline-go/exchange"
	"github.com/glimte/routeline-go/internal/reliability"
	"github.com/glimte/routeline-go/pipeline"
)

// Retry wraps a delegate processor with a retry policy. It is an ordinary
// composed stage: the routing machinery is unaware of the retries, it only
// observes the final outcome.
type Retry struct {
	delegate pipeline.Processor
	policy   reliability.RetryPolicy
}

// NewRetry creates a retrying wrapper. A nil policy defaults to exponential
// backoff with three retries.
func NewRetry(delegate pipeline.Processor, policy reliability.RetryPolicy) *Retry {
	if policy == nil {
		policy = reliability.NewExponentialBackoff(100*time.Millisecond, 5*time.Second, 2.0, 3)
	}
	return &Retry{delegate: delegate, policy: policy}
}

// Process implements pipeline.Processor. The exchange's recorded error is
// cleared before each attempt so a later success leaves a clean exchange.
func (r *Retry) Process(ctx context.Context, ex *exchange.Exchange) error {
	return reliability.Retry(ctx, r.policy, func() error {
		ex.SetErr(nil)
		return r.delegate.Process(ctx, ex)
	})
}

// Unwrap exposes the delegate for introspection and lifecycle resolution.
func (r *Retry) Unwrap() pipeline.Processor {
	return r.delegate
}
