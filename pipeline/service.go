package pipeline

import (
	"context"
	"errors"
	"fmt"
)

// Service is the lifecycle contract for processors that own resources.
// Processors that do not implement it are treated as always running.
type Service interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// StartServices starts every lifecycle-aware processor in list order. The
// first failure aborts the sequence and is returned; later processors are
// left unstarted.
func StartServices(ctx context.Context, processors ...Processor) error {
	for _, p := range processors {
		svc, ok := asService(p)
		if !ok {
			continue
		}
		if err := svc.Start(ctx); err != nil {
			return fmt.Errorf("failed to start processor %T: %w", p, err)
		}
	}
	return nil
}

// StopServices stops every lifecycle-aware processor, best-effort: a stop
// failure on one processor does not prevent stopping the rest. All failures
// are joined into the returned error.
func StopServices(ctx context.Context, processors ...Processor) error {
	var errs []error
	for _, p := range processors {
		svc, ok := asService(p)
		if !ok {
			continue
		}
		if err := svc.Stop(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop processor %T: %w", p, err))
		}
	}
	return errors.Join(errs...)
}

// asService resolves the Service behind a processor, looking through
// adapters such as the one ToAsync produces.
func asService(p Processor) (Service, bool) {
	for p != nil {
		if svc, ok := p.(Service); ok {
			return svc, true
		}
		wrapper, ok := p.(interface{ Unwrap() Processor })
		if !ok {
			return nil, false
		}
		p = wrapper.Unwrap()
	}
	return nil, false
}
