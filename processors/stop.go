package processors

import (
	"context"

	"github.com/glimte/routeline-go/exchange"
)

// Stop marks the exchange to stop routing. Remaining stages in the enclosing
// pipeline are skipped; the run still completes normally.
type Stop struct{}

// Process implements pipeline.Processor.
func (Stop) Process(ctx context.Context, ex *exchange.Exchange) error {
	ex.SetProperty(exchange.PropertyRouteStop, true)
	return nil
}
