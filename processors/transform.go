package processors

import (
	"context"
	"fmt"

	"github.com/glimte/routeline-go/exchange"
)

// TransformFunc maps an input body to an output body.
type TransformFunc func(body interface{}) (interface{}, error)

// Transform applies a transformation function to the exchange's In body,
// producing the result as the Out body so the next stage receives it as
// input. A nil Func passes the exchange through unchanged.
type Transform struct {
	Func TransformFunc
}

// Process implements pipeline.Processor.
func (t *Transform) Process(ctx context.Context, ex *exchange.Exchange) error {
	if t.Func == nil {
		return nil
	}

	body, err := t.Func(ex.In().Body)
	if err != nil {
		return fmt.Errorf("transform failed: %w", err)
	}

	out := ex.In().Copy()
	out.Body = body
	ex.SetOut(out)
	return nil
}
