package processors

import (
	"context"
	"log/slog"
	"time"

	"github.com/glimte/routeline-go/exchange"
	"github.com/glimte/routeline-go/pipeline"
)

// Logging wraps a delegate processor and logs processing around it.
type Logging struct {
	delegate pipeline.Processor
	logger   *slog.Logger
}

// NewLogging creates a logging wrapper. A nil logger falls back to
// slog.Default().
func NewLogging(delegate pipeline.Processor, logger *slog.Logger) *Logging {
	if logger == nil {
		logger = slog.Default()
	}
	return &Logging{delegate: delegate, logger: logger}
}

// Process implements pipeline.Processor.
func (l *Logging) Process(ctx context.Context, ex *exchange.Exchange) error {
	start := time.Now()

	l.logger.Info("processing exchange",
		"exchangeId", ex.ID(),
		"pattern", ex.Pattern(),
	)

	err := l.delegate.Process(ctx, ex)
	duration := time.Since(start)

	if err != nil {
		l.logger.Error("exchange processing failed",
			"exchangeId", ex.ID(),
			"duration", duration,
			"error", err,
		)
	} else {
		l.logger.Info("exchange processed",
			"exchangeId", ex.ID(),
			"duration", duration,
		)
	}

	return err
}

// Unwrap exposes the delegate for introspection and lifecycle resolution.
func (l *Logging) Unwrap() pipeline.Processor {
	return l.delegate
}
