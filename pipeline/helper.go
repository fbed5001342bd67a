package pipeline

import (
	"log/slog"

	"github.com/glimte/routeline-go/exchange"
)

// ContinueProcessing reports whether an exchange is still in a state that
// permits further routing. A recorded failure or a rollback-only mark halts
// the run; the reason suffix names the caller in the log line.
func ContinueProcessing(ex *exchange.Exchange, reason string, logger *slog.Logger) bool {
	if ex.IsFailed() {
		logger.Debug("exchange failed "+reason,
			"exchangeId", ex.ID(),
			"error", ex.Err())
		return false
	}
	if ex.IsRollbackOnly() {
		logger.Debug("exchange marked rollback-only "+reason,
			"exchangeId", ex.ID())
		return false
	}
	return true
}
