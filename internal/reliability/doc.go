// Package reliability provides retry policies for processors that wrap a
// delegate with retry behavior.
//
// Policies classify errors as retryable through an optional IsRetryable
// method on the error value; errors without the method default to retryable.
package reliability
