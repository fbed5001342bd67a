// Package pipeline chains processors so the output of each one becomes the
// input of the next.
//
// Routing is continuation-passing: each step hands the exchange to one
// processor and re-enters the step function through the reactive executor
// when that processor's completion callback fires. Re-entry is always a
// deferred schedule, never a direct call, so call-stack depth stays bounded
// no matter how many processors a pipeline has. Routing halts early when a
// processor sets the exchange's stop-routing property or records a failure.
package pipeline
