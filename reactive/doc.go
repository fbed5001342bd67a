// Package reactive provides the execution scheduler that pipelines hand
// their deferred work to.
//
// Every routing step is submitted as a zero-argument task instead of being
// invoked recursively, which bounds call-stack depth regardless of how many
// stages a pipeline has or how many exchanges are in flight. The Pool
// implementation drains an unbounded FIFO queue with a small set of worker
// goroutines; sequential ordering within one routing run comes from the
// continuation chain itself, not from the executor.
package reactive
