// Package processors provides ready-made processor implementations for
// composing pipelines: function adapters, logging wrappers, and retrying
// wrappers. They are opaque to the routing machinery; the pipeline only sees
// the Processor contract.
package processors
