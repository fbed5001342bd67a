// Package exchange provides the message envelope routed through processing
// pipelines.
//
// An Exchange carries an In message, an optional Out message, and a set of
// named properties. Ownership of an Exchange passes from stage to stage:
// exactly one stage holds it at any instant, so the type performs no internal
// locking. Stages observe the cumulative side effects of the stages before
// them; the pipeline never clones the envelope between stages.
//
// Two properties have meaning to the routing machinery itself:
//   - PropertyRouteStop: a boolean-convertible flag that halts routing
//     cooperatively at the next step boundary.
//   - the transacted flag (a field, not a property) selects the scheduling
//     discipline used for the first routing step.
package exchange
