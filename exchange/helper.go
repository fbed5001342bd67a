package exchange

// PrepareOutToIn normalizes an exchange between pipeline stages so the next
// stage sees the previous stage's output as its own input. If no Out message
// was produced the In message is left as is.
func PrepareOutToIn(ex *Exchange) {
	if ex.HasOut() {
		ex.SetIn(ex.out)
		ex.SetOut(nil)
	}
}

// CopyResults copies the processing outcome of source onto target.
//
// When target and source are the same exchange this is a finalization step:
// for an out-capable exchange that produced no Out message and did not fail,
// the In message is surfaced as the Out message so observers relying on
// result-vs-body semantics see a consistent view.
func CopyResults(target, source *Exchange) {
	if target == source {
		if target.pattern.IsOutCapable() && !target.HasOut() && !target.IsFailed() {
			target.SetOut(target.In().Copy())
		}
		return
	}

	if source.HasOut() {
		target.SetOut(source.out.Copy())
	} else {
		target.SetIn(source.In().Copy())
		target.SetOut(nil)
	}
	for k, v := range source.properties {
		target.SetProperty(k, v)
	}
	target.err = source.err
	target.rollbackOnly = source.rollbackOnly
}
