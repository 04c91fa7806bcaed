// Package instrumentation is the registration surface between an
// instrumentation engine and the recorder. The engine calls OnBranch once
// per executed conditional branch that has a fall-through path; the recorder
// never calls back into the engine beyond this registration.
package instrumentation

import "github.com/willibrandon/BranchTrace/pkg/recorder"

var globalHandler recorder.BranchHandler

// Init registers the handler that receives branch callbacks. Call once at
// startup, before the engine starts the observed program; registration is
// not synchronized against capture.
func Init(h recorder.BranchHandler) {
	globalHandler = h
}

// OnBranch forwards one branch observation to the registered handler. With
// no handler registered, or the address filtered out by the configured
// ranges, the call is a no-op.
func OnBranch(addr, target uint64, taken bool) {
	if globalHandler == nil {
		return
	}
	if !ShouldRecord(addr) {
		return
	}
	globalHandler.OnBranch(addr, target, taken)
}
