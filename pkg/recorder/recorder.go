package recorder

import "math"

// BranchHandler receives one callback per executed conditional branch that
// has a fall-through path. The instrumentation engine invokes OnBranch on
// whatever thread of the observed program executes the branch, so
// implementations must not block.
type BranchHandler interface {
	OnBranch(addr, target uint64, taken bool)
}

// HandlerFunc adapts a plain function to BranchHandler.
type HandlerFunc func(addr, target uint64, taken bool)

func (f HandlerFunc) OnBranch(addr, target uint64, taken bool) {
	f(addr, target, taken)
}

// EventSource is the read-only side of a buffer, handed to the trace writer
// at finalization.
type EventSource interface {
	Size() uint64
	Events() []BranchEvent
}

// Buffer is what the capture path needs end to end: the callback during
// execution and the read accessors at finalization.
type Buffer interface {
	BranchHandler
	EventSource
}

// TraceBuffer retains branch events in arrival order up to a limit.
//
// It performs no synchronization. Use it only when the observed program is
// single-threaded; LockedBuffer and ShardedBuffer cover the multi-threaded
// case.
type TraceBuffer struct {
	events []BranchEvent
	limit  uint64
}

// NewTraceBuffer constructs an empty buffer. A limit of 0 means unlimited
// and is normalized to the maximum uint64 here, so the record path needs no
// sentinel check.
func NewTraceBuffer(limit uint64) *TraceBuffer {
	if limit == 0 {
		limit = math.MaxUint64
	}
	return &TraceBuffer{limit: limit}
}

// OnBranch appends one event unless the buffer is full. Overflowing events
// are dropped silently; capture continues without error.
//
// The bound check is inclusive, so a buffer with limit N accepts N+1 events
// before later calls become no-ops. That matches the tool this trace format
// originated with, and readers depend only on the count line, so the quirk
// is kept rather than corrected.
func (b *TraceBuffer) OnBranch(addr, target uint64, taken bool) {
	if uint64(len(b.events)) <= b.limit {
		b.events = append(b.events, BranchEvent{Addr: addr, Target: target, Taken: taken})
	}
}

// Size returns the number of retained events.
func (b *TraceBuffer) Size() uint64 {
	return uint64(len(b.events))
}

// Events returns the retained events in capture order. The slice is a view
// into the buffer; callers must not mutate it.
func (b *TraceBuffer) Events() []BranchEvent {
	return b.events
}
