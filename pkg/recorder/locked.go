package recorder

import "sync"

// LockedBuffer serializes access to a TraceBuffer with a single mutex. It
// keeps ordering and the capacity bound correct when the observed program
// runs multiple threads, at the cost of contention on the record path.
type LockedBuffer struct {
	mu  sync.Mutex
	buf *TraceBuffer
}

// NewLockedBuffer constructs an empty locked buffer. Limit semantics are
// those of NewTraceBuffer.
func NewLockedBuffer(limit uint64) *LockedBuffer {
	return &LockedBuffer{buf: NewTraceBuffer(limit)}
}

func (b *LockedBuffer) OnBranch(addr, target uint64, taken bool) {
	b.mu.Lock()
	b.buf.OnBranch(addr, target, taken)
	b.mu.Unlock()
}

func (b *LockedBuffer) Size() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Size()
}

func (b *LockedBuffer) Events() []BranchEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Events()
}
