package recorder

import (
	"math"
	"testing"
)

func TestTraceBufferOrdering(t *testing.T) {
	buf := NewTraceBuffer(0)

	for i := 0; i < 100; i++ {
		buf.OnBranch(0x400000+uint64(i), 0x500000+uint64(i), i%3 == 0)
	}

	if buf.Size() != 100 {
		t.Fatalf("Size() = %d, want 100", buf.Size())
	}

	events := buf.Events()
	for i, e := range events {
		if e.Addr != 0x400000+uint64(i) {
			t.Errorf("event %d: Addr = %#x, want %#x", i, e.Addr, 0x400000+uint64(i))
		}
		if e.Target != 0x500000+uint64(i) {
			t.Errorf("event %d: Target = %#x, want %#x", i, e.Target, 0x500000+uint64(i))
		}
		if e.Taken != (i%3 == 0) {
			t.Errorf("event %d: Taken = %v, want %v", i, e.Taken, i%3 == 0)
		}
	}
}

func TestTraceBufferLimit(t *testing.T) {
	const limit = 10
	buf := NewTraceBuffer(limit)

	for i := 0; i < 50; i++ {
		buf.OnBranch(uint64(i), 0, true)
	}

	// The bound check is inclusive, so limit+1 events fit.
	if buf.Size() != limit+1 {
		t.Fatalf("Size() = %d, want %d", buf.Size(), limit+1)
	}

	// Further calls stay no-ops.
	buf.OnBranch(0xdead, 0, false)
	if buf.Size() != limit+1 {
		t.Fatalf("Size() after overflow record = %d, want %d", buf.Size(), limit+1)
	}

	events := buf.Events()
	for i, e := range events {
		if e.Addr != uint64(i) {
			t.Errorf("event %d: Addr = %#x, want %#x", i, e.Addr, i)
		}
	}
}

func TestTraceBufferZeroLimitIsUnlimited(t *testing.T) {
	buf := NewTraceBuffer(0)
	if buf.limit != math.MaxUint64 {
		t.Fatalf("limit = %d, want MaxUint64", buf.limit)
	}

	for i := 0; i < 10000; i++ {
		buf.OnBranch(uint64(i), 0, false)
	}
	if buf.Size() != 10000 {
		t.Fatalf("Size() = %d, want 10000", buf.Size())
	}
}

func TestTraceBufferExactCapacity(t *testing.T) {
	// N events with limit >= N are all retained.
	buf := NewTraceBuffer(5)
	for i := 0; i < 5; i++ {
		buf.OnBranch(uint64(i), 0, true)
	}
	if buf.Size() != 5 {
		t.Fatalf("Size() = %d, want 5", buf.Size())
	}
}

func TestHandlerFunc(t *testing.T) {
	var got BranchEvent
	h := HandlerFunc(func(addr, target uint64, taken bool) {
		got = BranchEvent{Addr: addr, Target: target, Taken: taken}
	})

	h.OnBranch(0x401000, 0x401010, true)

	want := BranchEvent{Addr: 0x401000, Target: 0x401010, Taken: true}
	if got != want {
		t.Fatalf("forwarded event = %+v, want %+v", got, want)
	}
}
