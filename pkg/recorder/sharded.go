package recorder

import (
	"math"
	"sort"
	"sync"
	"sync/atomic"
)

// ShardedBuffer records branch events from multiple threads without a lock
// on the record path. Each thread of the observed program owns a Shard;
// events are stamped with a process-wide monotonic sequence number, and
// Events merges the shards into that total order at finalization.
//
// The sequence counter doubles as the capacity check, so the bound is exact
// across shards and keeps the same inclusive semantics as TraceBuffer.
type ShardedBuffer struct {
	limit uint64
	seq   atomic.Uint64
	kept  atomic.Uint64

	mu     sync.Mutex // guards shards; registration only, not the record path
	shards []*Shard
	def    *Shard
}

// Shard is the per-thread handler vended by ShardedBuffer.Shard. A shard
// must only ever be used from one thread; it performs no synchronization of
// its own.
type Shard struct {
	parent *ShardedBuffer
	events []seqEvent
}

type seqEvent struct {
	seq uint64
	ev  BranchEvent
}

// NewShardedBuffer constructs an empty sharded buffer. Limit semantics are
// those of NewTraceBuffer.
func NewShardedBuffer(limit uint64) *ShardedBuffer {
	if limit == 0 {
		limit = math.MaxUint64
	}
	b := &ShardedBuffer{limit: limit}
	b.def = b.Shard()
	return b
}

// Shard registers and returns a new per-thread handler. Call once per thread
// of the observed program, before that thread starts executing.
func (b *ShardedBuffer) Shard() *Shard {
	s := &Shard{parent: b}
	b.mu.Lock()
	b.shards = append(b.shards, s)
	b.mu.Unlock()
	return s
}

// OnBranch records through a default shard, for single-threaded engines that
// do not manage shards themselves. Multi-threaded engines use Shard.
func (b *ShardedBuffer) OnBranch(addr, target uint64, taken bool) {
	b.def.OnBranch(addr, target, taken)
}

func (s *Shard) OnBranch(addr, target uint64, taken bool) {
	p := s.parent
	n := p.seq.Add(1) - 1
	if n <= p.limit {
		s.events = append(s.events, seqEvent{
			seq: n,
			ev:  BranchEvent{Addr: addr, Target: target, Taken: taken},
		})
		p.kept.Add(1)
	}
}

// Size returns the number of retained events across all shards.
func (b *ShardedBuffer) Size() uint64 {
	return b.kept.Load()
}

// Events merges the shards into sequence order. Call only after capture has
// stopped; it reads shard slices without synchronization against recording.
func (b *ShardedBuffer) Events() []BranchEvent {
	b.mu.Lock()
	shards := b.shards
	b.mu.Unlock()

	var merged []seqEvent
	for _, s := range shards {
		merged = append(merged, s.events...)
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].seq < merged[j].seq })

	events := make([]BranchEvent, len(merged))
	for i, se := range merged {
		events[i] = se.ev
	}
	return events
}
