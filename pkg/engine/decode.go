package engine

import (
	lru "github.com/hashicorp/golang-lru"
	"golang.org/x/arch/x86/x86asm"
)

// branchInfo describes a decoded conditional branch instruction.
type branchInfo struct {
	size   int    // instruction length in bytes
	target uint64 // resolved jump destination
}

// fallThrough is the address executed when the branch is not taken.
func (b branchInfo) fallThrough(pc uint64) uint64 {
	return pc + uint64(b.size)
}

// memReader reads n bytes of target memory at addr.
type memReader func(addr uint64, n int) ([]byte, error)

// decoder classifies instructions at target addresses. Hot loops revisit the
// same branch PCs constantly, so decode results are cached per PC; code is
// not rewritten at runtime, which keeps the cache valid for the whole run.
type decoder struct {
	mem   memReader
	cache *lru.Cache // pc -> branchInfo, or nil for a non-branch
}

const (
	decodeCacheSize = 1 << 16

	// maxInstLen is the architectural maximum x86 instruction length.
	maxInstLen = 15
)

func newDecoder(mem memReader) *decoder {
	cache, _ := lru.New(decodeCacheSize)
	return &decoder{mem: mem, cache: cache}
}

// branchAt reports whether the instruction at pc is a conditional branch
// with a fall-through path, decoding and caching on first sight.
func (d *decoder) branchAt(pc uint64) (branchInfo, bool, error) {
	if v, ok := d.cache.Get(pc); ok {
		if bi, isBranch := v.(branchInfo); isBranch {
			return bi, true, nil
		}
		return branchInfo{}, false, nil
	}

	buf, err := d.mem(pc, maxInstLen)
	if err != nil {
		return branchInfo{}, false, err
	}

	bi, ok := decodeBranch(buf, pc)
	if !ok {
		d.cache.Add(pc, nil)
		return branchInfo{}, false, nil
	}
	d.cache.Add(pc, bi)
	return bi, true, nil
}

// decodeBranch decodes one instruction and resolves its target when it is a
// conditional branch. Undecodable bytes are treated as non-branches; the
// engine just steps over them.
func decodeBranch(code []byte, pc uint64) (branchInfo, bool) {
	inst, err := x86asm.Decode(code, 64)
	if err != nil {
		return branchInfo{}, false
	}
	if !isCondJump(inst.Op) {
		return branchInfo{}, false
	}
	rel, ok := inst.Args[0].(x86asm.Rel)
	if !ok {
		return branchInfo{}, false
	}
	return branchInfo{
		size:   inst.Len,
		target: pc + uint64(inst.Len) + uint64(int64(rel)),
	}, true
}

// isCondJump reports whether op is a conditional jump. Unconditional jumps,
// calls, and returns have no fall-through path and are never reported.
func isCondJump(op x86asm.Op) bool {
	switch op {
	case x86asm.JA, x86asm.JAE, x86asm.JB, x86asm.JBE,
		x86asm.JE, x86asm.JNE, x86asm.JG, x86asm.JGE, x86asm.JL, x86asm.JLE,
		x86asm.JO, x86asm.JNO, x86asm.JP, x86asm.JNP, x86asm.JS, x86asm.JNS,
		x86asm.JCXZ, x86asm.JECXZ, x86asm.JRCXZ:
		return true
	}
	return false
}
