package recorder

import "fmt"

// BranchEvent is one observed execution of a conditional branch instruction.
type BranchEvent struct {
	Addr   uint64 // program counter of the branch instruction
	Target uint64 // resolved branch target; captured but never written to traces
	Taken  bool
}

// String returns a human-readable form of the event for diagnostics.
func (e BranchEvent) String() string {
	if e.Taken {
		return fmt.Sprintf("%x -> %x taken", e.Addr, e.Target)
	}
	return fmt.Sprintf("%x not taken", e.Addr)
}
