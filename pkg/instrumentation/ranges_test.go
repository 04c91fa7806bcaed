package instrumentation

import (
	"testing"

	"github.com/willibrandon/BranchTrace/pkg/recorder"
)

func TestShouldRecordDefaults(t *testing.T) {
	old := CurrentOptions
	defer SetRangeOptions(old)
	SetRangeOptions(DefaultRangeOptions())

	if !ShouldRecord(0x401000) {
		t.Error("default options should capture every address")
	}
}

func TestShouldRecordIncludeExclude(t *testing.T) {
	old := CurrentOptions
	defer SetRangeOptions(old)

	SetRangeOptions(RangeOptions{
		Enabled: true,
		Include: []AddrRange{{Low: 0x400000, High: 0x500000}},
		Exclude: []AddrRange{{Low: 0x410000, High: 0x420000}},
	})

	if !ShouldRecord(0x401000) {
		t.Error("0x401000 is inside the include window")
	}
	if ShouldRecord(0x415000) {
		t.Error("0x415000 is excluded; exclude wins over include")
	}
	if ShouldRecord(0x500000) {
		t.Error("0x500000 is outside the half-open include window")
	}
	if ShouldRecord(0x300000) {
		t.Error("0x300000 is outside every include window")
	}
}

func TestShouldRecordDisabled(t *testing.T) {
	old := CurrentOptions
	defer SetRangeOptions(old)

	SetRangeOptions(RangeOptions{Enabled: false})
	if ShouldRecord(0x401000) {
		t.Error("disabled options must drop everything")
	}
}

func TestParseRangeList(t *testing.T) {
	ranges := parseRangeList("401000-402000, 500000-501000, garbage, 9-5")
	if len(ranges) != 2 {
		t.Fatalf("parsed %d ranges, want 2 (malformed entries skipped)", len(ranges))
	}
	if ranges[0] != (AddrRange{Low: 0x401000, High: 0x402000}) {
		t.Errorf("range 0 = %+v", ranges[0])
	}
	if ranges[1] != (AddrRange{Low: 0x500000, High: 0x501000}) {
		t.Errorf("range 1 = %+v", ranges[1])
	}
}

func TestOnBranchForwarding(t *testing.T) {
	old := CurrentOptions
	defer SetRangeOptions(old)
	defer Init(nil)

	SetRangeOptions(RangeOptions{
		Enabled: true,
		Exclude: []AddrRange{{Low: 0x600000, High: 0x700000}},
	})

	buf := recorder.NewTraceBuffer(0)
	Init(buf)

	OnBranch(0x401000, 0x401010, true)
	OnBranch(0x650000, 0x650010, true) // excluded
	OnBranch(0x402000, 0x402010, false)

	if buf.Size() != 2 {
		t.Fatalf("buffer Size() = %d, want 2", buf.Size())
	}
	events := buf.Events()
	if events[0].Addr != 0x401000 || events[1].Addr != 0x402000 {
		t.Errorf("recorded addresses = %x, %x", events[0].Addr, events[1].Addr)
	}
}

func TestOnBranchNoHandler(t *testing.T) {
	Init(nil)
	// Must not panic.
	OnBranch(0x401000, 0x401010, true)
}
