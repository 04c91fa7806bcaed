package replay

import (
	"bytes"
	"strings"
	"testing"

	"github.com/willibrandon/BranchTrace/pkg/recorder"
)

func sampleEvents() []recorder.BranchEvent {
	return []recorder.BranchEvent{
		{Addr: 0x401000, Target: 0x401010, Taken: true},
		{Addr: 0x401020, Target: 0x401030, Taken: false},
		{Addr: 0x401000, Target: 0x401010, Taken: true},
		{Addr: 0x401040, Target: 0x401050, Taken: false},
	}
}

func TestReplayForward(t *testing.T) {
	r := NewBasicReplayer()
	var out bytes.Buffer
	r.SetOutput(&out)

	if err := r.LoadEvents(sampleEvents()); err != nil {
		t.Fatalf("LoadEvents failed: %v", err)
	}
	if err := r.ReplayForward(); err != nil {
		t.Fatalf("ReplayForward failed: %v", err)
	}

	if r.CurrentIndex() != 3 {
		t.Errorf("CurrentIndex() = %d, want 3", r.CurrentIndex())
	}
	if !strings.Contains(out.String(), "Replay complete") {
		t.Errorf("output missing completion line: %q", out.String())
	}
}

func TestReplayUntil(t *testing.T) {
	r := NewBasicReplayer()
	r.SetOutput(&bytes.Buffer{})
	_ = r.LoadEvents(sampleEvents())

	err := r.ReplayUntil(func(e recorder.BranchEvent) bool {
		return !e.Taken
	})
	if err != nil {
		t.Fatalf("ReplayUntil failed: %v", err)
	}
	if r.CurrentIndex() != 1 {
		t.Errorf("stopped at index %d, want 1 (first not-taken event)", r.CurrentIndex())
	}
}

func TestStepBackward(t *testing.T) {
	r := NewBasicReplayer()
	r.SetOutput(&bytes.Buffer{})
	_ = r.LoadEvents(sampleEvents())
	_ = r.ReplayForward()

	idx, err := r.StepBackward(r.CurrentIndex())
	if err != nil {
		t.Fatalf("StepBackward failed: %v", err)
	}
	if idx != 2 {
		t.Errorf("StepBackward returned %d, want 2", idx)
	}

	if _, err := r.StepBackward(0); err == nil {
		t.Error("StepBackward at index 0 should fail")
	}
}

func TestSeekEvent(t *testing.T) {
	r := NewBasicReplayer()
	r.SetOutput(&bytes.Buffer{})
	_ = r.LoadEvents(sampleEvents())

	if err := r.SeekEvent(2); err != nil {
		t.Fatalf("SeekEvent failed: %v", err)
	}
	if r.CurrentIndex() != 2 {
		t.Errorf("CurrentIndex() = %d, want 2", r.CurrentIndex())
	}
	if err := r.SeekEvent(99); err == nil {
		t.Error("SeekEvent out of range should fail")
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(sampleEvents(), 0)

	if s.Total != 4 {
		t.Errorf("Total = %d, want 4", s.Total)
	}
	if s.Taken != 2 || s.NotTaken != 2 {
		t.Errorf("Taken/NotTaken = %d/%d, want 2/2", s.Taken, s.NotTaken)
	}
	if s.Sites != 3 {
		t.Errorf("Sites = %d, want 3", s.Sites)
	}
	if len(s.Hottest) == 0 || s.Hottest[0].Addr != 0x401000 || s.Hottest[0].Count != 2 {
		t.Errorf("Hottest[0] = %+v, want site 401000 with 2 executions", s.Hottest)
	}
}

func TestSummarizeTopN(t *testing.T) {
	s := Summarize(sampleEvents(), 1)
	if len(s.Hottest) != 1 {
		t.Fatalf("len(Hottest) = %d, want 1", len(s.Hottest))
	}
	// Only the list is truncated, not the aggregates.
	if s.Sites != 3 {
		t.Errorf("Sites = %d, want 3", s.Sites)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil, 10)
	if s.Total != 0 || s.Sites != 0 || len(s.Hottest) != 0 {
		t.Errorf("empty trace stats = %+v", s)
	}
}

func TestInspectorSession(t *testing.T) {
	in := strings.NewReader("n\nn\nb\nj 3\ns\nl 2\nq\n")
	var out bytes.Buffer

	NewInspector(sampleEvents(), in, &out).Run()

	got := out.String()
	if !strings.Contains(got, "[0] 401000 -> 401010 taken") {
		t.Errorf("output missing first event: %q", got)
	}
	if !strings.Contains(got, "branches: 4 (taken 2, not taken 2)") {
		t.Errorf("output missing stats line: %q", got)
	}
}

func TestInspectorUnknownCommand(t *testing.T) {
	var out bytes.Buffer
	NewInspector(sampleEvents(), strings.NewReader("wat\nq\n"), &out).Run()
	if !strings.Contains(out.String(), "unknown command") {
		t.Errorf("output missing unknown-command notice: %q", out.String())
	}
}
