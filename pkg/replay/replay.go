// Package replay provides offline analysis of written branch traces:
// forward/backward iteration, aggregate statistics, and an interactive
// inspector.
package replay

import (
	"fmt"
	"io"
	"os"

	"github.com/willibrandon/BranchTrace/pkg/recorder"
)

// Replayer interface defines methods for walking a recorded branch trace
type Replayer interface {
	// LoadEvents loads recorded events into the replayer
	LoadEvents([]recorder.BranchEvent) error

	// ReplayForward replays all events from the current position
	ReplayForward() error

	// ReplayUntil replays events until stop returns true for one
	ReplayUntil(stop func(recorder.BranchEvent) bool) error

	// SeekEvent moves the cursor to the given index without replaying
	SeekEvent(idx int) error

	// StepBackward steps backward from the current index
	// returns the new index after stepping back
	StepBackward(currentIdx int) (int, error)

	// CurrentIndex returns the current event index
	CurrentIndex() int

	// Events returns all loaded events
	Events() []recorder.BranchEvent
}

// BasicReplayer implements the Replayer interface
type BasicReplayer struct {
	events     []recorder.BranchEvent
	currentIdx int
	out        io.Writer
}

// NewBasicReplayer creates a new BasicReplayer writing to stdout
func NewBasicReplayer() *BasicReplayer {
	return &BasicReplayer{
		currentIdx: -1,
		out:        os.Stdout,
	}
}

// SetOutput redirects replay output, used by tests and the inspector
func (r *BasicReplayer) SetOutput(w io.Writer) {
	r.out = w
}

// LoadEvents loads the given events into the replayer
func (r *BasicReplayer) LoadEvents(events []recorder.BranchEvent) error {
	r.events = events
	r.currentIdx = -1
	return nil
}

// ReplayForward replays all events from current position to the end
func (r *BasicReplayer) ReplayForward() error {
	return r.ReplayUntil(nil)
}

// ReplayUntil replays events until stop returns true for one.
// If stop is nil, replay all events.
func (r *BasicReplayer) ReplayUntil(stop func(recorder.BranchEvent) bool) error {
	if len(r.events) == 0 {
		return nil
	}

	startIdx := r.currentIdx + 1
	if startIdx < 0 {
		startIdx = 0
	}

	for i := startIdx; i < len(r.events); i++ {
		event := r.events[i]

		if stop != nil && stop(event) {
			fmt.Fprintf(r.out, "Stopped at event %d\n", i)
			r.currentIdx = i
			return nil
		}

		fmt.Fprintf(r.out, "Event %d: %s\n", i, event)
		r.currentIdx = i
	}

	fmt.Fprintln(r.out, "Replay complete")
	return nil
}

// SeekEvent moves the cursor to the given index
func (r *BasicReplayer) SeekEvent(idx int) error {
	if idx < -1 || idx >= len(r.events) {
		return fmt.Errorf("event index %d out of range [0, %d)", idx, len(r.events))
	}
	r.currentIdx = idx
	return nil
}

// StepBackward moves one step backward in the event log
func (r *BasicReplayer) StepBackward(currentIdx int) (int, error) {
	if currentIdx <= 0 {
		return 0, fmt.Errorf("already at the beginning")
	}

	newIdx := currentIdx - 1
	r.currentIdx = newIdx
	return newIdx, nil
}

// CurrentIndex returns the current event index
func (r *BasicReplayer) CurrentIndex() int {
	return r.currentIdx
}

// Events returns all loaded events
func (r *BasicReplayer) Events() []recorder.BranchEvent {
	return r.events
}
