package replay

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/willibrandon/BranchTrace/pkg/recorder"
)

// Inspector is an interactive prompt for stepping through a loaded trace.
type Inspector struct {
	replayer *BasicReplayer
	in       io.Reader
	out      io.Writer
	running  bool
}

// NewInspector creates an inspector over the given events, reading commands
// from in and printing to out.
func NewInspector(events []recorder.BranchEvent, in io.Reader, out io.Writer) *Inspector {
	r := NewBasicReplayer()
	r.SetOutput(out)
	_ = r.LoadEvents(events)
	return &Inspector{
		replayer: r,
		in:       in,
		out:      out,
	}
}

// Run begins the command loop and returns when the input ends or the user
// quits.
func (c *Inspector) Run() {
	c.running = true
	scanner := bufio.NewScanner(c.in)

	fmt.Fprintf(c.out, "BranchTrace inspector: %d events\n", len(c.replayer.Events()))
	c.printHelp()

	for c.running {
		fmt.Fprint(c.out, "(branchtrace) ")
		if !scanner.Scan() {
			break
		}
		c.handleCommand(strings.TrimSpace(scanner.Text()))
	}
}

func (c *Inspector) handleCommand(input string) {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return
	}

	switch fields[0] {
	case "n", "next":
		c.stepForward()
	case "b", "back":
		idx, err := c.replayer.StepBackward(c.replayer.CurrentIndex())
		if err != nil {
			fmt.Fprintf(c.out, "%v\n", err)
			return
		}
		c.printEvent(idx)
	case "j", "jump":
		if len(fields) < 2 {
			fmt.Fprintln(c.out, "usage: jump <index>")
			return
		}
		idx, err := strconv.Atoi(fields[1])
		if err != nil {
			fmt.Fprintf(c.out, "bad index %q\n", fields[1])
			return
		}
		if err := c.replayer.SeekEvent(idx); err != nil {
			fmt.Fprintf(c.out, "%v\n", err)
			return
		}
		c.printEvent(idx)
	case "l", "list":
		n := 10
		if len(fields) > 1 {
			if v, err := strconv.Atoi(fields[1]); err == nil && v > 0 {
				n = v
			}
		}
		c.list(n)
	case "s", "stats":
		Summarize(c.replayer.Events(), 10).Format(c.out)
	case "h", "help":
		c.printHelp()
	case "q", "quit", "exit":
		c.running = false
	default:
		fmt.Fprintf(c.out, "unknown command %q, try 'help'\n", fields[0])
	}
}

func (c *Inspector) stepForward() {
	idx := c.replayer.CurrentIndex() + 1
	if idx >= len(c.replayer.Events()) {
		fmt.Fprintln(c.out, "already at the end")
		return
	}
	_ = c.replayer.SeekEvent(idx)
	c.printEvent(idx)
}

func (c *Inspector) printEvent(idx int) {
	fmt.Fprintf(c.out, "[%d] %s\n", idx, c.replayer.Events()[idx])
}

func (c *Inspector) list(n int) {
	events := c.replayer.Events()
	start := c.replayer.CurrentIndex()
	if start < 0 {
		start = 0
	}
	for i := start; i < len(events) && i < start+n; i++ {
		c.printEvent(i)
	}
}

func (c *Inspector) printHelp() {
	fmt.Fprintln(c.out, "commands:")
	fmt.Fprintln(c.out, "  n(ext)        step to the next event")
	fmt.Fprintln(c.out, "  b(ack)        step to the previous event")
	fmt.Fprintln(c.out, "  j(ump) <idx>  move to an event by index")
	fmt.Fprintln(c.out, "  l(ist) [n]    list events from the cursor")
	fmt.Fprintln(c.out, "  s(tats)       print trace statistics")
	fmt.Fprintln(c.out, "  q(uit)        leave the inspector")
}
