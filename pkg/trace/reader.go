package trace

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/willibrandon/BranchTrace/pkg/recorder"
)

// ReadTrace parses a trace stream back into branch events, validating the
// count line against the event pairs that follow. Targets are not part of
// the format and come back zero.
func ReadTrace(r io.Reader) ([]recorder.BranchEvent, error) {
	sc := bufio.NewScanner(r)

	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, err
		}
		return nil, errors.New("empty trace: missing count line")
	}
	count, err := strconv.ParseUint(strings.TrimSpace(sc.Text()), 16, 64)
	if err != nil {
		return nil, fmt.Errorf("bad count line %q: %v", sc.Text(), err)
	}

	alloc := count
	if alloc > 1<<20 {
		alloc = 1 << 20
	}
	events := make([]recorder.BranchEvent, 0, alloc)

	for i := uint64(0); i < count; i++ {
		if !sc.Scan() {
			return nil, fmt.Errorf("truncated trace: %d of %d events", i, count)
		}
		var taken bool
		switch flag := strings.TrimSpace(sc.Text()); flag {
		case "1":
			taken = true
		case "0":
			taken = false
		default:
			return nil, fmt.Errorf("event %d: bad taken flag %q", i, flag)
		}

		if !sc.Scan() {
			return nil, fmt.Errorf("truncated trace: %d of %d events", i, count)
		}
		addr, err := strconv.ParseUint(strings.TrimSpace(sc.Text()), 16, 64)
		if err != nil {
			return nil, fmt.Errorf("event %d: bad address %q: %v", i, sc.Text(), err)
		}

		events = append(events, recorder.BranchEvent{Addr: addr, Taken: taken})
	}

	return events, sc.Err()
}

// ReadTraceFile opens and parses a written trace, decompressing when the
// trace was captured with compression.
func ReadTraceFile(path string, compression CompressionType) ([]recorder.BranchEvent, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open trace: %w", err)
	}
	defer f.Close()

	r, err := NewCompressedReader(f, compression)
	if err != nil {
		return nil, fmt.Errorf("open compressed trace: %w", err)
	}
	return ReadTrace(r)
}
