// Package trace serializes finalized trace buffers to their destination and
// parses written traces back for offline analysis.
//
// The trace format is line oriented: the first line is the event count in
// lowercase hex with no prefix, then each event contributes two lines, the
// taken flag ("1" or "0") and the branch address in lowercase hex. Target
// addresses are captured in the buffer but are not part of the format.
package trace

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/willibrandon/BranchTrace/pkg/recorder"
)

// ErrFinalized is returned by Write once the trace has already been written.
var ErrFinalized = errors.New("trace already finalized")

// Writer owns the trace destination and drains a buffer to it exactly once.
type Writer struct {
	file        *os.File // nil when falling back to the diagnostic stream
	out         io.Writer
	bufWriter   *bufio.Writer
	diag        io.Writer
	compression CompressionType
	finalized   bool
}

// Option configures a Writer at Open time.
type Option func(*Writer)

// WithCompression wraps the destination in the given compression codec.
func WithCompression(ct CompressionType) Option {
	return func(w *Writer) { w.compression = ct }
}

// WithDiagnostics redirects the capture summary line away from stderr.
func WithDiagnostics(diag io.Writer) Option {
	return func(w *Writer) { w.diag = diag }
}

// Open prepares the trace destination. A non-empty path is created or
// truncated; an empty path falls back to stderr. An unwritable path is
// reported here rather than silently swallowed on every later write.
func Open(path string, opts ...Option) (*Writer, error) {
	w := &Writer{
		diag:        os.Stderr,
		compression: NoCompression,
	}
	for _, opt := range opts {
		opt(w)
	}

	var dst io.Writer = os.Stderr
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return nil, fmt.Errorf("open trace output: %w", err)
		}
		w.file = f
		dst = f
	}

	w.bufWriter = bufio.NewWriter(dst)
	w.out = NewCompressedWriter(w.bufWriter, w.compression)
	return w, nil
}

// Write reports the capture summary on the diagnostic stream and drains the
// buffer to the destination: the count line, then one taken-flag line and
// one address line per event, in capture order.
//
// Targets stay unwritten on purpose; emitting them would break every reader
// of the format. Write succeeds at most once and returns ErrFinalized on
// later calls without touching already-emitted output.
func (w *Writer) Write(src recorder.EventSource) error {
	if w.finalized {
		return ErrFinalized
	}
	w.finalized = true

	events := src.Events()
	fmt.Fprintf(w.diag, "Instrumented a total of %d branches.\n", src.Size())

	if _, err := fmt.Fprintf(w.out, "%x\n", len(events)); err != nil {
		return fmt.Errorf("write trace header: %w", err)
	}
	for _, e := range events {
		flag := "0"
		if e.Taken {
			flag = "1"
		}
		if _, err := fmt.Fprintf(w.out, "%s\n%x\n", flag, e.Addr); err != nil {
			return fmt.Errorf("write trace event: %w", err)
		}
	}
	return nil
}

// Close flushes buffered output and releases the destination. The fallback
// diagnostic stream itself is left open.
func (w *Writer) Close() error {
	if err := CloseCompressedWriter(w.out, w.compression); err != nil {
		return err
	}
	if err := w.bufWriter.Flush(); err != nil {
		return err
	}
	if w.file != nil {
		return w.file.Close()
	}
	return nil
}
