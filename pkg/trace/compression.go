package trace

import (
	"io"

	"github.com/klauspost/compress/zstd"
)

// CompressionType defines the compression applied to the trace destination.
type CompressionType int

const (
	// NoCompression writes the trace as plain text.
	NoCompression CompressionType = iota
	// ZstdCompression wraps the trace in a Zstandard frame.
	ZstdCompression
)

// NewCompressedWriter returns a writer that compresses data before writing.
func NewCompressedWriter(w io.Writer, compressionType CompressionType) io.Writer {
	if compressionType == NoCompression {
		return w
	}
	encoder, _ := zstd.NewWriter(w)
	return encoder
}

// NewCompressedReader returns a reader that decompresses data after reading.
func NewCompressedReader(r io.Reader, compressionType CompressionType) (io.Reader, error) {
	if compressionType == NoCompression {
		return r, nil
	}
	return zstd.NewReader(r)
}

// CloseCompressedWriter finishes the compression frame if one is open.
func CloseCompressedWriter(w io.Writer, compressionType CompressionType) error {
	if compressionType == NoCompression {
		return nil
	}
	if zw, ok := w.(*zstd.Encoder); ok {
		return zw.Close()
	}
	return nil
}
