// Package config resolves the recorder's configuration surface. Precedence,
// lowest to highest: built-in defaults, a YAML config file, a .env file next
// to the process, process environment variables, and finally command-line
// flags (applied by the CLI).
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/willibrandon/BranchTrace/pkg/recorder"
)

// DefaultOutput is the trace file written when no destination is given.
const DefaultOutput = "BranchTrace.out"

// Buffer mode names accepted by Config.Buffer.
const (
	BufferSingle  = "single"
	BufferLocked  = "locked"
	BufferSharded = "sharded"
)

// Config holds the recorder configuration.
type Config struct {
	// Output is the trace destination path. Empty means the diagnostic
	// stream.
	Output string `yaml:"output"`

	// Limit bounds the number of retained events; 0 means unlimited.
	Limit uint64 `yaml:"limit"`

	// Compress wraps the trace destination in a Zstandard frame.
	Compress bool `yaml:"compress"`

	// Buffer selects the buffer implementation: single, locked, or sharded.
	Buffer string `yaml:"buffer"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Output: DefaultOutput,
		Buffer: BufferSingle,
	}
}

// Load reads a YAML config file over the defaults. An empty path returns the
// defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// FromEnvironment overlays BRANCHTRACE_* environment variables. A .env file
// in the working directory participates via godotenv; real environment
// variables win over it.
func (c Config) FromEnvironment() Config {
	_ = godotenv.Load()

	if v := os.Getenv("BRANCHTRACE_OUTPUT"); v != "" {
		c.Output = v
	}
	if v := os.Getenv("BRANCHTRACE_LIMIT"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			c.Limit = n
		}
	}
	if v := os.Getenv("BRANCHTRACE_COMPRESS"); v != "" {
		c.Compress = v == "1" || v == "true" || v == "yes"
	}
	if v := os.Getenv("BRANCHTRACE_BUFFER"); v != "" {
		c.Buffer = v
	}
	return c
}

// Validate checks enum fields.
func (c Config) Validate() error {
	switch c.Buffer {
	case "", BufferSingle, BufferLocked, BufferSharded:
		return nil
	default:
		return fmt.Errorf("unknown buffer mode %q (want %s, %s, or %s)",
			c.Buffer, BufferSingle, BufferLocked, BufferSharded)
	}
}

// NewBuffer constructs the configured buffer implementation.
func (c Config) NewBuffer() (recorder.Buffer, error) {
	switch c.Buffer {
	case "", BufferSingle:
		return recorder.NewTraceBuffer(c.Limit), nil
	case BufferLocked:
		return recorder.NewLockedBuffer(c.Limit), nil
	case BufferSharded:
		return recorder.NewShardedBuffer(c.Limit), nil
	default:
		return nil, fmt.Errorf("unknown buffer mode %q", c.Buffer)
	}
}
