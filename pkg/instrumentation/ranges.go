package instrumentation

import (
	"os"
	"strconv"
	"strings"
)

// AddrRange is a half-open address window [Low, High).
type AddrRange struct {
	Low  uint64
	High uint64
}

// Contains reports whether addr falls inside the range.
func (r AddrRange) Contains(addr uint64) bool {
	return addr >= r.Low && addr < r.High
}

// RangeOptions limits capture to branch instructions inside address windows,
// for example the text segment of a single loaded image.
type RangeOptions struct {
	// Enabled indicates whether capture is enabled at all.
	Enabled bool

	// Include lists the windows to capture. Empty means every address.
	Include []AddrRange

	// Exclude lists windows to drop. Takes precedence over Include.
	Exclude []AddrRange
}

// DefaultRangeOptions returns the default options: capture everything.
func DefaultRangeOptions() RangeOptions {
	return RangeOptions{
		Enabled: true,
	}
}

// Global range options
var (
	CurrentOptions = loadOptionsFromEnvironment()
)

// loadOptionsFromEnvironment loads range options from environment variables
func loadOptionsFromEnvironment() RangeOptions {
	options := DefaultRangeOptions()

	// BRANCHTRACE_ENABLED controls whether capture is enabled
	if enabled := os.Getenv("BRANCHTRACE_ENABLED"); enabled != "" {
		options.Enabled = enabled == "1" || enabled == "true" || enabled == "yes"
	}

	// BRANCHTRACE_INCLUDE lists address windows to capture, as
	// comma-separated hex pairs: "401000-402000,500000-501000"
	if include := os.Getenv("BRANCHTRACE_INCLUDE"); include != "" {
		options.Include = parseRangeList(include)
	}

	// BRANCHTRACE_EXCLUDE lists address windows to drop
	if exclude := os.Getenv("BRANCHTRACE_EXCLUDE"); exclude != "" {
		options.Exclude = parseRangeList(exclude)
	}

	return options
}

// parseRangeList parses "lo-hi,lo-hi,..." with hex bounds. Malformed or
// empty entries are skipped.
func parseRangeList(s string) []AddrRange {
	var ranges []AddrRange
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		lo, hi, ok := strings.Cut(part, "-")
		if !ok {
			continue
		}
		low, err := strconv.ParseUint(strings.TrimSpace(lo), 16, 64)
		if err != nil {
			continue
		}
		high, err := strconv.ParseUint(strings.TrimSpace(hi), 16, 64)
		if err != nil || high <= low {
			continue
		}
		ranges = append(ranges, AddrRange{Low: low, High: high})
	}
	return ranges
}

// ShouldRecord checks whether a branch at addr should be captured.
func ShouldRecord(addr uint64) bool {
	if !CurrentOptions.Enabled {
		return false
	}

	for _, r := range CurrentOptions.Exclude {
		if r.Contains(addr) {
			return false
		}
	}

	// If no includes specified, capture everything except exclusions
	if len(CurrentOptions.Include) == 0 {
		return true
	}

	for _, r := range CurrentOptions.Include {
		if r.Contains(addr) {
			return true
		}
	}

	return false
}

// SetRangeOptions sets the current range options.
func SetRangeOptions(options RangeOptions) {
	CurrentOptions = options
}
