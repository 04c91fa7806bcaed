package replay

import (
	"fmt"
	"io"
	"sort"

	"github.com/willibrandon/BranchTrace/pkg/recorder"
)

// Stats summarizes a branch trace for offline analysis.
type Stats struct {
	Total    uint64
	Taken    uint64
	NotTaken uint64
	Sites    int         // distinct branch addresses
	Hottest  []SiteCount // top sites by execution count, descending
}

// SiteCount aggregates the executions of one branch site.
type SiteCount struct {
	Addr  uint64
	Count uint64
	Taken uint64
}

// Summarize aggregates a trace. topN bounds the Hottest list; 0 means all
// sites.
func Summarize(events []recorder.BranchEvent, topN int) Stats {
	s := Stats{Total: uint64(len(events))}

	byAddr := make(map[uint64]*SiteCount)
	for _, e := range events {
		sc := byAddr[e.Addr]
		if sc == nil {
			sc = &SiteCount{Addr: e.Addr}
			byAddr[e.Addr] = sc
		}
		sc.Count++
		if e.Taken {
			sc.Taken++
			s.Taken++
		} else {
			s.NotTaken++
		}
	}
	s.Sites = len(byAddr)

	hottest := make([]SiteCount, 0, len(byAddr))
	for _, sc := range byAddr {
		hottest = append(hottest, *sc)
	}
	sort.Slice(hottest, func(i, j int) bool {
		if hottest[i].Count != hottest[j].Count {
			return hottest[i].Count > hottest[j].Count
		}
		return hottest[i].Addr < hottest[j].Addr
	})
	if topN > 0 && len(hottest) > topN {
		hottest = hottest[:topN]
	}
	s.Hottest = hottest
	return s
}

// Format writes a human-readable report.
func (s Stats) Format(w io.Writer) {
	fmt.Fprintf(w, "branches: %d (taken %d, not taken %d)\n", s.Total, s.Taken, s.NotTaken)
	fmt.Fprintf(w, "sites: %d\n", s.Sites)
	for _, sc := range s.Hottest {
		fmt.Fprintf(w, "  %x  %d executions, %d taken\n", sc.Addr, sc.Count, sc.Taken)
	}
}
