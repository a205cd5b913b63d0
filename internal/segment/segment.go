// Package segment splits a run of samples into bounded segments for storage
// and streaming.
package segment

import "sort"

const (
	DefaultTargetSize = 4096
	DefaultMinSize    = 1024
	DefaultMaxSize    = 8192
)

// Options configures segment sizes, in samples.
type Options struct {
	TargetSize int
	MinSize    int
	MaxSize    int
}

// DefaultOptions returns default segment options.
func DefaultOptions() Options {
	return Options{
		TargetSize: DefaultTargetSize,
		MinSize:    DefaultMinSize,
		MaxSize:    DefaultMaxSize,
	}
}

// Segment is the half-open sample range [Start, End).
type Segment struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the number of samples in the segment.
func (s Segment) Len() int { return s.End - s.Start }

// Split cuts [0, n) into segments. Cuts are preferred boundaries (for example
// whole seconds); blocks between cuts are merged up to TargetSize and blocks
// longer than MaxSize are hard-split. A run of at most MaxSize samples is a
// single segment.
func Split(n int, cuts []int, opts Options) []Segment {
	if opts.TargetSize == 0 {
		opts = DefaultOptions()
	}
	if n <= 0 {
		return nil
	}
	if n <= opts.MaxSize {
		return []Segment{{Start: 0, End: n}}
	}
	return mergeBlocks(splitBlocks(n, cuts), opts)
}

// Every returns the cut points step, 2*step, ... below n.
func Every(step, n int) []int {
	if step <= 0 {
		return nil
	}
	var cuts []int
	for c := step; c < n; c += step {
		cuts = append(cuts, c)
	}
	return cuts
}

// splitBlocks turns cut points into contiguous blocks covering [0, n).
func splitBlocks(n int, cuts []int) []Segment {
	sorted := append([]int(nil), cuts...)
	sort.Ints(sorted)

	var blocks []Segment
	start := 0
	for _, c := range sorted {
		if c <= start || c >= n {
			continue
		}
		blocks = append(blocks, Segment{Start: start, End: c})
		start = c
	}
	return append(blocks, Segment{Start: start, End: n})
}

// mergeBlocks combines small blocks and splits oversized ones.
func mergeBlocks(blocks []Segment, opts Options) []Segment {
	var results []Segment
	var accum Segment
	open := false

	flush := func() {
		if !open {
			return
		}
		if accum.Len() > opts.MaxSize {
			results = append(results, hardSplit(accum, opts)...)
		} else {
			results = append(results, accum)
		}
		open = false
	}

	for _, b := range blocks {
		if !open {
			accum, open = b, true
			continue
		}
		if b.End-accum.Start <= opts.TargetSize {
			accum.End = b.End
		} else {
			flush()
			accum, open = b, true
		}
	}
	flush()

	// Fold a short tail into its predecessor when that stays within MaxSize.
	if k := len(results); k >= 2 && results[k-1].Len() < opts.MinSize &&
		results[k-1].End-results[k-2].Start <= opts.MaxSize {
		results[k-2].End = results[k-1].End
		results = results[:k-1]
	}
	return results
}

// hardSplit breaks a block that exceeds MaxSize into TargetSize pieces.
func hardSplit(b Segment, opts Options) []Segment {
	var results []Segment
	for start := b.Start; start < b.End; start += opts.TargetSize {
		results = append(results, Segment{Start: start, End: min(start+opts.TargetSize, b.End)})
	}
	return results
}
