package vad

// Segment is one detected speech interval in seconds. Start is always
// strictly before End; segment lists are ascending and non-overlapping.
type Segment struct {
	Start float64
	End   float64
}

// Duration returns the segment length in seconds.
func (s Segment) Duration() float64 {
	return s.End - s.Start
}

// MergeSegments coalesces consecutive segments separated by a gap shorter
// than gapSeconds. The input must already be ascending. Applying the merge
// to an already-merged list returns an identical list: after one pass
// every remaining gap is at least gapSeconds, so the pass is a fixed
// point.
func MergeSegments(segments []Segment, gapSeconds float64) []Segment {
	if len(segments) <= 1 {
		out := make([]Segment, len(segments))
		copy(out, segments)
		return out
	}
	merged := make([]Segment, 0, len(segments))
	merged = append(merged, segments[0])
	for _, cur := range segments[1:] {
		prev := &merged[len(merged)-1]
		if cur.Start-prev.End < gapSeconds {
			if cur.End > prev.End {
				prev.End = cur.End
			}
			continue
		}
		merged = append(merged, cur)
	}
	return merged
}

// run is a half-open chunk-index interval [start, end).
type run struct {
	start int
	end   int
}

// padRuns extends each run by pad chunks on both sides, clipped to
// [0, total), and coalesces runs the padding caused to touch or overlap.
func padRuns(runs []run, pad, total int) []run {
	if len(runs) == 0 || pad == 0 {
		return runs
	}
	padded := make([]run, 0, len(runs))
	for _, r := range runs {
		start := r.start - pad
		if start < 0 {
			start = 0
		}
		end := r.end + pad
		if end > total {
			end = total
		}
		if len(padded) > 0 && start <= padded[len(padded)-1].end {
			if end > padded[len(padded)-1].end {
				padded[len(padded)-1].end = end
			}
			continue
		}
		padded = append(padded, run{start: start, end: end})
	}
	return padded
}

// speechRuns collapses per-chunk flags into contiguous runs.
func speechRuns(flags []bool) []run {
	var runs []run
	start := -1
	for i, speech := range flags {
		switch {
		case speech && start < 0:
			start = i
		case !speech && start >= 0:
			runs = append(runs, run{start: start, end: i})
			start = -1
		}
	}
	if start >= 0 {
		runs = append(runs, run{start: start, end: len(flags)})
	}
	return runs
}
