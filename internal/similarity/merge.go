package similarity

import (
	"math"
	"sort"
)

// Merge coalesces overlapping or touching segments into a sorted,
// non-overlapping list. The merged Text joins the pieces with a space and is
// only a display aid; use Excerpt on the original text for the exact
// substring. The input slice is left untouched.
func Merge(segments []MatchedSegment) []MatchedSegment {
	if len(segments) == 0 {
		return []MatchedSegment{}
	}

	sorted := make([]MatchedSegment, len(segments))
	copy(sorted, segments)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartIndex < sorted[j].StartIndex
	})

	merged := make([]MatchedSegment, 0, len(sorted))
	current := sorted[0]
	for _, next := range sorted[1:] {
		if next.StartIndex <= current.EndIndex {
			if next.EndIndex > current.EndIndex {
				current.EndIndex = next.EndIndex
			}
			current.Text = current.Text + " " + next.Text
			continue
		}
		merged = append(merged, current)
		current = next
	}
	merged = append(merged, current)

	return merged
}

// Coverage returns the summed segment length as a percentage of
// contentLength (see ContentLength), rounded to two decimals. Overlapping segments are counted
// as many times as they appear; merge first for an overlap-corrected figure.
func Coverage(segments []MatchedSegment, contentLength int) float64 {
	if contentLength <= 0 {
		return 0
	}

	total := 0
	for _, segment := range segments {
		total += segment.Length()
	}

	return Round2(100 * float64(total) / float64(contentLength))
}

// PairScore is the per-peer similarity score: the coverage of that peer's
// matches without overlap correction. One original sentence matching several
// peer sentences is counted once per match, which can push the raw sum past
// the content length; the result is capped so it stays a percentage.
func PairScore(segments []MatchedSegment, contentLength int) float64 {
	return math.Min(Coverage(segments, contentLength), 100)
}
