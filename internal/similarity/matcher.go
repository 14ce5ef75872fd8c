package similarity

import (
	"strings"
	"unicode/utf8"
)

// DefaultThreshold is the minimum sentence similarity, in percent, that
// counts as a match.
const DefaultThreshold = 70

// MatchedSegment is a span of the checked submission's original text that
// matched a sentence of a peer submission. StartIndex and EndIndex are
// half-open character (rune) offsets into the original, non-normalized text.
type MatchedSegment struct {
	Text                string `json:"text"`
	StartIndex          int    `json:"start_index"`
	EndIndex            int    `json:"end_index"`
	MatchedSubmissionID uint   `json:"matched_submission_id,omitempty"`
}

// Length returns the number of characters covered by the segment.
func (s MatchedSegment) Length() int {
	return s.EndIndex - s.StartIndex
}

// Excerpt returns the characters of text covered by the segment, or "" when
// the offsets fall outside text.
func (s MatchedSegment) Excerpt(text string) string {
	runes := []rune(text)
	if s.StartIndex < 0 || s.EndIndex > len(runes) || s.StartIndex >= s.EndIndex {
		return ""
	}
	return string(runes[s.StartIndex:s.EndIndex])
}

// ContentLength is the denominator for similarity percentages: the number of
// characters in text.
func ContentLength(text string) int {
	return utf8.RuneCountInString(text)
}

// Matcher finds sentence-level matches between two texts.
type Matcher struct {
	Threshold float64
	Segmenter Segmenter
}

// NewMatcher builds a matcher, falling back to the defaults for
// non-positive values.
func NewMatcher(threshold float64, minSentenceLength int) Matcher {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	if minSentenceLength <= 0 {
		minSentenceLength = MinSentenceLength
	}
	return Matcher{
		Threshold: threshold,
		Segmenter: Segmenter{MinLength: minSentenceLength},
	}
}

// FindMatches compares originalText against comparedText using the default
// threshold and sentence length.
func FindMatches(originalText, comparedText string, comparedSubmissionID uint) []MatchedSegment {
	return NewMatcher(DefaultThreshold, MinSentenceLength).FindMatches(originalText, comparedText, comparedSubmissionID)
}

// FindMatches scores every sentence of originalText against every sentence of
// comparedText and records a segment for each pair at or above the threshold.
// A sentence matching several peer sentences is recorded once per match.
func (m Matcher) FindMatches(originalText, comparedText string, comparedSubmissionID uint) []MatchedSegment {
	threshold := m.Threshold
	if threshold <= 0 {
		threshold = DefaultThreshold
	}

	originalSentences := m.Segmenter.Segment(originalText)
	comparedSentences := m.Segmenter.Segment(comparedText)
	if len(originalSentences) == 0 || len(comparedSentences) == 0 {
		return nil
	}

	normalizedCompared := make([]string, len(comparedSentences))
	for i, sentence := range comparedSentences {
		normalizedCompared[i] = Normalize(sentence)
	}

	var matches []MatchedSegment
	for _, sentence := range originalSentences {
		normalized := Normalize(sentence)
		for _, candidate := range normalizedCompared {
			if Similarity(normalized, candidate) < threshold {
				continue
			}

			start := strings.Index(originalText, sentence)
			if start < 0 {
				continue
			}

			startIndex := utf8.RuneCountInString(originalText[:start])
			matches = append(matches, MatchedSegment{
				Text:                sentence,
				StartIndex:          startIndex,
				EndIndex:            startIndex + utf8.RuneCountInString(sentence),
				MatchedSubmissionID: comparedSubmissionID,
			})
		}
	}

	return matches
}
