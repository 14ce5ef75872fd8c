package similarity

import (
	"strings"
	"unicode/utf8"
)

// MinSentenceLength is the shortest trimmed sentence, in characters, that is
// considered for matching. Fragments such as "Yes." or "OK" fall below it.
const MinSentenceLength = 20

// Segmenter splits raw text into sentence-length units.
type Segmenter struct {
	MinLength int
}

// Segment splits text with the default minimum sentence length.
func Segment(text string) []string {
	return Segmenter{MinLength: MinSentenceLength}.Segment(text)
}

// Segment splits text on runs of '.', '!' and '?', trims each piece and keeps
// the ones at least MinLength characters long, in order of appearance.
func (s Segmenter) Segment(text string) []string {
	minLength := s.MinLength
	if minLength <= 0 {
		minLength = MinSentenceLength
	}

	pieces := strings.FieldsFunc(text, isSentenceBoundary)
	sentences := make([]string, 0, len(pieces))
	for _, piece := range pieces {
		trimmed := strings.TrimSpace(piece)
		if utf8.RuneCountInString(trimmed) < minLength {
			continue
		}
		sentences = append(sentences, trimmed)
	}

	return sentences
}

func isSentenceBoundary(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}
