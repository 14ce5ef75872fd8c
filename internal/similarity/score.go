package similarity

import (
	"math"
	"strings"
)

// Similarity returns the Jaccard similarity of the word sets of two
// normalized strings as a percentage in [0, 100]. Two empty inputs score 0.
func Similarity(normalizedA, normalizedB string) float64 {
	setA := wordSet(normalizedA)
	setB := wordSet(normalizedB)

	intersection := 0
	for word := range setA {
		if _, ok := setB[word]; ok {
			intersection++
		}
	}

	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}

	return 100 * float64(intersection) / float64(union)
}

func wordSet(text string) map[string]struct{} {
	words := strings.Fields(text)
	set := make(map[string]struct{}, len(words))
	for _, word := range words {
		set[word] = struct{}{}
	}
	return set
}

// Round2 rounds a percentage to two decimal places.
func Round2(value float64) float64 {
	return math.Round(value*100) / 100
}

// Severity bands an aggregate similarity percentage for display.
func Severity(score float64) string {
	switch {
	case score <= 0:
		return SeverityNone
	case score < 25:
		return SeverityLow
	case score < 50:
		return SeverityModerate
	case score < 75:
		return SeverityHigh
	default:
		return SeverityVeryHigh
	}
}

// Severity bands.
const (
	SeverityNone     = "none"
	SeverityLow      = "low"
	SeverityModerate = "moderate"
	SeverityHigh     = "high"
	SeverityVeryHigh = "very_high"
)
