package chunker

import "strings"

// EstimateTokens gives a rough token count. Prose averages about 1.33 tokens
// per word; citations, case numbers and section references tokenize closer to
// one token per four characters, so the larger of the two estimates is used.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	byWords := int(float64(len(strings.Fields(text))) * 1.33)
	byChars := len(text) / 4
	return max(byWords, byChars, 1)
}
