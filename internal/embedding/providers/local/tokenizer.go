package local

import (
	"regexp"
	"strings"
)

var (
	nonWordPattern = regexp.MustCompile(`[^\p{L}\p{N}]+`)
	digitsPattern  = regexp.MustCompile(`^\d+$`)
)

// tokenize lower-cases text, splits on anything that is not a letter or
// digit and drops stop words, pure numbers and out-of-range lengths.
func tokenize(text string) []string {
	words := strings.Fields(nonWordPattern.ReplaceAllString(strings.ToLower(text), " "))

	tokens := words[:0]
	for _, word := range words {
		if isValidWord(word) {
			tokens = append(tokens, word)
		}
	}
	return tokens
}

func isValidWord(word string) bool {
	if len(word) < MinWordLength || len(word) > MaxWordLength {
		return false
	}
	if stopWords[word] {
		return false
	}
	return !digitsPattern.MatchString(word)
}

var stopWords = func() map[string]bool {
	words := []string{
		"a", "an", "and", "are", "as", "at", "be", "been", "by", "for", "from",
		"has", "he", "in", "is", "it", "its", "of", "on", "that", "the", "to",
		"was", "will", "with", "this", "but", "they", "have", "had",
		"what", "said", "each", "which", "she", "do", "how", "their", "if",
		"up", "out", "many", "then", "them", "these", "so", "some", "her",
		"would", "make", "like", "him", "into", "two", "more",
		"no", "way", "could", "my", "than", "who",
		"now", "did", "get", "may",
	}
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}()
