package service

import "strings"

// Similarity is a normalized, case-insensitive edit-distance similarity
// in [0..1]: (L - D) / L where L is the longer length and D the
// Levenshtein distance. Symmetric; two empty strings score 1.
func Similarity(a, b string) float64 {
	a = strings.ToLower(a)
	b = strings.ToLower(b)
	if a == b {
		return 1
	}
	la := len([]rune(a))
	if lb := len([]rune(b)); lb > la {
		la = lb
	}
	d := levenshtein(a, b)
	return float64(la-d) / float64(la)
}
