package keyword

import "strings"

// CountOccurrences counts non-overlapping occurrences of term in text, both already
// lowercased. After each match the scan resumes past the matched span, so "aa" occurs
// twice in "aaaa". An empty term occurs zero times.
func CountOccurrences(text, term string) int {
	if term == "" {
		return 0
	}
	return strings.Count(text, term)
}

// finalSigma folds the word-final lowercase sigma onto the medial form.
var finalSigma = strings.NewReplacer("ς", "σ")

// Fold lowercases s for substring comparison. Both Greek lowercase sigmas fold to σ,
// so a word matches whether its last letter was written Σ, σ or ς.
func Fold(s string) string {
	lower := strings.ToLower(s)
	if !strings.Contains(lower, "ς") {
		return lower
	}
	return finalSigma.Replace(lower)
}

// ContainsFold reports whether text contains term, ignoring case. An empty term
// matches nothing.
func ContainsFold(text, term string) bool {
	if term == "" {
		return false
	}
	return strings.Contains(Fold(text), Fold(term))
}

// NormalizeTerm folds term and reports whether it can match anything.
// Blank terms (empty or whitespace only) never match.
func NormalizeTerm(term string) (string, bool) {
	if strings.TrimSpace(term) == "" {
		return "", false
	}
	return Fold(term), true
}

// MinDistance returns the smallest absolute difference between an element of a and
// an element of b, both sorted ascending. ok is false when either slice is empty.
func MinDistance(a, b []int) (dist int, ok bool) {
	if len(a) == 0 || len(b) == 0 {
		return 0, false
	}
	i, j := 0, 0
	best := -1
	for i < len(a) && j < len(b) {
		d := a[i] - b[j]
		if d < 0 {
			d = -d
		}
		if best < 0 || d < best {
			best = d
			if best == 0 {
				break
			}
		}
		if a[i] < b[j] {
			i++
		} else {
			j++
		}
	}
	return best, true
}
