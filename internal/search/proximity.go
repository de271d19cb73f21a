package search

import (
	"strings"

	"github.com/hyperjump/seisho/internal/keyword"
	"github.com/hyperjump/seisho/internal/models"
)

// ProximitySearcher finds verses in which two terms occur as whole tokens within a
// bounded token distance of each other.
type ProximitySearcher struct {
	tokenizer *keyword.Tokenizer
}

// NewProximitySearcher creates a proximity searcher. A nil tokenizer gets the default.
func NewProximitySearcher(tokenizer *keyword.Tokenizer) *ProximitySearcher {
	if tokenizer == nil {
		tokenizer = keyword.NewTokenizer()
	}
	return &ProximitySearcher{tokenizer: tokenizer}
}

// Search returns every verse, in corpus traversal order, holding an occurrence of
// term1 and an occurrence of term2 at most maxDistance tokens apart. When the terms
// are equal, a single occurrence pairs with itself at distance zero. Blank terms and
// a negative maxDistance match nothing.
func (p *ProximitySearcher) Search(volumes []*models.Volume, term1, term2 string, maxDistance int) []models.SearchResult {
	f1, ok1 := keyword.NormalizeTerm(term1)
	f2, ok2 := keyword.NormalizeTerm(term2)
	if !ok1 || !ok2 || maxDistance < 0 {
		return nil
	}
	q := proximityQuery{
		folded: [2]string{f1, f2},
		tokens: [2]string{p.tokenizer.Normalize(term1), p.tokenizer.Normalize(term2)},
		max:    maxDistance,
	}
	var results []models.SearchResult
	walk(volumes, nil, func(vol *models.Volume, book *models.Book, ch *models.Chapter, v *models.Verse) {
		if p.matches(v.Text, q) {
			results = append(results, newResult(vol, book, ch, v))
		}
	})
	return results
}

// proximityQuery holds each term twice: folded for the substring pre-check and
// normalized like a token for the positional check.
type proximityQuery struct {
	folded [2]string
	tokens [2]string
	max    int
}

func (p *ProximitySearcher) matches(text string, q proximityQuery) bool {
	folded := keyword.Fold(text)
	if !strings.Contains(folded, q.folded[0]) || !strings.Contains(folded, q.folded[1]) {
		return false
	}
	pos := p.tokenizer.Positions(text, q.tokens[0], q.tokens[1])
	dist, ok := keyword.MinDistance(pos[0], pos[1])
	return ok && dist <= q.max
}
