package keyword

import (
	"regexp"

	"github.com/blevesearch/bleve/v2/analysis"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	bleveregexp "github.com/blevesearch/bleve/v2/analysis/tokenizer/regexp"
)

// wordPattern matches runs of characters that are neither whitespace, punctuation, nor symbols.
// Everything it does not match is a separator.
var wordPattern = regexp.MustCompile(`[^\s\p{Z}\p{P}\p{S}]+`)

// Tokenizer splits verse text into lowercase word tokens using Bleve's analysis chain
// (regexp tokenizer followed by the lowercase filter). It is safe for concurrent use.
type Tokenizer struct {
	tokenizer analysis.Tokenizer
	lower     analysis.TokenFilter
}

// NewTokenizer returns a tokenizer that splits on whitespace and punctuation.
func NewTokenizer() *Tokenizer {
	return &Tokenizer{
		tokenizer: bleveregexp.NewRegexpTokenizer(wordPattern),
		lower:     lowercase.NewLowerCaseFilter(),
	}
}

// Tokenize returns the ordered, lowercased, non-empty word tokens of text.
func (t *Tokenizer) Tokenize(text string) []string {
	if text == "" {
		return nil
	}
	stream := t.lower.Filter(t.tokenizer.Tokenize([]byte(text)))
	tokens := make([]string, 0, len(stream))
	for _, tok := range stream {
		if len(tok.Term) == 0 {
			continue
		}
		tokens = append(tokens, string(tok.Term))
	}
	return tokens
}

// Normalize lowercases a single query term the way Tokenize lowercases tokens, so
// the result compares equal to the tokens of the same word.
func (t *Tokenizer) Normalize(term string) string {
	if term == "" {
		return ""
	}
	stream := t.lower.Filter(analysis.TokenStream{&analysis.Token{Term: []byte(term)}})
	return string(stream[0].Term)
}

// Positions returns the token indexes at which each of the given terms occurs.
// Terms are compared against whole tokens; callers pass terms through Normalize.
func (t *Tokenizer) Positions(text string, terms ...string) [][]int {
	out := make([][]int, len(terms))
	for i, tok := range t.Tokenize(text) {
		for j, term := range terms {
			if tok == term {
				out[j] = append(out[j], i)
			}
		}
	}
	return out
}
