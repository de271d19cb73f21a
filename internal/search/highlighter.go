package search

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/hyperjump/seisho/internal/keyword"
)

// Highlight wraps every case-insensitive, non-overlapping occurrence of each term in
// text with pre and post. Overlapping or touching matches of different terms are
// merged into one span.
func Highlight(text string, terms []string, pre, post string) string {
	folded, offsets := foldOffsets(text)
	type span struct{ start, end int }
	var spans []span
	for _, term := range terms {
		if strings.TrimSpace(term) == "" {
			continue
		}
		t := keyword.Fold(term)
		for off := 0; off < len(folded); {
			i := strings.Index(folded[off:], t)
			if i < 0 {
				break
			}
			start := off + i
			spans = append(spans, span{offsets[start], offsets[start+len(t)]})
			off = start + len(t)
		}
	}
	if len(spans) == 0 {
		return text
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })
	merged := spans[:1]
	for _, s := range spans[1:] {
		last := &merged[len(merged)-1]
		if s.start <= last.end {
			last.end = max(last.end, s.end)
			continue
		}
		merged = append(merged, s)
	}

	var b strings.Builder
	b.Grow(len(text) + len(merged)*(len(pre)+len(post)))
	prev := 0
	for _, s := range merged {
		b.WriteString(text[prev:s.start])
		b.WriteString(pre)
		b.WriteString(text[s.start:s.end])
		b.WriteString(post)
		prev = s.end
	}
	b.WriteString(text[prev:])
	return b.String()
}

// foldOffsets folds text rune by rune like keyword.Fold. offsets[i] is the byte
// offset in text of the rune that produced folded byte i; offsets[len(folded)] is
// len(text).
func foldOffsets(text string) (string, []int) {
	buf := make([]byte, 0, len(text))
	offsets := make([]int, 0, len(text)+1)
	for i, r := range text {
		r = unicode.ToLower(r)
		if r == 'ς' {
			r = 'σ'
		}
		n := len(buf)
		buf = utf8.AppendRune(buf, r)
		for range len(buf) - n {
			offsets = append(offsets, i)
		}
	}
	offsets = append(offsets, len(text))
	return string(buf), offsets
}
