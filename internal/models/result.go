package models

import (
	"sort"
	"strconv"
)

// SearchResult is a single verse-level hit.
type SearchResult struct {
	Volume  string `json:"volume"`
	Book    string `json:"book"`
	Chapter int    `json:"chapter"`
	Verse   int    `json:"verse"`
	Text    string `json:"text"`
}

// Reference returns the hit as "Book chapter:verse".
func (r SearchResult) Reference() string {
	return r.Book + " " + strconv.Itoa(r.Chapter) + ":" + strconv.Itoa(r.Verse)
}

// SearchResponse is the response for a cross-reference or proximity search.
type SearchResponse struct {
	Results   []SearchResult `json:"results"`
	Total     int            `json:"total"`
	QueryTime int64          `json:"query_time_ms"`
	Query     string         `json:"query"`
}

// FrequencyTable maps a label (book name, or chapter number as text) to per-term counts.
// Labels whose counts sum to zero are never present, and terms with a zero count
// are omitted from a label's inner map.
type FrequencyTable map[string]map[string]int

// Add adds n occurrences of term under label. Non-positive n is ignored.
func (t FrequencyTable) Add(label, term string, n int) {
	if n <= 0 {
		return
	}
	counts, ok := t[label]
	if !ok {
		counts = make(map[string]int)
		t[label] = counts
	}
	counts[term] += n
}

// Total returns the summed count across all terms for label.
func (t FrequencyTable) Total(label string) int {
	total := 0
	for _, n := range t[label] {
		total += n
	}
	return total
}

// SortedLabels returns labels by descending total count, ties broken by label.
func (t FrequencyTable) SortedLabels() []string {
	labels := make([]string, 0, len(t))
	totals := make(map[string]int, len(t))
	for label := range t {
		labels = append(labels, label)
		totals[label] = t.Total(label)
	}
	sort.Slice(labels, func(i, j int) bool {
		if totals[labels[i]] != totals[labels[j]] {
			return totals[labels[i]] > totals[labels[j]]
		}
		return labels[i] < labels[j]
	})
	return labels
}

// FrequencyResponse is the response for a frequency query.
type FrequencyResponse struct {
	Table     FrequencyTable `json:"table"`
	Labels    []string       `json:"labels"`
	Terms     []string       `json:"terms"`
	Book      string         `json:"book,omitempty"`
	QueryTime int64          `json:"query_time_ms"`
}
