// Package analytics aggregates term occurrence counts over loaded corpus volumes.
package analytics

import (
	"strconv"

	"go.uber.org/zap"

	"github.com/hyperjump/seisho/internal/keyword"
	"github.com/hyperjump/seisho/internal/models"
)

// Analyzer computes frequency tables. It never triggers corpus loads; callers
// pass the volumes that are already loaded.
type Analyzer struct {
	logger          *zap.Logger
	qualifiedLabels bool
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithLogger sets the analyzer's logger.
func WithLogger(l *zap.Logger) Option {
	return func(a *Analyzer) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithVolumeQualifiedLabels keys book frequencies as "<volume>/<book>" so that
// same-named books in different volumes are counted separately. Without it, counts
// for same-named books are merged under the bare book name.
func WithVolumeQualifiedLabels() Option {
	return func(a *Analyzer) { a.qualifiedLabels = true }
}

// NewAnalyzer creates an analyzer.
func NewAnalyzer(opts ...Option) *Analyzer {
	a := &Analyzer{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// term pairs the caller's spelling, used as the table key, with its lowercased form.
type term struct {
	key   string
	lower string
}

// prepareTerms drops blank terms and exact duplicates, preserving order.
func prepareTerms(terms []string) []term {
	out := make([]term, 0, len(terms))
	seen := make(map[string]struct{}, len(terms))
	for _, t := range terms {
		lower, ok := keyword.NormalizeTerm(t)
		if !ok {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, term{key: t, lower: lower})
	}
	return out
}

// BookFrequencies counts non-overlapping, case-insensitive substring occurrences of
// each term in every verse, summed per book. Books whose total is zero are absent.
func (a *Analyzer) BookFrequencies(volumes []*models.Volume, terms []string) models.FrequencyTable {
	table := make(models.FrequencyTable)
	prepared := prepareTerms(terms)
	if len(prepared) == 0 {
		return table
	}
	for _, vol := range volumes {
		if vol == nil {
			continue
		}
		for _, book := range vol.Books {
			label := book.Name
			if a.qualifiedLabels {
				label = vol.Name + "/" + book.Name
			}
			for _, ch := range book.Chapters {
				countChapter(table, label, ch, prepared)
			}
		}
	}
	a.logger.Debug("book frequencies computed",
		zap.Int("volumes", len(volumes)),
		zap.Int("terms", len(prepared)),
		zap.Int("labels", len(table)),
	)
	return table
}

// ChapterFrequencies counts term occurrences per chapter number of every book named
// bookName, in any of the given volumes. Chapters whose total is zero are absent.
// With volume qualified labels, chapters are keyed as "<volume>/<chapter>".
func (a *Analyzer) ChapterFrequencies(volumes []*models.Volume, bookName string, terms []string) models.FrequencyTable {
	table := make(models.FrequencyTable)
	prepared := prepareTerms(terms)
	if len(prepared) == 0 || bookName == "" {
		return table
	}
	for _, vol := range volumes {
		if vol == nil {
			continue
		}
		for _, book := range vol.Books {
			if book.Name != bookName {
				continue
			}
			for _, ch := range book.Chapters {
				label := strconv.Itoa(ch.Number)
				if a.qualifiedLabels {
					label = vol.Name + "/" + label
				}
				countChapter(table, label, ch, prepared)
			}
		}
	}
	a.logger.Debug("chapter frequencies computed",
		zap.String("book", bookName),
		zap.Int("terms", len(prepared)),
		zap.Int("labels", len(table)),
	)
	return table
}

func countChapter(table models.FrequencyTable, label string, ch models.Chapter, terms []term) {
	for _, v := range ch.Verses {
		text := keyword.Fold(v.Text)
		for _, t := range terms {
			table.Add(label, t.key, keyword.CountOccurrences(text, t.lower))
		}
	}
}
