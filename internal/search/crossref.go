package search

import (
	"strings"

	"github.com/hyperjump/seisho/internal/keyword"
	"github.com/hyperjump/seisho/internal/models"
)

// CrossReferenceSearcher runs scoped, case-insensitive substring searches.
type CrossReferenceSearcher struct{}

// NewCrossReferenceSearcher creates a cross-reference searcher.
func NewCrossReferenceSearcher() *CrossReferenceSearcher {
	return &CrossReferenceSearcher{}
}

// Search returns every verse within scope whose text contains query, ignoring case,
// in corpus traversal order. A scope with a volume only considers that volume. Book
// scopes match books by name in every considered volume. A blank query matches nothing.
func (c *CrossReferenceSearcher) Search(volumes []*models.Volume, scope models.Scope, query string) []models.SearchResult {
	if strings.TrimSpace(query) == "" {
		return nil
	}
	var books map[string]struct{}
	switch scope.Kind {
	case models.ScopeAllVolumes:
	case models.ScopeCurrentBook, models.ScopeSelectedBooks:
		books = scope.BookSet()
		if len(books) == 0 {
			return nil
		}
	default:
		return nil
	}
	if scope.Volume != "" {
		volumes = selectVolume(volumes, scope.Volume)
	}

	var results []models.SearchResult
	walk(volumes, books, func(vol *models.Volume, book *models.Book, ch *models.Chapter, v *models.Verse) {
		if keyword.ContainsFold(v.Text, query) {
			results = append(results, newResult(vol, book, ch, v))
		}
	})
	return results
}

func selectVolume(volumes []*models.Volume, name string) []*models.Volume {
	for _, vol := range volumes {
		if vol != nil && vol.Name == name {
			return []*models.Volume{vol}
		}
	}
	return nil
}
