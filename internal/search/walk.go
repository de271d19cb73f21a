package search

import "github.com/hyperjump/seisho/internal/models"

type visitFunc func(vol *models.Volume, book *models.Book, ch *models.Chapter, v *models.Verse)

// walk visits every verse in storage order. A non-nil books set restricts the walk to
// books with those names.
func walk(volumes []*models.Volume, books map[string]struct{}, visit visitFunc) {
	for _, vol := range volumes {
		if vol == nil {
			continue
		}
		for bi := range vol.Books {
			book := &vol.Books[bi]
			if books != nil {
				if _, ok := books[book.Name]; !ok {
					continue
				}
			}
			for ci := range book.Chapters {
				ch := &book.Chapters[ci]
				for vi := range ch.Verses {
					visit(vol, book, ch, &ch.Verses[vi])
				}
			}
		}
	}
}

func newResult(vol *models.Volume, book *models.Book, ch *models.Chapter, v *models.Verse) models.SearchResult {
	return models.SearchResult{
		Volume:  vol.Name,
		Book:    book.Name,
		Chapter: ch.Number,
		Verse:   v.Number,
		Text:    v.Text,
	}
}
