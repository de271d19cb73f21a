// Package models defines core data structures for the corpus, queries, and search results.
package models

// Volume is a top-level corpus division with its books in stored order.
type Volume struct {
	Name  string `json:"name"`
	Books []Book `json:"books"`
	// Digest is a BLAKE3 hex digest of the volume's source, set by the loader.
	Digest string `json:"digest,omitempty"`
}

// Book is a named sequence of chapters. The same name may appear in several volumes.
type Book struct {
	Name     string    `json:"book"`
	Chapters []Chapter `json:"chapters"`
}

// Chapter is a numbered sequence of verses.
type Chapter struct {
	Number int     `json:"chapter"`
	Verses []Verse `json:"verses"`
}

// Verse is the smallest unit of the corpus. Text is never modified after load.
type Verse struct {
	Number int    `json:"verse"`
	Text   string `json:"text"`
}

// Counts returns the number of books, chapters, and verses in the volume.
func (v *Volume) Counts() (books, chapters, verses int) {
	books = len(v.Books)
	for _, b := range v.Books {
		chapters += len(b.Chapters)
		for _, c := range b.Chapters {
			verses += len(c.Verses)
		}
	}
	return books, chapters, verses
}
