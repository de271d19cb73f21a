// Package e2e runs the engine end to end over a generated multi-volume corpus and
// checks every query against a brute-force scan of the same verses.
package e2e

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"unicode"

	"github.com/hyperjump/seisho/internal/models"
)

var vocabulary = []string{
	"and", "the", "of", "lord", "god", "light", "darkness", "earth", "water", "spirit",
	"faith", "word", "shepherd", "mountain", "river", "people", "covenant", "seed", "bread",
	"wisdom", "there", "thereof", "in", "was", "is",
}

// Shape sizes a generated corpus.
type Shape struct {
	Volumes  int
	Books    int
	Chapters int
	Verses   int
	Words    int
}

// Ref identifies one verse.
type Ref struct {
	Volume  string
	Book    string
	Chapter int
	Verse   int
}

func (r Ref) String() string {
	return fmt.Sprintf("%s/%s %d:%d", r.Volume, r.Book, r.Chapter, r.Verse)
}

// Plant places fixed text at a verse so queries have known answers.
type Plant struct {
	Volume, Book, Chapter, Verse int
	Text                         string
}

// Corpus is a generated set of volumes in traversal order.
type Corpus struct {
	Volumes []*models.Volume
}

// BuildCorpus generates a deterministic corpus. Every volume's first book is named
// "Hymns" so same-named books exist across volumes.
func BuildCorpus(shape Shape, seed uint64, plants ...Plant) *Corpus {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	c := &Corpus{}
	for v := 0; v < shape.Volumes; v++ {
		vol := &models.Volume{Name: fmt.Sprintf("Volume %d", v+1)}
		for b := 0; b < shape.Books; b++ {
			name := fmt.Sprintf("Book%d%c", v+1, 'A'+b)
			if b == 0 {
				name = "Hymns"
			}
			book := models.Book{Name: name}
			for ch := 0; ch < shape.Chapters; ch++ {
				chapter := models.Chapter{Number: ch + 1}
				for vs := 0; vs < shape.Verses; vs++ {
					chapter.Verses = append(chapter.Verses, models.Verse{
						Number: vs + 1,
						Text:   sentence(rng, shape.Words),
					})
				}
				book.Chapters = append(book.Chapters, chapter)
			}
			vol.Books = append(vol.Books, book)
		}
		c.Volumes = append(c.Volumes, vol)
	}
	for _, p := range plants {
		c.Volumes[p.Volume].Books[p.Book].Chapters[p.Chapter].Verses[p.Verse].Text = p.Text
	}
	return c
}

func sentence(rng *rand.Rand, words int) string {
	parts := make([]string, words)
	for i := range parts {
		w := vocabulary[rng.IntN(len(vocabulary))]
		if i == 0 {
			w = strings.ToUpper(w[:1]) + w[1:]
		}
		if i > 0 && rng.IntN(7) == 0 {
			parts[i-1] += ","
		}
		parts[i] = w
	}
	return strings.Join(parts, " ") + "."
}

// RefOf returns the reference of a planted verse.
func (c *Corpus) RefOf(p Plant) Ref {
	vol := c.Volumes[p.Volume]
	book := vol.Books[p.Book]
	ch := book.Chapters[p.Chapter]
	return Ref{Volume: vol.Name, Book: book.Name, Chapter: ch.Number, Verse: ch.Verses[p.Verse].Number}
}

func (c *Corpus) each(visit func(ref Ref, text string)) {
	for _, vol := range c.Volumes {
		for _, book := range vol.Books {
			for _, ch := range book.Chapters {
				for _, v := range ch.Verses {
					visit(Ref{Volume: vol.Name, Book: book.Name, Chapter: ch.Number, Verse: v.Number}, v.Text)
				}
			}
		}
	}
}

// ScanContains returns every verse whose text contains query, ignoring case.
func (c *Corpus) ScanContains(query string) []Ref {
	q := strings.ToLower(query)
	var refs []Ref
	c.each(func(ref Ref, text string) {
		if strings.Contains(strings.ToLower(text), q) {
			refs = append(refs, ref)
		}
	})
	return refs
}

// ScanNear returns every verse where the two words occur within maxDist words of each
// other, comparing every pair of positions.
func (c *Corpus) ScanNear(a, b string, maxDist int) []Ref {
	a, b = strings.ToLower(a), strings.ToLower(b)
	var refs []Ref
	c.each(func(ref Ref, text string) {
		words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		for i, wi := range words {
			if wi != a {
				continue
			}
			for j, wj := range words {
				if wj == b && abs(i-j) <= maxDist {
					refs = append(refs, ref)
					return
				}
			}
		}
	})
	return refs
}

// ScanBookCounts returns total occurrences of term per book name, merging books
// with the same name. Books with no occurrences are absent.
func (c *Corpus) ScanBookCounts(term string) map[string]int {
	t := strings.ToLower(term)
	counts := map[string]int{}
	c.each(func(ref Ref, text string) {
		if n := strings.Count(strings.ToLower(text), t); n > 0 {
			counts[ref.Book] += n
		}
	})
	return counts
}

// ScanChapterCounts returns occurrences of term per chapter number of every book
// named book.
func (c *Corpus) ScanChapterCounts(book, term string) map[string]int {
	t := strings.ToLower(term)
	counts := map[string]int{}
	c.each(func(ref Ref, text string) {
		if ref.Book != book {
			return
		}
		if n := strings.Count(strings.ToLower(text), t); n > 0 {
			counts[fmt.Sprint(ref.Chapter)] += n
		}
	})
	return counts
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
