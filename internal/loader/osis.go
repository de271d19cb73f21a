package loader

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/antchfx/xmlquery"

	"github.com/hyperjump/seisho/internal/models"
	"github.com/hyperjump/seisho/pkg/utils"
)

// DecodeOSIS parses an OSIS document. Each div of type book becomes a book named by
// its n attribute, or its osisID when n is absent. Chapter and verse numbers come
// from the last segment of their osisID ("Gen.1.3" is verse 3).
//
// Chapters and verses may be containers or sID/eID milestone pairs. A milestone
// verse owns the text between its start and end markers.
func DecodeOSIS(name string, r io.Reader) (*models.Volume, error) {
	doc, err := xmlquery.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse osis: %w", err)
	}
	bookNodes, err := xmlquery.QueryAll(doc, "//*[local-name()='div' and @type='book']")
	if err != nil {
		return nil, fmt.Errorf("query books: %w", err)
	}
	if len(bookNodes) == 0 {
		return nil, fmt.Errorf("%w: no book divisions", ErrUnsupportedFormat)
	}

	vol := &models.Volume{Name: name, Books: make([]models.Book, 0, len(bookNodes))}
	for _, bn := range bookNodes {
		d := &osisBookDecoder{book: models.Book{Name: bn.SelectAttr("n")}}
		if d.book.Name == "" {
			d.book.Name = bn.SelectAttr("osisID")
		}
		if err := d.walk(bn); err != nil {
			return nil, fmt.Errorf("book %s: %w", d.book.Name, err)
		}
		d.closeVerse()
		vol.Books = append(vol.Books, d.book)
	}
	return vol, nil
}

// osisBookDecoder walks one book division in document order.
type osisBookDecoder struct {
	book   models.Book
	verses int              // verse ordinal within the current chapter
	open   *strings.Builder // text of the open milestone verse
}

func (d *osisBookDecoder) walk(n *xmlquery.Node) error {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case xmlquery.TextNode, xmlquery.CharDataNode:
			if d.open != nil {
				d.open.WriteString(c.Data)
			}
			continue
		case xmlquery.ElementNode:
		default:
			continue
		}

		switch c.Data {
		case "chapter":
			if c.SelectAttr("eID") != "" {
				continue
			}
			if err := d.startChapter(c); err != nil {
				return err
			}
			if c.SelectAttr("sID") != "" {
				continue
			}
			if err := d.walk(c); err != nil {
				return err
			}
		case "verse":
			if err := d.verse(c); err != nil {
				return err
			}
		default:
			if err := d.walk(c); err != nil {
				return err
			}
		}
	}
	return nil
}

func (d *osisBookDecoder) startChapter(n *xmlquery.Node) error {
	d.closeVerse()
	number, err := osisNumber(n, len(d.book.Chapters)+1)
	if err != nil {
		return err
	}
	d.book.Chapters = append(d.book.Chapters, models.Chapter{Number: number})
	d.verses = 0
	return nil
}

func (d *osisBookDecoder) verse(n *xmlquery.Node) error {
	d.closeVerse()
	if n.SelectAttr("eID") != "" {
		return nil
	}
	if len(d.book.Chapters) == 0 {
		d.book.Chapters = append(d.book.Chapters, models.Chapter{Number: 1})
	}
	d.verses++
	number, err := osisNumber(n, d.verses)
	if err != nil {
		return err
	}
	ch := &d.book.Chapters[len(d.book.Chapters)-1]
	if n.SelectAttr("sID") != "" {
		ch.Verses = append(ch.Verses, models.Verse{Number: number})
		d.open = &strings.Builder{}
		return nil
	}
	ch.Verses = append(ch.Verses, models.Verse{
		Number: number,
		Text:   utils.CollapseSpace(n.InnerText()),
	})
	return nil
}

// closeVerse stores the text gathered for an open milestone verse.
func (d *osisBookDecoder) closeVerse() {
	if d.open == nil {
		return
	}
	ch := &d.book.Chapters[len(d.book.Chapters)-1]
	ch.Verses[len(ch.Verses)-1].Text = utils.CollapseSpace(d.open.String())
	d.open = nil
}

// osisNumber reads the trailing number of a node's osisID, falling back to the n
// attribute and then to the node's ordinal position.
func osisNumber(n *xmlquery.Node, ordinal int) (int, error) {
	id := n.SelectAttr("osisID")
	if id != "" {
		seg := id[strings.LastIndex(id, ".")+1:]
		num, err := strconv.Atoi(seg)
		if err != nil {
			return 0, fmt.Errorf("invalid osisID %q: %w", id, err)
		}
		return num, nil
	}
	if v := n.SelectAttr("n"); v != "" {
		if num, err := strconv.Atoi(v); err == nil {
			return num, nil
		}
	}
	return ordinal, nil
}
