package loader

import (
	"encoding/json"
	"fmt"

	"github.com/hyperjump/seisho/internal/models"
)

// jsonVolume accepts both volume layouts. Book-structured volumes use "books";
// section-structured volumes use "sections", each section becoming one chapter of
// a single book named after the volume.
type jsonVolume struct {
	Books    []models.Book `json:"books"`
	Sections []jsonSection `json:"sections"`
}

type jsonSection struct {
	Section int            `json:"section"`
	Verses  []models.Verse `json:"verses"`
}

// DecodeJSON parses a JSON volume file.
func DecodeJSON(name string, data []byte) (*models.Volume, error) {
	var raw jsonVolume
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	switch {
	case raw.Books != nil:
		return &models.Volume{Name: name, Books: raw.Books}, nil
	case raw.Sections != nil:
		chapters := make([]models.Chapter, len(raw.Sections))
		for i, s := range raw.Sections {
			chapters[i] = models.Chapter{Number: s.Section, Verses: s.Verses}
		}
		return &models.Volume{
			Name:  name,
			Books: []models.Book{{Name: name, Chapters: chapters}},
		}, nil
	default:
		return nil, fmt.Errorf("%w: json has neither books nor sections", ErrUnsupportedFormat)
	}
}
