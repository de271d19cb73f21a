package search

import "github.com/hyperjump/seisho/internal/models"

func verses(texts ...string) []models.Verse {
	out := make([]models.Verse, len(texts))
	for i, text := range texts {
		out[i] = models.Verse{Number: i + 1, Text: text}
	}
	return out
}

func scenarioVolume() *models.Volume {
	return &models.Volume{
		Name: "TestVolume",
		Books: []models.Book{{
			Name:     "Alpha",
			Chapters: []models.Chapter{{Number: 1, Verses: verses("the lord is good", "the lord is great")}},
		}},
	}
}

func corpusVolumes() []*models.Volume {
	return []*models.Volume{
		{
			Name: "Old Testament",
			Books: []models.Book{
				{Name: "Genesis", Chapters: []models.Chapter{
					{Number: 1, Verses: verses(
						"In the beginning God created the heaven and the earth.",
						"And God said, Let there be light: and there was light.",
					)},
					{Number: 2, Verses: verses("Thus the heavens and the earth were finished.")},
				}},
				{Name: "Psalms", Chapters: []models.Chapter{
					{Number: 23, Verses: verses("The LORD is my shepherd; I shall not want.")},
				}},
			},
		},
		{
			Name: "New Testament",
			Books: []models.Book{
				{Name: "John", Chapters: []models.Chapter{
					{Number: 1, Verses: verses(
						"In the beginning was the Word, and the Word was with God.",
						"And the light shineth in darkness.",
					)},
				}},
			},
		},
		{
			Name: "Pearl of Great Price",
			Books: []models.Book{
				{Name: "Moses", Chapters: []models.Chapter{
					{Number: 2, Verses: verses("And I, God, said: Let there be light; and there was light.")},
				}},
			},
		},
	}
}
