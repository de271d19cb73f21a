package keyword

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenizer_Tokenize(t *testing.T) {
	tok := NewTokenizer()
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"simple", "the lord is good", []string{"the", "lord", "is", "good"}},
		{"lowercases", "And GOD said", []string{"and", "god", "said"}},
		{"punctuation runs", "Behold,  the Lamb...of God!", []string{"behold", "the", "lamb", "of", "god"}},
		{"leading separators discarded", ",;  light", []string{"light"}},
		{"apostrophe splits", "the lord's house", []string{"the", "lord", "s", "house"}},
		{"tabs and newlines", "in\tthe\nbeginning", []string{"in", "the", "beginning"}},
		{"symbols separate", "a+b=c", []string{"a", "b", "c"}},
		{"digits kept", "verse 16 of 3", []string{"verse", "16", "of", "3"}},
		{"empty", "", nil},
		{"only separators", " .,;: ", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tok.Tokenize(tt.text)
			if len(tt.want) == 0 {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTokenizer_Positions(t *testing.T) {
	tok := NewTokenizer()
	pos := tok.Positions("The lord is good; the Lord is great", "lord", "the", "absent")
	assert.Equal(t, []int{1, 5}, pos[0])
	assert.Equal(t, []int{0, 4}, pos[1])
	assert.Empty(t, pos[2])
}

func TestTokenizer_Normalize(t *testing.T) {
	tok := NewTokenizer()
	assert.Equal(t, "lord", tok.Normalize("LORD"))
	assert.Equal(t, "", tok.Normalize(""))
	for _, term := range []string{"ΣΟΦΊΑΣ", "Σοφίας", "σοφίας"} {
		assert.Equal(t, tok.Tokenize("ΣΟΦΊΑΣ wisdom")[0], tok.Normalize(term), term)
	}
}
