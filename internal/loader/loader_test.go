package loader

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ulikunitz/xz"
)

const booksJSON = `{"books":[{"book":"Genesis","chapters":[
  {"chapter":1,"reference":"Genesis 1","verses":[
    {"verse":1,"reference":"Genesis 1:1","text":"In the beginning God created the heaven and the earth."},
    {"verse":2,"text":"And the earth was without form, and void."}]},
  {"chapter":2,"verses":[{"verse":1,"text":"Thus the heavens and the earth were finished."}]}]}]}`

const sectionsJSON = `{"sections":[
  {"section":1,"reference":"D&C 1","verses":[{"verse":1,"text":"Hearken, O ye people of my church."}]},
  {"section":4,"verses":[{"verse":2,"text":"Therefore, O ye that embark in the service of God."}]}]}`

const osisXML = `<?xml version="1.0" encoding="UTF-8"?>
<osis xmlns="http://www.bibletechnologies.net/2003/OSIS/namespace">
  <osisText osisIDWork="KJV">
    <div type="book" osisID="John" n="John">
      <chapter osisID="John.1">
        <verse osisID="John.1.1">In the beginning was the Word,
          and the Word was with God.</verse>
        <verse osisID="John.1.2">The same was in the beginning with God.</verse>
      </chapter>
      <chapter osisID="John.3">
        <verse osisID="John.3.16">For God so loved the world.</verse>
      </chapter>
    </div>
    <div type="book" osisID="Jude">
      <chapter osisID="Jude.1"><verse osisID="Jude.1.1">Jude, the servant of Jesus Christ.</verse></chapter>
    </div>
  </osisText>
</osis>`

func writeFile(t *testing.T, dir, name string, data []byte) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), data, 0644); err != nil {
		t.Fatal(err)
	}
}

func xzBytes(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w, err := xz.NewWriter(&buf)
	require.NoError(t, err)
	_, err = w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func zstdBytes(t *testing.T, data []byte) []byte {
	t.Helper()
	enc, err := zstd.NewWriter(nil)
	require.NoError(t, err)
	defer enc.Close()
	return enc.EncodeAll(data, nil)
}

func TestFileLoader_Load_jsonBooks(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "old-testament.json", []byte(booksJSON))
	l := NewFileLoader(dir, []VolumeFile{{Name: "Old Testament", Path: "old-testament.json"}})

	vol, err := l.Load(context.Background(), "Old Testament")
	require.NoError(t, err)
	assert.Equal(t, "Old Testament", vol.Name)
	require.Len(t, vol.Books, 1)
	assert.Equal(t, "Genesis", vol.Books[0].Name)
	require.Len(t, vol.Books[0].Chapters, 2)
	assert.Equal(t, 2, vol.Books[0].Chapters[1].Number)
	assert.Equal(t, "And the earth was without form, and void.", vol.Books[0].Chapters[0].Verses[1].Text)
	assert.Equal(t, Digest([]byte(booksJSON)), vol.Digest)
	assert.Len(t, vol.Digest, 64)
}

func TestFileLoader_Load_jsonSections(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "doctrine-and-covenants.json", []byte(sectionsJSON))
	l := NewFileLoader(dir, []VolumeFile{{Name: "Doctrine and Covenants", Path: "doctrine-and-covenants.json"}})

	vol, err := l.Load(context.Background(), "Doctrine and Covenants")
	require.NoError(t, err)
	require.Len(t, vol.Books, 1)
	book := vol.Books[0]
	assert.Equal(t, "Doctrine and Covenants", book.Name)
	require.Len(t, book.Chapters, 2)
	assert.Equal(t, 1, book.Chapters[0].Number)
	assert.Equal(t, 4, book.Chapters[1].Number)
	assert.Equal(t, 2, book.Chapters[1].Verses[0].Number)
}

func TestFileLoader_Load_osis(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "nt.osis.xml", []byte(osisXML))
	l := NewFileLoader(dir, []VolumeFile{{Name: "New Testament", Path: "nt.osis.xml"}})

	vol, err := l.Load(context.Background(), "New Testament")
	require.NoError(t, err)
	require.Len(t, vol.Books, 2)
	john := vol.Books[0]
	assert.Equal(t, "John", john.Name)
	require.Len(t, john.Chapters, 2)
	assert.Equal(t, 3, john.Chapters[1].Number)
	assert.Equal(t, 16, john.Chapters[1].Verses[0].Number)
	assert.Equal(t, "In the beginning was the Word, and the Word was with God.", john.Chapters[0].Verses[0].Text)
	assert.Equal(t, "Jude", vol.Books[1].Name)
}

func TestFileLoader_Load_compressed(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "ot.json.xz", xzBytes(t, []byte(booksJSON)))
	writeFile(t, dir, "nt.xml.zst", zstdBytes(t, []byte(osisXML)))
	l := NewFileLoader(dir, []VolumeFile{
		{Name: "Old Testament", Path: "ot.json.xz"},
		{Name: "New Testament", Path: "nt.xml.zst"},
	})

	ot, err := l.Load(context.Background(), "Old Testament")
	require.NoError(t, err)
	assert.Equal(t, "Genesis", ot.Books[0].Name)

	nt, err := l.Load(context.Background(), "New Testament")
	require.NoError(t, err)
	assert.Equal(t, "John", nt.Books[0].Name)
	assert.Equal(t, []string{"Old Testament", "New Testament"}, l.Names())
}

func TestFileLoader_Load_errors(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bad.json", []byte(`{"books": [`))
	writeFile(t, dir, "empty.json", []byte(`{"title": "nothing"}`))
	writeFile(t, dir, "notes.txt", []byte("plain text"))
	writeFile(t, dir, "nobooks.xml", []byte(`<osis><osisText/></osis>`))
	l := NewFileLoader(dir, []VolumeFile{
		{Name: "Bad", Path: "bad.json"},
		{Name: "Empty", Path: "empty.json"},
		{Name: "Text", Path: "notes.txt"},
		{Name: "NoBooks", Path: "nobooks.xml"},
		{Name: "Missing", Path: "missing.json"},
	})
	ctx := context.Background()

	_, err := l.Load(ctx, "Apocrypha")
	assert.ErrorIs(t, err, ErrUnknownVolume)

	vol, err := l.Load(ctx, "Bad")
	assert.Error(t, err)
	assert.Nil(t, vol)

	_, err = l.Load(ctx, "Empty")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = l.Load(ctx, "Text")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = l.Load(ctx, "NoBooks")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = l.Load(ctx, "Missing")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFileLoader_Load_absolutePath(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "ot.json", []byte(booksJSON))
	abs := filepath.Join(dir, "ot.json")
	l := NewFileLoader("/nonexistent", []VolumeFile{{Name: "Old Testament", Path: abs}})

	p, ok := l.Path("Old Testament")
	require.True(t, ok)
	assert.Equal(t, abs, p)
	_, err := l.Load(context.Background(), "Old Testament")
	assert.NoError(t, err)
}

func TestFileLoader_Load_cancelledContext(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "ot.json", []byte(booksJSON))
	l := NewFileLoader(dir, []VolumeFile{{Name: "Old Testament", Path: "ot.json"}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := l.Load(ctx, "Old Testament")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDigest_stable(t *testing.T) {
	a := Digest([]byte("the lord is good"))
	assert.Equal(t, a, Digest([]byte("the lord is good")))
	assert.NotEqual(t, a, Digest([]byte("the lord is great")))
	assert.Equal(t, strings.ToLower(a), a)
}

const osisMilestoneXML = `<?xml version="1.0" encoding="UTF-8"?>
<osis xmlns="http://www.bibletechnologies.net/2003/OSIS/namespace">
  <osisText osisIDWork="KJV">
    <div type="book" osisID="Gen" canonical="true">
      <chapter sID="Gen.1.seID.00001" osisID="Gen.1" n="1"/>
      <title type="chapter">CHAPTER 1</title>
      <verse sID="Gen.1.1.seID.00002" osisID="Gen.1.1" n="1"/>In the <w lemma="strong:H07225">beginning</w> God created the heaven and the earth.<verse eID="Gen.1.1.seID.00002"/>
      <verse sID="Gen.1.2.seID.00003" osisID="Gen.1.2" n="2"/>And the earth was without form,
        and void.<verse eID="Gen.1.2.seID.00003"/>
      <chapter eID="Gen.1.seID.00001"/>
      <chapter sID="Gen.2.seID.00004" osisID="Gen.2" n="2"/>
      <verse sID="Gen.2.1.seID.00005" osisID="Gen.2.1" n="1"/>Thus the heavens and the earth were finished.<verse eID="Gen.2.1.seID.00005"/>
      <chapter eID="Gen.2.seID.00004"/>
    </div>
  </osisText>
</osis>`

func TestDecodeOSIS_milestones(t *testing.T) {
	vol, err := DecodeOSIS("Old Testament", strings.NewReader(osisMilestoneXML))
	require.NoError(t, err)
	require.Len(t, vol.Books, 1)
	gen := vol.Books[0]
	assert.Equal(t, "Gen", gen.Name)
	require.Len(t, gen.Chapters, 2)

	first := gen.Chapters[0]
	assert.Equal(t, 1, first.Number)
	require.Len(t, first.Verses, 2)
	assert.Equal(t, 1, first.Verses[0].Number)
	assert.Equal(t, "In the beginning God created the heaven and the earth.", first.Verses[0].Text)
	assert.Equal(t, 2, first.Verses[1].Number)
	assert.Equal(t, "And the earth was without form, and void.", first.Verses[1].Text)

	second := gen.Chapters[1]
	assert.Equal(t, 2, second.Number)
	require.Len(t, second.Verses, 1)
	assert.Equal(t, "Thus the heavens and the earth were finished.", second.Verses[0].Text)
}

func TestDecodeOSIS_verseOutsideChapter(t *testing.T) {
	doc := `<osis><osisText><div type="book" osisID="Obad">` +
		`<verse osisID="Obad.1.1">The vision of Obadiah.</verse></div></osisText></osis>`
	vol, err := DecodeOSIS("Old Testament", strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, vol.Books[0].Chapters, 1)
	ch := vol.Books[0].Chapters[0]
	assert.Equal(t, 1, ch.Number)
	require.Len(t, ch.Verses, 1)
	assert.Equal(t, "The vision of Obadiah.", ch.Verses[0].Text)
}
