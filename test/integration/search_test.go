// Package integration exercises the full stack: config file, volume files, engine
// and HTTP API.
package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hyperjump/seisho/internal/config"
	"github.com/hyperjump/seisho/internal/corpus"
	"github.com/hyperjump/seisho/internal/loader"
	"github.com/hyperjump/seisho/internal/models"
	"github.com/hyperjump/seisho/internal/search"
	"github.com/hyperjump/seisho/internal/server"
	"github.com/hyperjump/seisho/internal/worker"
)

const pearlJSON = `{"sections":[
	{"section":1,"verses":[{"verse":1,"text":"And I, God, said: Let there be light; and there was light."}]}
]}`

const bookOfMormonOSIS = `<?xml version="1.0" encoding="UTF-8"?>
<osis><osisText>
  <div type="book" osisID="1Ne" n="1 Nephi">
    <chapter osisID="1Ne.1">
      <verse osisID="1Ne.1.1">I, Nephi, having been born of goodly parents.</verse>
      <verse osisID="1Ne.1.2">Yea, I make a record in the language of my father.</verse>
    </chapter>
  </div>
</osisText></osis>`

func setup(t *testing.T) (*config.Config, http.Handler) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bom.xml"), []byte(bookOfMormonOSIS), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pgp.json"), []byte(pearlJSON), 0o644))
	cfgYAML := `corpus:
  source: files
  directory: ./
  volumes:
    - name: Book of Mormon
      path: bom.xml
    - name: Pearl of Great Price
      path: pgp.json
    - name: Missing
      path: missing.json
search:
  workers: 2
`
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfgYAML), 0o644))

	cfg, err := config.Load(cfgPath)
	require.NoError(t, err)
	require.Equal(t, dir, cfg.Corpus.Directory)

	files := make([]loader.VolumeFile, len(cfg.Corpus.Volumes))
	for i, v := range cfg.Corpus.Volumes {
		files[i] = loader.VolumeFile{Name: v.Name, Path: v.Path}
	}
	store := corpus.NewStore(loader.NewFileLoader(cfg.Corpus.Directory, files), cfg.Corpus.VolumeNames())
	pool, err := worker.NewPool(cfg.Search.Workers)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	engine := search.NewAsyncEngine(search.NewEngine(store), pool)
	return cfg, server.NewServer(engine, cfg, nil, zap.NewNop()).Handler()
}

func post(t *testing.T, h http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, path, &buf))
	return w
}

func TestIntegration_CrossReferenceAcrossFormats(t *testing.T) {
	_, h := setup(t)

	w := post(t, h, "/api/v1/search/crossref", models.CrossReferenceRequest{Query: "i, "})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp models.SearchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 2, resp.Total)
	assert.Equal(t, "1 Nephi", resp.Results[0].Book)
	assert.Equal(t, "Pearl of Great Price", resp.Results[1].Book)
	assert.Equal(t, "Pearl of Great Price", resp.Results[1].Volume)
}

func TestIntegration_MissingVolumeDoesNotFailQueries(t *testing.T) {
	_, h := setup(t)

	w := post(t, h, "/api/v1/search/proximity", models.ProximityRequest{Term1: "god", Term2: "light"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp models.SearchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Total)
	assert.Equal(t, models.SearchResult{
		Volume:  "Pearl of Great Price",
		Book:    "Pearl of Great Price",
		Chapter: 1,
		Verse:   1,
		Text:    "And I, God, said: Let there be light; and there was light.",
	}, resp.Results[0])

	sw := httptest.NewRecorder()
	h.ServeHTTP(sw, httptest.NewRequest(http.MethodGet, "/api/v1/status", nil))
	require.Equal(t, http.StatusOK, sw.Code)
	var status struct {
		Volumes []corpus.VolumeStatus `json:"volumes"`
	}
	require.NoError(t, json.Unmarshal(sw.Body.Bytes(), &status))
	require.Len(t, status.Volumes, 3)
	assert.Equal(t, corpus.StateLoaded, status.Volumes[0].State)
	assert.Equal(t, corpus.StateLoaded, status.Volumes[1].State)
	assert.Equal(t, corpus.StateFailed, status.Volumes[2].State)
	assert.NotEmpty(t, status.Volumes[2].LastError)
}

func TestIntegration_Frequencies(t *testing.T) {
	_, h := setup(t)

	w := post(t, h, "/api/v1/frequency/books", models.FrequencyRequest{Terms: []string{"I", "light"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp models.FrequencyResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Table["Pearl of Great Price"]["light"])
	assert.Equal(t, []string{"Pearl of Great Price", "1 Nephi"}, resp.Labels)

	w = post(t, h, "/api/v1/frequency/chapters", models.FrequencyRequest{Terms: []string{"record"}, Book: "1 Nephi"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, models.FrequencyTable{"1": {"record": 1}}, resp.Table)
}

func TestIntegration_LoadVolumeEndpoint(t *testing.T) {
	_, h := setup(t)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/volumes/Book%20of%20Mormon/load", nil))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var st corpus.VolumeStatus
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &st))
	assert.Equal(t, corpus.StateLoaded, st.State)
	assert.Equal(t, 2, st.Verses)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/volumes/Apocrypha/load", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
