package research

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	types "github.com/yungbote/skilltree-backend/internal/domain"
	"github.com/yungbote/skilltree-backend/internal/platform/httpx"
	"github.com/yungbote/skilltree-backend/internal/platform/logger"
)

const arxivFeedXML = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <entry>
    <id>http://arxiv.org/abs/2101.00001v1</id>
    <published>2021-01-01T00:00:00Z</published>
    <title>Quantum
      Error Correction</title>
    <summary>  A survey of
      surface codes.  </summary>
    <author><name>Ada Lovelace</name></author>
    <author><name>Alan Turing</name></author>
    <category term="quant-ph"/>
  </entry>
  <entry>
    <id></id>
    <title>No id</title>
  </entry>
  <entry>
    <id>http://arxiv.org/abs/2101.00002v1</id>
    <published>2021-01-02T00:00:00Z</published>
    <title>Qubit Routing</title>
    <summary>Routing.</summary>
  </entry>
</feed>`

func newServer(t *testing.T, h http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

func TestArxivSearch(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "all:quantum computing", r.URL.Query().Get("search_query"))
		assert.Equal(t, "5", r.URL.Query().Get("max_results"))
		_, _ = w.Write([]byte(arxivFeedXML))
	})
	src := NewArxivSource(logger.NewNop(), srv.Client(), srv.URL)

	got, err := src.Search(context.Background(), "quantum computing", 5)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Quantum Error Correction", got[0].Title)
	assert.Equal(t, "http://arxiv.org/abs/2101.00001v1", got[0].URL)
	assert.Equal(t, "A survey of surface codes.", got[0].Summary)
	assert.Equal(t, "Ada Lovelace, Alan Turing", got[0].Authors)
	assert.Equal(t, "2021-01-01", got[0].PublicationDate)
	assert.Equal(t, types.SourceTypeArxiv, got[0].SourceType)
	assert.Contains(t, string(got[0].Metadata), "2101.00001")
}

func TestArxivSearchFailureIsSourceError(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	})
	src := NewArxivSource(logger.NewNop(), srv.Client(), srv.URL)

	_, err := src.Search(context.Background(), "x", 3)
	var se *SourceError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, types.SourceTypeArxiv, se.SourceType)
	var status *httpx.StatusError
	require.True(t, errors.As(err, &status))
	assert.Equal(t, http.StatusServiceUnavailable, status.StatusCode)
}

func TestArxivFetchDetails(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2101.00001", r.URL.Query().Get("id_list"))
		_, _ = w.Write([]byte(arxivFeedXML))
	})
	src := NewArxivSource(logger.NewNop(), srv.Client(), srv.URL)

	got, err := src.FetchDetails(context.Background(), "https://arxiv.org/pdf/2101.00001")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Quantum Error Correction", got.Title)

	none, err := src.FetchDetails(context.Background(), "https://arxiv.org/list/recent")
	require.NoError(t, err)
	assert.Nil(t, none)

	assert.True(t, src.CanHandle("https://arxiv.org/abs/1"))
	assert.False(t, src.CanHandle("https://example.com"))
}

func TestWikipediaSearch(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "opensearch", r.URL.Query().Get("action"))
		_, _ = w.Write([]byte(`["go",["Go (language)",""," Gopher "],["A language","blank",""],["https://en.wikipedia.org/wiki/Go_(language)","https://en.wikipedia.org/wiki/x","https://en.wikipedia.org/wiki/Gopher"]]`))
	})
	src := NewWikipediaSource(logger.NewNop(), srv.Client(), srv.URL)

	got, err := src.Search(context.Background(), "go", 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Go (language)", got[0].Title)
	assert.Equal(t, "A language", got[0].Summary)
	assert.Equal(t, "Gopher", got[1].Title)
	assert.Equal(t, types.SourceTypeWikipedia, got[1].SourceType)
}

func TestWikipediaFetchDetails(t *testing.T) {
	long := strings.Repeat("q", 1200)
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Quantum computing", r.URL.Query().Get("titles"))
		_, _ = w.Write([]byte(`{"query":{"pages":{"42":{"pageid":42,"title":"Quantum computing","extract":"` + long + `","fullurl":"https://en.wikipedia.org/wiki/Quantum_computing"}}}}`))
	})
	src := NewWikipediaSource(logger.NewNop(), srv.Client(), srv.URL)

	got, err := src.FetchDetails(context.Background(), "https://en.wikipedia.org/wiki/Quantum_computing")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Quantum computing", got.Title)
	assert.Len(t, got.Summary, 1000)
	assert.Len(t, got.Excerpt, 500)

	none, err := src.FetchDetails(context.Background(), "https://en.wikipedia.org/")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestWikipediaFetchDetailsMissingPage(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"query":{"pages":{"-1":{"title":"Nope","missing":""}}}}`))
	})
	src := NewWikipediaSource(logger.NewNop(), srv.Client(), srv.URL)
	got, err := src.FetchDetails(context.Background(), "https://en.wikipedia.org/wiki/Nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

const ddgHTML = `<html><body>
<div class="result">
  <a class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fgo.dev%2Fdoc%2F&rut=abc">The Go   Docs</a>
  <a class="result__snippet">Documentation for Go.</a>
</div>
<div class="result">
  <a class="result__a" href="">Broken</a>
</div>
<div class="result">
  <a class="result__a" href="https://gobyexample.com/">Go by Example</a>
  <a class="result__snippet">Hands-on intro.</a>
</div>
<div class="result">
  <a class="result__a" href="https://tour.golang.org/">Tour</a>
</div>
</body></html>`

func TestWebSearch(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "golang", r.URL.Query().Get("q"))
		_, _ = w.Write([]byte(ddgHTML))
	})
	src := NewWebSearchSource(logger.NewNop(), srv.Client(), srv.URL)

	got, err := src.Search(context.Background(), "golang", 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "The Go Docs", got[0].Title)
	assert.Equal(t, "https://go.dev/doc/", got[0].URL)
	assert.Equal(t, "Documentation for Go.", got[0].Summary)
	assert.Equal(t, "https://gobyexample.com/", got[1].URL)
}

func TestWebSearchFetchDetails(t *testing.T) {
	para := strings.Repeat("word ", 20)
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/meta":
			_, _ = w.Write([]byte(`<html><head><title>Meta Page</title><meta name="description" content="Described."></head><body><p>` + para + `</p></body></html>`))
		case "/para":
			_, _ = w.Write([]byte(`<html><head></head><body><p>short</p><p>` + para + `</p></body></html>`))
		default:
			_, _ = w.Write([]byte(`<html><body><p>tiny</p></body></html>`))
		}
	})
	src := NewWebSearchSource(logger.NewNop(), srv.Client(), srv.URL)
	ctx := context.Background()

	meta, err := src.FetchDetails(ctx, srv.URL+"/meta")
	require.NoError(t, err)
	assert.Equal(t, "Meta Page", meta.Title)
	assert.Equal(t, "Described.", meta.Summary)

	p, err := src.FetchDetails(ctx, srv.URL+"/para")
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/para", p.Title)
	assert.Equal(t, strings.TrimSpace(para), p.Summary)

	empty, err := src.FetchDetails(ctx, srv.URL+"/empty")
	require.NoError(t, err)
	assert.Equal(t, noDescription, empty.Summary)

	none, err := src.FetchDetails(ctx, "ftp://example.com")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "héł", Truncate("héło", 3))
	assert.Equal(t, "abc", Truncate("abc", 10))
	assert.Equal(t, "", Truncate("abc", 0))
}
