package arxiv

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const listingTemplate = `<html><body>
<h3>New submissions</h3>
<dl id="articles">
  <dt>
    <a name="item1">[1]</a>
    <a href="/abs/%[1]s" title="Abstract" id="%[1]s">arXiv:%[1]s</a>
  </dt>
  <dd>
    <div class="meta">
      <div class="list-title mathjax"><span class="descriptor">Title:</span>
        %[2]s
      </div>
      <div class="list-authors"><a href="#">Alice Smith</a>, <a href="#">Bob Lee</a></div>
      <div class="list-subjects"><span class="descriptor">Subjects:</span>
        <span class="primary-subject">Machine Learning (cs.LG)</span>; Computation and Language (cs.CL)
      </div>
      <p class="mathjax">Abstract: We study agents
        that plan.</p>
    </div>
  </dd>
</dl>
</body></html>`

func TestBuildListURL(t *testing.T) {
	u, err := buildListURL("https://arxiv.org", "cs.AI", 0, 50)
	require.NoError(t, err)

	parsed, err := url.Parse(u)
	require.NoError(t, err)
	assert.Equal(t, "/list/cs.AI/new", parsed.Path)
	assert.Equal(t, "0", parsed.Query().Get("skip"))
	assert.Equal(t, "50", parsed.Query().Get("show"))
}

func TestParseEntry(t *testing.T) {
	html := fmt.Sprintf(listingTemplate, "2510.01234", "Planning Agents at Scale")
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)

	dt := doc.Find("dl > dt").First()
	e := parseEntry(dt, dt.Next())

	assert.Equal(t, "2510.01234", e.ID)
	assert.Equal(t, "/abs/2510.01234", e.Href)
	assert.Equal(t, "Planning Agents at Scale", e.Title)
	assert.Equal(t, "Alice Smith, Bob Lee", e.Authors)
	assert.Equal(t, "We study agents that plan.", e.Abstract)
	assert.Equal(t, []string{"cs.LG", "cs.CL"}, parseCategories(e.Subjects))
}

func TestPublishedAtFallbacks(t *testing.T) {
	f := NewFetcher("", zap.NewNop())
	fixed := time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)
	f.now = func() time.Time { return fixed }

	assert.Equal(t, time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC), f.publishedAt(listingEntry{ID: "2510.01234"}))
	assert.Equal(t, time.Date(2025, 11, 8, 0, 0, 0, 0, time.UTC), f.publishedAt(listingEntry{ID: "x", Dateline: "(Submitted on 8 Nov 2025)"}))
	assert.Equal(t, fixed, f.publishedAt(listingEntry{ID: "x"}))
}

func TestFetchDeduplicatesAcrossCategories(t *testing.T) {
	var (
		mu    sync.Mutex
		paths []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths = append(paths, r.URL.Path)
		mu.Unlock()
		switch r.URL.Path {
		case "/list/cs.LG/new", "/list/cs.CL/new":
			fmt.Fprintf(w, listingTemplate, "2510.01234", "Planning Agents at Scale")
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	f := NewFetcher(srv.URL, zap.NewNop())
	got, err := f.Fetch(context.Background(), []string{"cs.LG", "cs.CL"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "2510.01234", got[0].ArxivID)
	assert.Equal(t, srv.URL+"/abs/2510.01234", got[0].URL)
	assert.Equal(t, 2025, got[0].Published.Year())
	assert.Len(t, paths, 2)
}

func TestFetchFailsOnErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	f := NewFetcher(srv.URL, zap.NewNop())
	_, err := f.Fetch(context.Background(), []string{"cs.AI"})
	assert.ErrorContains(t, err, "category cs.AI")

	_, err = f.Fetch(context.Background(), nil)
	assert.Error(t, err)
}
