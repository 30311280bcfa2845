package esmodel

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// --- Fake cluster ---

type call struct {
	method string
	path   string
	query  url.Values
	body   string
}

type cluster struct {
	*httptest.Server
	mu    sync.Mutex
	calls []call
	pages []string
}

const clusterInfo = `{"name":"n1","cluster_name":"test","version":{"number":"7.17.0","build_flavor":"default"},"tagline":"You Know, for Search"}`

// newCluster serves "/" with cluster info and replies to every other
// request with the next page, repeating the last one.
func newCluster(t *testing.T, pages ...string) *cluster {
	t.Helper()
	c := &cluster{pages: pages}
	c.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path == "/" {
			_, _ = io.WriteString(w, clusterInfo)
			return
		}

		c.mu.Lock()
		c.calls = append(c.calls, call{r.Method, r.URL.Path, r.URL.Query(), string(body)})
		reply := c.pages[0]
		if len(c.pages) > 1 {
			c.pages = c.pages[1:]
		}
		c.mu.Unlock()

		if r.Method == http.MethodDelete {
			_, _ = io.WriteString(w, `{"succeeded":true,"num_freed":1}`)
			return
		}
		_, _ = io.WriteString(w, reply)
	}))
	t.Cleanup(c.Close)
	return c
}

func (c *cluster) recorded() []call {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]call(nil), c.calls...)
}

const page1 = `{"_scroll_id":"s1","took":3,"timed_out":false,
  "hits":{"total":{"value":3,"relation":"eq"},"max_score":1.0,
  "hits":[{"_index":"articles","_type":"article","_id":"1","_score":1.0,"_source":{"title":"Go"}},
          {"_index":"articles","_type":"article","_id":"2","_score":0.5,"_source":{"title":"Rust"}}]}}`

const page2 = `{"_scroll_id":"s2","took":1,"timed_out":false,
  "hits":{"total":{"value":3,"relation":"eq"},"max_score":1.0,
  "hits":[{"_index":"articles","_type":"article","_id":"3","_score":0.2,"_source":{"title":"Zig"}}]}}`

const emptyPage = `{"_scroll_id":"s2","took":1,"timed_out":false,"hits":{"total":{"value":3,"relation":"eq"},"hits":[]}}`

// --- Client construction ---

func TestNewElasticsearchClient_RequiresAddress(t *testing.T) {
	_, err := NewElasticsearchClient()
	require.Error(t, err)
}

func TestNewElasticsearchClient_RejectsInsecureTLS(t *testing.T) {
	_, err := NewElasticsearchClient(WithAddrs("http://localhost:9200"), WithInsecureTLS())
	require.Error(t, err)
}

func TestNewOpenSearchClient_RejectsAPIKey(t *testing.T) {
	_, err := NewOpenSearchClient(WithAddrs("http://localhost:9200"), WithAPIKey("k"))
	require.Error(t, err)
}

func TestNewOpenSearchClient(t *testing.T) {
	c, err := NewOpenSearchClient(WithAddrs("https://localhost:9200"), WithInsecureTLS(), WithoutRetry())
	require.NoError(t, err)
	assert.Equal(t, BackendOpenSearch, c.Backend())
}

func TestNewElasticsearchClient_ReadinessTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	_, err := NewElasticsearchClient(WithAddrs(srv.URL), WithoutRetry(),
		WithReadinessTimeout(300*time.Millisecond))
	require.Error(t, err)
}

// --- Model ---

func TestNewModel_RequiresIndex(t *testing.T) {
	_, err := NewModel("  ", "doc", nil)
	require.Error(t, err)
	assert.Panics(t, func() { MustNewModel("", "", nil) })
}

func TestModel_SearchIsLazy(t *testing.T) {
	c := newCluster(t, page1)
	client, err := NewElasticsearchClient(WithAddrs(c.URL), WithoutRetry())
	require.NoError(t, err)
	articles := MustNewModel("articles", "article", client)

	resp := articles.Search("title:go", Options{"size": 2})

	assert.False(t, resp.Executed())
	assert.Empty(t, c.recorded())
	q, ok := resp.Definition().Q()
	require.True(t, ok)
	assert.Equal(t, "title:go", q)

	hits, err := resp.Hits(context.Background())
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "1", hits[0].ID())
	assert.Equal(t, map[string]any{"title": "Go"}, hits[0].Source())

	calls := c.recorded()
	require.Len(t, calls, 1)
	assert.Equal(t, "/articles/article/_search", calls[0].path)
	assert.Equal(t, "title:go", calls[0].query.Get("q"))
	assert.Equal(t, "2", calls[0].query.Get("size"))

	total, err := resp.Total(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), total.Value)
	assert.Len(t, c.recorded(), 1, "second accessor must reuse the memoized result")
}

func TestModel_SearchStructuredWithIndexOverride(t *testing.T) {
	c := newCluster(t, page1)
	client, err := NewElasticsearchClient(WithAddrs(c.URL), WithoutRetry())
	require.NoError(t, err)
	articles := MustNewModel("articles", "", client)

	resp := articles.Search(map[string]any{"query": map[string]any{"match_all": map[string]any{}}},
		Options{"index": []string{"a", "b"}})
	_, err = resp.Raw(context.Background())
	require.NoError(t, err)

	calls := c.recorded()
	require.Len(t, calls, 1)
	assert.Equal(t, "/a,b/_search", calls[0].path)
	assert.JSONEq(t, `{"query":{"match_all":{}}}`, calls[0].body)
	assert.False(t, calls[0].query.Has("q"))
}

func TestModel_RawJSONIsSentVerbatim(t *testing.T) {
	c := newCluster(t, page1)
	client, err := NewElasticsearchClient(WithAddrs(c.URL), WithoutRetry())
	require.NoError(t, err)
	articles := MustNewModel("articles", "article", client)

	raw := `  {"query":{"term":{"title":"go"}}}`
	_, err = articles.Search(raw, nil).Raw(context.Background())
	require.NoError(t, err)

	calls := c.recorded()
	require.Len(t, calls, 1)
	assert.Equal(t, raw, calls[0].body)
}

func TestModel_ScrollThroughAllPages(t *testing.T) {
	c := newCluster(t, page1, page2, emptyPage)
	client, err := NewElasticsearchClient(WithAddrs(c.URL), WithoutRetry(), WithLogger(zap.NewNop()), WithMetrics())
	require.NoError(t, err)
	articles := MustNewModel("articles", "article", client)
	ctx := context.Background()

	resp := articles.NewSearch().Query("*").Size(2).Scroll(time.Minute).Build()
	page := articles.Do(resp)

	var ids []string
	var scrollIDs []string
	for {
		hits, err := page.Hits(ctx)
		require.NoError(t, err)
		if len(hits) == 0 {
			break
		}
		for _, h := range hits {
			ids = append(ids, h.ID())
		}
		id, err := page.ScrollID(ctx)
		require.NoError(t, err)
		scrollIDs = append(scrollIDs, id)
		page = articles.Scroll(id, Options{"scroll": time.Minute})
	}
	assert.Equal(t, []string{"1", "2", "3"}, ids)
	require.NoError(t, client.ClearScroll(ctx, scrollIDs...))

	calls := c.recorded()
	require.Len(t, calls, 4)
	assert.Equal(t, "/articles/article/_search", calls[0].path)
	assert.Equal(t, "1m", calls[0].query.Get("scroll"))

	assert.Equal(t, http.MethodPost, calls[1].method)
	assert.Equal(t, "/_search/scroll", calls[1].path)
	var scrollBody map[string]any
	require.NoError(t, json.Unmarshal([]byte(calls[1].body), &scrollBody))
	assert.Equal(t, "s1", scrollBody["scroll_id"])
	assert.Equal(t, "1m", scrollBody["scroll"])

	assert.Equal(t, http.MethodDelete, calls[3].method)
	assert.Equal(t, "/_search/scroll", calls[3].path)
}

func TestModel_EngineErrorSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path == "/" {
			_, _ = io.WriteString(w, clusterInfo)
			return
		}
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"error":{"type":"index_not_found_exception","reason":"no such index [x]"},"status":404}`)
	}))
	t.Cleanup(srv.Close)

	client, err := NewElasticsearchClient(WithAddrs(srv.URL), WithoutRetry())
	require.NoError(t, err)
	m := MustNewModel("x", "", client)

	resp := m.Search("a", nil)
	_, err = resp.Hits(context.Background())
	require.Error(t, err)
	assert.True(t, IsNotFound(err))

	var re *ResponseError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, "index_not_found_exception", re.Type)
	assert.False(t, resp.Executed())
}

func TestClient_Ping(t *testing.T) {
	c := newCluster(t, page1)
	client, err := NewElasticsearchClient(WithAddrs(c.URL), WithoutRetry())
	require.NoError(t, err)

	require.NoError(t, client.Ping(context.Background()))
	assert.Equal(t, BackendElasticsearch, client.Backend())
}
