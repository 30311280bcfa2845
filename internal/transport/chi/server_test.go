package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kailas-cloud/esmodel/internal/db"
	"github.com/kailas-cloud/esmodel/internal/domain/search/result"
	"github.com/kailas-cloud/esmodel/internal/domain/target"
	healthuc "github.com/kailas-cloud/esmodel/internal/usecase/health"
	searchuc "github.com/kailas-cloud/esmodel/internal/usecase/search"
)

// --- Fakes ---

type fakeEngine struct {
	mu       sync.Mutex
	op       string
	params   map[string]any
	cleared  []string
	err      error
	pingErr  error
	response result.Raw
}

func (f *fakeEngine) Search(_ context.Context, params map[string]any) (result.Raw, error) {
	return f.record("search", params)
}

func (f *fakeEngine) Scroll(_ context.Context, params map[string]any) (result.Raw, error) {
	return f.record("scroll", params)
}

func (f *fakeEngine) ClearScroll(_ context.Context, ids ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cleared = append(f.cleared, ids...)
	return f.err
}

func (f *fakeEngine) Ping(context.Context) error { return f.pingErr }

func (f *fakeEngine) record(op string, params map[string]any) (result.Raw, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.op, f.params = op, params
	if f.err != nil {
		return nil, f.err
	}
	if f.response != nil {
		return f.response, nil
	}
	return result.Raw{"took": json.Number("2"), "hits": map[string]any{"hits": []any{}}}, nil
}

func newTestRouter(t *testing.T, engine *fakeEngine, withScrolls bool) http.Handler {
	t.Helper()

	models := searchuc.NewRegistry()
	models.Register("articles", searchuc.NewModel(target.MustNew("articles", "article"), engine))
	models.Register("logs", searchuc.NewModel(target.MustNew("logs-*", ""), engine))

	var scrolls searchuc.ScrollClearer
	if withScrolls {
		scrolls = engine
	}

	srv := NewServer(models, scrolls, healthuc.New(engine, models), zap.NewNop())
	r := chi.NewRouter()
	srv.Routes(r)
	return r
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, http.NoBody)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var e ErrorResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&e))
	return e
}

// --- Search ---

func TestSearchQueryString_FreeText(t *testing.T) {
	engine := &fakeEngine{}
	h := newTestRouter(t, engine, true)

	rr := do(t, h, http.MethodGet, "/models/articles/search?q=hello+world&size=5&sort=a&sort=b", "")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.Equal(t, "search", engine.op)
	assert.Equal(t, map[string]any{
		"index": "articles",
		"type":  "article",
		"q":     "hello world",
		"size":  "5",
		"sort":  []string{"a", "b"},
	}, engine.params)

	var raw map[string]any
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&raw))
	assert.Contains(t, raw, "hits")
}

func TestSearchQueryString_IndexOverride(t *testing.T) {
	engine := &fakeEngine{}
	h := newTestRouter(t, engine, true)

	rr := do(t, h, http.MethodGet, "/models/articles/search?q=x&index=archive", "")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "archive", engine.params["index"])
}

func TestSearchBody_ObjectQuery(t *testing.T) {
	engine := &fakeEngine{}
	h := newTestRouter(t, engine, true)

	rr := do(t, h, http.MethodPost, "/models/articles/search",
		`{"query": {"query": {"match_all": {}}}, "options": {"size": 10}}`)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"query": {"match_all": {}}}`, engine.params["body"].(string))
	assert.Equal(t, json.Number("10"), engine.params["size"])
	assert.NotContains(t, engine.params, "q")
}

func TestSearchBody_JSONLookingString(t *testing.T) {
	engine := &fakeEngine{}
	h := newTestRouter(t, engine, true)

	rr := do(t, h, http.MethodPost, "/models/articles/search",
		`{"query": "{\"query\":{\"match\":{\"title\":\"go\"}}}"}`)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, `{"query":{"match":{"title":"go"}}}`, engine.params["body"])
}

func TestSearchBody_FreeTextString(t *testing.T) {
	engine := &fakeEngine{}
	h := newTestRouter(t, engine, true)

	rr := do(t, h, http.MethodPost, "/models/logs/search", `{"query": "level:error"}`)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "level:error", engine.params["q"])
	assert.Equal(t, "logs-*", engine.params["index"])
	assert.Equal(t, "", engine.params["type"])
}

func TestSearchBody_InvalidQueryType(t *testing.T) {
	engine := &fakeEngine{}
	h := newTestRouter(t, engine, true)

	rr := do(t, h, http.MethodPost, "/models/articles/search", `{"query": [1, 2]}`)

	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, CodeBadRequest, decodeError(t, rr).Code)
	assert.Empty(t, engine.op)
}

func TestSearchBody_MalformedJSON(t *testing.T) {
	h := newTestRouter(t, &fakeEngine{}, true)

	rr := do(t, h, http.MethodPost, "/models/articles/search", `{"query":`)

	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, CodeBadRequest, decodeError(t, rr).Code)
}

func TestSearch_UnknownModel(t *testing.T) {
	h := newTestRouter(t, &fakeEngine{}, true)

	rr := do(t, h, http.MethodGet, "/models/nope/search?q=x", "")

	require.Equal(t, http.StatusNotFound, rr.Code)
	e := decodeError(t, rr)
	assert.Equal(t, CodeModelNotFound, e.Code)
	assert.Contains(t, e.Message, `"nope"`)
}

func TestSearch_EngineErrorStatusPassesThrough(t *testing.T) {
	engine := &fakeEngine{err: &db.Error{Op: db.OpSearch, Err: db.NewResponseError(
		http.StatusBadRequest,
		[]byte(`{"error":{"type":"parsing_exception","reason":"unknown query [mtch]"}}`),
	)}}
	h := newTestRouter(t, engine, true)

	rr := do(t, h, http.MethodPost, "/models/articles/search", `{"query": {"query": {"mtch": {}}}}`)

	require.Equal(t, http.StatusBadRequest, rr.Code)
	e := decodeError(t, rr)
	assert.Equal(t, "parsing_exception", e.Code)
	assert.Equal(t, "unknown query [mtch]", e.Message)
}

func TestSearch_EngineIndexMissing(t *testing.T) {
	engine := &fakeEngine{err: db.NewResponseError(http.StatusNotFound, []byte(`not json`))}
	h := newTestRouter(t, engine, true)

	rr := do(t, h, http.MethodGet, "/models/articles/search?q=x", "")

	require.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, CodeEngineError, decodeError(t, rr).Code)
}

func TestSearch_TransportErrorIsBadGateway(t *testing.T) {
	engine := &fakeEngine{err: &db.Error{Op: db.OpSearch, Err: errors.New("connection refused")}}
	h := newTestRouter(t, engine, true)

	rr := do(t, h, http.MethodGet, "/models/articles/search?q=x", "")

	require.Equal(t, http.StatusBadGateway, rr.Code)
	e := decodeError(t, rr)
	assert.Equal(t, CodeEngineError, e.Code)
	assert.NotContains(t, e.Message, "connection refused")
}

// --- Scroll ---

func TestScroll(t *testing.T) {
	engine := &fakeEngine{response: result.Raw{"_scroll_id": "next"}}
	h := newTestRouter(t, engine, true)

	rr := do(t, h, http.MethodPost, "/models/articles/scroll",
		`{"scroll_id": "abc", "options": {"scroll": "1m"}}`)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "scroll", engine.op)
	assert.Equal(t, map[string]any{
		"index":     "articles",
		"type":      "article",
		"scroll_id": "abc",
		"scroll":    "1m",
	}, engine.params)
	assert.JSONEq(t, `{"_scroll_id": "next"}`, rr.Body.String())
}

func TestScroll_MissingID(t *testing.T) {
	engine := &fakeEngine{}
	h := newTestRouter(t, engine, true)

	rr := do(t, h, http.MethodPost, "/models/articles/scroll", `{"scroll_id": "  "}`)

	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Empty(t, engine.op)
}

func TestClearScroll(t *testing.T) {
	engine := &fakeEngine{}
	h := newTestRouter(t, engine, true)

	rr := do(t, h, http.MethodDelete, "/scroll", `{"scroll_id": ["a", "b"]}`)

	require.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, []string{"a", "b"}, engine.cleared)
}

func TestClearScroll_Empty(t *testing.T) {
	h := newTestRouter(t, &fakeEngine{}, true)

	rr := do(t, h, http.MethodDelete, "/scroll", `{"scroll_id": []}`)

	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestClearScroll_NotSupported(t *testing.T) {
	h := newTestRouter(t, &fakeEngine{}, false)

	rr := do(t, h, http.MethodDelete, "/scroll", `{"scroll_id": ["a"]}`)

	require.Equal(t, http.StatusNotImplemented, rr.Code)
	assert.Equal(t, CodeNotSupported, decodeError(t, rr).Code)
}

// --- Health ---

func TestHealthCheck_OK(t *testing.T) {
	h := newTestRouter(t, &fakeEngine{}, true)

	rr := do(t, h, http.MethodGet, "/health", "")

	require.Equal(t, http.StatusOK, rr.Code)
	var resp HealthResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "ok", resp.Checks["engine"])
	assert.NotEmpty(t, resp.Version)
}

func TestHealthCheck_EngineDown(t *testing.T) {
	h := newTestRouter(t, &fakeEngine{pingErr: errors.New("down")}, true)

	rr := do(t, h, http.MethodGet, "/health", "")

	require.Equal(t, http.StatusServiceUnavailable, rr.Code)
	var resp HealthResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "degraded", resp.Status)
	assert.Equal(t, "error", resp.Checks["engine"])
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestRouter(t, &fakeEngine{}, true)

	rr := do(t, h, http.MethodGet, "/metrics", "")

	require.Equal(t, http.StatusOK, rr.Code)
}
