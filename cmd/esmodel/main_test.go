package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kailas-cloud/esmodel/internal/config"
	"github.com/kailas-cloud/esmodel/internal/db/elastic"
	"github.com/kailas-cloud/esmodel/internal/db/opensearch"
	"github.com/kailas-cloud/esmodel/internal/domain/target"
	"github.com/kailas-cloud/esmodel/internal/usecase/search"
)

func TestNewEngine(t *testing.T) {
	es, err := newEngine(config.SearchConfig{Driver: config.DriverElasticsearch, Addrs: []string{"http://localhost:9200"}})
	require.NoError(t, err)
	assert.IsType(t, &elastic.Client{}, es)

	osc, err := newEngine(config.SearchConfig{Driver: config.DriverOpenSearch, Addrs: []string{"https://localhost:9200"}})
	require.NoError(t, err)
	assert.IsType(t, &opensearch.Client{}, osc)

	_, err = newEngine(config.SearchConfig{Driver: "solr"})
	require.Error(t, err)
}

func TestBuildRegistry(t *testing.T) {
	reg, err := buildRegistry(map[string]config.ModelConfig{
		"articles": {Index: "articles", Type: "article"},
		"logs":     {Index: "logs-*"},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"articles", "logs"}, reg.Names())

	m, err := reg.Get("articles")
	require.NoError(t, err)
	assert.Equal(t, "articles", m.IndexName())
	assert.Equal(t, "article", m.DocumentType())
	assert.IsType(t, &search.BoundModel{}, m)

	_, err = buildRegistry(map[string]config.ModelConfig{"bad": {Index: " "}}, nil)
	require.ErrorIs(t, err, target.ErrIndexRequired)
}

func TestJSONRecoverer(t *testing.T) {
	h := jsonRecoverer(zap.NewNop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", http.NoBody))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"code":"internal_error","message":"internal error"}`, rr.Body.String())
}

func TestWideEventMiddleware(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)

	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(zap.New(core)))
	r.Get("/models/{model}/search", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/models/articles/search", http.NoBody))

	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "http_request", logs.All()[0].Message)
	assert.Equal(t, int64(http.StatusTeapot), fields["status"])
	assert.Equal(t, "articles", fields["model"])
}
