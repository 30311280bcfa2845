package esmodel

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/esmodel/internal/db"
	"github.com/kailas-cloud/esmodel/internal/db/elastic"
	"github.com/kailas-cloud/esmodel/internal/db/opensearch"
	"github.com/kailas-cloud/esmodel/internal/metrics"
	searchuc "github.com/kailas-cloud/esmodel/internal/usecase/search"
)

// Backend names.
const (
	BackendElasticsearch = "elasticsearch"
	BackendOpenSearch    = "opensearch"
)

// Compile-time check: Client implements SearchClient.
var _ SearchClient = (*Client)(nil)

// Client is a search engine connection shared by any number of models.
type Client struct {
	backend string
	engine  db.Engine
	search  searchuc.Client
}

// NewElasticsearchClient connects to an Elasticsearch cluster.
func NewElasticsearchClient(opts ...Option) (*Client, error) {
	cfg := newClientConfig(opts)
	if len(cfg.addrs) == 0 && cfg.cloudID == "" {
		return nil, errors.New("esmodel: address or cloud id required (use WithAddrs or WithCloudID)")
	}
	if cfg.insecureTLS {
		return nil, errors.New("esmodel: WithInsecureTLS is not supported by the elasticsearch client")
	}

	engine, err := elastic.NewClient(elastic.Config{
		Addrs:        cfg.addrs,
		Username:     cfg.username,
		Password:     cfg.password,
		APIKey:       cfg.apiKey,
		CloudID:      cfg.cloudID,
		DisableRetry: cfg.disableRetry,
	})
	if err != nil {
		return nil, fmt.Errorf("esmodel: %w", err)
	}
	return newClient(BackendElasticsearch, engine, cfg)
}

// NewOpenSearchClient connects to an OpenSearch cluster.
func NewOpenSearchClient(opts ...Option) (*Client, error) {
	cfg := newClientConfig(opts)
	if len(cfg.addrs) == 0 {
		return nil, errors.New("esmodel: address required (use WithAddrs)")
	}
	if cfg.apiKey != "" || cfg.cloudID != "" {
		return nil, errors.New("esmodel: WithAPIKey and WithCloudID are not supported by the opensearch client")
	}

	engine, err := opensearch.NewClient(opensearch.Config{
		Addrs:        cfg.addrs,
		Username:     cfg.username,
		Password:     cfg.password,
		InsecureTLS:  cfg.insecureTLS,
		DisableRetry: cfg.disableRetry,
	})
	if err != nil {
		return nil, fmt.Errorf("esmodel: %w", err)
	}
	return newClient(BackendOpenSearch, engine, cfg)
}

func newClient(backend string, engine db.Engine, cfg *clientConfig) (*Client, error) {
	if cfg.readiness > 0 {
		if err := db.WaitForReady(context.Background(), engine, cfg.readiness); err != nil {
			return nil, fmt.Errorf("esmodel: %s not ready: %w", backend, err)
		}
	}

	c := &Client{backend: backend, engine: engine, search: engine}
	if cfg.metrics || cfg.logger != nil {
		if cfg.metrics {
			metrics.RegisterSearchMetrics()
		}
		l := cfg.logger
		if l == nil {
			l = zap.NewNop()
		}
		c.search = searchuc.NewInstrumentedClient(engine, backend, l)
	}
	return c, nil
}

// Backend returns "elasticsearch" or "opensearch".
func (c *Client) Backend() string { return c.backend }

// Search runs a search with flattened request parameters.
func (c *Client) Search(ctx context.Context, params map[string]any) (Raw, error) {
	return c.search.Search(ctx, params) //nolint:wrapcheck // errors pass through unchanged
}

// Scroll fetches the next page of a scroll with flattened request parameters.
func (c *Client) Scroll(ctx context.Context, params map[string]any) (Raw, error) {
	return c.search.Scroll(ctx, params) //nolint:wrapcheck // errors pass through unchanged
}

// ClearScroll releases server-side scroll contexts. Unknown ids are not an error.
func (c *Client) ClearScroll(ctx context.Context, scrollIDs ...string) error {
	if sc, ok := c.search.(searchuc.ScrollClearer); ok {
		return sc.ClearScroll(ctx, scrollIDs...) //nolint:wrapcheck // errors pass through unchanged
	}
	return c.engine.ClearScroll(ctx, scrollIDs...) //nolint:wrapcheck // errors pass through unchanged
}

// Ping checks cluster connectivity.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.engine.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// ResponseError is returned when the engine replies with a non-2xx status.
type ResponseError = db.ResponseError

// IsNotFound reports whether err is an engine 404 (missing index or scroll).
func IsNotFound(err error) bool {
	var re *db.ResponseError
	return errors.As(err, &re) && re.Status == 404
}
