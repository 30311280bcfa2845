package elastic

import (
	"context"
	"fmt"
	"io"

	"github.com/elastic/go-elasticsearch/v7"

	"github.com/kailas-cloud/esmodel/internal/db"
)

// Compile-time check: Client implements db.Engine.
var _ db.Engine = (*Client)(nil)

// Config holds connection parameters for an Elasticsearch cluster.
type Config struct {
	Addrs        []string
	Username     string
	Password     string
	APIKey       string
	CloudID      string
	DisableRetry bool
}

// Client implements db.Engine on go-elasticsearch.
type Client struct {
	*db.Client
	es *elasticsearch.Client
}

// NewClient creates an Elasticsearch client.
func NewClient(cfg Config) (*Client, error) {
	if len(cfg.Addrs) == 0 && cfg.CloudID == "" {
		return nil, fmt.Errorf("addrs or cloud id is required")
	}

	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses:    cfg.Addrs,
		Username:     cfg.Username,
		Password:     cfg.Password,
		APIKey:       cfg.APIKey,
		CloudID:      cfg.CloudID,
		DisableRetry: cfg.DisableRetry,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create elasticsearch client: %w", err)
	}

	return &Client{Client: db.NewClient(es), es: es}, nil
}

// Ping checks connectivity via the info endpoint.
func (c *Client) Ping(ctx context.Context) error {
	res, err := c.es.Info(c.es.Info.WithContext(ctx))
	if err != nil {
		return &db.Error{Op: db.OpInfo, Err: err}
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return &db.Error{Op: db.OpInfo, Err: db.NewResponseError(res.StatusCode, body)}
	}
	return nil
}
