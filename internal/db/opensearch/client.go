package opensearch

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"

	opensearch "github.com/opensearch-project/opensearch-go/v2"

	"github.com/kailas-cloud/esmodel/internal/db"
)

// Compile-time check: Client implements db.Engine.
var _ db.Engine = (*Client)(nil)

// Config holds connection parameters for an OpenSearch cluster.
type Config struct {
	Addrs        []string
	Username     string
	Password     string
	InsecureTLS  bool // skip certificate verification (self-signed demo clusters)
	DisableRetry bool
}

// Client implements db.Engine on opensearch-go.
type Client struct {
	*db.Client
	os *opensearch.Client
}

// NewClient creates an OpenSearch client.
func NewClient(cfg Config) (*Client, error) {
	if len(cfg.Addrs) == 0 {
		return nil, fmt.Errorf("addrs is required")
	}

	osCfg := opensearch.Config{
		Addresses:    cfg.Addrs,
		Username:     cfg.Username,
		Password:     cfg.Password,
		DisableRetry: cfg.DisableRetry,
	}
	if cfg.InsecureTLS {
		osCfg.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, //nolint:gosec // opt-in via config
		}
	}

	client, err := opensearch.NewClient(osCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create opensearch client: %w", err)
	}

	return &Client{Client: db.NewClient(client), os: client}, nil
}

// Ping checks connectivity via the info endpoint.
func (c *Client) Ping(ctx context.Context) error {
	res, err := c.os.Info(c.os.Info.WithContext(ctx))
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
