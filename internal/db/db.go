package db

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/kailas-cloud/esmodel/internal/domain/search/result"
)

// Transport performs HTTP requests against the engine cluster.
// Both the Elasticsearch and the OpenSearch clients implement it; they
// fill in scheme, host, authentication and node selection.
type Transport interface {
	Perform(req *http.Request) (*http.Response, error)
}

// Engine is the facade every backend implements.
type Engine interface {
	Pinger
	Searcher
	ScrollClearer
}

// Pinger checks engine connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Searcher runs search and scroll requests given a flattened request definition.
type Searcher interface {
	Search(ctx context.Context, params map[string]any) (result.Raw, error)
	Scroll(ctx context.Context, params map[string]any) (result.Raw, error)
}

// ScrollClearer releases server-side scroll contexts.
type ScrollClearer interface {
	ClearScroll(ctx context.Context, scrollIDs ...string) error
}

// WaitForReady polls Ping until the engine responds or timeout expires.
func WaitForReady(ctx context.Context, p Pinger, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := p.Ping(ctx); err == nil {
		return nil
	}

	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for search engine: %w", ctx.Err())
		case <-ticker.C:
			if err := p.Ping(ctx); err == nil {
				return nil
			}
		}
	}
}
