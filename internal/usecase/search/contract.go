package search

import (
	"context"

	"github.com/kailas-cloud/esmodel/internal/domain/search/result"
)

// Client is the search-engine client a model executes against.
// params is the flattened request definition: reserved keys plus pass-through extras.
type Client interface {
	Search(ctx context.Context, params map[string]any) (result.Raw, error)
	Scroll(ctx context.Context, params map[string]any) (result.Raw, error)
}

// ScrollClearer is implemented by clients that can release scroll contexts.
type ScrollClearer interface {
	ClearScroll(ctx context.Context, scrollIDs ...string) error
}

// Pinger checks engine availability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Model is the owning model: it names the default index and document type
// and supplies the client handle.
type Model interface {
	IndexName() string
	DocumentType() string
	Client() Client
}
