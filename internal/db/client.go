package db

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/kailas-cloud/esmodel/internal/domain/search/result"
)

// Client sends request definitions to the engine over a Transport.
// It is shared by the Elasticsearch and OpenSearch backends.
type Client struct {
	transport Transport
}

// NewClient creates a client over transport.
func NewClient(transport Transport) *Client {
	return &Client{transport: transport}
}

// Search runs a search request.
func (c *Client) Search(ctx context.Context, params map[string]any) (result.Raw, error) {
	req, err := newSearchRequest(ctx, params)
	if err != nil {
		return nil, &Error{Op: OpSearch, Err: err}
	}
	return c.do(OpSearch, req)
}

// Scroll fetches the next page of a scroll context.
func (c *Client) Scroll(ctx context.Context, params map[string]any) (result.Raw, error) {
	req, err := newScrollRequest(ctx, params)
	if err != nil {
		return nil, &Error{Op: OpScroll, Err: err}
	}
	return c.do(OpScroll, req)
}

// ClearScroll releases the given scroll contexts. A 404 (already expired) is not an error.
func (c *Client) ClearScroll(ctx context.Context, scrollIDs ...string) error {
	if len(scrollIDs) == 0 {
		return nil
	}
	req, err := newClearScrollRequest(ctx, scrollIDs)
	if err != nil {
		return &Error{Op: OpClearScroll, Err: err}
	}

	res, err := c.transport.Perform(req)
	if err != nil {
		return &Error{Op: OpClearScroll, Err: err}
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode == http.StatusNotFound {
		_, _ = io.Copy(io.Discard, res.Body)
		return nil
	}
	if res.StatusCode > 299 {
		return &Error{Op: OpClearScroll, Err: responseError(res)}
	}
	_, _ = io.Copy(io.Discard, res.Body)
	return nil
}

func (c *Client) do(op string, req *http.Request) (result.Raw, error) {
	res, err := c.transport.Perform(req)
	if err != nil {
		return nil, &Error{Op: op, Err: err}
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode > 299 {
		return nil, &Error{Op: op, Err: responseError(res)}
	}

	var raw result.Raw
	if err := json.NewDecoder(res.Body).Decode(&raw); err != nil {
		return nil, &Error{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return raw, nil
}

func responseError(res *http.Response) *ResponseError {
	body, _ := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	return NewResponseError(res.StatusCode, body)
}
