package search

import (
	"context"
	"sync"

	"github.com/kailas-cloud/esmodel/internal/domain/search/request"
	"github.com/kailas-cloud/esmodel/internal/domain/search/result"
)

// Response holds an unexecuted request definition and runs it on first
// access to results. A successful result is memoized; a failed execution
// is returned to the caller and attempted again on the next access.
type Response struct {
	model Model
	def   request.Definition

	mu  sync.Mutex
	raw result.Raw
	ok  bool
}

// NewResponse wraps def without executing it.
func NewResponse(m Model, def request.Definition) *Response {
	return &Response{model: m, def: def}
}

// Model returns the model the response searches against.
func (r *Response) Model() Model { return r.model }

// Definition returns the request definition. It never triggers execution.
func (r *Response) Definition() request.Definition { return r.def }

// Executed reports whether the definition has been executed successfully.
func (r *Response) Executed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ok
}

// Raw executes the request if needed and returns the engine response.
func (r *Response) Raw(ctx context.Context) (result.Raw, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.ok {
		return r.raw, nil
	}

	raw, err := NewExecutor(r.model).Execute(ctx, r.def)
	if err != nil {
		return nil, err
	}
	r.raw, r.ok = raw, true
	return raw, nil
}

// Hits returns the matched documents.
func (r *Response) Hits(ctx context.Context) ([]result.Result, error) {
	return read(ctx, r, result.Raw.Hits)
}

// Total returns the total hit count.
func (r *Response) Total(ctx context.Context) (result.Total, error) {
	return read(ctx, r, result.Raw.Total)
}

// Took returns the engine execution time in milliseconds.
func (r *Response) Took(ctx context.Context) (int64, error) {
	return read(ctx, r, result.Raw.Took)
}

// TimedOut reports whether the engine timed out.
func (r *Response) TimedOut(ctx context.Context) (bool, error) {
	return read(ctx, r, result.Raw.TimedOut)
}

// Shards returns shard statistics.
func (r *Response) Shards(ctx context.Context) (map[string]any, error) {
	return read(ctx, r, result.Raw.Shards)
}

// MaxScore returns the highest score, or 0 when the engine reported none.
func (r *Response) MaxScore(ctx context.Context) (float64, error) {
	return read(ctx, r, func(raw result.Raw) float64 {
		s, _ := raw.MaxScore()
		return s
	})
}

// Aggregations returns the aggregation results.
func (r *Response) Aggregations(ctx context.Context) (map[string]any, error) {
	return read(ctx, r, result.Raw.Aggregations)
}

// Suggestions returns the suggester results.
func (r *Response) Suggestions(ctx context.Context) (map[string]any, error) {
	return read(ctx, r, result.Raw.Suggestions)
}

// ScrollID returns the cursor for fetching the next page with Scroll.
func (r *Response) ScrollID(ctx context.Context) (string, error) {
	return read(ctx, r, result.Raw.ScrollID)
}

func read[T any](ctx context.Context, r *Response, get func(result.Raw) T) (T, error) {
	raw, err := r.Raw(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	return get(raw), nil
}
