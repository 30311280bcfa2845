package search

import (
	"github.com/kailas-cloud/esmodel/internal/domain/search/request"
)

// Search builds a search definition for m and wraps it, unexecuted, in a Response.
func Search(m Model, input any, opts request.Options) *Response {
	return NewResponse(m, request.BuildSearch(m, input, opts))
}

// Scroll builds a scroll definition for m and wraps it, unexecuted, in a Response.
func Scroll(m Model, scrollID string, opts request.Options) *Response {
	return NewResponse(m, request.BuildScroll(m, scrollID, opts))
}
