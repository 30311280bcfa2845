package esmodel

import (
	"fmt"

	"github.com/kailas-cloud/esmodel/internal/domain/search/request"
	"github.com/kailas-cloud/esmodel/internal/domain/target"
	searchuc "github.com/kailas-cloud/esmodel/internal/usecase/search"
)

// Model is a searchable index bound to a client. Its index and document
// type are the defaults for every request; Options may override them.
type Model struct {
	bound *searchuc.BoundModel
}

// NewModel binds index (comma-separated names and wildcards allowed) and an
// optional document type to client. docType may be empty for typeless clusters.
func NewModel(index, docType string, client SearchClient) (*Model, error) {
	t, err := target.New(index, docType)
	if err != nil {
		return nil, fmt.Errorf("esmodel: %w", err)
	}
	return &Model{bound: searchuc.NewModel(t, client)}, nil
}

// MustNewModel is like NewModel but panics on error.
func MustNewModel(index, docType string, client SearchClient) *Model {
	m, err := NewModel(index, docType, client)
	if err != nil {
		panic(err)
	}
	return m
}

// IndexName returns the default index.
func (m *Model) IndexName() string { return m.bound.IndexName() }

// DocumentType returns the default document type.
func (m *Model) DocumentType() string { return m.bound.DocumentType() }

// Client returns the client the model executes against.
func (m *Model) Client() SearchClient { return m.bound.Client() }

// Search builds a search request from input and opts. Nothing is sent
// until the response is read.
func (m *Model) Search(input any, opts Options) *Response {
	return m.bound.Search(input, opts)
}

// Scroll builds a request for the next page of a scroll. Nothing is sent
// until the response is read.
func (m *Model) Scroll(scrollID string, opts Options) *Response {
	return m.bound.Scroll(scrollID, opts)
}

// NewSearch starts a fluent search against the model's index and type.
func (m *Model) NewSearch() *SearchBuilder {
	return request.NewSearch(m.bound.Target())
}

// NewScroll starts a fluent scroll request.
func (m *Model) NewScroll(scrollID string) *ScrollBuilder {
	return request.NewScroll(m.bound.Target(), scrollID)
}

// Do wraps a definition built with NewSearch or NewScroll. Nothing is sent
// until the response is read.
func (m *Model) Do(def Definition) *Response {
	return searchuc.NewResponse(m.bound, def)
}
