package search

import (
	"fmt"
	"sort"
	"sync"

	"github.com/kailas-cloud/esmodel/internal/domain"
	"github.com/kailas-cloud/esmodel/internal/domain/search/request"
	"github.com/kailas-cloud/esmodel/internal/domain/target"
)

// Compile-time check: BoundModel implements Model.
var _ Model = (*BoundModel)(nil)

// BoundModel binds a target descriptor to a client.
type BoundModel struct {
	target target.Target
	client Client
}

// NewModel creates a model searching t through client.
func NewModel(t target.Target, client Client) *BoundModel {
	return &BoundModel{target: t, client: client}
}

// IndexName returns the default index.
func (m *BoundModel) IndexName() string { return m.target.IndexName() }

// DocumentType returns the default document type.
func (m *BoundModel) DocumentType() string { return m.target.DocumentType() }

// Client returns the client handle.
func (m *BoundModel) Client() Client { return m.client }

// Target returns the target descriptor.
func (m *BoundModel) Target() target.Target { return m.target }

// Search is shorthand for Search(m, input, opts).
func (m *BoundModel) Search(input any, opts request.Options) *Response {
	return Search(m, input, opts)
}

// Scroll is shorthand for Scroll(m, scrollID, opts).
func (m *BoundModel) Scroll(scrollID string, opts request.Options) *Response {
	return Scroll(m, scrollID, opts)
}

// Registry maps model names to models. It is safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	models map[string]Model
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{models: make(map[string]Model)}
}

// Register adds or replaces a model.
func (r *Registry) Register(name string, m Model) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.models[name] = m
}

// Get returns the model registered under name.
func (r *Registry) Get(name string) (Model, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.models[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrModelNotFound, name)
	}
	return m, nil
}

// Names returns registered model names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.models))
	for n := range r.models {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
