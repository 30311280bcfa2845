package health

import "context"

// EnginePinger checks search engine availability.
type EnginePinger interface {
	Ping(ctx context.Context) error
}

// ModelLister lists the registered search models.
type ModelLister interface {
	Names() []string
}
