package search

import (
	"context"

	"go.uber.org/zap"

	"github.com/kailas-cloud/esmodel/internal/domain/search/request"
	"github.com/kailas-cloud/esmodel/internal/domain/search/result"
	"github.com/kailas-cloud/esmodel/internal/logger"
)

// Executor forwards request definitions to the model's client.
// It neither retries nor wraps errors.
type Executor struct {
	model Model
}

// NewExecutor creates an executor bound to a model.
func NewExecutor(m Model) *Executor {
	return &Executor{model: m}
}

// Execute sends def to the client's search or scroll operation and
// returns the raw engine response. Client errors are returned as-is.
func (e *Executor) Execute(ctx context.Context, def request.Definition) (result.Raw, error) {
	client := e.model.Client()

	logger.FromContext(ctx).Debug("Executing request",
		zap.String("kind", string(def.Kind())),
		zap.String("index", def.Index()),
		zap.String("type", def.Type()),
	)

	if def.Kind() == request.KindScroll {
		return client.Scroll(ctx, def.Params())
	}
	return client.Search(ctx, def.Params())
}
