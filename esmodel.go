package esmodel

import (
	"github.com/kailas-cloud/esmodel/internal/domain/search/query"
	"github.com/kailas-cloud/esmodel/internal/domain/search/request"
	"github.com/kailas-cloud/esmodel/internal/domain/search/result"
	searchuc "github.com/kailas-cloud/esmodel/internal/usecase/search"
)

type (
	// Options are per-request parameters. They override computed parameters,
	// including index and type. A key whose value is nil is ignored rather
	// than sent or used to clear a computed parameter.
	Options = request.Options
	// Definition is the canonical, immutable request built from an input.
	Definition = request.Definition
	// SearchBuilder builds search definitions fluently.
	SearchBuilder = request.SearchBuilder
	// ScrollBuilder builds scroll definitions fluently.
	ScrollBuilder = request.ScrollBuilder
	// Response wraps a definition and executes it on first access.
	Response = searchuc.Response
	// Mapper is implemented by query objects that render a structured query.
	Mapper = query.Mapper
	// Raw is the decoded engine reply.
	Raw = result.Raw
	// Hit is a single matched document.
	Hit = result.Result
	// Total is the hit count with its relation (eq or gte).
	Total = result.Total
	// SearchClient is what a model executes against. *Client implements it.
	SearchClient = searchuc.Client
)

// Reserved parameter keys.
const (
	KeyIndex    = request.KeyIndex
	KeyType     = request.KeyType
	KeyBody     = request.KeyBody
	KeyQ        = request.KeyQ
	KeyScrollID = request.KeyScrollID
)
