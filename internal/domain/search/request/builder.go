package request

import (
	"strings"
	"time"

	"github.com/kailas-cloud/esmodel/internal/domain/search/query"
	"github.com/kailas-cloud/esmodel/internal/domain/target"
)

// BuildSearch turns a query input and options into a search definition.
//
// The input is classified by query.Classify: structured mappings and
// JSON-looking strings become body, anything else becomes q. Defaults for
// index and type come from t; options are applied last and always win.
func BuildSearch(t target.Descriptor, input any, opts Options) Definition {
	defaults := targetDefaults(t)

	in := query.Classify(input)
	if in.IsBody() {
		defaults[KeyBody] = in.Value()
	} else {
		defaults[KeyQ] = in.Value()
	}

	return Definition{kind: KindSearch, params: Merge(defaults, opts)}
}

// BuildScroll turns a scroll cursor and options into a scroll definition.
// The cursor is opaque and not validated.
func BuildScroll(t target.Descriptor, scrollID string, opts Options) Definition {
	defaults := targetDefaults(t)
	defaults[KeyScrollID] = scrollID

	return Definition{kind: KindScroll, params: Merge(defaults, opts)}
}

func targetDefaults(t target.Descriptor) map[string]any {
	return map[string]any{
		KeyIndex: t.IndexName(),
		KeyType:  t.DocumentType(),
	}
}

// SearchBuilder is a fluent builder for search definitions.
// Every setter records an option, so the same override rule as BuildSearch applies.
type SearchBuilder struct {
	target target.Descriptor
	input  any
	opts   Options
}

// NewSearch starts building a search definition against t.
func NewSearch(t target.Descriptor) *SearchBuilder {
	return &SearchBuilder{target: t, opts: Options{}}
}

// Query sets the query input: a mapping, a query.Mapper, a JSON string or free text.
func (b *SearchBuilder) Query(input any) *SearchBuilder {
	b.input = input
	return b
}

// Index overrides the target index. Several names search several indices.
func (b *SearchBuilder) Index(names ...string) *SearchBuilder {
	return b.Option(KeyIndex, strings.Join(names, ","))
}

// Type overrides the target document type.
func (b *SearchBuilder) Type(name string) *SearchBuilder {
	return b.Option(KeyType, name)
}

// Size sets the number of hits to return.
func (b *SearchBuilder) Size(n int) *SearchBuilder {
	return b.Option("size", n)
}

// From sets the hit offset.
func (b *SearchBuilder) From(n int) *SearchBuilder {
	return b.Option("from", n)
}

// Sort sets "field:direction" sort expressions.
func (b *SearchBuilder) Sort(fields ...string) *SearchBuilder {
	return b.Option("sort", fields)
}

// Scroll opens a scroll context kept alive for keepAlive.
func (b *SearchBuilder) Scroll(keepAlive time.Duration) *SearchBuilder {
	return b.Option("scroll", keepAlive)
}

// Option sets an arbitrary engine parameter.
func (b *SearchBuilder) Option(key string, value any) *SearchBuilder {
	b.opts[key] = value
	return b
}

// Build returns the definition. The builder can be reused afterwards.
func (b *SearchBuilder) Build() Definition {
	return BuildSearch(b.target, b.input, b.opts)
}

// ScrollBuilder is a fluent builder for scroll definitions.
type ScrollBuilder struct {
	target   target.Descriptor
	scrollID string
	opts     Options
}

// NewScroll starts building a scroll definition for scrollID against t.
func NewScroll(t target.Descriptor, scrollID string) *ScrollBuilder {
	return &ScrollBuilder{target: t, scrollID: scrollID, opts: Options{}}
}

// KeepAlive extends the scroll context by d.
func (b *ScrollBuilder) KeepAlive(d time.Duration) *ScrollBuilder {
	return b.Option("scroll", d)
}

// Option sets an arbitrary engine parameter.
func (b *ScrollBuilder) Option(key string, value any) *ScrollBuilder {
	b.opts[key] = value
	return b
}

// Build returns the definition.
func (b *ScrollBuilder) Build() Definition {
	return BuildScroll(b.target, b.scrollID, b.opts)
}
